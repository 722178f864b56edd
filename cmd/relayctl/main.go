// Command relayctl is the operator CLI for the usage relay.
//
// Usage:
//
//	relayctl run morning
//	relayctl run evening --dry-run
//	relayctl usage --user abc123 --start 2025-03-01 --end 2025-03-07
//	relayctl roster
//	relayctl recipients add 01012345678
//	relayctl recipients list
//	relayctl send 01012345678 --body "실험 알림입니다."
//	relayctl broadcast
//	relayctl migrate
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/albapepper/usage-relay/internal/config"
	"github.com/albapepper/usage-relay/internal/db"
	"github.com/albapepper/usage-relay/internal/docstore"
	"github.com/albapepper/usage-relay/internal/notifications"
	"github.com/albapepper/usage-relay/internal/recipients"
	"github.com/albapepper/usage-relay/internal/roster"
	"github.com/albapepper/usage-relay/internal/slacklog"
	"github.com/albapepper/usage-relay/internal/sms"
	"github.com/albapepper/usage-relay/internal/usage"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "relayctl",
		Short: "Usage relay operator CLI",
	}

	root.AddCommand(runCmd())
	root.AddCommand(usageCmd())
	root.AddCommand(rosterCmd())
	root.AddCommand(recipientsCmd())
	root.AddCommand(sendCmd())
	root.AddCommand(broadcastCmd())
	root.AddCommand(migrateCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// run command
// --------------------------------------------------------------------------

func runCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:       "run {morning|evening}",
		Short:     "Run a personalized notification fan-out now",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(notifications.Morning), string(notifications.Evening)},
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := notifications.ParseDirection(args[0])
			if err != nil {
				return err
			}
			return withRelay(dryRun, func(ctx context.Context, r *relay) error {
				start := time.Now()
				result, err := r.notifier.Run(ctx, dir)
				if err != nil {
					return err
				}
				logger.Info("Run finished",
					"duration", time.Since(start).Round(time.Millisecond),
					"summary", result.Summary())
				for _, o := range result.Outcomes {
					fmt.Printf("%-8s %-24s %-14s %s%s\n", o.Status, o.UserID, o.Phone, o.Message, o.Error)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Compose messages and print them without sending")
	return cmd
}

// --------------------------------------------------------------------------
// usage / roster commands
// --------------------------------------------------------------------------

func usageCmd() *cobra.Command {
	var userID, startDate, endDate string
	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Aggregate one user's app usage over a date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" {
				return fmt.Errorf("--user is required")
			}
			return withDocstore(func(ctx context.Context, cfg *config.Config, docs *docstore.Client) error {
				today := time.Now().In(cfg.Location).Format(usage.DateLayout)
				if startDate == "" {
					startDate = today
				}
				if endDate == "" {
					endDate = today
				}
				s, err := usage.NewAggregator(docs, cfg.Location).Aggregate(ctx, userID, startDate, endDate)
				if err != nil {
					return err
				}
				fmt.Printf("user=%s range=%s..%s sessions=%d total=%s (%s)\n",
					s.UserID, s.StartDate, s.EndDate, s.SessionCount, usage.FormatHMS(s.TotalSeconds), s.Formatted)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "User ID")
	cmd.Flags().StringVar(&startDate, "start", "", "Start date (YYYY-MM-DD), default today")
	cmd.Flags().StringVar(&endDate, "end", "", "End date (YYYY-MM-DD), default today")
	return cmd
}

func rosterCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "List users eligible for the notification runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDocstore(func(ctx context.Context, cfg *config.Config, docs *docstore.Client) error {
				entries, err := docs.Roster(ctx, cfg.RosterRole)
				if err != nil {
					return err
				}
				if !all {
					entries = roster.Filter(entries, roster.FilterOptions{
						Role:                cfg.RosterRole,
						RequireActiveWindow: cfg.RosterRequireActiveWindow,
						Now:                 time.Now(),
						Location:            cfg.Location,
					})
				}
				for _, e := range entries {
					fmt.Printf("%-24s %-10s %-14s %s\n", e.UserID, e.Role, e.Phone, e.Name())
				}
				logger.Info("Roster listed", "count", len(entries), "filtered", !all)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Skip the eligibility filter")
	return cmd
}

// --------------------------------------------------------------------------
// recipients commands
// --------------------------------------------------------------------------

func recipientsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recipients",
		Short: "Manage the registered phone list",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List registered phones",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRecipients(func(ctx context.Context, store *recipients.Store) error {
				phones, err := store.List(ctx)
				if err != nil {
					return err
				}
				for _, p := range phones {
					fmt.Println(p)
				}
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "add PHONE",
		Short: "Register a phone number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRecipients(func(ctx context.Context, store *recipients.Store) error {
				count, err := store.Add(ctx, args[0])
				if err != nil {
					return err
				}
				logger.Info("Recipient registered", "phone", args[0], "count", count)
				return nil
			})
		},
	})
	return cmd
}

// --------------------------------------------------------------------------
// send / broadcast commands
// --------------------------------------------------------------------------

func sendCmd() *cobra.Command {
	var body string
	cmd := &cobra.Command{
		Use:   "send PHONE",
		Short: "Send a message to one registered recipient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRelay(false, func(ctx context.Context, r *relay) error {
				d, err := r.notifier.SendOne(ctx, args[0], body)
				if err != nil {
					return err
				}
				logger.Info("Message sent", "provider", d.Provider, "message_id", d.MessageID, "to", d.To)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&body, "body", "", "Message body (default: the test notice)")
	return cmd
}

func broadcastCmd() *cobra.Command {
	var body string
	cmd := &cobra.Command{
		Use:   "broadcast",
		Short: "Send a message to every registered recipient",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRelay(false, func(ctx context.Context, r *relay) error {
				report, err := r.notifier.Broadcast(ctx, body)
				if err != nil {
					return err
				}
				for _, o := range report.Results {
					if o.Status == notifications.StatusFailed {
						logger.Error("broadcast error", "phone", o.Phone, "error", o.Error)
					}
				}
				logger.Info("Broadcast finished",
					"total", report.TotalCount,
					"sent", report.SuccessCount,
					"failed", report.FailedCount)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&body, "body", "", "Message body (default: the broadcast notice)")
	return cmd
}

// --------------------------------------------------------------------------
// migrate command
// --------------------------------------------------------------------------

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the recipient store and delivery log schemas",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			store, err := recipients.Open(ctx, cfg.RecipientsDBPath)
			if err != nil {
				return err
			}
			_ = store.Close()
			logger.Info("Recipient store migrated", "path", cfg.RecipientsDBPath)

			if !cfg.HasDeliveryLog() {
				logger.Info("Delivery log disabled (no DATABASE_URL)")
				return nil
			}
			pool, err := db.New(ctx, cfg)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			pool.Close()
			logger.Info("Delivery log migrated")
			return nil
		},
	}
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

type relay struct {
	cfg      *config.Config
	notifier *notifications.Notifier
}

// withDocstore loads config and connects to Firestore only.
func withDocstore(fn func(ctx context.Context, cfg *config.Config, docs *docstore.Client) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	docs, err := docstore.New(ctx, cfg.FirestoreProjectID, cfg.FirestoreDatabaseID, logger)
	if err != nil {
		return fmt.Errorf("connect to firestore: %w", err)
	}
	defer docs.Close()

	return fn(ctx, cfg, docs)
}

// withRecipients loads config and opens the recipient store only.
func withRecipients(fn func(ctx context.Context, store *recipients.Store) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := recipients.Open(ctx, cfg.RecipientsDBPath)
	if err != nil {
		return fmt.Errorf("open recipients: %w", err)
	}
	defer store.Close()

	return fn(ctx, store)
}

// withRelay wires the full notifier. A dry run swaps the provider for one
// that prints each message and skips the chat log.
func withRelay(dryRun bool, fn func(ctx context.Context, r *relay) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := recipients.Open(ctx, cfg.RecipientsDBPath)
	if err != nil {
		return fmt.Errorf("open recipients: %w", err)
	}
	defer store.Close()

	docs, err := docstore.New(ctx, cfg.FirestoreProjectID, cfg.FirestoreDatabaseID, logger)
	if err != nil {
		return fmt.Errorf("connect to firestore: %w", err)
	}
	defer docs.Close()

	deps := notifications.Deps{
		Roster:     docs,
		Usage:      usage.NewAggregator(docs, cfg.Location),
		Recipients: store,
		Logger:     logger,
	}

	if dryRun {
		deps.Sender = printSender{}
	} else {
		deps.Sender, err = sms.New(ctx, cfg, logger)
		if err != nil {
			return fmt.Errorf("create sms sender: %w", err)
		}
		deps.Reporter = slacklog.New(cfg.SlackWebhookURL, cfg.Location, logger)

		if cfg.HasDeliveryLog() {
			pool, err := db.New(ctx, cfg)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer pool.Close()
			deps.Log = notifications.NewStore(pool.Pool)
		}
	}

	notifier := notifications.New(deps, notifications.Options{
		Location:            cfg.Location,
		Ceiling:             cfg.UsageCeiling,
		Role:                cfg.RosterRole,
		RequireActiveWindow: cfg.RosterRequireActiveWindow,
		SendTimeout:         cfg.SMSSendTimeout,
		ReportTimeout:       cfg.ReportTimeout,
	})
	return fn(ctx, &relay{cfg: cfg, notifier: notifier})
}

// printSender writes messages to stdout instead of sending them.
type printSender struct{}

func (printSender) Send(_ context.Context, to, text string) (*sms.Delivery, error) {
	fmt.Printf("[dry-run] %s: %s\n", to, text)
	return &sms.Delivery{Provider: "dry-run", To: to}, nil
}
