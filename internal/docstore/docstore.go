// Package docstore reads the user roster and app sessions from Firestore.
//
// Layout:
//
//	intention_app_user/{uid}                 one doc per app user
//	intention_app_user/{uid}/sessions/{sid}  start_time, end_time, task_name
//	personal_dashboard/{uid}                 phone, name, role, active_start, active_end
//
// A roster entry exists only for users present in both top-level
// collections.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/albapepper/usage-relay/internal/config"
	"github.com/albapepper/usage-relay/internal/roster"
	"github.com/albapepper/usage-relay/internal/usage"
)

// Client wraps a Firestore client.
type Client struct {
	fs     *firestore.Client
	logger *slog.Logger
}

// New connects to the named Firestore database. Credentials come from the
// environment (GOOGLE_APPLICATION_CREDENTIALS or the metadata server).
func New(ctx context.Context, projectID, databaseID string, logger *slog.Logger) (*Client, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}
	fs, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{fs: fs, logger: logger}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.fs.Close()
}

// Sessions returns the sessions of userID whose start_time lies in [from, to].
func (c *Client) Sessions(ctx context.Context, userID string, from, to time.Time) ([]usage.Record, error) {
	iter := c.fs.Collection(config.AppUserCollection).Doc(userID).
		Collection(config.SessionsCollection).
		Where("start_time", ">=", from).
		Where("start_time", "<=", to).
		Documents(ctx)
	defer iter.Stop()

	var records []usage.Record
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterate sessions: %w", err)
		}
		records = append(records, recordFromData(doc.Ref.ID, doc.Data()))
	}
	return records, nil
}

// Roster returns dashboard users that also exist as app users. When role is
// non-empty only entries with that trimmed role are returned.
func (c *Client) Roster(ctx context.Context, role string) ([]roster.Entry, error) {
	known, err := c.appUserIDs(ctx)
	if err != nil {
		return nil, err
	}

	iter := c.fs.Collection(config.DashboardCollection).Documents(ctx)
	defer iter.Stop()

	role = strings.TrimSpace(role)
	var entries []roster.Entry
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterate dashboard: %w", err)
		}
		if _, ok := known[doc.Ref.ID]; !ok {
			continue
		}

		e, err := entryFromData(doc.Ref.ID, doc.Data())
		if err != nil {
			c.logger.Warn("rejecting roster entry", "user_id", doc.Ref.ID, "error", err)
			continue
		}
		if role != "" && e.Role != role {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Ping reads a single app user document name.
func (c *Client) Ping(ctx context.Context) error {
	iter := c.fs.Collection(config.AppUserCollection).Select().Limit(1).Documents(ctx)
	defer iter.Stop()
	if _, err := iter.Next(); err != nil && !errors.Is(err, iterator.Done) {
		return fmt.Errorf("firestore ping: %w", err)
	}
	return nil
}

func (c *Client) appUserIDs(ctx context.Context) (map[string]struct{}, error) {
	iter := c.fs.Collection(config.AppUserCollection).Select().Documents(ctx)
	defer iter.Stop()

	ids := make(map[string]struct{})
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterate app users: %w", err)
		}
		ids[doc.Ref.ID] = struct{}{}
	}
	return ids, nil
}
