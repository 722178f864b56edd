package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Delivery kinds stored in the delivery log.
const (
	KindMorning   = "morning"
	KindEvening   = "evening"
	KindSingle    = "single"
	KindBroadcast = "broadcast"
)

// Delivery is one attempted send as stored in the delivery log.
type Delivery struct {
	RunID     string
	Kind      string
	UserID    string
	Phone     string
	Message   string
	Status    Status
	MessageID string
	Error     string
	CreatedAt time.Time
}

// Store writes the delivery log to Postgres.
// Nil-safe: a nil *Store records nothing.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore returns nil when pool is nil (delivery log disabled).
func NewStore(pool *pgxpool.Pool) *Store {
	if pool == nil {
		return nil
	}
	return &Store{pool: pool}
}

// Record inserts one delivery row.
func (s *Store) Record(ctx context.Context, d Delivery) error {
	if s == nil {
		return nil
	}
	_, err := s.pool.Exec(ctx, "insert_delivery",
		d.RunID, d.Kind, nullable(d.UserID), d.Phone, d.Message,
		string(d.Status), nullable(d.MessageID), nullable(d.Error), d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert delivery: %w", err)
	}
	return nil
}

// Counts returns the number of sent and failed rows since a point in time.
func (s *Store) Counts(ctx context.Context, since time.Time) (sent, failed int, err error) {
	if s == nil {
		return 0, 0, nil
	}
	if err := s.pool.QueryRow(ctx, "delivery_counts", since).Scan(&sent, &failed); err != nil {
		return 0, 0, fmt.Errorf("delivery counts: %w", err)
	}
	return sent, failed, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
