package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/abelzeko/water-alert/internal/entities"
	"go.uber.org/zap"
)

// SubscriberRepository persists subscribers and finds those of a location
type SubscriberRepository interface {
	Add(ctx context.Context, name, contactAddress string, locations []string) (entities.Subscriber, error)
	Matching(ctx context.Context, location string) ([]entities.Subscriber, error)
	GetSubscribers(ctx context.Context) ([]entities.Subscriber, error)
}

// SQLiteSubscriberRepository implements SubscriberRepository using SQLite.
// Locations are kept as the comma joined string given at signup.
type SQLiteSubscriberRepository struct {
	db     *sql.DB
	mu     sync.Mutex
	now    func() time.Time
	logger *zap.Logger
}

// NewSQLiteSubscriberRepository creates a subscriber directory on an open database
func NewSQLiteSubscriberRepository(db *sql.DB, logger *zap.Logger) *SQLiteSubscriberRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLiteSubscriberRepository{db: db, now: time.Now, logger: logger}
}

// Add appends a subscriber. Duplicate signups are stored as separate rows.
func (r *SQLiteSubscriberRepository) Add(ctx context.Context, name, contactAddress string, locations []string) (entities.Subscriber, error) {
	sub := entities.NewSubscriber(name, contactAddress, locations, r.now().UTC())

	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO subscribers(id, name, contact_address, locations, created_at)
		VALUES(?, ?, ?, ?, ?)`,
		sub.ID,
		sub.Name,
		sub.ContactAddress,
		entities.JoinLocations(sub.Locations),
		sub.CreatedAt.UnixNano(),
	)
	if err != nil {
		return entities.Subscriber{}, fmt.Errorf("%w: failed to insert subscriber %s: %v", entities.ErrPersistenceFailure, sub.Name, err)
	}

	r.logger.Info("New subscriber added",
		zap.String("id", sub.ID),
		zap.String("name", sub.Name),
		zap.Strings("locations", sub.Locations),
	)
	return sub, nil
}

// Matching scans every subscriber and keeps those subscribed to location.
// It returns an empty slice, not an error, when nobody matches.
func (r *SQLiteSubscriberRepository) Matching(ctx context.Context, location string) ([]entities.Subscriber, error) {
	all, err := r.GetSubscribers(ctx)
	if err != nil {
		return nil, err
	}

	matched := []entities.Subscriber{}
	for _, s := range all {
		if s.SubscribedTo(location) {
			matched = append(matched, s)
		}
	}
	return matched, nil
}

// GetSubscribers returns all subscribers in signup order
func (r *SQLiteSubscriberRepository) GetSubscribers(ctx context.Context) ([]entities.Subscriber, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, contact_address, locations, created_at
		FROM subscribers
		ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscribers: %w", err)
	}
	defer rows.Close()

	var subs []entities.Subscriber
	for rows.Next() {
		var (
			s       entities.Subscriber
			joined  string
			created int64
		)
		if err := rows.Scan(&s.ID, &s.Name, &s.ContactAddress, &joined, &created); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		s.Locations = entities.SplitLocations(joined)
		s.CreatedAt = time.Unix(0, created).UTC()
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return subs, nil
}
