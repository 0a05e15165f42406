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

// AlertRepository is the durable, append-only alert log
type AlertRepository interface {
	AppendAlert(ctx context.Context, record entities.AlertRecord) error
	GetAlerts(ctx context.Context, location string, limit int) ([]entities.AlertRecord, error)
}

// SQLiteAlertRepository implements AlertRepository using SQLite. Records are
// only ever inserted; there is no update or delete path.
type SQLiteAlertRepository struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *zap.Logger
}

// NewSQLiteAlertRepository creates an alert log on an open database
func NewSQLiteAlertRepository(db *sql.DB, logger *zap.Logger) *SQLiteAlertRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLiteAlertRepository{db: db, logger: logger}
}

// AppendAlert adds one record to the end of the log
func (r *SQLiteAlertRepository) AppendAlert(ctx context.Context, record entities.AlertRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO alert_log(id, location, location_key, observed_at, observed_level, status)
		VALUES(?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.Location,
		entities.NormalizeLocation(record.Location),
		record.Timestamp.UnixNano(),
		record.ObservedLevel,
		string(record.Status),
	)
	if err != nil {
		return fmt.Errorf("%w: failed to insert alert for %s: %v", entities.ErrPersistenceFailure, record.Location, err)
	}

	r.logger.Debug("Appended alert record",
		zap.String("id", record.ID),
		zap.String("location", record.Location),
		zap.String("status", string(record.Status)),
	)
	return nil
}

// GetAlerts returns the newest records first. An empty location returns
// records of every location; a non-positive limit returns all of them.
func (r *SQLiteAlertRepository) GetAlerts(ctx context.Context, location string, limit int) ([]entities.AlertRecord, error) {
	query := `
		SELECT id, location, observed_at, observed_level, status
		FROM alert_log
		WHERE (? = '' OR location_key = ?)
		ORDER BY seq DESC`
	key := entities.NormalizeLocation(location)
	args := []any{key, key}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query alert log: %w", err)
	}
	defer rows.Close()

	var records []entities.AlertRecord
	for rows.Next() {
		var (
			rec    entities.AlertRecord
			ts     int64
			status string
		)
		if err := rows.Scan(&rec.ID, &rec.Location, &ts, &rec.ObservedLevel, &status); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if rec.Status, err = entities.ParseStatus(status); err != nil {
			return nil, err
		}
		rec.Timestamp = time.Unix(0, ts).UTC()
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return records, nil
}
