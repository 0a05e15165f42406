package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/abelzeko/water-alert/internal/entities"
	"go.uber.org/zap"
)

// ReadingRepository stores the reading series of every location
type ReadingRepository interface {
	AppendReadings(ctx context.Context, readings []entities.Reading) error
	GetSeries(ctx context.Context, location string, since time.Time) (entities.Series, error)
	GetLatestReading(ctx context.Context, location string) (entities.Reading, bool, error)
	GetLocations(ctx context.Context) ([]string, error)
	GetLastUpdateTime(ctx context.Context) (time.Time, error)
}

// SQLiteReadingRepository implements ReadingRepository using SQLite
type SQLiteReadingRepository struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *zap.Logger
}

// NewSQLiteReadingRepository creates a reading repository on an open database
func NewSQLiteReadingRepository(db *sql.DB, logger *zap.Logger) *SQLiteReadingRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLiteReadingRepository{db: db, logger: logger}
}

// AppendReadings stores readings in one transaction. A reading older than the
// newest stored reading of its location is rejected with
// entities.ErrOutOfOrderReading and nothing from the batch is kept.
func (r *SQLiteReadingRepository) AppendReadings(ctx context.Context, readings []entities.Reading) error {
	if len(readings) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", entities.ErrPersistenceFailure, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO readings(location, location_key, observed_at, level)
		VALUES(?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("%w: failed to prepare statement: %v", entities.ErrPersistenceFailure, err)
	}
	defer stmt.Close()

	latest := make(map[string]int64)
	for _, rd := range readings {
		if err := rd.Validate(); err != nil {
			return err
		}
		key := entities.NormalizeLocation(rd.Location)

		last, seen := latest[key]
		if !seen {
			var max sql.NullInt64
			if err := tx.QueryRowContext(ctx,
				`SELECT MAX(observed_at) FROM readings WHERE location_key = ?`, key).Scan(&max); err != nil {
				return fmt.Errorf("%w: failed to read latest reading for %s: %v", entities.ErrPersistenceFailure, rd.Location, err)
			}
			last = max.Int64
			if !max.Valid {
				last = rd.Timestamp.UnixNano()
			}
		}

		ts := rd.Timestamp.UnixNano()
		if ts < last {
			return fmt.Errorf("%w: %s at %s", entities.ErrOutOfOrderReading, rd.Location, rd.Timestamp.Format(time.RFC3339))
		}
		if _, err := stmt.ExecContext(ctx, rd.Location, key, ts, rd.Level); err != nil {
			return fmt.Errorf("%w: failed to insert reading for %s: %v", entities.ErrPersistenceFailure, rd.Location, err)
		}
		latest[key] = ts
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit transaction: %v", entities.ErrPersistenceFailure, err)
	}

	r.logger.Debug("Saved readings", zap.Int("count", len(readings)))
	return nil
}

// GetSeries returns the readings of location observed at or after since,
// oldest first. A zero since returns the full history.
func (r *SQLiteReadingRepository) GetSeries(ctx context.Context, location string, since time.Time) (entities.Series, error) {
	cutoff := int64(math.MinInt64)
	if !since.IsZero() {
		cutoff = since.UnixNano()
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT location, observed_at, level
		FROM readings
		WHERE location_key = ? AND observed_at >= ?
		ORDER BY observed_at, id`, entities.NormalizeLocation(location), cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query readings for %s: %w", location, err)
	}
	defer rows.Close()

	var series entities.Series
	for rows.Next() {
		rd, err := scanReading(rows)
		if err != nil {
			return nil, err
		}
		series = append(series, rd)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return series, nil
}

// GetLatestReading returns the newest reading of location, if any
func (r *SQLiteReadingRepository) GetLatestReading(ctx context.Context, location string) (entities.Reading, bool, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT location, observed_at, level
		FROM readings
		WHERE location_key = ?
		ORDER BY observed_at DESC, id DESC
		LIMIT 1`, entities.NormalizeLocation(location))

	rd, err := scanReading(row)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Reading{}, false, nil
	}
	if err != nil {
		return entities.Reading{}, false, err
	}
	return rd, true, nil
}

// GetLocations returns every location that has readings
func (r *SQLiteReadingRepository) GetLocations(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT MIN(location)
		FROM readings
		GROUP BY location_key
		ORDER BY location_key`)
	if err != nil {
		return nil, fmt.Errorf("failed to query locations: %w", err)
	}
	defer rows.Close()

	var locations []string
	for rows.Next() {
		var loc string
		if err := rows.Scan(&loc); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		locations = append(locations, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return locations, nil
}

// GetLastUpdateTime returns the most recent reading timestamp, or zero time
// when nothing is stored
func (r *SQLiteReadingRepository) GetLastUpdateTime(ctx context.Context) (time.Time, error) {
	var max sql.NullInt64
	if err := r.db.QueryRowContext(ctx, "SELECT MAX(observed_at) FROM readings").Scan(&max); err != nil {
		return time.Time{}, fmt.Errorf("failed to get last update time: %w", err)
	}
	if !max.Valid {
		return time.Time{}, nil
	}
	return time.Unix(0, max.Int64).UTC(), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReading(row rowScanner) (entities.Reading, error) {
	var (
		rd entities.Reading
		ts int64
	)
	if err := row.Scan(&rd.Location, &ts, &rd.Level); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rd, err
		}
		return rd, fmt.Errorf("failed to scan row: %w", err)
	}
	rd.Timestamp = time.Unix(0, ts).UTC()
	return rd, nil
}
