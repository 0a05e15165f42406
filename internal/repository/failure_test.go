package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/abelzeko/water-alert/internal/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlertRepositoryAppendFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO alert_log").
		WithArgs("a1", "Varanasi", "varanasi", base.UnixNano(), 75.0, "Danger").
		WillReturnError(errors.New("disk I/O error"))

	repo := NewSQLiteAlertRepository(db, nil)
	err = repo.AppendAlert(context.Background(), entities.AlertRecord{
		ID: "a1", Location: "Varanasi", Timestamp: base, ObservedLevel: 75, Status: entities.StatusDanger,
	})

	assert.ErrorIs(t, err, entities.ErrPersistenceFailure)
	assert.Contains(t, err.Error(), "disk I/O error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriberRepositoryQueryFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT id, name, contact_address").
		WillReturnError(errors.New("database is locked"))

	repo := NewSQLiteSubscriberRepository(db, nil)
	_, err = repo.Matching(context.Background(), "Varanasi")

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReadingRepositoryCommitFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectPrepare("INSERT INTO readings")
	mock.ExpectQuery("SELECT MAX\\(observed_at\\)").
		WithArgs("varanasi").
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(nil))
	mock.ExpectExec("INSERT INTO readings").
		WithArgs("Varanasi", "varanasi", base.UnixNano(), 70.0).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit().WillReturnError(errors.New("disk full"))

	repo := NewSQLiteReadingRepository(db, nil)
	err = repo.AppendReadings(context.Background(), []entities.Reading{
		{Location: "Varanasi", Timestamp: base, Level: 70},
	})

	assert.ErrorIs(t, err, entities.ErrPersistenceFailure)
}
