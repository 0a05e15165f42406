package api

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/abelzeko/water-alert/internal/entities"
	"github.com/abelzeko/water-alert/internal/prediction"
	"github.com/abelzeko/water-alert/internal/repository"
	"github.com/abelzeko/water-alert/internal/usecases"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu        sync.Mutex
	addresses []string
}

func (s *recordingSender) Send(_ context.Context, address, _, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addresses = append(s.addresses, address)
	return nil
}

func (s *recordingSender) sent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.addresses...)
}

type testEnv struct {
	useCase     *usecases.MonitorUseCase
	subscribers *repository.SQLiteSubscriberRepository
	sender      *recordingSender
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	db, err := repository.Open(filepath.Join(t.TempDir(), "api.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	th, err := entities.NewThresholds(map[string]float64{"Varanasi": 80, "Prayagraj": 84})
	require.NoError(t, err)

	subscribers := repository.NewSQLiteSubscriberRepository(db, nil)
	sender := &recordingSender{}
	uc := usecases.NewMonitorUseCase(usecases.Deps{
		Readings:    repository.NewSQLiteReadingRepository(db, nil),
		Alerts:      repository.NewSQLiteAlertRepository(db, nil),
		Subscribers: subscribers,
		Thresholds:  th,
		Predictor:   prediction.Exponential{},
		Sender:      sender,
	})
	return testEnv{useCase: uc, subscribers: subscribers, sender: sender}
}

// seedRecession stores 90, 81, 72.9 over the last three hours for Varanasi
func seedRecession(t *testing.T, uc *usecases.MonitorUseCase) {
	t.Helper()
	start := time.Now().UTC().Truncate(time.Hour).Add(-3 * time.Hour)
	n, err := uc.ImportReadings(context.Background(), "Varanasi", []entities.Reading{
		{Timestamp: start, Level: 90},
		{Timestamp: start.Add(time.Hour), Level: 81},
		{Timestamp: start.Add(2 * time.Hour), Level: 72.9},
	})
	require.NoError(t, err)
	require.Equal(t, 3, n)
}
