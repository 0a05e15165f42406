package alerting

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/abelzeko/water-alert/internal/entities"
	"github.com/stretchr/testify/require"
)

var submittedAt = time.Date(2025, time.August, 2, 9, 30, 0, 0, time.UTC)

func testThresholds(t *testing.T) *entities.Thresholds {
	t.Helper()
	th, err := entities.NewThresholds(map[string]float64{
		"Varanasi":  72,
		"Haridwar":  293,
		"Prayagraj": 84,
	})
	require.NoError(t, err)
	return th
}

type sentMessage struct {
	Address, Subject, Body string
}

type fakeSender struct {
	mu      sync.Mutex
	sent    []sentMessage
	failFor map[string]error
	block   bool
}

func (s *fakeSender) Send(ctx context.Context, address, subject, body string) error {
	if s.block {
		<-ctx.Done()
		return ctx.Err()
	}
	if err, ok := s.failFor[address]; ok {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentMessage{address, subject, body})
	return nil
}

func (s *fakeSender) addresses() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.sent))
	for i, m := range s.sent {
		out[i] = m.Address
	}
	return out
}

type fakeAlertLog struct {
	records []entities.AlertRecord
	failFor map[string]bool
}

func (l *fakeAlertLog) AppendAlert(_ context.Context, r entities.AlertRecord) error {
	if l.failFor[r.Location] {
		return errors.New("disk full")
	}
	l.records = append(l.records, r)
	return nil
}

type dispatchCall struct {
	Location string
	Level    float64
	At       time.Time
}

type fakeNotifier struct {
	calls []dispatchCall
}

func (n *fakeNotifier) Dispatch(_ context.Context, location string, level float64, at time.Time) (DispatchReport, error) {
	n.calls = append(n.calls, dispatchCall{location, level, at})
	return DispatchReport{}, nil
}

// memoryDirectory is a SubscriberDirectory held in process memory
type memoryDirectory struct {
	mu          sync.RWMutex
	subscribers []entities.Subscriber
}

func newMemoryDirectory() *memoryDirectory {
	return &memoryDirectory{}
}

func (d *memoryDirectory) Add(_ context.Context, name, contactAddress string, locations []string) (entities.Subscriber, error) {
	sub := entities.NewSubscriber(name, contactAddress, locations, submittedAt)

	d.mu.Lock()
	d.subscribers = append(d.subscribers, sub)
	d.mu.Unlock()
	return sub, nil
}

func (d *memoryDirectory) Matching(_ context.Context, location string) ([]entities.Subscriber, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	matched := []entities.Subscriber{}
	for _, s := range d.subscribers {
		if s.SubscribedTo(location) {
			matched = append(matched, s)
		}
	}
	return matched, nil
}
