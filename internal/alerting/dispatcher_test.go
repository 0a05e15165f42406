package alerting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/abelzeko/water-alert/internal/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedDirectory(t *testing.T) *memoryDirectory {
	t.Helper()
	dir := newMemoryDirectory()
	ctx := context.Background()
	_, err := dir.Add(ctx, "Asha", "asha@example.com", []string{"Varanasi", "Haridwar"})
	require.NoError(t, err)
	_, err = dir.Add(ctx, "Ravi", "telegram:4242", []string{" varanasi "})
	require.NoError(t, err)
	_, err = dir.Add(ctx, "Meera", "meera@example.com", []string{"Prayagraj"})
	require.NoError(t, err)
	return dir
}

func TestDispatchNotifiesOnlySubscribers(t *testing.T) {
	sender := &fakeSender{}
	d := NewDispatcher(seedDirectory(t), testThresholds(t), sender, time.Second, nil)

	report, err := d.Dispatch(context.Background(), "VARANASI", 75, submittedAt)
	require.NoError(t, err)

	assert.Equal(t, DispatchReport{Matched: 2, Sent: 2}, report)
	assert.ElementsMatch(t, []string{"asha@example.com", "telegram:4242"}, sender.addresses())
}

func TestDispatchMessageContents(t *testing.T) {
	sender := &fakeSender{}
	d := NewDispatcher(seedDirectory(t), testThresholds(t), sender, time.Second, nil)

	_, err := d.Dispatch(context.Background(), "Prayagraj", 90.5, submittedAt)
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, "meera@example.com", msg.Address)
	assert.Contains(t, msg.Subject, "Prayagraj")
	assert.Contains(t, msg.Body, "Dear Meera")
	assert.Contains(t, msg.Body, "Prayagraj")
	assert.Contains(t, msg.Body, "Current Level: 90.5 cm")
	assert.Contains(t, msg.Body, "Time: 2025-08-02 09:30:00")
	assert.Contains(t, msg.Body, "Danger Level: 84 cm")
}

func TestDispatchNoSubscribers(t *testing.T) {
	sender := &fakeSender{}
	d := NewDispatcher(newMemoryDirectory(), testThresholds(t), sender, time.Second, nil)

	report, err := d.Dispatch(context.Background(), "Haridwar", 300, submittedAt)
	require.NoError(t, err)
	assert.Zero(t, report.Matched)
	assert.Empty(t, sender.sent)
}

func TestDispatchContinuesAfterFailure(t *testing.T) {
	sender := &fakeSender{failFor: map[string]error{
		"asha@example.com": errors.New("connection refused"),
	}}
	d := NewDispatcher(seedDirectory(t), testThresholds(t), sender, time.Second, nil)

	report, err := d.Dispatch(context.Background(), "Varanasi", 80, submittedAt)
	require.NoError(t, err)

	assert.Equal(t, DispatchReport{Matched: 2, Sent: 1, Failed: 1}, report)
	assert.Equal(t, []string{"telegram:4242"}, sender.addresses())
}

func TestDispatchBoundsEachAttempt(t *testing.T) {
	sender := &fakeSender{block: true}
	d := NewDispatcher(seedDirectory(t), testThresholds(t), sender, 20*time.Millisecond, nil)

	start := time.Now()
	report, err := d.Dispatch(context.Background(), "Varanasi", 80, submittedAt)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Failed)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestDispatchDuplicateSignupsNotifiedTwice(t *testing.T) {
	dir := newMemoryDirectory()
	ctx := context.Background()
	first, err := dir.Add(ctx, "Asha", "asha@example.com", []string{"Varanasi"})
	require.NoError(t, err)
	second, err := dir.Add(ctx, "Asha", "asha@example.com", []string{"Varanasi"})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	matched, err := dir.Matching(ctx, "varanasi")
	require.NoError(t, err)
	assert.Len(t, matched, 2)

	sender := &fakeSender{}
	d := NewDispatcher(dir, testThresholds(t), sender, time.Second, nil)
	report, err := d.Dispatch(ctx, "Varanasi", 75, submittedAt)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Sent)
	assert.Equal(t, []string{"asha@example.com", "asha@example.com"}, sender.addresses())
}

func TestDispatchUnknownLocation(t *testing.T) {
	d := NewDispatcher(seedDirectory(t), testThresholds(t), &fakeSender{}, time.Second, nil)

	_, err := d.Dispatch(context.Background(), "Patna", 75, submittedAt)
	assert.ErrorIs(t, err, entities.ErrUnknownLocation)
}

func TestMatchingReturnsEmptyNotNil(t *testing.T) {
	matched, err := seedDirectory(t).Matching(context.Background(), "Kolkata")
	require.NoError(t, err)
	assert.NotNil(t, matched)
	assert.Empty(t, matched)
}

func TestRedactAddress(t *testing.T) {
	assert.Equal(t, "a***@example.com", redactAddress("asha@example.com"))
	assert.Equal(t, "telegram:***", redactAddress("telegram:4242"))
	assert.Equal(t, "***", redactAddress("plain"))
}
