package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewSubscriber(t *testing.T) {
	at := time.Date(2025, time.July, 1, 12, 0, 0, 0, time.UTC)
	a := NewSubscriber(" Asha ", " asha@example.com ", []string{" Varanasi", "", "prayagraj "}, at)
	b := NewSubscriber("Asha", "asha@example.com", []string{"Varanasi"}, at)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, "Asha", a.Name)
	assert.Equal(t, "asha@example.com", a.ContactAddress)
	assert.Equal(t, []string{"Varanasi", "prayagraj"}, a.Locations)
	assert.Equal(t, at, a.CreatedAt)

	joined := NewSubscriber("Ravi", "telegram:1", []string{"Varanasi, Haridwar", " "}, at)
	assert.Equal(t, SplitLocations(JoinLocations(joined.Locations)), joined.Locations)
	assert.Equal(t, []string{"Varanasi", "Haridwar"}, joined.Locations)
	assert.True(t, joined.SubscribedTo("haridwar"))
}

func TestSubscribedTo(t *testing.T) {
	s := Subscriber{Locations: []string{"Varanasi", "prayagraj"}}

	assert.True(t, s.SubscribedTo("varanasi"))
	assert.True(t, s.SubscribedTo(" PRAYAGRAJ "))
	assert.False(t, s.SubscribedTo("Haridwar"))
	assert.False(t, s.SubscribedTo(""))
}

func TestJoinSplitLocations(t *testing.T) {
	joined := JoinLocations([]string{"Varanasi", "Prayagraj"})
	assert.Equal(t, "Varanasi,Prayagraj", joined)
	assert.Equal(t, []string{"Varanasi", "Prayagraj"}, SplitLocations(joined))
	assert.Equal(t, []string{"Varanasi", "Haridwar"}, SplitLocations(" Varanasi, ,Haridwar,"))
	assert.Nil(t, SplitLocations(""))
}
