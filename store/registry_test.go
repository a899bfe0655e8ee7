package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_CreateAndGet(t *testing.T) {
	r := NewRegistry(func() *Store { return New(nil, nil) }, time.Hour)

	id, st := r.Create()
	require.NotEmpty(t, id)

	got, err := r.Get(id)
	require.NoError(t, err)
	assert.Same(t, st, got)

	_, err = r.Get("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRegistry_SweepDropsIdleSessions(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	r := NewRegistry(func() *Store { return New(nil, nil) }, 30*time.Minute)
	r.now = func() time.Time { return now }

	idle, _ := r.Create()
	active, _ := r.Create()

	now = now.Add(20 * time.Minute)
	_, err := r.Get(active)
	require.NoError(t, err)

	now = now.Add(15 * time.Minute)
	assert.Equal(t, 1, r.Sweep())
	assert.Equal(t, 1, r.Len())

	_, err = r.Get(idle)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = r.Get(active)
	assert.NoError(t, err)
}
