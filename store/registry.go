package store

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("search session not found")

type session struct {
	store    *Store
	lastSeen time.Time
}

// Registry owns the live search sessions, one per browser.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*session
	factory  func() *Store
	idle     time.Duration
	now      func() time.Time
}

func NewRegistry(factory func() *Store, idle time.Duration) *Registry {
	return &Registry{
		sessions: make(map[string]*session),
		factory:  factory,
		idle:     idle,
		now:      time.Now,
	}
}

func (r *Registry) Create() (string, *Store) {
	id := uuid.New().String()
	st := r.factory()

	r.mu.Lock()
	r.sessions[id] = &session{store: st, lastSeen: r.now()}
	r.mu.Unlock()

	return id, st
}

func (r *Registry) Get(id string) (*Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.lastSeen = r.now()
	return s.store, nil
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops sessions idle for longer than the registry's idle window.
func (r *Registry) Sweep() int {
	if r.idle <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.idle)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps periodically until ctx is done.
func (r *Registry) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				log.Printf("🧹 Expired %d idle search session(s)", n)
			}
		}
	}
}
