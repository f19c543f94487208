package wizard

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sangkips/ecs-receipts/internal/preview"
	"github.com/sangkips/ecs-receipts/internal/session"
)

// Entry is one user's wizard and its preview.
type Entry struct {
	Machine *Machine
	Preview *preview.Regenerator
}

// Builder creates the entry for a user on first use.
type Builder func(sess session.Session) *Entry

// Registry hosts one wizard per user and evicts the idle ones.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*Entry
	build   Builder
	ttl     time.Duration
	now     func() time.Time
}

func NewRegistry(ttl time.Duration, build Builder) *Registry {
	return &Registry{
		entries: make(map[string]*Entry),
		build:   build,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the user's entry, creating it if needed.
func (r *Registry) Get(user *session.User, token string) *Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[user.ID]; ok {
		return e
	}
	sess := session.NewLocal(nil).Restore(user, token)
	e := r.build(sess)
	r.entries[user.ID] = e
	return e
}

// Lookup returns the user's entry without creating one.
func (r *Registry) Lookup(userID string) (*Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[userID]
	return e, ok
}

// Drop removes a user's entry and releases its preview.
func (r *Registry) Drop(userID string) {
	r.mu.Lock()
	e, ok := r.entries[userID]
	delete(r.entries, userID)
	r.mu.Unlock()
	if ok && e.Preview != nil {
		_ = e.Preview.Close()
	}
}

// Evict drops entries idle for longer than the TTL. Entries with a save in
// flight are kept. It returns the number evicted.
func (r *Registry) Evict() int {
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	var stale []*Entry
	for id, e := range r.entries {
		if e.Machine.Saving() || e.Machine.LastActive().After(cutoff) {
			continue
		}
		stale = append(stale, e)
		delete(r.entries, id)
	}
	r.mu.Unlock()

	for _, e := range stale {
		if e.Preview != nil {
			_ = e.Preview.Close()
		}
	}
	if len(stale) > 0 {
		log.Info().Int("evicted", len(stale)).Msg("evicted idle wizards")
	}
	return len(stale)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
