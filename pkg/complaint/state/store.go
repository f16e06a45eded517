package state

import (
	"errors"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

var ErrUnknownField = errors.New("unknown complaint field")

// Store keeps at most one draft per session id. Every read-modify-write
// runs under the store lock, and callers only ever receive copies, so a
// draft cannot change underneath a caller.
//
// Drafts that see no update for ttl are dropped; a zero ttl keeps them
// until Clear.
type Store struct {
	mu    sync.Mutex
	cache *cache.Cache
	now   func() time.Time
}

// NewStore creates a store. A cleanupInterval <= 0 disables the background
// janitor; expired drafts are then only hidden, not reclaimed.
func NewStore(ttl, cleanupInterval time.Duration) *Store {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	return &Store{
		cache: cache.New(ttl, cleanupInterval),
		now:   time.Now,
	}
}

func (s *Store) load(sessionID string) (*Draft, bool) {
	if x, found := s.cache.Get(sessionID); found {
		return x.(*Draft), true
	}
	return nil, false
}

func (s *Store) save(sessionID string, d *Draft) {
	d.UpdatedAt = s.now()
	s.cache.Set(sessionID, d, cache.DefaultExpiration)
}

func (s *Store) start(sessionID string) *Draft {
	now := s.now()
	d := &Draft{CurrentField: FieldName, StartedAt: now}
	s.save(sessionID, d)
	return d
}

// StartFiling replaces any existing draft for the session with an empty
// one that asks for the name first.
func (s *Store) StartFiling(sessionID string) Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.start(sessionID)
}

// UpdateField sets one field, starting a draft first if the session has
// none. CurrentField is left alone; callers advance it explicitly.
func (s *Store) UpdateField(sessionID string, field Field, value string) (Draft, error) {
	if !field.Valid() {
		return Draft{}, ErrUnknownField
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.load(sessionID)
	if !ok {
		d = s.start(sessionID)
	}
	d.set(field, value)
	s.save(sessionID, d)
	return *d, nil
}

// SetCurrentField records which field the user is being asked for. It
// reports false when the session has no draft.
func (s *Store) SetCurrentField(sessionID string, field Field) (Draft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.load(sessionID)
	if !ok {
		return Draft{}, false
	}
	d.CurrentField = field
	s.save(sessionID, d)
	return *d, true
}

// Draft returns a snapshot of the session's draft.
func (s *Store) Draft(sessionID string) (Draft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.load(sessionID)
	if !ok {
		return Draft{}, false
	}
	return *d, true
}

// NextField returns the first missing field, FieldNone when the draft is
// complete, and false when there is no draft.
func (s *Store) NextField(sessionID string) (Field, bool) {
	d, ok := s.Draft(sessionID)
	if !ok {
		return "", false
	}
	return d.Next(), true
}

// Active reports whether a draft exists for the session.
func (s *Store) Active(sessionID string) bool {
	_, ok := s.Draft(sessionID)
	return ok
}

// Clear removes the session's draft. Clearing a missing draft is a no-op.
func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Delete(sessionID)
}

// Count returns the number of live drafts.
func (s *Store) Count() int {
	return s.cache.ItemCount()
}
