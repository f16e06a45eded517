package memory

import (
	"sync"
	"time"

	"cybot-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// SessionRepository keeps chat sessions in a TTL cache. Every access
// refreshes the entry's expiration.
type SessionRepository struct {
	mu     sync.Mutex
	cache  *cache.Cache
	window int
	now    func() time.Time
}

func NewSessionRepository(ttl, cleanupInterval time.Duration, window int) *SessionRepository {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	if window <= 0 {
		window = 3
	}
	return &SessionRepository{
		cache:  cache.New(ttl, cleanupInterval),
		window: window,
		now:    time.Now,
	}
}

func (r *SessionRepository) Create(id, greeting string) store.Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	s := &store.Session{ID: id, Greeting: greeting, CreatedAt: now, UpdatedAt: now}
	r.cache.Set(id, s, cache.DefaultExpiration)
	return s.Clone()
}

func (r *SessionRepository) Get(id string) (store.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.load(id)
	if !ok {
		return store.Session{}, false
	}
	return s.Clone(), true
}

func (r *SessionRepository) AppendTurn(id string, turn store.Turn) error {
	return r.update(id, func(s *store.Session) {
		if turn.At.IsZero() {
			turn.At = r.now()
		}
		s.Turns = append(s.Turns, turn)
	})
}

func (r *SessionRepository) SetRefinement(id string, ref store.Refinement) error {
	return r.update(id, func(s *store.Session) {
		s.Refinement = &ref
	})
}

// Reset clears transcript, memory and refinement but keeps the session.
func (r *SessionRepository) Reset(id, greeting string) error {
	return r.update(id, func(s *store.Session) {
		s.Greeting = greeting
		s.Turns = nil
		s.Memory = nil
		s.Refinement = nil
	})
}

// OnEvicted registers fn to run after a session is deleted or expires.
// Expiry is only noticed by the cleanup janitor, so a zero cleanup
// interval means fn only sees explicit deletes.
func (r *SessionRepository) OnEvicted(fn func(id string)) {
	r.cache.OnEvicted(func(id string, _ interface{}) { fn(id) })
}

func (r *SessionRepository) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Delete(id)
}

func (r *SessionRepository) Count() int {
	return r.cache.ItemCount()
}

// Window returns the last exchanges kept for the document model, oldest first.
func (r *SessionRepository) Window(id string) []store.Exchange {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.load(id)
	if !ok {
		return nil
	}
	return append([]store.Exchange(nil), s.Memory...)
}

// Remember appends an exchange, dropping the oldest beyond the window.
// Unknown sessions are ignored.
func (r *SessionRepository) Remember(id string, ex store.Exchange) {
	_ = r.update(id, func(s *store.Session) {
		s.Memory = append(s.Memory, ex)
		if n := len(s.Memory); n > r.window {
			s.Memory = append([]store.Exchange(nil), s.Memory[n-r.window:]...)
		}
	})
}

func (r *SessionRepository) update(id string, fn func(*store.Session)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.load(id)
	if !ok {
		return store.ErrSessionNotFound
	}
	fn(s)
	s.UpdatedAt = r.now()
	r.cache.Set(id, s, cache.DefaultExpiration)
	return nil
}

func (r *SessionRepository) load(id string) (*store.Session, bool) {
	x, found := r.cache.Get(id)
	if !found {
		return nil, false
	}
	return x.(*store.Session), true
}
