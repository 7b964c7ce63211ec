package memory

import (
	"time"

	"ereader-be/pkg/reader"

	"github.com/patrickmn/go-cache"
)

// SessionRegistry holds the live reading sessions. Sessions idle for an
// hour are evicted and shut down so abandoned readers do not leak their
// event loops.
type SessionRegistry struct {
	cache *cache.Cache
}

func NewSessionRegistry() *SessionRegistry {
	// Default expiration of 1 hour, purge sweep every 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	c.OnEvicted(func(_ string, v interface{}) {
		if s, ok := v.(*reader.Session); ok {
			s.Close()
		}
	})
	return &SessionRegistry{
		cache: c,
	}
}

// Save stores the session and refreshes its idle expiry.
func (r *SessionRegistry) Save(sessionID string, s *reader.Session) {
	r.cache.Set(sessionID, s, cache.DefaultExpiration)
}

// Get returns the live session for the id.
func (r *SessionRegistry) Get(sessionID string) (*reader.Session, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*reader.Session), true
	}
	return nil, false
}

// Touch refreshes the idle expiry for an active session.
func (r *SessionRegistry) Touch(sessionID string) {
	if s, found := r.Get(sessionID); found {
		r.Save(sessionID, s)
	}
}

// Delete evicts and closes the session.
func (r *SessionRegistry) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}
