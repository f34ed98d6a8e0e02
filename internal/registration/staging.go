// File: internal/registration/staging.go
package registration

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// Staging holds the eagerly uploaded document URLs of each session.
// It is process-local: a restart loses staged URLs the way a page reload would.
type Staging struct {
	mu    sync.Mutex
	slots *cache.Cache
}

// NewStaging keeps a session's slots for ttl after its last change. ttl <= 0 keeps them forever.
func NewStaging(ttl time.Duration) *Staging {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	return &Staging{slots: cache.New(ttl, 10*time.Minute)}
}

// Get returns a copy of the session's staged URLs.
func (s *Staging) Get(sid string) DocumentURLs {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyOf(sid)
}

// Set stores url in the slot for dt, replacing whatever was there.
func (s *Staging) Set(sid string, dt DocumentType, url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	urls := s.copyOf(sid)
	urls[dt] = url
	s.slots.SetDefault(sid, urls)
}

// Clear empties the slot for dt.
func (s *Staging) Clear(sid string, dt DocumentType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	urls := s.copyOf(sid)
	if _, ok := urls[dt]; !ok {
		return
	}
	delete(urls, dt)
	s.slots.SetDefault(sid, urls)
}

// Reset drops every slot of the session.
func (s *Staging) Reset(sid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots.Delete(sid)
}

func (s *Staging) copyOf(sid string) DocumentURLs {
	out := DocumentURLs{}
	if v, found := s.slots.Get(sid); found {
		for dt, url := range v.(DocumentURLs) {
			out[dt] = url
		}
	}
	return out
}
