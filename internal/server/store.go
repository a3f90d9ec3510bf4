// SPDX-License-Identifier: EPL-2.0

package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ik5/audclean/pipeline"
)

type storedArtifact struct {
	artifact *pipeline.Artifact
	expires  time.Time
}

// ArtifactStore keeps published artifacts in memory until they expire or are
// revoked. Publishing a new artifact revokes the previous one.
type ArtifactStore struct {
	ttl   time.Duration
	now   func() time.Time
	route string

	mu      sync.Mutex
	items   map[string]storedArtifact
	current string
}

// NewArtifactStore serves links under route, e.g. "/artifacts/".
func NewArtifactStore(ttl time.Duration, route string) *ArtifactStore {
	return &ArtifactStore{
		ttl:   ttl,
		now:   time.Now,
		route: route,
		items: make(map[string]storedArtifact),
	}
}

func (s *ArtifactStore) Publish(a *pipeline.Artifact) (pipeline.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, s.current)
	id := uuid.NewString()
	s.items[id] = storedArtifact{artifact: a, expires: s.now().Add(s.ttl)}
	s.current = id
	return s.link(id, a), nil
}

func (s *ArtifactStore) link(id string, a *pipeline.Artifact) pipeline.Link {
	return pipeline.Link{URL: s.route + id, Filename: a.Filename, MIMEType: a.MIMEType}
}

// Get returns a live artifact.
func (s *ArtifactStore) Get(id string) (*pipeline.Artifact, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return nil, false
	}
	if !s.now().Before(item.expires) {
		delete(s.items, id)
		return nil, false
	}
	return item.artifact, true
}

// Current is the link of the most recently published live artifact.
func (s *ArtifactStore) Current() (pipeline.Link, bool) {
	s.mu.Lock()
	id := s.current
	s.mu.Unlock()

	a, ok := s.Get(id)
	if !ok {
		return pipeline.Link{}, false
	}
	return s.link(id, a), true
}

// Revoke drops an artifact. It reports whether one was removed.
func (s *ArtifactStore) Revoke(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return false
	}
	delete(s.items, id)
	if s.current == id {
		s.current = ""
	}
	return true
}

// Sweep drops expired artifacts and returns how many went.
func (s *ArtifactStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	n := 0
	for id, item := range s.items {
		if !now.Before(item.expires) {
			delete(s.items, id)
			n++
		}
	}
	return n
}

func (s *ArtifactStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
