// SPDX-License-Identifier: EPL-2.0

package server

import (
	"strings"
	"testing"
	"time"

	"github.com/ik5/audclean/pipeline"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore(ttl time.Duration) (*ArtifactStore, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	s := NewArtifactStore(ttl, artifactRoute)
	s.now = clock.Now
	return s, clock
}

func TestArtifactStore_PublishAndGet(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(time.Minute)
	art := &pipeline.Artifact{Data: []byte("x"), Filename: "audio_clean_1.mp3", MIMEType: "audio/mpeg"}

	link, err := s.Publish(art)
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if !strings.HasPrefix(link.URL, artifactRoute) || link.Filename != art.Filename || link.MIMEType != art.MIMEType {
		t.Errorf("Link = %+v", link)
	}

	got, ok := s.Get(strings.TrimPrefix(link.URL, artifactRoute))
	if !ok || got != art {
		t.Errorf("Get() = %v, %v", got, ok)
	}
	if cur, ok := s.Current(); !ok || cur != link {
		t.Errorf("Current() = %+v, %v", cur, ok)
	}
}

func TestArtifactStore_PublishRevokesPrevious(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(time.Minute)
	first, _ := s.Publish(&pipeline.Artifact{Filename: "a.wav"})
	second, _ := s.Publish(&pipeline.Artifact{Filename: "b.wav"})

	if first.URL == second.URL {
		t.Fatal("links should be unique")
	}
	if _, ok := s.Get(strings.TrimPrefix(first.URL, artifactRoute)); ok {
		t.Error("previous artifact still served")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestArtifactStore_Expiry(t *testing.T) {
	t.Parallel()

	s, clock := newTestStore(time.Minute)
	link, _ := s.Publish(&pipeline.Artifact{Filename: "a.wav"})
	id := strings.TrimPrefix(link.URL, artifactRoute)

	clock.Advance(59 * time.Second)
	if _, ok := s.Get(id); !ok {
		t.Fatal("artifact expired early")
	}

	clock.Advance(time.Second)
	if n := s.Sweep(); n != 1 {
		t.Errorf("Sweep() = %d, want 1", n)
	}
	if _, ok := s.Get(id); ok {
		t.Error("expired artifact still served")
	}
	if _, ok := s.Current(); ok {
		t.Error("Current() returned an expired artifact")
	}
}

func TestArtifactStore_Revoke(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(time.Minute)
	link, _ := s.Publish(&pipeline.Artifact{Filename: "a.wav"})
	id := strings.TrimPrefix(link.URL, artifactRoute)

	if !s.Revoke(id) {
		t.Fatal("Revoke() = false for a live artifact")
	}
	if s.Revoke(id) {
		t.Error("second Revoke() = true")
	}
	if _, ok := s.Current(); ok {
		t.Error("Current() after Revoke")
	}
}
