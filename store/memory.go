package store

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Memory is a bounded in-memory tier for hot artifacts. It is meant to sit
// in front of persistent tiers; eviction is silent because the artifact can
// always be re-fetched from below.
type Memory struct {
	cache *lru.Cache[string, *Artifact]
}

// NewMemory creates an in-memory tier holding at most size artifacts.
func NewMemory(size int) (*Memory, error) {
	cache, err := lru.New[string, *Artifact](size)
	if err != nil {
		return nil, err
	}
	return &Memory{cache: cache}, nil
}

func (s *Memory) Name() string {
	return "memory"
}

func (s *Memory) Has(ctx context.Context, fingerprint string) (bool, error) {
	return s.cache.Contains(fingerprint), nil
}

func (s *Memory) Get(ctx context.Context, fingerprint string) (*Artifact, error) {
	artifact, found := s.cache.Get(fingerprint)
	if !found {
		return nil, ErrNotFound
	}
	return artifact, nil
}

func (s *Memory) Put(ctx context.Context, artifact *Artifact) error {
	s.cache.Add(artifact.Meta.Fingerprint, artifact)
	return nil
}

func (s *Memory) List(ctx context.Context) ([]Entry, error) {
	keys := s.cache.Keys()
	entries := make([]Entry, 0, len(keys))
	for _, key := range keys {
		artifact, found := s.cache.Get(key)
		if !found {
			continue
		}
		entries = append(entries, Entry{
			Meta: artifact.Meta,
			Tier: s.Name(),
		})
	}
	return entries, nil
}
