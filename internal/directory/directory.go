// Package directory serves the relay directory from a local snapshot,
// refreshing it from the remote endpoint when the snapshot is missing,
// unreadable or stale.
package directory

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"relayping/internal/model"
	"relayping/internal/store"
)

// DefaultMaxAge is the staleness threshold of a snapshot.
const DefaultMaxAge = 12 * time.Hour

// Fetcher retrieves the full directory. *api.Client implements it.
type Fetcher interface {
	Relays(ctx context.Context) ([]model.Relay, error)
}

// Source tells where Get found the relays.
type Source int

const (
	SourceCache Source = iota
	SourceRemote
)

func (s Source) String() string {
	if s == SourceRemote {
		return "remote"
	}
	return "cache"
}

// Service decides between the cached snapshot and a fetch.
type Service struct {
	Path    string
	MaxAge  time.Duration
	Fetcher Fetcher
	Now     func() time.Time
	Log     *zap.Logger
}

func NewService(path string, maxAge time.Duration, fetcher Fetcher, log *zap.Logger) *Service {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{Path: path, MaxAge: maxAge, Fetcher: fetcher, Now: time.Now, Log: log}
}

// Get returns the directory. Cache problems are never returned; they fall
// through to a fetch. Fetch and persistence failures are returned.
func (s *Service) Get(ctx context.Context) ([]model.Relay, Source, error) {
	relays, err := s.Load()
	if err == nil {
		return relays, SourceCache, nil
	}
	s.Log.Debug("relay snapshot unusable, fetching", zap.String("path", s.Path), zap.Error(err))

	relays, err = s.Fetch(ctx)
	if err != nil {
		return nil, SourceRemote, err
	}
	return relays, SourceRemote, nil
}

// Load returns the cached relays when the snapshot exists and is fresh.
func (s *Service) Load() ([]model.Relay, error) {
	snap, err := store.LoadSnapshot(s.Path)
	if err != nil {
		return nil, err
	}
	if age := snap.Age(s.Now()); age >= s.MaxAge {
		return nil, fmt.Errorf("relay snapshot is outdated (%s old)", age.Truncate(time.Second))
	}
	return snap.Relays, nil
}

// Fetch downloads the directory and persists it with the current time.
func (s *Service) Fetch(ctx context.Context) ([]model.Relay, error) {
	relays, err := s.Fetcher.Relays(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not fetch relays: %w", err)
	}

	snap := store.Snapshot{Timestamp: s.Now(), Relays: relays}
	if err := store.SaveSnapshot(s.Path, snap); err != nil {
		return nil, fmt.Errorf("could not write relays to file: %w", err)
	}
	s.Log.Debug("relay snapshot saved", zap.String("path", s.Path), zap.Int("relays", len(relays)))
	return relays, nil
}
