package directory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"relayping/internal/model"
	"relayping/internal/store"
)

type countingFetcher struct {
	relays []model.Relay
	err    error
	calls  int
}

func (f *countingFetcher) Relays(ctx context.Context) ([]model.Relay, error) {
	f.calls++
	return f.relays, f.err
}

func newTestService(t *testing.T, f Fetcher, now time.Time) *Service {
	t.Helper()
	s := NewService(filepath.Join(t.TempDir(), "relays.json"), 0, f, nil)
	s.Now = func() time.Time { return now }
	return s
}

var sample = []model.Relay{
	{"hostname": "se-got-wg-001", "country_code": "se"},
	{"hostname": "no-osl-wg-001", "country_code": "no"},
}

func TestGet_MissingCacheFetchesAndPersists(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	f := &countingFetcher{relays: sample}
	s := newTestService(t, f, now)

	relays, src, err := s.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, SourceRemote, src)
	require.Equal(t, sample, relays)
	require.Equal(t, 1, f.calls)

	snap, err := store.LoadSnapshot(s.Path)
	require.NoError(t, err)
	require.WithinDuration(t, now, snap.Timestamp, time.Millisecond)
	require.Equal(t, sample, snap.Relays)
}

func TestGet_FreshCacheIsReused(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	f := &countingFetcher{relays: []model.Relay{{"hostname": "other"}}}
	s := newTestService(t, f, now)
	require.NoError(t, store.SaveSnapshot(s.Path, store.Snapshot{Timestamp: now.Add(-DefaultMaxAge + time.Second), Relays: sample}))

	relays, src, err := s.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, SourceCache, src)
	require.Equal(t, sample, relays)
	require.Zero(t, f.calls)
}

func TestGet_StaleCacheRefetches(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	fresh := []model.Relay{{"hostname": "fresh"}}
	f := &countingFetcher{relays: fresh}
	s := newTestService(t, f, now)
	// Exactly 43200 seconds old is already stale.
	require.NoError(t, store.SaveSnapshot(s.Path, store.Snapshot{Timestamp: now.Add(-DefaultMaxAge), Relays: sample}))

	relays, src, err := s.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, SourceRemote, src)
	require.Equal(t, fresh, relays)
	require.Equal(t, 1, f.calls)
}

func TestGet_CorruptCacheRefetches(t *testing.T) {
	t.Parallel()

	f := &countingFetcher{relays: sample}
	s := newTestService(t, f, time.Unix(1_700_000_000, 0))
	require.NoError(t, os.WriteFile(s.Path, []byte(`["not a time", {}]`), 0o600))

	_, src, err := s.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, SourceRemote, src)
	require.Equal(t, 1, f.calls)
}

func TestGet_FetchFailureIsReturned(t *testing.T) {
	t.Parallel()

	boom := errors.New("dial tcp: connection refused")
	s := newTestService(t, &countingFetcher{err: boom}, time.Unix(1_700_000_000, 0))

	_, _, err := s.Get(context.Background())
	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), "could not fetch relays")
}

func TestGet_PersistFailureIsReturned(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	s := NewService(filepath.Join(blocker, "relays.json"), 0, &countingFetcher{relays: sample}, nil)
	_, _, err := s.Get(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "could not write relays to file")
}
