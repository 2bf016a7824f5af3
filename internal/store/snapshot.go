package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"relayping/internal/model"
)

// ErrMalformed is returned when the cache file is not a timestamped relay list.
var ErrMalformed = errors.New("malformed relay snapshot")

// Snapshot is the relay directory as fetched at Timestamp.
//
// On disk it is one JSON array: the timestamp in seconds since the epoch
// followed by the relay objects exactly as the directory served them.
type Snapshot struct {
	Timestamp time.Time
	Relays    []model.Relay
}

// Age returns how old the snapshot is at now.
func (s Snapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.Timestamp)
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, err
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(items) == 0 {
		return Snapshot{}, fmt.Errorf("%w: missing timestamp", ErrMalformed)
	}

	var ts float64
	if err := json.Unmarshal(items[0], &ts); err != nil {
		return Snapshot{}, fmt.Errorf("%w: timestamp is not a number", ErrMalformed)
	}

	relays := make([]model.Relay, 0, len(items)-1)
	for i, raw := range items[1:] {
		var r model.Relay
		if err := json.Unmarshal(raw, &r); err != nil || r == nil {
			return Snapshot{}, fmt.Errorf("%w: entry %d is not an object", ErrMalformed, i+1)
		}
		relays = append(relays, r)
	}

	return Snapshot{Timestamp: fromEpoch(ts), Relays: relays}, nil
}

// SaveSnapshot writes a snapshot to disk.
func SaveSnapshot(path string, snap Snapshot) error {
	items := make([]any, 0, len(snap.Relays)+1)
	items = append(items, toEpoch(snap.Timestamp))
	for _, r := range snap.Relays {
		items = append(items, r)
	}
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

func toEpoch(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

func fromEpoch(ts float64) time.Time {
	return time.Unix(0, int64(ts*float64(time.Second)))
}
