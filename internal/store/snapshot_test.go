package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"relayping/internal/model"
)

func TestLoadSnapshot_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadSnapshot(filepath.Join(t.TempDir(), "relays.json"))
	require.True(t, errors.Is(err, os.ErrNotExist))
}

func TestSaveSnapshot_RoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "relays.json")
	ts := time.Unix(1700000000, 250_000_000)
	in := Snapshot{Timestamp: ts, Relays: []model.Relay{
		{"hostname": "se-got-wg-001", "active": true, "network_port_speed": float64(10), "ipv6_addr_in": nil},
		{"hostname": "no-osl-wg-001", "status_messages": []any{}},
	}}
	require.NoError(t, SaveSnapshot(path, in))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	out, err := LoadSnapshot(path)
	require.NoError(t, err)
	require.Equal(t, in.Relays, out.Relays)
	require.WithinDuration(t, ts, out.Timestamp, time.Millisecond)
	require.Equal(t, 2*time.Second, out.Age(ts.Add(2*time.Second)).Round(time.Millisecond))
}

func TestSaveSnapshot_TimestampFirst(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "relays.json")
	require.NoError(t, SaveSnapshot(path, Snapshot{Timestamp: time.Unix(42, 0), Relays: []model.Relay{{"hostname": "a"}}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, `[42,{"hostname":"a"}]`, string(data))
}

func TestLoadSnapshot_Malformed(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"not json":        `{{{`,
		"not an array":    `{"hostname":"a"}`,
		"empty":           `[]`,
		"string stamp":    `["yesterday",{"hostname":"a"}]`,
		"scalar relay":    `[42,"a"]`,
		"null relay":      `[42,null]`,
		"relay not first": `[{"hostname":"a"},42]`,
	}
	for name, body := range cases {
		path := filepath.Join(t.TempDir(), "relays.json")
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
		_, err := LoadSnapshot(path)
		if !errors.Is(err, ErrMalformed) {
			t.Fatalf("%s: err=%v", name, err)
		}
	}
}
