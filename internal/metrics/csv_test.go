package metrics

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"relayping/internal/model"
	"relayping/internal/selection"
)

func TestAppendCSV_WritesHeaderOnce(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	path := filepath.Join(tmp, "history.csv")

	s1 := Sample{Timestamp: time.Unix(1, 0).UTC(), Hostname: "se-got-wg-001", Reachable: true, RTT: model.RTT{Min: 1, Avg: 2, Max: 3}}
	s2 := Sample{Timestamp: time.Unix(2, 0).UTC(), Hostname: "no-osl-wg-001"}

	if err := AppendCSV(path, []Sample{s1}); err != nil {
		t.Fatalf("AppendCSV #1: %v", err)
	}
	if err := AppendCSV(path, []Sample{s2}); err != nil {
		t.Fatalf("AppendCSV #2: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines=%d\n%s", len(lines), string(data))
	}
	if !strings.HasPrefix(lines[0], "timestamp,") {
		t.Fatalf("missing header: %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], ",true,1.000,2.000,3.000") {
		t.Fatalf("reachable row: %q", lines[1])
	}
	if !strings.HasSuffix(lines[2], ",false,,,") {
		t.Fatalf("unreachable row: %q", lines[2])
	}
}

func TestSamples_FromCandidates(t *testing.T) {
	t.Parallel()

	ts := time.Unix(10, 0)
	cands := []selection.Candidate{
		{Relay: model.Relay{"hostname": "a", "country_code": "se", "city_code": "got", "ipv4_addr_in": "1.2.3.4", "ipv6_addr_in": "::1"}, RTT: &model.RTT{Avg: 4}},
		{Relay: model.Relay{"hostname": "b"}},
	}
	got := Samples(ts, cands, true)
	if len(got) != 2 {
		t.Fatalf("len=%d", len(got))
	}
	if got[0].Address != "::1" || !got[0].Reachable || got[0].RTT.Avg != 4 || got[0].City != "got" {
		t.Fatalf("sample[0]=%+v", got[0])
	}
	if got[1].Reachable || got[1].Hostname != "b" {
		t.Fatalf("sample[1]=%+v", got[1])
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, got); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if n := strings.Count(buf.String(), "\n"); n != 3 {
		t.Fatalf("rows=%d\n%s", n, buf.String())
	}
}
