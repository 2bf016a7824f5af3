package display

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"relayping/internal/model"
	"relayping/internal/selection"
)

func TestTable_Render(t *testing.T) {
	t.Parallel()

	cands := []selection.Candidate{
		{Relay: model.Relay{"hostname": "se-got-wg-001", "owned": true}, RTT: &model.RTT{Avg: 12.5}},
		{Relay: model.Relay{"hostname": "no-osl-wg-1"}},
	}
	var buf bytes.Buffer
	NewTable(&buf, []model.Attribute{model.Hostname, model.RoundTripTime, model.Owned}, cands).Render(cands)

	want := strings.Join([]string{
		"┌───────────────┬────────────┬───────┐",
		"│ se-got-wg-001 │ 12.500ms   │ Owned │",
		"│ no-osl-wg-1   │ error      │ error │",
		"└───────────────┴────────────┴───────┘",
		"",
	}, "\n")
	require.Equal(t, want, buf.String())
}

func TestTable_NoAttributesPrintsNothing(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	cands := []selection.Candidate{{Relay: model.Relay{"hostname": "a"}}}
	NewTable(&buf, nil, cands).Render(cands)
	require.Empty(t, buf.String())
}
