package metrics

import (
	"math"
	"sort"

	"relayping/internal/selection"
)

// Summary is a latency snapshot over the reachable candidates of one run.
type Summary struct {
	Count    int
	AvgRTTMs float64
	P95RTTMs float64
	MinRTTMs float64
	MaxRTTMs float64
}

// Summarize computes statistics over average RTTs. Unreachable candidates are ignored.
func Summarize(cands []selection.Candidate) Summary {
	values := make([]float64, 0, len(cands))
	for _, c := range cands {
		if c.Reachable() {
			values = append(values, c.Latency())
		}
	}
	if len(values) == 0 {
		return Summary{Count: 0}
	}

	var sum float64
	minRTT := math.MaxFloat64
	maxRTT := 0.0
	for _, v := range values {
		sum += v
		if v < minRTT {
			minRTT = v
		}
		if v > maxRTT {
			maxRTT = v
		}
	}

	sort.Float64s(values)
	return Summary{
		Count:    len(values),
		AvgRTTMs: sum / float64(len(values)),
		P95RTTMs: percentile(values, 0.95),
		MinRTTMs: minRTT,
		MaxRTTMs: maxRTT,
	}
}

func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	if p <= 0 {
		return values[0]
	}
	if p >= 1 {
		return values[len(values)-1]
	}
	idx := int(math.Ceil(p*float64(len(values)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(values) {
		idx = len(values) - 1
	}
	return values[idx]
}
