// Package selection ranks probed relays and picks the one to switch to.
package selection

import (
	"errors"
	"sort"

	"relayping/internal/model"
	"relayping/internal/probe"
)

var (
	ErrNoCandidates = errors.New("no relays match the specified conditions")
	ErrNoReachable  = errors.New("no relay could be reached")
	ErrEmptyPool    = errors.New("no reachable relays available for random selection")
)

// Order is the latency sort direction.
type Order int

const (
	Ascending Order = iota
	Descending
)

// Candidate is a filtered relay and, once probed, its measured RTT.
// RTT is nil when the relay was not probed or did not answer.
type Candidate struct {
	Relay model.Relay
	RTT   *model.RTT
}

func (c Candidate) Hostname() string { return c.Relay.Hostname() }

// Reachable reports whether the candidate has a measurement.
func (c Candidate) Reachable() bool { return c.RTT != nil }

// Latency is the average RTT in milliseconds, or 0 when unreachable.
func (c Candidate) Latency() float64 {
	if c.RTT == nil {
		return 0
	}
	return c.RTT.Avg
}

// Value returns an attribute for display, serving RTT from the measurement.
func (c Candidate) Value(attr model.Attribute) (any, bool) {
	if attr == model.RoundTripTime {
		if c.RTT == nil {
			return nil, true
		}
		return c.RTT.Avg, true
	}
	return c.Relay.Get(attr)
}

// Candidates wraps relays that have not been probed.
func Candidates(relays []model.Relay) []Candidate {
	out := make([]Candidate, len(relays))
	for i, r := range relays {
		out[i] = Candidate{Relay: r}
	}
	return out
}

// Merge attaches measurements to the candidates at the same index.
func Merge(cands []Candidate, ms []probe.Measurement) []Candidate {
	out := make([]Candidate, len(cands))
	copy(out, cands)
	for i := range out {
		if i >= len(ms) || !ms[i].OK {
			out[i].RTT = nil
			continue
		}
		rtt := ms[i].RTT
		out[i].RTT = &rtt
	}
	return out
}

// Partition splits candidates by reachability, preserving order.
func Partition(cands []Candidate) (reachable, unreachable []Candidate) {
	for _, c := range cands {
		if c.Reachable() {
			reachable = append(reachable, c)
		} else {
			unreachable = append(unreachable, c)
		}
	}
	return reachable, unreachable
}

// Sort returns a copy ordered by average latency. Ties keep input order.
func Sort(cands []Candidate, order Order) []Candidate {
	out := make([]Candidate, len(cands))
	copy(out, cands)
	sort.SliceStable(out, func(i, j int) bool {
		if order == Descending {
			return out[i].Latency() > out[j].Latency()
		}
		return out[i].Latency() < out[j].Latency()
	})
	return out
}

// Ranked orders every candidate for the final table.
// Unreachable relays rank as the slowest: last when ascending, first when descending.
func Ranked(cands []Candidate, order Order) []Candidate {
	reachable, unreachable := Partition(cands)
	sorted := Sort(reachable, order)
	out := make([]Candidate, 0, len(cands))
	if order == Descending {
		out = append(out, unreachable...)
		return append(out, sorted...)
	}
	out = append(out, sorted...)
	return append(out, unreachable...)
}

// Extremes returns the lowest and highest latency reachable candidates.
// The first one wins on ties.
func Extremes(reachable []Candidate) (lowest, highest Candidate, err error) {
	if len(reachable) == 0 {
		return Candidate{}, Candidate{}, ErrNoReachable
	}
	lowest, highest = reachable[0], reachable[0]
	for _, c := range reachable[1:] {
		if c.Latency() < lowest.Latency() {
			lowest = c
		}
		if c.Latency() > highest.Latency() {
			highest = c
		}
	}
	return lowest, highest, nil
}

// Best returns the lowest latency candidate.
func Best(reachable []Candidate) (Candidate, error) {
	lowest, _, err := Extremes(reachable)
	return lowest, err
}

// Pool is the random selection pool: reachable relays when probing ran, all candidates otherwise.
func Pool(all, reachable []Candidate, probed bool) []Candidate {
	if probed {
		return reachable
	}
	return all
}

// Random picks uniformly from pool using intn, which must behave like rand.IntN.
func Random(pool []Candidate, intn func(n int) int) (Candidate, error) {
	if len(pool) == 0 {
		return Candidate{}, ErrEmptyPool
	}
	return pool[intn(len(pool))], nil
}
