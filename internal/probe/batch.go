package probe

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"relayping/internal/model"
)

// Prober measures a single address. *Pinger implements it.
type Prober interface {
	Ping(ctx context.Context, addr string, count int, timeout time.Duration, ipv6 bool) (model.RTT, bool, error)
}

// Target is one address to probe. An empty Addr is recorded as unreachable without probing.
type Target struct {
	Addr string
}

// Measurement is the outcome for one target. OK is false for unreachable hosts.
type Measurement struct {
	RTT model.RTT
	OK  bool
}

// Options control a batch run.
type Options struct {
	Count   int
	Timeout time.Duration
	IPv6    bool
	Workers int
}

// Batch probes every target with at most opts.Workers probes in flight.
// Results are indexed like targets. emit, when non-nil, is called from the
// calling goroutine in target order as soon as each prefix completes.
// A probe that cannot be started stops the batch and its error is returned;
// unreachable hosts never do.
func Batch(ctx context.Context, p Prober, targets []Target, opts Options, emit func(i int, m Measurement)) ([]Measurement, error) {
	n := len(targets)
	results := make([]Measurement, n)
	if n == 0 {
		return results, nil
	}
	if opts.Count < 1 {
		opts.Count = 1
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	failed := make([]bool, n)
	done := make(chan int, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	go func() {
		for i := range targets {
			i := i
			g.Go(func() error {
				defer func() { done <- i }()
				if gctx.Err() != nil {
					failed[i] = true
					return nil
				}
				addr := targets[i].Addr
				if addr == "" {
					return nil
				}
				rtt, ok, err := p.Ping(gctx, addr, opts.Count, opts.Timeout, opts.IPv6)
				if err != nil {
					failed[i] = true
					return err
				}
				results[i] = Measurement{RTT: rtt, OK: ok}
				return nil
			})
		}
	}()

	ready := make([]bool, n)
	next := 0
	stopped := false
	for k := 0; k < n; k++ {
		ready[<-done] = true
		for next < n && ready[next] {
			if failed[next] {
				stopped = true
			}
			if !stopped && emit != nil {
				emit(next, results[next])
			}
			next++
		}
	}

	// Every g.Go call has returned by now, so Wait does not race with Go.
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}
