package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"go.uber.org/zap"

	"relayping/internal/addrutil"
	"relayping/internal/api"
	"relayping/internal/config"
	"relayping/internal/directory"
	"relayping/internal/display"
	"relayping/internal/execx"
	"relayping/internal/filter"
	"relayping/internal/logging"
	"relayping/internal/metrics"
	"relayping/internal/model"
	"relayping/internal/mullvad"
	"relayping/internal/probe"
	"relayping/internal/selection"
	"relayping/internal/stunutil"
)

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	p, err := resolve(opts)
	if err != nil {
		fatal(err)
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		fatal(err)
	}
	log := logging.New(opts.debug)
	defer func() { _ = log.Sync() }()

	ctx, cancel := signalContext()
	defer cancel()

	runner := execx.NewOSRunner(os.Stdout, os.Stderr)
	fetcher := api.NewClient(cfg.DirectoryURL,
		api.WithProxies(cfg.Proxies),
		api.WithTimeout(cfg.HTTPTimeout),
		api.WithLogger(log.Named("api")),
	)

	a := &app{
		out:     os.Stdout,
		dir:     directory.NewService(cfg.CachePath, cfg.MaxAge, fetcher, log.Named("directory")),
		prober:  probe.NewPinger(runner, probe.PlatformFor(runtime.GOOS), log.Named("probe")),
		changer: mullvad.NewChanger(runner),
		egress: func(ctx context.Context) (stunutil.Egress, error) {
			return stunutil.Check(ctx, cfg.STUNServers, 5*time.Second)
		},
		intn: rand.IntN,
		now:  time.Now,
		log:  log,
	}
	if err := a.run(ctx, cfg, opts, p); err != nil {
		fatal(err)
	}
}

type relaySource interface {
	Get(ctx context.Context) ([]model.Relay, directory.Source, error)
}

type relayChanger interface {
	SetRelay(ctx context.Context, hostname string) error
}

// app carries the collaborators of one run so tests can replace them.
type app struct {
	out     io.Writer
	dir     relaySource
	prober  probe.Prober
	changer relayChanger
	egress  func(ctx context.Context) (stunutil.Egress, error)
	intn    func(n int) int
	now     func() time.Time
	log     *zap.Logger
}

func (a *app) run(ctx context.Context, cfg config.Config, opts options, p plan) error {
	if opts.csvPath != "" {
		cfg.CSVPath = opts.csvPath
	}
	if opts.jobs > 0 {
		cfg.ProbeWorkers = opts.jobs
	}

	all, src, err := a.dir.Get(ctx)
	if err != nil {
		return err
	}
	if src == directory.SourceRemote {
		fmt.Fprintf(a.out, "Fetched %d relays\n\n", len(all))
	}

	cands := selection.Candidates(filter.Apply(p.accept, all))
	if len(cands) == 0 {
		return selection.ErrNoCandidates
	}

	table := display.NewTable(a.out, p.attrs, cands)
	live := !opts.quiet && !p.sorted

	if live {
		table.Top()
	}
	if p.probe {
		timeout := p.timeout
		if timeout == 0 {
			timeout = cfg.PingTimeout
		}
		targets := make([]probe.Target, len(cands))
		for i, c := range cands {
			addr, ok := addrutil.ProbeTarget(c.Relay, opts.ipv6)
			if !ok {
				a.log.Debug("relay has no usable address", zap.String("hostname", c.Hostname()))
			}
			targets[i] = probe.Target{Addr: addr}
		}

		ms, err := probe.Batch(ctx, a.prober, targets, probe.Options{
			Count:   1,
			Timeout: timeout,
			IPv6:    opts.ipv6,
			Workers: cfg.ProbeWorkers,
		}, func(i int, m probe.Measurement) {
			if live {
				table.Row(selection.Merge(cands[i:i+1], []probe.Measurement{m})[0])
			}
		})
		if err != nil {
			return err
		}
		cands = selection.Merge(cands, ms)
	} else if live {
		for _, c := range cands {
			table.Row(c)
		}
	}
	if live {
		table.Bottom()
		fmt.Fprintln(a.out)
	}

	reachable, _ := selection.Partition(cands)

	if p.sorted {
		table.Render(selection.Ranked(cands, p.order))
		fmt.Fprintln(a.out)
	}

	if p.probe {
		if cfg.CSVPath != "" {
			if err := metrics.AppendCSV(cfg.CSVPath, metrics.Samples(a.now(), cands, opts.ipv6)); err != nil {
				a.log.Warn("append results failed", zap.String("path", cfg.CSVPath), zap.Error(err))
			}
		}

		lowest, highest, err := selection.Extremes(reachable)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Highest latency host: %s (%.3fms)\n", highest.Hostname(), highest.Latency())
		fmt.Fprintf(a.out, "Lowest latency host: %s (%.3fms)\n", lowest.Hostname(), lowest.Latency())

		s := metrics.Summarize(cands)
		fmt.Fprintf(a.out, "Reachable %d/%d, avg %.3fms, p95 %.3fms\n", s.Count, len(cands), s.AvgRTTMs, s.P95RTTMs)
	}

	switch {
	case opts.use:
		fmt.Fprintln(a.out, "\nSelecting the lowest latency server...")
		best, err := selection.Best(reachable)
		if err != nil {
			return err
		}
		if err := a.changer.SetRelay(ctx, best.Hostname()); err != nil {
			return err
		}
	case opts.random:
		fmt.Fprintln(a.out, "\nSelecting a random server...")
		pick, err := selection.Random(selection.Pool(cands, reachable, p.probe), a.intn)
		if err != nil {
			return err
		}
		if err := a.changer.SetRelay(ctx, pick.Hostname()); err != nil {
			return err
		}
	}

	if opts.egress {
		eg, err := a.egress(ctx)
		if err != nil {
			return fmt.Errorf("egress check failed: %w", err)
		}
		fmt.Fprintf(a.out, "Egress address: %s (nat=%s)\n", eg.Addr, eg.NATType)
	}
	return nil
}

func loadConfig(path string) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadOptional(config.DefaultPath())
	}
	if err != nil {
		return config.Config{}, err
	}
	if err := config.FromEnv(&cfg); err != nil {
		return config.Config{}, err
	}
	config.ApplyDefaults(&cfg)
	if err := config.Validate(cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signals
		cancel()
	}()
	return ctx, cancel
}

func fatal(err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
