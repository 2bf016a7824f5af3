package probe

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"relayping/internal/execx"
	"relayping/internal/model"
)

// DefaultTimeout bounds a single echo.
const DefaultTimeout = 10 * time.Second

// Pinger invokes the ping binary for one address at a time.
type Pinger struct {
	Runner   execx.Runner
	Platform Platform
	Binary   string
	Log      *zap.Logger
}

func NewPinger(runner execx.Runner, platform Platform, log *zap.Logger) *Pinger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pinger{Runner: runner, Platform: platform, Binary: "ping", Log: log}
}

// Args builds the platform argv. Unix takes the timeout in seconds, Windows in milliseconds.
func (p *Pinger) Args(addr string, count int, timeout time.Duration, ipv6 bool) []string {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	var args []string
	switch p.Platform {
	case Windows:
		// -w takes whole milliseconds; round up so a short timeout never becomes zero.
		ms := (timeout + time.Millisecond - 1) / time.Millisecond
		args = []string{addr, "-n", strconv.Itoa(count), "-w", strconv.FormatInt(int64(ms), 10)}
	default:
		args = []string{addr, "-nqc", strconv.Itoa(count), "-W", strconv.FormatFloat(timeout.Seconds(), 'f', -1, 64)}
	}
	if ipv6 {
		args = append(args, "-6")
	}
	return args
}

// Ping returns ok=false for an unreachable host or unparsable output.
// An error means ping could not be run at all.
func (p *Pinger) Ping(ctx context.Context, addr string, count int, timeout time.Duration, ipv6 bool) (model.RTT, bool, error) {
	res, err := p.Runner.Capture(ctx, p.Binary, p.Args(addr, count, timeout, ipv6)...)
	if err != nil {
		return model.RTT{}, false, fmt.Errorf("the `%s` program could not be called: %w", p.Binary, err)
	}
	if res.ExitCode != 0 {
		p.Log.Debug("host unreachable", zap.String("addr", addr), zap.Int("exit", res.ExitCode))
		return model.RTT{}, false, nil
	}
	rtt, ok := Parse(res.Stdout, p.Platform)
	if !ok {
		p.Log.Debug("unparsable ping output", zap.String("addr", addr), zap.Stringer("platform", p.Platform))
		return rtt, false, nil
	}
	p.Log.Debug("host answered", zap.String("addr", addr), zap.Stringer("rtt", rtt))
	return rtt, true, nil
}
