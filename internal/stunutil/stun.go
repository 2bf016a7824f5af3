package stunutil

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/pion/stun/v3"
)

const (
	NATTypeUnknown          = "unknown"
	NATTypeSymmetric        = "symmetric"
	NATTypeConeOrRestricted = "cone_or_restricted"
)

// Egress is the public address this host is seen from.
// After a relay change it should be the relay's exit address.
type Egress struct {
	Addr    string
	NATType string
}

// Binder performs one STUN binding request against server.
type Binder func(ctx context.Context, server string) (string, error)

// Check asks every server for the mapped address and classifies the NAT.
// One successful server is enough; the last error is returned otherwise.
func Check(ctx context.Context, servers []string, timeout time.Duration) (Egress, error) {
	return check(ctx, servers, timeout, bind)
}

func check(ctx context.Context, servers []string, timeout time.Duration, b Binder) (Egress, error) {
	if len(servers) == 0 {
		return Egress{NATType: NATTypeUnknown}, errors.New("no STUN servers configured")
	}

	addrs := make([]string, 0, len(servers))
	var lastErr error
	for _, server := range servers {
		sctx := ctx
		cancel := context.CancelFunc(func() {})
		if timeout > 0 {
			sctx, cancel = context.WithTimeout(ctx, timeout)
		}
		addr, err := b(sctx, server)
		cancel()
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", server, err)
			continue
		}
		addrs = append(addrs, addr)
	}

	if len(addrs) == 0 {
		return Egress{NATType: NATTypeUnknown}, lastErr
	}
	return Egress{Addr: addrs[0], NATType: Classify(addrs)}, nil
}

// Classify infers NAT type by comparing mapped addresses from multiple servers.
func Classify(addrs []string) string {
	if len(addrs) < 2 {
		return NATTypeUnknown
	}
	for _, addr := range addrs[1:] {
		if addr != addrs[0] {
			return NATTypeSymmetric
		}
	}
	return NATTypeConeOrRestricted
}

// bind sends one binding request over UDP and returns the XOR-mapped address.
func bind(ctx context.Context, server string) (string, error) {
	addr := strings.TrimPrefix(strings.TrimSpace(server), "stun:")
	if addr == "" {
		return "", errors.New("empty STUN server")
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, "3478")
	}

	c, err := stun.Dial("udp", addr)
	if err != nil {
		return "", err
	}
	defer c.Close()

	type outcome struct {
		mapped string
		err    error
	}
	// Do may report through the callback and its return value, so leave room for both.
	done := make(chan outcome, 2)
	go func() {
		req := stun.MustBuild(stun.TransactionID, stun.BindingRequest)
		if err := c.Do(req, func(ev stun.Event) {
			if ev.Error != nil {
				done <- outcome{err: ev.Error}
				return
			}
			var xor stun.XORMappedAddress
			if err := xor.GetFrom(ev.Message); err != nil {
				done <- outcome{err: fmt.Errorf("no mapped address: %w", err)}
				return
			}
			done <- outcome{mapped: xor.String()}
		}); err != nil {
			done <- outcome{err: err}
		}
	}()

	select {
	case o := <-done:
		return o.mapped, o.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
