package addrutil

import (
	"net/netip"
	"strings"

	"relayping/internal/model"
)

// ProbeTarget returns the address ping should be pointed at for a relay.
//
// The directory publishes bare addresses, but some mirrors bracket IPv6 or
// append a zone. The result is always a bare literal of the requested family.
func ProbeTarget(r model.Relay, ipv6 bool) (string, bool) {
	raw := strings.Trim(strings.TrimSpace(r.Address(ipv6)), "[]")
	if raw == "" {
		return "", false
	}

	addr, err := netip.ParseAddr(raw)
	if err != nil {
		return "", false
	}
	addr = addr.WithZone("")
	if ipv6 != (addr.Is6() && !addr.Is4In6()) {
		return "", false
	}
	return addr.String(), true
}
