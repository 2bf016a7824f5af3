package addrutil

import (
	"testing"

	"relayping/internal/model"
)

func TestProbeTarget_IPv4(t *testing.T) {
	addr, ok := ProbeTarget(model.Relay{"ipv4_addr_in": " 185.213.154.66 "}, false)
	if !ok {
		t.Fatal("expected ok")
	}
	if addr != "185.213.154.66" {
		t.Fatalf("addr=%q", addr)
	}
}

func TestProbeTarget_BracketedIPv6(t *testing.T) {
	addr, ok := ProbeTarget(model.Relay{"ipv6_addr_in": "[2a03:1b20:5:f011::a01f]"}, true)
	if !ok {
		t.Fatal("expected ok")
	}
	if addr != "2a03:1b20:5:f011::a01f" {
		t.Fatalf("addr=%q", addr)
	}
}

func TestProbeTarget_RejectsMissingOrWrongFamily(t *testing.T) {
	cases := []struct {
		relay model.Relay
		ipv6  bool
	}{
		{model.Relay{"ipv6_addr_in": nil}, true},
		{model.Relay{}, false},
		{model.Relay{"ipv4_addr_in": "2a03:1b20::1"}, false},
		{model.Relay{"ipv6_addr_in": "185.213.154.66"}, true},
		{model.Relay{"ipv4_addr_in": "not-an-ip"}, false},
	}
	for _, tc := range cases {
		if addr, ok := ProbeTarget(tc.relay, tc.ipv6); ok {
			t.Fatalf("ProbeTarget(%v, %v)=%q, expected rejection", tc.relay, tc.ipv6, addr)
		}
	}
}
