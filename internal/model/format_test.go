package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	t.Parallel()

	attrs, err := ParseFormat([]string{"h", "l", "Cf", "b"})
	require.NoError(t, err)
	require.Equal(t, []Attribute{Hostname, RoundTripTime, CityName, Bandwidth}, attrs)

	_, err = ParseFormat([]string{"h", "x"})
	require.True(t, errors.Is(err, ErrUnknownAttribute))
	require.Contains(t, err.Error(), "x")
}

func TestWithout_RemovesEveryOccurrence(t *testing.T) {
	t.Parallel()

	got := Without([]Attribute{RoundTripTime, Hostname, RoundTripTime}, RoundTripTime)
	require.Equal(t, []Attribute{Hostname}, got)
	require.False(t, Contains(got, RoundTripTime))
}

func TestFormatValue(t *testing.T) {
	t.Parallel()

	cases := []struct {
		attr Attribute
		in   any
		want string
	}{
		{RoundTripTime, 12.34567, "12.346ms"},
		{Owned, true, "Owned"},
		{Owned, false, "Rented"},
		{RAMBoot, true, "RAM"},
		{RAMBoot, false, "Disk"},
		{Bandwidth, float64(10), "10 Gbps"},
		{Type, "wireguard", "WireGuard"},
		{Type, "openvpn", "OpenVPN"},
		{Type, "bridge", "Bridge"},
		{Type, "carrier-pigeon", "Unknown"},
		{Hostname, "se-got-wg-001", "se-got-wg-001"},
		{IPv6, nil, MissingValue},
	}
	for _, tc := range cases {
		if got := FormatValue(tc.attr, tc.in); got != tc.want {
			t.Fatalf("FormatValue(%s, %v)=%q want %q", tc.attr, tc.in, got, tc.want)
		}
	}
}

func TestRelayAccessors(t *testing.T) {
	t.Parallel()

	r := Relay{"hostname": "se-sto-wg-001", "ipv4_addr_in": "1.2.3.4", "ipv6_addr_in": nil}
	require.Equal(t, "se-sto-wg-001", r.Hostname())
	require.Equal(t, "1.2.3.4", r.Address(false))
	require.Equal(t, "", r.Address(true))

	_, ok := r.Get(Provider)
	require.False(t, ok)
}
