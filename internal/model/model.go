package model

import "fmt"

// Attribute is the directory JSON key of a relay field.
type Attribute string

const (
	Hostname    Attribute = "hostname"
	Type        Attribute = "type"
	Active      Attribute = "active"
	CountryCode Attribute = "country_code"
	CountryName Attribute = "country_name"
	CityCode    Attribute = "city_code"
	CityName    Attribute = "city_name"
	IPv4        Attribute = "ipv4_addr_in"
	IPv6        Attribute = "ipv6_addr_in"
	Provider    Attribute = "provider"
	Bandwidth   Attribute = "network_port_speed"
	Owned       Attribute = "owned"
	RAMBoot     Attribute = "stboot"

	// RoundTripTime is display-only. Measurements live on the candidate, not in the record.
	RoundTripTime Attribute = "round_trip_time"
)

// Relay types as reported by the directory.
const (
	TypeWireGuard = "wireguard"
	TypeOpenVPN   = "openvpn"
	TypeBridge    = "bridge"
)

// Relay is one directory entry, kept as decoded so unknown fields survive the cache.
type Relay map[string]any

// Get returns the raw value of attr and whether the key is present.
func (r Relay) Get(attr Attribute) (any, bool) {
	v, ok := r[string(attr)]
	return v, ok
}

// Text returns attr as a string, or "" when missing or not a string.
func (r Relay) Text(attr Attribute) string {
	v, ok := r[string(attr)]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func (r Relay) Hostname() string { return r.Text(Hostname) }

// Address returns the inbound address for the requested family.
func (r Relay) Address(ipv6 bool) string {
	if ipv6 {
		return r.Text(IPv6)
	}
	return r.Text(IPv4)
}

// RTT is one probe summary in milliseconds.
type RTT struct {
	Min float64
	Avg float64
	Max float64
}

func (r RTT) String() string {
	return fmt.Sprintf("%.3f/%.3f/%.3f ms", r.Min, r.Avg, r.Max)
}
