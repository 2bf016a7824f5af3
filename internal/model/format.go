package model

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrUnknownAttribute is returned for a format identifier with no attribute.
var ErrUnknownAttribute = errors.New("unknown attribute identifier")

// Identifiers maps the short format identifiers accepted on the command line.
var Identifiers = map[string]Attribute{
	"h":  Hostname,
	"4":  IPv4,
	"6":  IPv6,
	"c":  CountryCode,
	"C":  CityCode,
	"p":  Provider,
	"l":  RoundTripTime,
	"O":  Owned,
	"b":  Bandwidth,
	"cf": CountryName,
	"Cf": CityName,
	"s":  RAMBoot,
	"t":  Type,
}

// Default display sets.
var (
	ShortAttributes = []Attribute{Hostname, RoundTripTime}
	LongAttributes  = []Attribute{Hostname, RoundTripTime, CountryName, CityName, Provider, Owned, RAMBoot}
)

// ParseFormat resolves format identifiers in order.
func ParseFormat(ids []string) ([]Attribute, error) {
	attrs := make([]Attribute, 0, len(ids))
	for _, id := range ids {
		attr, ok := Identifiers[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownAttribute, id)
		}
		attrs = append(attrs, attr)
	}
	return attrs, nil
}

// Contains reports whether attr is in attrs.
func Contains(attrs []Attribute, attr Attribute) bool {
	for _, a := range attrs {
		if a == attr {
			return true
		}
	}
	return false
}

// Without returns attrs with every occurrence of attr removed.
func Without(attrs []Attribute, attr Attribute) []Attribute {
	out := make([]Attribute, 0, len(attrs))
	for _, a := range attrs {
		if a != attr {
			out = append(out, a)
		}
	}
	return out
}

// MissingValue is rendered for absent or null attributes.
const MissingValue = "error"

var typeNames = map[string]string{
	TypeWireGuard: "WireGuard",
	TypeOpenVPN:   "OpenVPN",
	TypeBridge:    "Bridge",
}

// FormatValue renders a raw attribute value for display.
func FormatValue(attr Attribute, v any) string {
	if v == nil {
		return MissingValue
	}
	switch attr {
	case RoundTripTime:
		if f, ok := ToFloat(v); ok {
			return fmt.Sprintf("%.3fms", f)
		}
	case Owned:
		if b, ok := v.(bool); ok {
			if b {
				return "Owned"
			}
			return "Rented"
		}
	case RAMBoot:
		if b, ok := v.(bool); ok {
			if b {
				return "RAM"
			}
			return "Disk"
		}
	case Bandwidth:
		if f, ok := ToFloat(v); ok {
			return strconv.FormatFloat(f, 'f', -1, 64) + " Gbps"
		}
	case Type:
		s, _ := v.(string)
		if name, ok := typeNames[s]; ok {
			return name
		}
		return "Unknown"
	}
	return fmt.Sprint(v)
}

// ToFloat converts JSON and Go numeric values.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint32:
		return float64(n), true
	default:
		return 0, false
	}
}
