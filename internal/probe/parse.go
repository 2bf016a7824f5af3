// Package probe measures relay round-trip times with the system ping utility.
package probe

import (
	"strconv"
	"strings"

	"relayping/internal/model"
)

// Platform selects the ping argument syntax and summary grammar.
type Platform int

const (
	Unix Platform = iota
	Windows
)

// PlatformFor maps a GOOS value. Anything that is not Windows is treated as Unix.
func PlatformFor(goos string) Platform {
	if goos == "windows" {
		return Windows
	}
	return Unix
}

func (p Platform) String() string {
	if p == Windows {
		return "windows"
	}
	return "unix"
}

// Parse extracts min/avg/max from ping output. ok is false when the
// summary line is missing or malformed.
//
//	Unix:    rtt min/avg/max/mdev = 0.026/0.026/0.026/0.000 ms
//	Windows: Minimum = 1ms, Maximum = 3ms, Average = 2ms
func Parse(output string, platform Platform) (model.RTT, bool) {
	line := lastLine(output)
	if line == "" {
		return model.RTT{}, false
	}
	if platform == Windows {
		return parseWindows(line)
	}
	return parseUnix(line)
}

func lastLine(output string) string {
	lines := strings.Split(output, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}

func parseUnix(line string) (model.RTT, bool) {
	idx := strings.LastIndexByte(line, '=')
	if idx < 0 {
		return model.RTT{}, false
	}
	fields := strings.Fields(line[idx+1:])
	if len(fields) == 0 {
		return model.RTT{}, false
	}
	parts := strings.Split(fields[0], "/")
	if len(parts) < 3 {
		return model.RTT{}, false
	}
	var v [3]float64
	for i := range v {
		f, err := strconv.ParseFloat(parts[i], 64)
		if err != nil {
			return model.RTT{}, false
		}
		v[i] = f
	}
	return model.RTT{Min: v[0], Avg: v[1], Max: v[2]}, true
}

// Windows prints Minimum, Maximum, Average in that order.
func parseWindows(line string) (model.RTT, bool) {
	parts := strings.Split(line, ",")
	if len(parts) != 3 {
		return model.RTT{}, false
	}
	var v [3]float64
	for i, part := range parts {
		idx := strings.LastIndexByte(part, '=')
		if idx < 0 {
			return model.RTT{}, false
		}
		raw := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(part[idx+1:]), "ms"))
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return model.RTT{}, false
		}
		v[i] = f
	}
	return model.RTT{Min: v[0], Max: v[1], Avg: v[2]}, true
}
