package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"relayping/internal/filter"
	"relayping/internal/model"
	"relayping/internal/selection"
)

const usage = `relayping - batch ping utility for Mullvad VPN relays (unaffiliated)

Usage:
  relayping [filters] [output] [probing] [actions]

Filters (lists are comma separated or repeated):
  -c,  --country <cc,...>            only relays in these countries
  -cn, --country-not <cc,...>        exclude these countries
  -C,  --city <cc,city,...>          only relays in these country/city pairs
  -Cn, --city-not <cc,city,...>      exclude these country/city pairs
  -H,  --hostname <host,...>         only these relays
  -Hn, --hostname-not <host,...>     exclude these relays
  -p,  --provider <name,...>         only these providers
  -pn, --provider-not <name,...>     exclude these providers
  -w,  --wireguard                   only WireGuard relays
  -o,  --openvpn                     only OpenVPN relays
  -s,  --stboot                      only RAM-booted (stboot) relays
  -O,  --owned                       only relays owned by Mullvad
  -b,  --bandwidth <gbps>            minimum port speed

Output:
  -v,  --verbose                     show more relay attributes
  -f,  --format <id,...>             attributes to show: h 4 6 c C p l O b cf Cf s t
  -q,  --quiet                       no live results table
  -d,  --descending                  final table sorted by descending latency
  -a,  --ascending                   final table sorted by ascending latency
       --csv <path>                  append probe results to a CSV file

Probing:
  -np, --no-ping                     list matching relays without probing
  -t,  --timeout <ms>                per-probe timeout in milliseconds
  -6,  --ipv6                        probe over IPv6
  -j,  --jobs <n>                    probes in flight

Actions:
  -u,  --use                         switch to the lowest latency relay
  -r,  --random                      switch to a random matching relay
       --egress                      report the public address via STUN

General:
       --config <path>               YAML config file
       --debug                       diagnostic logging on stderr
`

// listFlag collects comma separated and repeated values.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*l = append(*l, part)
		}
	}
	return nil
}

// options is the parsed command line.
type options struct {
	configPath string
	debug      bool

	countries, countriesNot listFlag
	cities, citiesNot       listFlag
	hostnames, hostnamesNot listFlag
	providers, providersNot listFlag
	wireguard, openvpn      bool
	stboot, owned           bool
	bandwidth               string

	verbose    bool
	format     listFlag
	quiet      bool
	descending bool
	ascending  bool
	csvPath    string

	noPing  bool
	timeout string
	ipv6    bool
	jobs    int

	use    bool
	random bool
	egress bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("relayping", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }

	fs.StringVar(&o.configPath, "config", "", "path to YAML config")
	fs.BoolVar(&o.debug, "debug", false, "diagnostic logging")

	listVar(fs, &o.countries, "c", "country")
	listVar(fs, &o.countriesNot, "cn", "country-not")
	listVar(fs, &o.cities, "C", "city")
	listVar(fs, &o.citiesNot, "Cn", "city-not")
	listVar(fs, &o.hostnames, "H", "hostname")
	listVar(fs, &o.hostnamesNot, "Hn", "hostname-not")
	listVar(fs, &o.providers, "p", "provider")
	listVar(fs, &o.providersNot, "pn", "provider-not")
	boolVar(fs, &o.wireguard, "w", "wireguard")
	boolVar(fs, &o.openvpn, "o", "openvpn")
	boolVar(fs, &o.stboot, "s", "stboot")
	boolVar(fs, &o.owned, "O", "owned")
	stringVar(fs, &o.bandwidth, "b", "bandwidth")

	boolVar(fs, &o.verbose, "v", "verbose")
	listVar(fs, &o.format, "f", "format")
	boolVar(fs, &o.quiet, "q", "quiet")
	boolVar(fs, &o.descending, "d", "descending")
	boolVar(fs, &o.ascending, "a", "ascending")
	fs.StringVar(&o.csvPath, "csv", "", "append results to CSV")

	boolVar(fs, &o.noPing, "np", "no-ping")
	stringVar(fs, &o.timeout, "t", "timeout")
	boolVar(fs, &o.ipv6, "6", "ipv6")
	fs.IntVar(&o.jobs, "j", 0, "probes in flight")
	fs.IntVar(&o.jobs, "jobs", 0, "probes in flight")

	boolVar(fs, &o.use, "u", "use")
	boolVar(fs, &o.random, "r", "random")
	fs.BoolVar(&o.egress, "egress", false, "report the public address via STUN")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}
	return o, nil
}

func listVar(fs *flag.FlagSet, l *listFlag, short, long string) {
	fs.Var(l, short, long)
	fs.Var(l, long, long)
}

func boolVar(fs *flag.FlagSet, b *bool, short, long string) {
	fs.BoolVar(b, short, false, long)
	fs.BoolVar(b, long, false, long)
}

func stringVar(fs *flag.FlagSet, s *string, short, long string) {
	fs.StringVar(s, short, "", long)
	fs.StringVar(s, long, "", long)
}

// plan is a validated run request.
type plan struct {
	attrs   []model.Attribute
	probe   bool
	accept  filter.Predicate
	timeout time.Duration // zero means the configured default
	sorted  bool
	order   selection.Order
}

var errNoLatency = errors.New("latency is not measured")

func formatPingError(opt string) error {
	return fmt.Errorf("%w: use a format that includes latency to use the %s option", errNoLatency, opt)
}

func flagPingError(opt string) error {
	return fmt.Errorf("the '-np'/'--no-ping' option cannot be used with the %s option", opt)
}

// resolve validates option combinations and converts them into a plan.
func resolve(o options) (plan, error) {
	var p plan

	switch {
	case len(o.format) > 0:
		attrs, err := model.ParseFormat(o.format)
		if err != nil {
			return plan{}, err
		}
		p.attrs = attrs
	case o.verbose:
		p.attrs = append([]model.Attribute(nil), model.LongAttributes...)
	default:
		p.attrs = append([]model.Attribute(nil), model.ShortAttributes...)
	}

	p.probe = model.Contains(p.attrs, model.RoundTripTime)
	if !p.probe {
		if o.use {
			return plan{}, formatPingError("'-u'/'--use'")
		}
		if o.descending {
			return plan{}, formatPingError("'-d'/'--descending'")
		}
		if o.ascending {
			return plan{}, formatPingError("'-a'/'--ascending'")
		}
	}
	if o.noPing {
		if o.use {
			return plan{}, flagPingError("'-u'/'--use'")
		}
		if o.descending {
			return plan{}, flagPingError("'-d'/'--descending'")
		}
		if o.ascending {
			return plan{}, flagPingError("'-a'/'--ascending'")
		}
		p.attrs = model.Without(p.attrs, model.RoundTripTime)
		p.probe = false
	}
	if o.descending && o.ascending {
		return plan{}, errors.New("the '-a'/'--ascending' and '-d'/'--descending' options are exclusive")
	}
	p.sorted = o.descending || o.ascending
	if o.descending {
		p.order = selection.Descending
	}

	criteria := filter.Criteria{
		Countries:    o.countries,
		CountriesNot: o.countriesNot,
		Cities:       o.cities,
		CitiesNot:    o.citiesNot,
		Hostnames:    o.hostnames,
		HostnamesNot: o.hostnamesNot,
		Providers:    o.providers,
		ProvidersNot: o.providersNot,
		WireGuard:    o.wireguard,
		OpenVPN:      o.openvpn,
		RAMBoot:      o.stboot,
		Owned:        o.owned,
		IPv6:         o.ipv6,
	}
	if o.bandwidth != "" {
		bw, err := strconv.ParseFloat(o.bandwidth, 64)
		if err != nil {
			return plan{}, errors.New("the bandwidth option must be a number")
		}
		criteria.MinBandwidth = &bw
	}
	accept, err := filter.Build(criteria)
	if err != nil {
		return plan{}, err
	}
	p.accept = accept

	if o.timeout != "" {
		ms, err := strconv.ParseFloat(o.timeout, 64)
		if err != nil || ms <= 0 {
			return plan{}, errors.New("timeout must be a positive number of milliseconds")
		}
		p.timeout = time.Duration(ms * float64(time.Millisecond))
	}

	if o.jobs < 0 {
		return plan{}, errors.New("jobs must not be negative")
	}

	return p, nil
}
