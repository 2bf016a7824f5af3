package filter

import (
	"errors"

	"relayping/internal/model"
)

// ErrCityPairs is returned when a city list is not made of country/city pairs.
var ErrCityPairs = errors.New("city filter requires pairs of country_code and city_code")

// Criteria holds the user supplied inclusion and exclusion lists.
// Cities and CitiesNot are flat lists: country, city, country, city, ...
type Criteria struct {
	Countries    []string
	CountriesNot []string
	Cities       []string
	CitiesNot    []string
	Hostnames    []string
	HostnamesNot []string
	Providers    []string
	ProvidersNot []string

	WireGuard bool
	OpenVPN   bool
	RAMBoot   bool
	Owned     bool
	IPv6      bool

	MinBandwidth *float64
}

// City is a country and city code pair.
type City struct {
	Country string
	City    string
}

// Base is applied to every selection: bridges and inactive relays are never candidates.
func Base() []Predicate {
	return []Predicate{
		NotEquals{Attr: model.Type, Value: model.TypeBridge},
		Equals{Attr: model.Active, Value: true},
	}
}

// Build combines the base predicates with one aggregate per supplied criterion.
func Build(c Criteria) (Predicate, error) {
	preds := And(Base())

	if len(c.Countries) > 0 {
		preds = append(preds, AnyOf(c.Countries, eq(model.CountryCode)))
	}
	if len(c.CountriesNot) > 0 {
		preds = append(preds, AllOf(c.CountriesNot, neq(model.CountryCode)))
	}

	if len(c.Cities) > 0 {
		cities, err := Pairs(c.Cities)
		if err != nil {
			return nil, err
		}
		preds = append(preds, AnyOf(cities, InCity))
	}
	if len(c.CitiesNot) > 0 {
		cities, err := Pairs(c.CitiesNot)
		if err != nil {
			return nil, err
		}
		preds = append(preds, AllOf(cities, func(city City) Predicate {
			return Not{P: InCity(city)}
		}))
	}

	if len(c.Hostnames) > 0 {
		preds = append(preds, AnyOf(c.Hostnames, eq(model.Hostname)))
	}
	if len(c.HostnamesNot) > 0 {
		preds = append(preds, AllOf(c.HostnamesNot, neq(model.Hostname)))
	}

	if len(c.Providers) > 0 {
		preds = append(preds, AnyOf(c.Providers, eq(model.Provider)))
	}
	if len(c.ProvidersNot) > 0 {
		preds = append(preds, AllOf(c.ProvidersNot, neq(model.Provider)))
	}

	if c.MinBandwidth != nil {
		preds = append(preds, AtLeast{Attr: model.Bandwidth, Min: *c.MinBandwidth})
	}
	if c.WireGuard {
		preds = append(preds, Equals{Attr: model.Type, Value: model.TypeWireGuard})
	}
	if c.OpenVPN {
		preds = append(preds, Equals{Attr: model.Type, Value: model.TypeOpenVPN})
	}
	if c.RAMBoot {
		preds = append(preds, Equals{Attr: model.RAMBoot, Value: true})
	}
	if c.Owned {
		preds = append(preds, Equals{Attr: model.Owned, Value: true})
	}
	if c.IPv6 {
		preds = append(preds, Present{Attr: model.IPv6})
	}

	return preds, nil
}

// InCity matches relays in the given country and city.
func InCity(c City) Predicate {
	return And{
		Equals{Attr: model.CountryCode, Value: c.Country},
		Equals{Attr: model.CityCode, Value: c.City},
	}
}

// Pairs splits a flat country/city list.
func Pairs(flat []string) ([]City, error) {
	if len(flat)%2 != 0 {
		return nil, ErrCityPairs
	}
	out := make([]City, 0, len(flat)/2)
	for i := 0; i < len(flat); i += 2 {
		out = append(out, City{Country: flat[i], City: flat[i+1]})
	}
	return out, nil
}

// Apply returns the relays accepted by p in their original order.
func Apply(p Predicate, relays []model.Relay) []model.Relay {
	out := make([]model.Relay, 0, len(relays))
	for _, r := range relays {
		if p.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

func eq(attr model.Attribute) func(string) Predicate {
	return func(v string) Predicate { return Equals{Attr: attr, Value: v} }
}

func neq(attr model.Attribute) func(string) Predicate {
	return func(v string) Predicate { return NotEquals{Attr: attr, Value: v} }
}
