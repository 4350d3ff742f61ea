// Package riskmap provides the static property risk dataset shown on the map page.
package riskmap

import (
	"errors"
	"sort"
	"strings"
)

// RiskType identifies one risk dimension of a parcel.
type RiskType string

const (
	RiskFlood      RiskType = "flood"
	RiskFire       RiskType = "fire"
	RiskEarthquake RiskType = "earthquake"
	RiskMarket     RiskType = "market"
)

// County is a selectable region filter.
type County struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Parcel is a property parcel with per-type risk scores in the range 0..100.
type Parcel struct {
	ID            string           `json:"id"`
	Address       string           `json:"address"`
	County        string           `json:"county"`
	Latitude      float64          `json:"latitude"`
	Longitude     float64          `json:"longitude"`
	AssessedValue int              `json:"assessedValue"`
	HeirsProperty bool             `json:"heirsProperty"`
	Risks         map[RiskType]int `json:"risks"`
}

// Level buckets a risk score.
func Level(score int) string {
	switch {
	case score >= 70:
		return "high"
	case score >= 40:
		return "medium"
	default:
		return "low"
	}
}

// Filter narrows the dataset. Empty fields match everything.
type Filter struct {
	County   string
	RiskType RiskType
}

var (
	ErrUnknownCounty   = errors.New("unknown county")
	ErrUnknownRiskType = errors.New("unknown risk type")
)

var counties = []County{
	{ID: "los-angeles", Name: "Los Angeles"},
	{ID: "orange", Name: "Orange County"},
	{ID: "riverside", Name: "Riverside"},
	{ID: "san-bernardino", Name: "San Bernardino"},
}

var riskTypes = []RiskType{RiskFlood, RiskFire, RiskEarthquake, RiskMarket}

var parcels = []Parcel{
	{ID: "LA-1001", Address: "1420 W 48th St, Los Angeles", County: "los-angeles", Latitude: 34.0006, Longitude: -118.3012,
		AssessedValue: 512000, HeirsProperty: true,
		Risks: map[RiskType]int{RiskFlood: 22, RiskFire: 35, RiskEarthquake: 78, RiskMarket: 61}},
	{ID: "LA-1002", Address: "8810 Compton Ave, Los Angeles", County: "los-angeles", Latitude: 33.9556, Longitude: -118.2483,
		AssessedValue: 398000, HeirsProperty: true,
		Risks: map[RiskType]int{RiskFlood: 48, RiskFire: 18, RiskEarthquake: 74, RiskMarket: 72}},
	{ID: "OC-2001", Address: "305 E Chestnut Ave, Santa Ana", County: "orange", Latitude: 33.7384, Longitude: -117.8654,
		AssessedValue: 640000, HeirsProperty: false,
		Risks: map[RiskType]int{RiskFlood: 41, RiskFire: 20, RiskEarthquake: 55, RiskMarket: 38}},
	{ID: "OC-2002", Address: "12 Canyon View, Silverado", County: "orange", Latitude: 33.7461, Longitude: -117.6372,
		AssessedValue: 705000, HeirsProperty: true,
		Risks: map[RiskType]int{RiskFlood: 15, RiskFire: 88, RiskEarthquake: 47, RiskMarket: 30}},
	{ID: "RV-3001", Address: "4521 Park Ave, Riverside", County: "riverside", Latitude: 33.9806, Longitude: -117.3755,
		AssessedValue: 356000, HeirsProperty: true,
		Risks: map[RiskType]int{RiskFlood: 63, RiskFire: 52, RiskEarthquake: 58, RiskMarket: 45}},
	{ID: "RV-3002", Address: "77 Desert Willow Rd, Coachella", County: "riverside", Latitude: 33.6803, Longitude: -116.1739,
		AssessedValue: 214000, HeirsProperty: false,
		Risks: map[RiskType]int{RiskFlood: 71, RiskFire: 26, RiskEarthquake: 66, RiskMarket: 57}},
	{ID: "SB-4001", Address: "960 N Mt Vernon Ave, San Bernardino", County: "san-bernardino", Latitude: 34.1144, Longitude: -117.3167,
		AssessedValue: 287000, HeirsProperty: true,
		Risks: map[RiskType]int{RiskFlood: 33, RiskFire: 69, RiskEarthquake: 81, RiskMarket: 64}},
	{ID: "SB-4002", Address: "31 Pine Crest Dr, Crestline", County: "san-bernardino", Latitude: 34.2419, Longitude: -117.2856,
		AssessedValue: 319000, HeirsProperty: false,
		Risks: map[RiskType]int{RiskFlood: 12, RiskFire: 92, RiskEarthquake: 49, RiskMarket: 41}},
}

// Counties lists the selectable counties.
func Counties() []County {
	return append([]County(nil), counties...)
}

// RiskTypes lists the selectable risk types.
func RiskTypes() []RiskType {
	return append([]RiskType(nil), riskTypes...)
}

// ParseFilter normalises raw query values and rejects unknown ones.
func ParseFilter(county, riskType string) (Filter, error) {
	f := Filter{
		County:   strings.ToLower(strings.TrimSpace(county)),
		RiskType: RiskType(strings.ToLower(strings.TrimSpace(riskType))),
	}
	if f.County != "" && !knownCounty(f.County) {
		return Filter{}, ErrUnknownCounty
	}
	if f.RiskType != "" && !knownRiskType(f.RiskType) {
		return Filter{}, ErrUnknownRiskType
	}
	return f, nil
}

// Parcels returns the parcels matching f. With a risk type set, the result is
// ordered by that score, highest first.
func Parcels(f Filter) []Parcel {
	out := make([]Parcel, 0, len(parcels))
	for _, p := range parcels {
		if f.County != "" && p.County != f.County {
			continue
		}
		out = append(out, clone(p))
	}
	if f.RiskType != "" {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Risks[f.RiskType] > out[j].Risks[f.RiskType]
		})
	}
	return out
}

func clone(p Parcel) Parcel {
	risks := make(map[RiskType]int, len(p.Risks))
	for k, v := range p.Risks {
		risks[k] = v
	}
	p.Risks = risks
	return p
}

func knownCounty(id string) bool {
	for _, c := range counties {
		if c.ID == id {
			return true
		}
	}
	return false
}

func knownRiskType(rt RiskType) bool {
	for _, r := range riskTypes {
		if r == rt {
			return true
		}
	}
	return false
}
