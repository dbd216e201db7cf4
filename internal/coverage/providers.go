package coverage

import "github.com/tiptopassets/analysis-engine/internal/contracts"

// Zone is a circular coverage area. Radius gating uses true haversine
// distance because it decides legal availability, not pricing.
type Zone struct {
	Center   contracts.Coordinates
	RadiusKm float64
}

// Provider is one row of the static coverage registry. A provider with no
// state, metro, or zone restriction covers its whole country list.
type Provider struct {
	ID       string
	Name     string
	Category contracts.Category

	Countries  []string
	States     []string // evaluated only for country US
	MetroAreas []string
	Zones      []Zone

	PropertyTypes   []contracts.PropertyType
	MinPropertySqft float64

	RequiresPermit bool
	HOARestricted  bool
}

// cityMetros resolves a city to its named metro area. A city missing from
// this table counts as "no metro match" for any provider that declares a
// metro restriction.
var cityMetros = map[string]string{
	"san francisco": "bay_area",
	"oakland":       "bay_area",
	"berkeley":      "bay_area",
	"san jose":      "bay_area",
	"new york":      "nyc_metro",
	"brooklyn":      "nyc_metro",
	"queens":        "nyc_metro",
	"jersey city":   "nyc_metro",
	"los angeles":   "la_metro",
	"santa monica":  "la_metro",
	"long beach":    "la_metro",
	"pasadena":      "la_metro",
	"chicago":       "chicago_metro",
	"evanston":      "chicago_metro",
	"miami":         "miami_metro",
	"miami beach":   "miami_metro",
	"seattle":       "seattle_metro",
	"bellevue":      "seattle_metro",
	"boston":        "boston_metro",
	"cambridge":     "boston_metro",
	"austin":        "austin_metro",
	"denver":        "denver_metro",
	"atlanta":       "atlanta_metro",
}

// DefaultRegistry returns the built-in provider coverage table. Read-only
// after process start; no locking required.
func DefaultRegistry() []Provider {
	allResidential := []contracts.PropertyType{
		contracts.PropertySingleFamily, contracts.PropertyApartment, contracts.PropertyMultiFamily,
	}
	houses := []contracts.PropertyType{contracts.PropertySingleFamily, contracts.PropertyMultiFamily}

	return []Provider{
		{
			ID: "tesla-energy", Name: "Tesla Energy", Category: contracts.CategoryRooftop,
			Countries: []string{"US"},
			States:    []string{"CA", "TX", "FL", "AZ", "NV", "NY", "NJ", "MA", "CO", "WA", "OR", "UT"},
			PropertyTypes: []contracts.PropertyType{
				contracts.PropertySingleFamily, contracts.PropertyMultiFamily, contracts.PropertyCommercial,
			},
			MinPropertySqft: 800,
			RequiresPermit:  true,
			HOARestricted:   true,
		},
		{
			ID: "sunrun", Name: "Sunrun", Category: contracts.CategoryRooftop,
			Countries: []string{"US"},
			States: []string{
				"CA", "AZ", "CO", "CT", "FL", "HI", "IL", "MA", "MD", "NH",
				"NJ", "NM", "NV", "NY", "PA", "RI", "SC", "TX", "VT", "WI",
			},
			PropertyTypes:  houses,
			RequiresPermit: true,
		},
		{
			ID: "swimply", Name: "Swimply", Category: contracts.CategoryPool,
			Countries:      []string{"US", "CA", "AU"},
			States:         []string{"CA", "FL", "TX", "AZ", "NY", "NJ", "GA", "NV", "NC", "SC", "TN", "WA", "OR", "CO", "UT"},
			PropertyTypes:  houses,
			RequiresPermit: false,
			HOARestricted:  true,
		},
		{
			ID: "neighbor", Name: "Neighbor", Category: contracts.CategoryStorage,
			Countries:     []string{"US"},
			PropertyTypes: allResidential,
		},
		{
			ID: "spothero", Name: "SpotHero", Category: contracts.CategoryParking,
			Countries:  []string{"US", "CA"},
			MetroAreas: []string{"chicago_metro", "nyc_metro", "bay_area", "boston_metro", "seattle_metro", "denver_metro"},
		},
		{
			ID: "airgarage", Name: "AirGarage", Category: contracts.CategoryParking,
			Countries:     []string{"US"},
			States:        []string{"CA", "AZ", "TX", "WA", "OR", "CO", "FL", "GA", "NV", "UT"},
			PropertyTypes: []contracts.PropertyType{contracts.PropertyCommercial, contracts.PropertyMultiFamily},
		},
		{
			ID: "parkstash", Name: "ParkStash", Category: contracts.CategoryParking,
			Countries: []string{"US"},
			Zones: []Zone{
				{Center: contracts.Coordinates{Lat: 37.3382, Lng: -121.8863}, RadiusKm: 60}, // San Jose
				{Center: contracts.Coordinates{Lat: 34.0522, Lng: -118.2437}, RadiusKm: 50}, // Los Angeles
			},
		},
		{
			ID: "sniffspot", Name: "Sniffspot", Category: contracts.CategoryGarden,
			Countries:     []string{"US", "CA", "GB"},
			PropertyTypes: houses,
			HOARestricted: true,
		},
		{
			ID: "peerspace", Name: "Peerspace", Category: contracts.CategoryGarden,
			Countries:  []string{"US"},
			MetroAreas: []string{"bay_area", "la_metro", "nyc_metro", "chicago_metro", "miami_metro", "austin_metro"},
		},
		{
			ID: "honeygain", Name: "Honeygain", Category: contracts.CategoryBandwidth,
			Countries: []string{"US", "CA", "GB", "DE", "FR", "AU", "JP", "BR", "MX", "IN"},
		},
		{
			ID: "packetstream", Name: "PacketStream", Category: contracts.CategoryBandwidth,
			Countries: []string{"US", "CA", "GB", "DE", "AU"},
		},
		{
			ID: "airbnb", Name: "Airbnb", Category: contracts.CategoryShortTermRental,
			Countries:      []string{"US", "CA", "GB", "DE", "FR", "AU", "JP", "BR", "MX", "ES", "IT"},
			RequiresPermit: true,
			HOARestricted:  true,
		},
		{
			ID: "vrbo", Name: "Vrbo", Category: contracts.CategoryShortTermRental,
			Countries:       []string{"US", "CA", "GB", "FR", "ES", "IT"},
			PropertyTypes:   houses,
			MinPropertySqft: 500,
			RequiresPermit:  true,
		},
		{
			ID: "stashbee", Name: "Stashbee", Category: contracts.CategoryStorage,
			Countries: []string{"GB"},
		},
	}
}
