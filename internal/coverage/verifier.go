// Package coverage decides which providers legally and operationally
// service a property. It is a pure filter/rank over a static registry:
// re-running with identical inputs always produces identical output.
package coverage

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/tiptopassets/analysis-engine/internal/contracts"
)

const (
	// RestrictionUnavailable is the user-facing message for every hard
	// geographic miss (country, state, or metro).
	RestrictionUnavailable = "Service not available in your area"

	partialRadiusFactor = 1.5
	earthRadiusKm       = 6371.0
)

type Verifier struct {
	registry []Provider
}

func NewVerifier(registry []Provider) *Verifier {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Verifier{registry: registry}
}

// Verify evaluates every registered provider for the category against the
// location and property, ranked available-first then by coverage quality.
// Duplicate provider ids are dropped, first occurrence wins.
func (v *Verifier) Verify(category contracts.Category, loc contracts.LocationInfo, details contracts.PropertyDetails) []contracts.ProviderCandidate {
	var out []contracts.ProviderCandidate
	seen := map[string]struct{}{}
	for _, p := range v.registry {
		if p.Category != category {
			continue
		}
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, evaluate(p, loc, details))
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Available != out[j].Available {
			return out[i].Available
		}
		return coverageRank(out[i].Coverage) < coverageRank(out[j].Coverage)
	})
	return out
}

// evaluate applies the restriction checks in a fixed order, short-circuiting
// on the first hard geographic failure. Permit and HOA notes are advisory:
// they annotate the candidate but never flip availability.
func evaluate(p Provider, loc contracts.LocationInfo, details contracts.PropertyDetails) contracts.ProviderCandidate {
	c := contracts.ProviderCandidate{
		ProviderID:   p.ID,
		Name:         p.Name,
		Coverage:     contracts.CoverageFull,
		Available:    true,
		Restrictions: []string{},
	}

	if !containsFold(p.Countries, loc.Country) {
		return unavailable(c, RestrictionUnavailable)
	}

	if strings.EqualFold(loc.Country, "US") && len(p.States) > 0 && !containsFold(p.States, loc.State) {
		return unavailable(c, RestrictionUnavailable)
	}

	if len(p.MetroAreas) > 0 {
		metro := cityMetros[strings.ToLower(strings.TrimSpace(loc.City))]
		if metro == "" || !containsFold(p.MetroAreas, metro) {
			return unavailable(c, RestrictionUnavailable)
		}
	}

	if len(p.Zones) > 0 {
		switch zoneCoverage(p.Zones, loc.Coordinates) {
		case contracts.CoverageFull:
			c.Coverage = contracts.CoverageFull
		case contracts.CoveragePartial:
			c.Coverage = contracts.CoveragePartial
			c.Restrictions = append(c.Restrictions, "Edge of provider coverage zone; service may be limited")
		default:
			c.Coverage = contracts.CoverageNone
			c.Available = false
			c.Restrictions = append(c.Restrictions, "Outside provider coverage zones")
			return c
		}
	}

	if len(p.PropertyTypes) > 0 && !propertyTypeAllowed(p.PropertyTypes, details.Type) {
		c.Available = false
		c.Restrictions = append(c.Restrictions, fmt.Sprintf("Not available for %s properties", details.Type))
	}

	if p.MinPropertySqft > 0 && details.SizeSqft != nil && *details.SizeSqft < p.MinPropertySqft {
		c.Available = false
		c.Restrictions = append(c.Restrictions, fmt.Sprintf("Requires a property of at least %.0f sqft", p.MinPropertySqft))
	}

	if p.RequiresPermit {
		c.Restrictions = append(c.Restrictions, "May require local permits")
	}
	if p.HOARestricted && details.HasHOA != nil && *details.HasHOA {
		c.Restrictions = append(c.Restrictions, "Check HOA rules before listing")
	}
	return c
}

func unavailable(c contracts.ProviderCandidate, reason string) contracts.ProviderCandidate {
	c.Available = false
	c.Coverage = contracts.CoverageNone
	c.Restrictions = append(c.Restrictions, reason)
	return c
}

// zoneCoverage returns the best coverage across a provider's zones: within
// radius is full, within 1.5x radius is partial.
func zoneCoverage(zones []Zone, c contracts.Coordinates) contracts.CoverageLevel {
	best := contracts.CoverageNone
	for _, z := range zones {
		d := haversineKm(z.Center, c)
		switch {
		case d <= z.RadiusKm:
			return contracts.CoverageFull
		case d <= z.RadiusKm*partialRadiusFactor:
			best = contracts.CoveragePartial
		}
	}
	return best
}

// haversineKm is the great-circle distance. Unlike the market estimator's
// degree-space shortcut, coverage gating needs real distance: a provider's
// legal service boundary does not tolerate the ~25% error degree-space
// distance can introduce at mid latitudes.
func haversineKm(a, b contracts.Coordinates) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

func coverageRank(l contracts.CoverageLevel) int {
	switch l {
	case contracts.CoverageFull:
		return 0
	case contracts.CoveragePartial:
		return 1
	default:
		return 2
	}
}

func containsFold(haystack []string, needle string) bool {
	for _, h := range haystack {
		if strings.EqualFold(h, needle) {
			return true
		}
	}
	return false
}

func propertyTypeAllowed(allowed []contracts.PropertyType, t contracts.PropertyType) bool {
	for _, a := range allowed {
		if a == t {
			return true
		}
	}
	return false
}
