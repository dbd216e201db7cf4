// Package market derives location-aware market rates from a fixed table of
// metropolitan reference points. Estimates are pure functions of the query
// coordinates: no I/O, no randomness, no time dependence.
package market

import (
	"math"

	"github.com/tiptopassets/analysis-engine/internal/contracts"
)

// Estimator interpolates market rates between the nearest reference metro
// and a global base rate.
type Estimator struct {
	table *ReferenceTable
}

func NewEstimator(table *ReferenceTable) *Estimator {
	if table == nil {
		table = DefaultReferenceTable()
	}
	return &Estimator{table: table}
}

// Estimate returns the market rates for a coordinate pair. Distance to the
// reference points is Euclidean in degree space, not geodesic: at
// nearest-major-city granularity the error is immaterial for pricing, and
// the coarse metric keeps the decay factor trivially reproducible. Coverage
// gating elsewhere uses true haversine; do not unify the two.
func (e *Estimator) Estimate(c contracts.Coordinates) contracts.MarketData {
	nearest, dist := e.nearest(c)

	factor := 1 - dist*10
	if factor < 0.3 {
		factor = 0.3
	}

	parking := factor*nearest.ParkingRatePerDay + (1-factor)*e.table.BaseParkingRatePerDay
	parking = clamp(parking, e.table.MinParkingRatePerDay, e.table.MaxParkingRatePerDay)

	rent := factor*nearest.AverageRent + (1-factor)*e.table.BaseAverageRent
	rent = clamp(rent, e.table.MinAverageRent, e.table.MaxAverageRent)

	trend := contracts.TrendStable
	if factor >= 0.7 {
		trend = contracts.TrendUp
	}

	return contracts.MarketData{
		AverageRent:          round2(rent),
		SolarSavingsPerMonth: round2(e.solarSavings(c.Lat)),
		ParkingRatePerDay:    round2(parking),
		Trend:                trend,
		Confidence:           round2(factor),
		Estimated:            true,
	}
}

// AuthoritativeParkingRate is the rate the revenue validator substitutes for
// any upstream-supplied parking figure.
func (e *Estimator) AuthoritativeParkingRate(c contracts.Coordinates) float64 {
	return e.Estimate(c).ParkingRatePerDay
}

// BaseParkingRate is the rate used when no coordinates are available.
func (e *Estimator) BaseParkingRate() float64 {
	return e.table.BaseParkingRatePerDay
}

// solarSavings decays with distance from the 35th parallel, a rough center
// of peak US insolation.
func (e *Estimator) solarSavings(lat float64) float64 {
	factor := 1 - math.Abs(lat-35)/20
	if factor < 0.5 {
		factor = 0.5
	}
	return factor * e.table.BaseSolarSavings
}

func (e *Estimator) nearest(c contracts.Coordinates) (ReferencePoint, float64) {
	best := e.table.Points[0]
	bestDist := degreeDistance(c, best.Coordinates)
	for _, p := range e.table.Points[1:] {
		if d := degreeDistance(c, p.Coordinates); d < bestDist {
			best, bestDist = p, d
		}
	}
	return best, bestDist
}

func degreeDistance(a, b contracts.Coordinates) float64 {
	dLat := a.Lat - b.Lat
	dLng := a.Lng - b.Lng
	return math.Sqrt(dLat*dLat + dLng*dLng)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
