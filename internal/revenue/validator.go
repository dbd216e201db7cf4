// Package revenue repairs the revenue figures of a structured property
// analysis so they never violate domain-realistic bounds. Corrections are
// silent: out-of-range upstream numbers are clamped, dependent
// totals are recomputed, and the mirrored opportunity records are rewritten
// to match. The validator never raises an error and applying it twice to its
// own output is a no-op.
package revenue

import (
	"fmt"
	"math"

	"github.com/tiptopassets/analysis-engine/internal/contracts"
	"github.com/tiptopassets/analysis-engine/internal/market"
)

// Hard monthly ceilings per asset. The commercial variants apply only when
// the property type is commercial.
const (
	MaxSolarResidential   = 200
	MaxSolarCommercial    = 500
	MaxParkingResidential = 1000
	MaxParkingCommercial  = 1500
	MaxPool               = 800
	MaxGarden             = 200
	MaxBandwidth          = 50
	MaxStorage            = 300

	MaxParkingSpacesResidential = 3
	MaxParkingSpacesCommercial  = 20
	DefaultSingleFamilySpaces   = 2

	ParkingDaysPerMonth = 20
)

type Validator struct {
	rates *market.Estimator
}

func NewValidator(rates *market.Estimator) *Validator {
	if rates == nil {
		rates = market.NewEstimator(nil)
	}
	return &Validator{rates: rates}
}

// Validate returns a corrected copy of the analysis. The input is never left
// in a half-corrected state: callers either see their original value or the
// fully consistent result.
func (v *Validator) Validate(a contracts.PropertyAnalysis, coords *contracts.Coordinates, propType contracts.PropertyType) contracts.PropertyAnalysis {
	out := a
	out.TopOpportunities = append([]contracts.Opportunity(nil), a.TopOpportunities...)
	for i := range out.TopOpportunities {
		if out.TopOpportunities[i].Category == "" {
			out.TopOpportunities[i].Category = contracts.CategoryFromTitle(out.TopOpportunities[i].Title)
		}
	}

	commercial := propType == contracts.PropertyCommercial

	v.applyPropertyTypeRules(&out, propType)
	v.capSolar(&out, commercial)
	v.recomputeParking(&out, coords, commercial)
	v.capFlat(&out)
	v.recomputeTotals(&out)
	return out
}

// applyPropertyTypeRules constrains parking before the generic cap pass.
// Apartments and multi-family properties rarely control more than a few
// deeded spaces; single-family homes effectively have a two-car driveway
// when the upstream count is implausible. Revenue scales with the space
// reduction so the figure stays proportional to what survives.
func (v *Validator) applyPropertyTypeRules(a *contracts.PropertyAnalysis, propType contracts.PropertyType) {
	spaces := a.Parking.Spaces
	if spaces <= 0 {
		return
	}
	switch propType {
	case contracts.PropertyApartment, contracts.PropertyMultiFamily:
		if spaces > MaxParkingSpacesResidential {
			v.scaleParking(a, MaxParkingSpacesResidential)
		}
	case contracts.PropertySingleFamily:
		if spaces > MaxParkingSpacesResidential {
			v.scaleParking(a, DefaultSingleFamilySpaces)
		}
	}
}

func (v *Validator) scaleParking(a *contracts.PropertyAnalysis, to int) {
	ratio := float64(to) / float64(a.Parking.Spaces)
	a.Parking.Spaces = to
	a.Parking.Revenue = round2(a.Parking.Revenue * ratio)
}

func (v *Validator) capSolar(a *contracts.PropertyAnalysis, commercial bool) {
	ceiling := float64(MaxSolarResidential)
	if commercial {
		ceiling = MaxSolarCommercial
	}
	if a.Rooftop.Revenue > ceiling {
		a.Rooftop.Revenue = ceiling
	}
	v.propagate(a, contracts.CategoryRooftop, a.Rooftop.Revenue, "")
}

// recomputeParking never trusts the upstream rate: the market estimator's
// rate is authoritative. Revenue is rebuilt from spaces and the
// authoritative rate, then capped.
func (v *Validator) recomputeParking(a *contracts.PropertyAnalysis, coords *contracts.Coordinates, commercial bool) {
	maxSpaces := MaxParkingSpacesResidential
	revenueCap := float64(MaxParkingResidential)
	if commercial {
		maxSpaces = MaxParkingSpacesCommercial
		revenueCap = MaxParkingCommercial
	}
	if a.Parking.Spaces > maxSpaces {
		a.Parking.Spaces = maxSpaces
	}
	if a.Parking.Spaces < 0 {
		a.Parking.Spaces = 0
	}

	rate := v.rates.BaseParkingRate()
	if coords != nil {
		rate = v.rates.AuthoritativeParkingRate(*coords)
	}
	a.Parking.RatePerDay = rate
	a.Parking.Revenue = round2(math.Min(float64(a.Parking.Spaces)*rate*ParkingDaysPerMonth, revenueCap))

	desc := fmt.Sprintf("%d space(s) at $%.2f/day", a.Parking.Spaces, rate)
	v.propagate(a, contracts.CategoryParking, a.Parking.Revenue, desc)
}

func (v *Validator) capFlat(a *contracts.PropertyAnalysis) {
	if a.Pool.Revenue > MaxPool {
		a.Pool.Revenue = MaxPool
	}
	v.propagate(a, contracts.CategoryPool, a.Pool.Revenue, "")

	if a.Garden.Revenue > MaxGarden {
		a.Garden.Revenue = MaxGarden
	}
	v.propagate(a, contracts.CategoryGarden, a.Garden.Revenue, "")

	if a.Bandwidth.Revenue > MaxBandwidth {
		a.Bandwidth.Revenue = MaxBandwidth
	}
	v.propagate(a, contracts.CategoryBandwidth, a.Bandwidth.Revenue, "")

	if a.Storage.Revenue > MaxStorage {
		a.Storage.Revenue = MaxStorage
	}
	v.propagate(a, contracts.CategoryStorage, a.Storage.Revenue, "")
}

// propagate rewrites every opportunity mirroring the asset so the UI
// projection can never disagree with the corrected analysis. Matching is by
// category tag; CategoryFromTitle already backfilled tags for legacy
// payloads in Validate.
func (v *Validator) propagate(a *contracts.PropertyAnalysis, cat contracts.Category, monthly float64, description string) {
	for i := range a.TopOpportunities {
		if a.TopOpportunities[i].Category != cat {
			continue
		}
		a.TopOpportunities[i].MonthlyRevenue = monthly
		if description != "" {
			a.TopOpportunities[i].Description = description
		}
	}
}

// recomputeTotals rebuilds the property-level aggregates from the corrected
// per-asset figures. Upstream totals are ignored entirely.
func (v *Validator) recomputeTotals(a *contracts.PropertyAnalysis) {
	monthly := a.Rooftop.Revenue +
		a.Garden.Revenue +
		a.Parking.Revenue +
		a.Pool.Revenue +
		a.Storage.Revenue +
		a.Bandwidth.Revenue +
		a.ShortTermRental.MonthlyProjection
	monthly = round2(monthly)
	a.Valuation = contracts.PropertyValuation{
		TotalMonthlyRevenue: monthly,
		TotalAnnualRevenue:  round2(monthly * 12),
		FiveYearProjection:  round2(monthly * 12 * 5),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
