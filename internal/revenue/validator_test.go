package revenue

import (
	"math"
	"reflect"
	"testing"

	"github.com/tiptopassets/analysis-engine/internal/contracts"
	"github.com/tiptopassets/analysis-engine/internal/market"
)

// sfCoords sits on the San Francisco reference point so the authoritative
// parking rate is exactly the $30 anchor.
var sfCoords = contracts.Coordinates{Lat: 37.7749, Lng: -122.4194}

func newValidator() *Validator {
	return NewValidator(market.NewEstimator(market.DefaultReferenceTable()))
}

func baseAnalysis() contracts.PropertyAnalysis {
	return contracts.PropertyAnalysis{
		Rooftop: contracts.RooftopAnalysis{Area: 1800, Revenue: 150, Providers: []string{"tesla-energy"}},
		Garden:  contracts.GardenAnalysis{Area: 600, Revenue: 90, Providers: []string{"sniffspot"}},
		Parking: contracts.ParkingAnalysis{Spaces: 2, RatePerDay: 25, Revenue: 1000, Providers: []string{"spothero"}},
		Pool:    contracts.PoolAnalysis{Present: true, Area: 450, Revenue: 400, Providers: []string{"swimply"}},
		Storage: contracts.StorageAnalysis{Volume: 200, Revenue: 120, Providers: []string{"neighbor"}},
		Bandwidth: contracts.BandwidthAnalysis{
			Available: 500, Revenue: 30, Providers: []string{"honeygain"},
		},
		ShortTermRental: contracts.ShortTermRentalAnalysis{NightlyRate: 180, MonthlyProjection: 2400, Providers: []string{"airbnb"}},
		TopOpportunities: []contracts.Opportunity{
			{Title: "Solar Panel Installation", Category: contracts.CategoryRooftop, MonthlyRevenue: 150},
			{Title: "Parking Space Rental", Category: contracts.CategoryParking, MonthlyRevenue: 1000, Description: "upstream description"},
			{Title: "Pool Rental", Category: contracts.CategoryPool, MonthlyRevenue: 400},
		},
	}
}

func TestValidateSingleFamilyParkingScenario(t *testing.T) {
	// Scenario: upstream claims 10 spaces at $80/day. The validator forces
	// spaces to the single-family default of 2, replaces the rate with the
	// authoritative market figure, and rebuilds revenue.
	a := baseAnalysis()
	a.Parking.Spaces = 10
	a.Parking.RatePerDay = 80
	a.Parking.Revenue = 16000

	got := newValidator().Validate(a, &sfCoords, contracts.PropertySingleFamily)

	if got.Parking.Spaces != 2 {
		t.Fatalf("spaces = %d, want 2", got.Parking.Spaces)
	}
	if got.Parking.RatePerDay != 30 {
		t.Fatalf("rate = %v, want authoritative 30", got.Parking.RatePerDay)
	}
	want := math.Min(2*30*ParkingDaysPerMonth, MaxParkingResidential)
	if got.Parking.Revenue != want {
		t.Fatalf("revenue = %v, want %v", got.Parking.Revenue, want)
	}
	opp := findOpportunity(t, got, contracts.CategoryParking)
	if opp.MonthlyRevenue != got.Parking.Revenue {
		t.Fatalf("opportunity revenue %v != corrected %v", opp.MonthlyRevenue, got.Parking.Revenue)
	}
	if opp.Description == "upstream description" {
		t.Fatal("parking description must be rewritten with the corrected figures")
	}
}

func TestValidatePoolCeilingPropagates(t *testing.T) {
	// Scenario: pool revenue of $1500/mo clamps to $800 and the Pool Rental
	// opportunity mirrors the corrected value.
	a := baseAnalysis()
	a.Pool.Revenue = 1500
	got := newValidator().Validate(a, &sfCoords, contracts.PropertySingleFamily)

	if got.Pool.Revenue != MaxPool {
		t.Fatalf("pool revenue = %v, want %v", got.Pool.Revenue, float64(MaxPool))
	}
	if opp := findOpportunity(t, got, contracts.CategoryPool); opp.MonthlyRevenue != MaxPool {
		t.Fatalf("pool opportunity = %v, want %v", opp.MonthlyRevenue, float64(MaxPool))
	}
}

func TestValidateCeilings(t *testing.T) {
	cases := []struct {
		name     string
		propType contracts.PropertyType
		mutate   func(*contracts.PropertyAnalysis)
		check    func(*testing.T, contracts.PropertyAnalysis)
	}{
		{
			name:     "solar residential",
			propType: contracts.PropertySingleFamily,
			mutate:   func(a *contracts.PropertyAnalysis) { a.Rooftop.Revenue = 900 },
			check: func(t *testing.T, got contracts.PropertyAnalysis) {
				if got.Rooftop.Revenue != MaxSolarResidential {
					t.Fatalf("solar = %v, want %v", got.Rooftop.Revenue, float64(MaxSolarResidential))
				}
			},
		},
		{
			name:     "solar commercial keeps higher ceiling",
			propType: contracts.PropertyCommercial,
			mutate:   func(a *contracts.PropertyAnalysis) { a.Rooftop.Revenue = 900 },
			check: func(t *testing.T, got contracts.PropertyAnalysis) {
				if got.Rooftop.Revenue != MaxSolarCommercial {
					t.Fatalf("solar = %v, want %v", got.Rooftop.Revenue, float64(MaxSolarCommercial))
				}
			},
		},
		{
			name:     "garden",
			propType: contracts.PropertySingleFamily,
			mutate:   func(a *contracts.PropertyAnalysis) { a.Garden.Revenue = 450 },
			check: func(t *testing.T, got contracts.PropertyAnalysis) {
				if got.Garden.Revenue != MaxGarden {
					t.Fatalf("garden = %v, want %v", got.Garden.Revenue, float64(MaxGarden))
				}
			},
		},
		{
			name:     "bandwidth",
			propType: contracts.PropertySingleFamily,
			mutate:   func(a *contracts.PropertyAnalysis) { a.Bandwidth.Revenue = 200 },
			check: func(t *testing.T, got contracts.PropertyAnalysis) {
				if got.Bandwidth.Revenue != MaxBandwidth {
					t.Fatalf("bandwidth = %v, want %v", got.Bandwidth.Revenue, float64(MaxBandwidth))
				}
			},
		},
		{
			name:     "storage",
			propType: contracts.PropertySingleFamily,
			mutate:   func(a *contracts.PropertyAnalysis) { a.Storage.Revenue = 750 },
			check: func(t *testing.T, got contracts.PropertyAnalysis) {
				if got.Storage.Revenue != MaxStorage {
					t.Fatalf("storage = %v, want %v", got.Storage.Revenue, float64(MaxStorage))
				}
			},
		},
	}
	v := newValidator()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := baseAnalysis()
			tc.mutate(&a)
			tc.check(t, v.Validate(a, &sfCoords, tc.propType))
		})
	}
}

func TestValidateApartmentCapsSpacesAtThree(t *testing.T) {
	a := baseAnalysis()
	a.Parking.Spaces = 8
	got := newValidator().Validate(a, &sfCoords, contracts.PropertyApartment)
	if got.Parking.Spaces != 3 {
		t.Fatalf("spaces = %d, want 3 for apartment", got.Parking.Spaces)
	}
}

func TestValidateCommercialParkingSpaces(t *testing.T) {
	a := baseAnalysis()
	a.Parking.Spaces = 40
	got := newValidator().Validate(a, &sfCoords, contracts.PropertyCommercial)
	if got.Parking.Spaces != MaxParkingSpacesCommercial {
		t.Fatalf("spaces = %d, want %d", got.Parking.Spaces, MaxParkingSpacesCommercial)
	}
	want := math.Min(float64(MaxParkingSpacesCommercial)*30*ParkingDaysPerMonth, MaxParkingCommercial)
	if got.Parking.Revenue != want {
		t.Fatalf("revenue = %v, want capped %v", got.Parking.Revenue, want)
	}
}

func TestValidateIdempotent(t *testing.T) {
	a := baseAnalysis()
	a.Parking.Spaces = 10
	a.Pool.Revenue = 1500
	a.Rooftop.Revenue = 900

	v := newValidator()
	once := v.Validate(a, &sfCoords, contracts.PropertySingleFamily)
	twice := v.Validate(once, &sfCoords, contracts.PropertySingleFamily)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("validate is not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

// Every corrected per-asset revenue must equal the matching opportunity's
// monthlyRevenue after validation.
func TestValidatePropagationInvariant(t *testing.T) {
	a := baseAnalysis()
	a.Rooftop.Revenue = 5000
	a.Pool.Revenue = 5000
	a.Parking.Spaces = 15
	got := newValidator().Validate(a, &sfCoords, contracts.PropertySingleFamily)

	perAsset := map[contracts.Category]float64{
		contracts.CategoryRooftop: got.Rooftop.Revenue,
		contracts.CategoryParking: got.Parking.Revenue,
		contracts.CategoryPool:    got.Pool.Revenue,
	}
	for _, opp := range got.TopOpportunities {
		want, ok := perAsset[opp.Category]
		if !ok {
			continue
		}
		if opp.MonthlyRevenue != want {
			t.Fatalf("%s opportunity = %v, asset = %v", opp.Category, opp.MonthlyRevenue, want)
		}
	}
}

func TestValidateLegacyTitleMatching(t *testing.T) {
	a := baseAnalysis()
	a.Pool.Revenue = 1500
	// Upstream payload without category tags: matching falls back to
	// case-insensitive title keywords.
	a.TopOpportunities = []contracts.Opportunity{
		{Title: "Backyard POOL sharing", MonthlyRevenue: 1500},
		{Title: "Rent your driveway parking", MonthlyRevenue: 999},
	}
	got := newValidator().Validate(a, &sfCoords, contracts.PropertySingleFamily)
	if got.TopOpportunities[0].MonthlyRevenue != MaxPool {
		t.Fatalf("pool opportunity via title match = %v, want %v", got.TopOpportunities[0].MonthlyRevenue, float64(MaxPool))
	}
	if got.TopOpportunities[1].MonthlyRevenue != got.Parking.Revenue {
		t.Fatalf("parking opportunity via title match = %v, want %v", got.TopOpportunities[1].MonthlyRevenue, got.Parking.Revenue)
	}
}

func TestValidateRecomputesTotals(t *testing.T) {
	a := baseAnalysis()
	a.Valuation = contracts.PropertyValuation{TotalMonthlyRevenue: 99999, TotalAnnualRevenue: 1}
	got := newValidator().Validate(a, &sfCoords, contracts.PropertySingleFamily)

	wantMonthly := got.Rooftop.Revenue + got.Garden.Revenue + got.Parking.Revenue +
		got.Pool.Revenue + got.Storage.Revenue + got.Bandwidth.Revenue +
		got.ShortTermRental.MonthlyProjection
	if got.Valuation.TotalMonthlyRevenue != wantMonthly {
		t.Fatalf("monthly total = %v, want %v", got.Valuation.TotalMonthlyRevenue, wantMonthly)
	}
	if got.Valuation.TotalAnnualRevenue != wantMonthly*12 {
		t.Fatalf("annual total = %v, want %v", got.Valuation.TotalAnnualRevenue, wantMonthly*12)
	}
}

func TestValidateDoesNotMutateInput(t *testing.T) {
	a := baseAnalysis()
	a.Pool.Revenue = 1500
	before := a.TopOpportunities[2].MonthlyRevenue
	_ = newValidator().Validate(a, &sfCoords, contracts.PropertySingleFamily)
	if a.TopOpportunities[2].MonthlyRevenue != before {
		t.Fatal("validator mutated the caller's opportunity slice")
	}
	if a.Pool.Revenue != 1500 {
		t.Fatal("validator mutated the caller's analysis")
	}
}

func TestValidateNilCoordinatesUsesBaseRate(t *testing.T) {
	a := baseAnalysis()
	got := newValidator().Validate(a, nil, contracts.PropertySingleFamily)
	if got.Parking.RatePerDay != market.DefaultReferenceTable().BaseParkingRatePerDay {
		t.Fatalf("rate = %v, want base rate without coordinates", got.Parking.RatePerDay)
	}
}

func findOpportunity(t *testing.T, a contracts.PropertyAnalysis, cat contracts.Category) contracts.Opportunity {
	t.Helper()
	for _, opp := range a.TopOpportunities {
		if opp.Category == cat {
			return opp
		}
	}
	t.Fatalf("no opportunity with category %s", cat)
	return contracts.Opportunity{}
}
