package contracts

import "strings"

type PropertyType string

const (
	PropertySingleFamily PropertyType = "single_family"
	PropertyApartment    PropertyType = "apartment"
	PropertyCommercial   PropertyType = "commercial"
	PropertyMultiFamily  PropertyType = "multi_family"
)

// PropertyDetails drives which revenue ceiling and which provider
// eligibility rules apply.
type PropertyDetails struct {
	Type     PropertyType `json:"type"`
	SizeSqft *float64     `json:"sizeSqft,omitempty"`
	HasHOA   *bool        `json:"hasHOA,omitempty"`
}

// Category tags an asset class. The same tag is carried on AssetAnalysis
// sections and on Opportunity records so corrected revenue can be propagated
// without string matching on titles.
type Category string

const (
	CategoryRooftop         Category = "rooftop"
	CategoryGarden          Category = "garden"
	CategoryParking         Category = "parking"
	CategoryPool            Category = "pool"
	CategoryStorage         Category = "storage"
	CategoryBandwidth       Category = "bandwidth"
	CategoryShortTermRental Category = "short_term_rental"
)

// AssetCategories lists every category in response order.
var AssetCategories = []Category{
	CategoryRooftop,
	CategoryGarden,
	CategoryParking,
	CategoryPool,
	CategoryStorage,
	CategoryBandwidth,
	CategoryShortTermRental,
}

// categoryKeywords backs the legacy title-substring fallback for upstream
// payloads that omit the category tag on opportunities.
var categoryKeywords = map[Category][]string{
	CategoryRooftop:         {"solar", "roof"},
	CategoryGarden:          {"garden", "lawn"},
	CategoryParking:         {"parking", "driveway"},
	CategoryPool:            {"pool", "swim"},
	CategoryStorage:         {"storage"},
	CategoryBandwidth:       {"bandwidth", "internet"},
	CategoryShortTermRental: {"rental", "airbnb"},
}

// CategoryFromTitle infers an asset category from an opportunity title via
// case-insensitive keyword matching. Returns "" when nothing matches.
func CategoryFromTitle(title string) Category {
	lower := strings.ToLower(title)
	for _, cat := range AssetCategories {
		for _, kw := range categoryKeywords[cat] {
			if strings.Contains(lower, kw) {
				return cat
			}
		}
	}
	return ""
}

type CoverageLevel string

const (
	CoverageFull    CoverageLevel = "full"
	CoveragePartial CoverageLevel = "partial"
	CoverageNone    CoverageLevel = "none"
)

// ProviderCandidate is built fresh per request from the static provider
// registry and never mutated after creation, only filtered and sorted.
type ProviderCandidate struct {
	ProviderID   string        `json:"providerId"`
	Name         string        `json:"name"`
	Coverage     CoverageLevel `json:"coverage"`
	Available    bool          `json:"available"`
	Restrictions []string      `json:"restrictions"`
}

// Opportunity is the UI-facing projection of an asset's revenue potential.
// Whenever a per-asset revenue is corrected, the matching opportunity must
// be updated to the identical figure.
type Opportunity struct {
	Title          string   `json:"title"`
	Category       Category `json:"category,omitempty"`
	Icon           string   `json:"icon"`
	MonthlyRevenue float64  `json:"monthlyRevenue"`
	Description    string   `json:"description"`
	SetupCost      float64  `json:"setupCost"`
	ROIMonths      int      `json:"roi"`
}

type RooftopAnalysis struct {
	Area           float64  `json:"area"`
	Type           string   `json:"type,omitempty"`
	SolarCapacity  float64  `json:"solarCapacity"`
	SolarPotential bool     `json:"solarPotential"`
	Revenue        float64  `json:"revenue"`
	Providers      []string `json:"providers"`
}

type GardenAnalysis struct {
	Area        float64  `json:"area"`
	Opportunity string   `json:"opportunity,omitempty"`
	Revenue     float64  `json:"revenue"`
	Providers   []string `json:"providers"`
}

type ParkingAnalysis struct {
	Spaces             int      `json:"spaces"`
	RatePerDay         float64  `json:"rate"`
	EVChargerPotential bool     `json:"evChargerPotential"`
	Revenue            float64  `json:"revenue"`
	Providers          []string `json:"providers"`
}

type PoolAnalysis struct {
	Present   bool     `json:"present"`
	Area      float64  `json:"area"`
	Type      string   `json:"type,omitempty"`
	Revenue   float64  `json:"revenue"`
	Providers []string `json:"providers"`
}

type StorageAnalysis struct {
	Volume    float64  `json:"volume"`
	Revenue   float64  `json:"revenue"`
	Providers []string `json:"providers"`
}

type BandwidthAnalysis struct {
	Available float64  `json:"available"`
	Revenue   float64  `json:"revenue"`
	Providers []string `json:"providers"`
}

type ShortTermRentalAnalysis struct {
	NightlyRate       float64  `json:"nightlyRate"`
	MonthlyProjection float64  `json:"monthlyProjection"`
	Providers         []string `json:"providers"`
}

// PropertyValuation carries the property-level totals. The validator always
// recomputes these from the corrected per-asset figures and never trusts an
// upstream aggregate.
type PropertyValuation struct {
	TotalMonthlyRevenue float64 `json:"totalMonthlyRevenue"`
	TotalAnnualRevenue  float64 `json:"totalAnnualRevenue"`
	FiveYearProjection  float64 `json:"fiveYearProjection"`
}

// PropertyAnalysis is the structured analysis of one property. Field names
// are fixed for UI compatibility; do not rename the JSON keys.
type PropertyAnalysis struct {
	PropertyType     string                  `json:"propertyType,omitempty"`
	Rooftop          RooftopAnalysis         `json:"rooftop"`
	Garden           GardenAnalysis          `json:"garden"`
	Parking          ParkingAnalysis         `json:"parking"`
	Pool             PoolAnalysis            `json:"pool"`
	Storage          StorageAnalysis         `json:"storage"`
	Bandwidth        BandwidthAnalysis       `json:"bandwidth"`
	ShortTermRental  ShortTermRentalAnalysis `json:"shortTermRental"`
	Permits          []string                `json:"permits,omitempty"`
	TopOpportunities []Opportunity           `json:"topOpportunities"`
	Valuation        PropertyValuation       `json:"propertyValuation"`
}

// ProvidersFor returns the upstream provider names for a category.
func (p *PropertyAnalysis) ProvidersFor(cat Category) []string {
	switch cat {
	case CategoryRooftop:
		return p.Rooftop.Providers
	case CategoryGarden:
		return p.Garden.Providers
	case CategoryParking:
		return p.Parking.Providers
	case CategoryPool:
		return p.Pool.Providers
	case CategoryStorage:
		return p.Storage.Providers
	case CategoryBandwidth:
		return p.Bandwidth.Providers
	case CategoryShortTermRental:
		return p.ShortTermRental.Providers
	default:
		return nil
	}
}
