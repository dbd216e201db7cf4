package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/tiptopassets/analysis-engine/internal/contracts"
)

const analysisSchemaPrompt = `Required JSON schema:
{
  "propertyType": "string or omitted",
  "rooftop": {"area": "float sqft", "type": "string or omitted", "solarCapacity": "float kW", "solarPotential": "boolean", "revenue": "float USD/month", "providers": ["string"]},
  "garden": {"area": "float sqft", "opportunity": "string or omitted", "revenue": "float USD/month", "providers": ["string"]},
  "parking": {"spaces": "integer", "rate": "float USD/day", "evChargerPotential": "boolean", "revenue": "float USD/month", "providers": ["string"]},
  "pool": {"present": "boolean", "area": "float sqft", "type": "string or omitted", "revenue": "float USD/month", "providers": ["string"]},
  "storage": {"volume": "float sqft", "revenue": "float USD/month", "providers": ["string"]},
  "bandwidth": {"available": "float mbps", "revenue": "float USD/month", "providers": ["string"]},
  "shortTermRental": {"nightlyRate": "float USD", "monthlyProjection": "float USD/month", "providers": ["string"]},
  "permits": ["string (0-10 entries)"],
  "topOpportunities": [{"title": "string (3-100 chars)", "category": "rooftop | garden | parking | pool | storage | bandwidth | short_term_rental", "icon": "string", "monthlyRevenue": "float USD/month", "description": "string", "setupCost": "float USD", "roi": "integer months"}],
  "propertyValuation": {"totalMonthlyRevenue": "float", "totalAnnualRevenue": "float", "fiveYearProjection": "float"}
}`

// StructuredAnalysisInput carries everything the model needs to produce a
// per-asset monetization breakdown.
type StructuredAnalysisInput struct {
	Address  string
	Location contracts.LocationInfo
	Market   contracts.MarketData
	Image    contracts.ImageAnalysis
	Property contracts.PropertyDetails
}

type StageRunner interface {
	RunStructuredAnalysis(ctx context.Context, in StructuredAnalysisInput) (contracts.PropertyAnalysis, StageAttemptMetrics, error)
}

type LLMStageRunner struct {
	exec *StageExecutor
}

func NewLLMStageRunner(exec *StageExecutor) *LLMStageRunner {
	return &LLMStageRunner{exec: exec}
}

func (r *LLMStageRunner) RunStructuredAnalysis(ctx context.Context, in StructuredAnalysisInput) (contracts.PropertyAnalysis, StageAttemptMetrics, error) {
	out := contracts.PropertyAnalysis{}
	prompt := fmt.Sprintf(
		"Structured property monetization analysis.\nEstimate realistic monthly sharing-economy revenue per asset class.\n\n%s\n\nProperty address:\n%s\n\nProperty type: %s\n\nLocation:\n%s, %s, %s\n\nMarket context:\naverage rent $%.2f/month, solar savings $%.2f/month, parking $%.2f/day, trend %s\n\nImagery findings:\n%s",
		analysisSchemaPrompt,
		in.Address,
		in.Property.Type,
		in.Location.City, in.Location.State, in.Location.Country,
		in.Market.AverageRent, in.Market.SolarSavingsPerMonth, in.Market.ParkingRatePerDay, in.Market.Trend,
		imageSummary(in.Image),
	)
	m, err := r.exec.Run(ctx, StageStructuredAnalysis, prompt, &out, func() error { return validateAnalysis(out) })
	return out, m, err
}

// imageSummary flattens the extracted measurements into prompt-friendly
// lines, falling back to the raw narrative when nothing was extracted.
func imageSummary(img contracts.ImageAnalysis) string {
	var lines []string
	add := func(label string, m contracts.Measurement, unit string) {
		if m.Value != nil {
			lines = append(lines, fmt.Sprintf("%s: %.0f %s", label, *m.Value, unit))
		}
	}
	add("roof size", img.RoofSize, "sqft")
	add("solar potential score", img.SolarPotentialScore, "/100")
	add("parking spaces", img.ParkingSpaces, "")
	add("garden area", img.GardenArea, "sqft")
	add("garden potential score", img.GardenPotentialScore, "/100")
	add("pool area", img.PoolDimensions, "sqft")
	if img.PoolPresent != nil {
		lines = append(lines, fmt.Sprintf("pool present: %v", *img.PoolPresent))
	}
	if img.RoofType != nil {
		lines = append(lines, "roof type: "+*img.RoofType)
	}
	if img.RoofOrientation != nil {
		lines = append(lines, "roof orientation: "+*img.RoofOrientation)
	}
	if len(lines) == 0 {
		if strings.TrimSpace(img.Narrative) == "" {
			return "No imagery available. Estimate from property type and location only."
		}
		return img.Narrative
	}
	return strings.Join(lines, "\n")
}

func validateAnalysis(a contracts.PropertyAnalysis) error {
	revenues := map[string]float64{
		"rooftop.revenue":                   a.Rooftop.Revenue,
		"garden.revenue":                    a.Garden.Revenue,
		"parking.revenue":                   a.Parking.Revenue,
		"pool.revenue":                      a.Pool.Revenue,
		"storage.revenue":                   a.Storage.Revenue,
		"bandwidth.revenue":                 a.Bandwidth.Revenue,
		"shortTermRental.monthlyProjection": a.ShortTermRental.MonthlyProjection,
	}
	for field, v := range revenues {
		if v < 0 {
			return fmt.Errorf("%s negative", field)
		}
	}
	if a.Parking.Spaces < 0 {
		return fmt.Errorf("parking.spaces negative")
	}
	if a.Parking.RatePerDay < 0 {
		return fmt.Errorf("parking.rate negative")
	}
	if len(a.TopOpportunities) > 10 {
		return fmt.Errorf("topOpportunities count")
	}
	for i, op := range a.TopOpportunities {
		if !between(len(strings.TrimSpace(op.Title)), 3, 100) {
			return fmt.Errorf("topOpportunities[%d].title length", i)
		}
		if op.MonthlyRevenue < 0 {
			return fmt.Errorf("topOpportunities[%d].monthlyRevenue negative", i)
		}
		if op.SetupCost < 0 {
			return fmt.Errorf("topOpportunities[%d].setupCost negative", i)
		}
	}
	if len(a.Permits) > 10 {
		return fmt.Errorf("permits count")
	}
	return nil
}

func between(v, min, max int) bool {
	return v >= min && v <= max
}
