// Package report renders a completed analysis as markdown and as a printable
// PDF for sharing with property owners.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/tiptopassets/analysis-engine/internal/contracts"
)

const Disclaimer = "Revenue figures are automated estimates from imagery and regional market data, " +
	"not quotes or guarantees. Verify provider terms, local regulations, and HOA rules before listing."

var categoryLabels = map[contracts.Category]string{
	contracts.CategoryRooftop:         "Rooftop Solar",
	contracts.CategoryGarden:          "Garden & Yard",
	contracts.CategoryParking:         "Parking",
	contracts.CategoryPool:            "Pool",
	contracts.CategoryStorage:         "Storage",
	contracts.CategoryBandwidth:       "Internet Bandwidth",
	contracts.CategoryShortTermRental: "Short-Term Rental",
}

// BuildMarkdown renders the full owner-facing report.
func BuildMarkdown(res contracts.AnalyzeResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Property Monetization Report\n\n")
	if res.Address != "" {
		fmt.Fprintf(&b, "- Property: %s\n", res.Address)
	}
	fmt.Fprintf(&b, "- Location: %s\n", formatLocation(res.LocationInfo))
	fmt.Fprintf(&b, "- Analysis ID: %s\n", res.ID)
	fmt.Fprintf(&b, "- Date: %s\n\n", res.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "%s\n\n", Disclaimer)

	fmt.Fprintf(&b, "## Executive Summary\n\n")
	fmt.Fprintf(&b, "Estimated total monthly revenue: **$%.2f** ($%.2f/year).\n", res.Analysis.Valuation.TotalMonthlyRevenue, res.Analysis.Valuation.TotalAnnualRevenue)
	fmt.Fprintf(&b, "Five-year projection: **$%.2f**.\n", res.Analysis.Valuation.FiveYearProjection)
	fmt.Fprintf(&b, "Provider availability: **%s**.\n", res.ServiceAvailability)
	if res.FallbackUsed {
		fmt.Fprintf(&b, "Parts of this analysis used fallback estimates because an upstream data source was unavailable.\n")
	}
	b.WriteString("\n")

	writeMarketSection(&b, res.MarketData)
	writeImagerySection(&b, res.ImageAnalysis)
	writeRevenueSection(&b, res.Analysis)
	writeOpportunitySection(&b, res.Analysis.TopOpportunities)
	writeCoverageSection(&b, res.ProviderCoverage)
	return b.String()
}

func formatLocation(loc contracts.LocationInfo) string {
	parts := []string{}
	for _, p := range []string{loc.City, loc.State, loc.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%.4f, %.4f", loc.Coordinates.Lat, loc.Coordinates.Lng)
	}
	return strings.Join(parts, ", ")
}

func writeMarketSection(b *strings.Builder, m contracts.MarketData) {
	fmt.Fprintf(b, "## Market Context\n\n")
	fmt.Fprintf(b, "| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(b, "| Average rent | $%.2f/month |\n", m.AverageRent)
	fmt.Fprintf(b, "| Parking rate | $%.2f/day |\n", m.ParkingRatePerDay)
	fmt.Fprintf(b, "| Solar savings | $%.2f/month |\n", m.SolarSavingsPerMonth)
	fmt.Fprintf(b, "| Trend | %s |\n", m.Trend)
	fmt.Fprintf(b, "| Confidence | %.2f |\n\n", m.Confidence)
	if m.Estimated {
		fmt.Fprintf(b, "Rates are interpolated from regional reference data.\n\n")
	}
}

func writeImagerySection(b *strings.Builder, img contracts.ImageAnalysis) {
	fmt.Fprintf(b, "## Imagery Findings\n\n")
	wrote := false
	line := func(label string, m contracts.Measurement, unit string) {
		if m.Value == nil {
			return
		}
		wrote = true
		if m.ConfidenceScore != nil {
			fmt.Fprintf(b, "- %s: %.0f %s (confidence %.0f%%)\n", label, *m.Value, unit, *m.ConfidenceScore)
			return
		}
		fmt.Fprintf(b, "- %s: %.0f %s\n", label, *m.Value, unit)
	}
	line("Roof size", img.RoofSize, "sqft")
	line("Solar potential score", img.SolarPotentialScore, "/100")
	line("Parking spaces", img.ParkingSpaces, "")
	line("Garden area", img.GardenArea, "sqft")
	line("Pool area", img.PoolDimensions, "sqft")
	if img.PoolPresent != nil {
		wrote = true
		fmt.Fprintf(b, "- Pool present: %v\n", *img.PoolPresent)
	}
	if img.RoofOrientation != nil {
		wrote = true
		fmt.Fprintf(b, "- Roof orientation: %s\n", *img.RoofOrientation)
	}
	if !wrote {
		fmt.Fprintf(b, "No measurable features were identified from imagery.\n")
	}
	b.WriteString("\n")
}

func writeRevenueSection(b *strings.Builder, a contracts.PropertyAnalysis) {
	fmt.Fprintf(b, "## Revenue by Asset\n\n")
	fmt.Fprintf(b, "| Asset | Monthly Revenue | Detail |\n|---|---|---|\n")
	fmt.Fprintf(b, "| %s | $%.2f | %.0f sqft |\n", categoryLabels[contracts.CategoryRooftop], a.Rooftop.Revenue, a.Rooftop.Area)
	fmt.Fprintf(b, "| %s | $%.2f | %.0f sqft |\n", categoryLabels[contracts.CategoryGarden], a.Garden.Revenue, a.Garden.Area)
	fmt.Fprintf(b, "| %s | $%.2f | %d space(s) at $%.2f/day |\n", categoryLabels[contracts.CategoryParking], a.Parking.Revenue, a.Parking.Spaces, a.Parking.RatePerDay)
	fmt.Fprintf(b, "| %s | $%.2f | present: %v |\n", categoryLabels[contracts.CategoryPool], a.Pool.Revenue, a.Pool.Present)
	fmt.Fprintf(b, "| %s | $%.2f | %.0f sqft |\n", categoryLabels[contracts.CategoryStorage], a.Storage.Revenue, a.Storage.Volume)
	fmt.Fprintf(b, "| %s | $%.2f | %.0f mbps |\n", categoryLabels[contracts.CategoryBandwidth], a.Bandwidth.Revenue, a.Bandwidth.Available)
	fmt.Fprintf(b, "| %s | $%.2f | $%.2f/night |\n\n", categoryLabels[contracts.CategoryShortTermRental], a.ShortTermRental.MonthlyProjection, a.ShortTermRental.NightlyRate)
}

func writeOpportunitySection(b *strings.Builder, ops []contracts.Opportunity) {
	fmt.Fprintf(b, "## Top Opportunities\n\n")
	if len(ops) == 0 {
		fmt.Fprintf(b, "No monetization opportunities were identified.\n\n")
		return
	}
	for i, op := range ops {
		fmt.Fprintf(b, "%d. **%s** — $%.2f/month", i+1, op.Title, op.MonthlyRevenue)
		if op.SetupCost > 0 {
			fmt.Fprintf(b, " (setup $%.2f, ROI %d months)", op.SetupCost, op.ROIMonths)
		}
		b.WriteString("\n")
		if op.Description != "" {
			fmt.Fprintf(b, "   %s\n", op.Description)
		}
	}
	b.WriteString("\n")
}

func writeCoverageSection(b *strings.Builder, cov map[contracts.Category][]contracts.ProviderCandidate) {
	fmt.Fprintf(b, "## Provider Coverage\n\n")
	if len(cov) == 0 {
		fmt.Fprintf(b, "Provider coverage was not evaluated.\n\n")
		return
	}
	for _, cat := range contracts.AssetCategories {
		candidates := cov[cat]
		if len(candidates) == 0 {
			continue
		}
		fmt.Fprintf(b, "### %s\n\n", categoryLabels[cat])
		for _, c := range candidates {
			status := "available"
			if !c.Available {
				status = "unavailable"
			}
			fmt.Fprintf(b, "- %s: %s, coverage %s", c.Name, status, c.Coverage)
			if len(c.Restrictions) > 0 {
				fmt.Fprintf(b, " (%s)", strings.Join(c.Restrictions, "; "))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
}
