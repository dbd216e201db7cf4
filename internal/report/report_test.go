package report

import (
	"strings"
	"testing"
	"time"

	"github.com/tiptopassets/analysis-engine/internal/contracts"
)

func sampleResponse() contracts.AnalyzeResponse {
	roof := 1800.0
	conf := 80.0
	return contracts.AnalyzeResponse{
		ID:      "f1e2d3c4",
		Address: "123 Main St, San Francisco, CA",
		LocationInfo: contracts.LocationInfo{
			Country: "US", State: "CA", City: "San Francisco",
			Coordinates: contracts.Coordinates{Lat: 37.7749, Lng: -122.4194},
		},
		MarketData: contracts.MarketData{
			AverageRent: 3400, SolarSavingsPerMonth: 150, ParkingRatePerDay: 30,
			Trend: contracts.TrendUp, Confidence: 0.95, Estimated: true,
		},
		ImageAnalysis: contracts.ImageAnalysis{
			RoofSize: contracts.Measurement{Value: &roof, Unit: contracts.UnitSqft, ConfidenceScore: &conf},
		},
		Analysis: contracts.PropertyAnalysis{
			Rooftop: contracts.RooftopAnalysis{Area: 1800, Revenue: 160},
			Parking: contracts.ParkingAnalysis{Spaces: 2, RatePerDay: 30, Revenue: 1000},
			TopOpportunities: []contracts.Opportunity{
				{Title: "Parking space rental", Category: contracts.CategoryParking, MonthlyRevenue: 1000, Description: "2 space(s) at $30.00/day", SetupCost: 0},
				{Title: "Rooftop solar hosting", Category: contracts.CategoryRooftop, MonthlyRevenue: 160, SetupCost: 5000, ROIMonths: 31},
			},
			Valuation: contracts.PropertyValuation{TotalMonthlyRevenue: 1160, TotalAnnualRevenue: 13920, FiveYearProjection: 69600},
		},
		ProviderCoverage: map[contracts.Category][]contracts.ProviderCandidate{
			contracts.CategoryParking: {
				{ProviderID: "spothero", Name: "SpotHero", Coverage: contracts.CoverageFull, Available: true, Restrictions: []string{}},
			},
			contracts.CategoryPool: {
				{ProviderID: "swimply", Name: "Swimply", Coverage: contracts.CoverageNone, Available: false, Restrictions: []string{"Service not available in your area"}},
			},
		},
		ServiceAvailability: "limited",
		CreatedAt:           time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC),
	}
}

func TestBuildMarkdown(t *testing.T) {
	md := BuildMarkdown(sampleResponse())

	for _, want := range []string{
		"# Property Monetization Report",
		"123 Main St, San Francisco, CA",
		"San Francisco, CA, US",
		"Estimated total monthly revenue: **$1160.00**",
		"Five-year projection: **$69600.00**",
		"| Parking | $1000.00 | 2 space(s) at $30.00/day |",
		"Roof size: 1800 sqft (confidence 80%)",
		"1. **Parking space rental** — $1000.00/month",
		"(setup $5000.00, ROI 31 months)",
		"## Provider Coverage",
		"- SpotHero: available, coverage full",
		"- Swimply: unavailable, coverage none (Service not available in your area)",
		Disclaimer,
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestBuildMarkdownFallbackNote(t *testing.T) {
	res := sampleResponse()
	res.FallbackUsed = true
	md := BuildMarkdown(res)
	if !strings.Contains(md, "fallback estimates") {
		t.Fatal("markdown missing fallback note")
	}
	if strings.Contains(BuildMarkdown(sampleResponse()), "fallback estimates") {
		t.Fatal("fallback note must not appear without the flag")
	}
}

func TestBuildMarkdownEmptyCoverage(t *testing.T) {
	res := sampleResponse()
	res.ProviderCoverage = nil
	md := BuildMarkdown(res)
	if !strings.Contains(md, "Provider coverage was not evaluated.") {
		t.Fatal("missing empty-coverage note")
	}
}

func TestFormatLocationCoordinatesOnly(t *testing.T) {
	loc := contracts.LocationInfo{Coordinates: contracts.Coordinates{Lat: 39.05, Lng: -95.68}}
	if got := formatLocation(loc); got != "39.0500, -95.6800" {
		t.Fatalf("formatLocation = %q", got)
	}
}

func TestBuildHTML(t *testing.T) {
	htmlDoc, err := buildHTML(sampleResponse())
	if err != nil {
		t.Fatalf("buildHTML: %v", err)
	}
	for _, want := range []string{
		"<!doctype html>",
		"Property Monetization Report",
		"<table>",
		`data-page-break-before="true"`,
		"report-badge",
		"f1e2d3c4",
	} {
		if !strings.Contains(htmlDoc, want) {
			t.Errorf("html missing %q", want)
		}
	}
}

func TestApplyPrintLayoutHooks(t *testing.T) {
	in := `<h2 id="provider-coverage">Provider Coverage</h2>`
	out := applyPrintLayoutHooks(in)
	if !strings.Contains(out, `data-page-break-before="true"`) {
		t.Fatalf("hook not applied: %s", out)
	}
}

func TestBuildBadgeHTML(t *testing.T) {
	res := sampleResponse()
	badges := buildBadgeHTML(res)
	if !strings.Contains(badges, "$1160/month") || !strings.Contains(badges, "limited") {
		t.Fatalf("badges = %s", badges)
	}
	res.FallbackUsed = true
	if !strings.Contains(buildBadgeHTML(res), "fallback data") {
		t.Fatal("fallback badge missing")
	}
}
