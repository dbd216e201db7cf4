package contracts

import "time"

// AnalyzeRequest is the orchestrator input. Exactly one of Address or
// Coordinates must resolve to a coordinate pair.
type AnalyzeRequest struct {
	Address           string           `json:"address,omitempty"`
	Coordinates       *Coordinates     `json:"coordinates,omitempty"`
	SatelliteImageRef string           `json:"satelliteImageRef,omitempty"`
	Property          *PropertyDetails `json:"property,omitempty"`
}

// AnalyzeResponse is the composite pipeline result. A response is only ever
// produced for a fully completed pipeline run; external failures abort the
// request instead of yielding a partial response.
type AnalyzeResponse struct {
	ID                  string                           `json:"id"`
	Address             string                           `json:"address,omitempty"`
	LocationInfo        LocationInfo                     `json:"locationInfo"`
	MarketData          MarketData                       `json:"marketData"`
	ImageAnalysis       ImageAnalysis                    `json:"imageAnalysis"`
	Analysis            PropertyAnalysis                 `json:"analysis"`
	ProviderCoverage    map[Category][]ProviderCandidate `json:"providerCoverage"`
	ServiceAvailability string                           `json:"serviceAvailability"`
	FallbackUsed        bool                             `json:"fallbackUsed,omitempty"`
	CreatedAt           time.Time                        `json:"createdAt"`
}
