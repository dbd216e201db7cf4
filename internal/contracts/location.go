package contracts

// Coordinates is a WGS84 latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// LocationInfo is the resolved location for a request. It is built once,
// either from a geocoder response or from raw coordinates, and never
// modified afterward.
type LocationInfo struct {
	Country     string      `json:"country"`
	State       string      `json:"state,omitempty"`
	City        string      `json:"city,omitempty"`
	ZipCode     string      `json:"zipCode,omitempty"`
	Coordinates Coordinates `json:"coordinates"`
}

type MarketTrend string

const (
	TrendUp     MarketTrend = "up"
	TrendDown   MarketTrend = "down"
	TrendStable MarketTrend = "stable"
)

// MarketData holds location-derived rates. Estimated is true whenever the
// figures come from reference-point interpolation rather than a live feed,
// so callers can surface the fallback to users instead of presenting the
// numbers as quotes.
type MarketData struct {
	AverageRent          float64     `json:"averageRent"`
	SolarSavingsPerMonth float64     `json:"solarSavingsPerMonth"`
	ParkingRatePerDay    float64     `json:"parkingRatePerDay"`
	Trend                MarketTrend `json:"trend"`
	Confidence           float64     `json:"confidence"`
	Estimated            bool        `json:"estimated"`
}
