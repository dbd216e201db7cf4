package contracts

type MeasurementUnit string

const (
	UnitSqft    MeasurementUnit = "sqft"
	UnitCount   MeasurementUnit = "count"
	UnitPercent MeasurementUnit = "percent"
)

// Measurement is a single physical quantity pulled out of narrative text.
// Value is nil when the narrative never mentioned the feature; that is a
// normal outcome, not an error.
type Measurement struct {
	Value           *float64        `json:"value"`
	Unit            MeasurementUnit `json:"unit"`
	ConfidenceScore *float64        `json:"confidenceScore"`
}

// ImageAnalysis aggregates every measurement extracted from one satellite
// narrative, plus the raw text for auditability. Numeric fields are clamped
// to feature-specific plausible ranges at extraction time.
type ImageAnalysis struct {
	RoofSize             Measurement `json:"roofSize"`
	RoofType             *string     `json:"roofType"`
	RoofOrientation      *string     `json:"roofOrientation"`
	SolarPotentialScore  Measurement `json:"solarPotentialScore"`
	ParkingSpaces        Measurement `json:"parkingSpaces"`
	ParkingDimensions    *string     `json:"parkingDimensions"`
	GardenArea           Measurement `json:"gardenArea"`
	GardenPotentialScore Measurement `json:"gardenPotentialScore"`
	PoolPresent          *bool       `json:"poolPresent"`
	PoolDimensions       Measurement `json:"poolDimensions"`
	PoolType             *string     `json:"poolType"`
	OverallReliability   Measurement `json:"overallReliability"`
	Narrative            string      `json:"narrative"`
}
