package market

import "github.com/tiptopassets/analysis-engine/internal/contracts"

// ReferencePoint is a metropolitan anchor with known market rates.
type ReferencePoint struct {
	City              string
	State             string
	Coordinates       contracts.Coordinates
	ParkingRatePerDay float64
	AverageRent       float64
}

// ReferenceTable is the single authoritative rate table. One instance is
// shared between the rate estimator and the revenue validator so the two can
// never disagree on a rate.
type ReferenceTable struct {
	Points []ReferencePoint

	BaseParkingRatePerDay float64
	BaseAverageRent       float64
	BaseSolarSavings      float64

	MinParkingRatePerDay float64
	MaxParkingRatePerDay float64
	MinAverageRent       float64
	MaxAverageRent       float64
}

// DefaultReferenceTable returns the built-in metro anchors. The table is
// read-only after construction and safe for concurrent use.
func DefaultReferenceTable() *ReferenceTable {
	return &ReferenceTable{
		Points: []ReferencePoint{
			{City: "San Francisco", State: "CA", Coordinates: contracts.Coordinates{Lat: 37.7749, Lng: -122.4194}, ParkingRatePerDay: 30, AverageRent: 3400},
			{City: "New York", State: "NY", Coordinates: contracts.Coordinates{Lat: 40.7128, Lng: -74.0060}, ParkingRatePerDay: 45, AverageRent: 3800},
			{City: "Los Angeles", State: "CA", Coordinates: contracts.Coordinates{Lat: 34.0522, Lng: -118.2437}, ParkingRatePerDay: 28, AverageRent: 2700},
			{City: "Chicago", State: "IL", Coordinates: contracts.Coordinates{Lat: 41.8781, Lng: -87.6298}, ParkingRatePerDay: 25, AverageRent: 2100},
			{City: "Miami", State: "FL", Coordinates: contracts.Coordinates{Lat: 25.7617, Lng: -80.1918}, ParkingRatePerDay: 27, AverageRent: 2600},
			{City: "Austin", State: "TX", Coordinates: contracts.Coordinates{Lat: 30.2672, Lng: -97.7431}, ParkingRatePerDay: 20, AverageRent: 1900},
			{City: "Seattle", State: "WA", Coordinates: contracts.Coordinates{Lat: 47.6062, Lng: -122.3321}, ParkingRatePerDay: 26, AverageRent: 2300},
			{City: "Denver", State: "CO", Coordinates: contracts.Coordinates{Lat: 39.7392, Lng: -104.9903}, ParkingRatePerDay: 22, AverageRent: 2000},
			{City: "Boston", State: "MA", Coordinates: contracts.Coordinates{Lat: 42.3601, Lng: -71.0589}, ParkingRatePerDay: 34, AverageRent: 3100},
			{City: "Atlanta", State: "GA", Coordinates: contracts.Coordinates{Lat: 33.7490, Lng: -84.3880}, ParkingRatePerDay: 18, AverageRent: 1800},
		},
		BaseParkingRatePerDay: 15,
		BaseAverageRent:       1600,
		BaseSolarSavings:      150,
		MinParkingRatePerDay:  8,
		MaxParkingRatePerDay:  50,
		MinAverageRent:        600,
		MaxAverageRent:        5000,
	}
}
