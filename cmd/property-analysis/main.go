package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/tiptopassets/analysis-engine/internal/analysis"
	"github.com/tiptopassets/analysis-engine/internal/contracts"
	"github.com/tiptopassets/analysis-engine/internal/geocode"
)

func main() {
	_ = godotenv.Load()

	address := flag.String("address", "", "property street address")
	lat := flag.Float64("lat", 0, "latitude (used with -lng instead of -address)")
	lng := flag.Float64("lng", 0, "longitude")
	imageRef := flag.String("image", "", "satellite image URL")
	propType := flag.String("type", "single_family", "property type: single_family, apartment, commercial, multi_family")
	sizeSqft := flag.Float64("size", 0, "property size in sqft (0 = unknown)")
	hasHOA := flag.Bool("hoa", false, "property is subject to an HOA")
	outputPath := flag.String("output", "", "path to write the response JSON (defaults to stdout)")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if strings.TrimSpace(*address) == "" && *lat == 0 && *lng == 0 {
		log.Fatal().Msg("either -address or -lat/-lng is required")
	}
	geocoderURL := strings.TrimSpace(os.Getenv("GEOCODER_BASE_URL"))
	if geocoderURL == "" {
		log.Fatal().Msg("GEOCODER_BASE_URL is required")
	}

	caller, err := analysis.NewAnthropicCallerFromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("anthropic caller init failed")
	}
	narrator, err := analysis.NewAnthropicNarratorFromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("anthropic narrator init failed")
	}

	orch := analysis.NewOrchestrator(analysis.OrchestratorConfig{
		Runner:   analysis.NewLLMStageRunner(analysis.NewStageExecutor(caller)),
		Narrator: narrator,
		Geocoder: geocode.NewHTTPResolver(geocoderURL),
		Logger:   log,
	})

	req := contracts.AnalyzeRequest{
		Address:           strings.TrimSpace(*address),
		SatelliteImageRef: strings.TrimSpace(*imageRef),
		Property:          buildProperty(*propType, *sizeSqft, *hasHOA),
	}
	if *lat != 0 || *lng != 0 {
		req.Coordinates = &contracts.Coordinates{Lat: *lat, Lng: *lng}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	res, err := orch.Analyze(ctx, req)
	if err != nil {
		log.Fatal().Err(err).Msg("analysis failed")
	}

	blob, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("encode response")
	}
	if *outputPath == "" {
		fmt.Println(string(blob))
		return
	}
	if err := os.WriteFile(*outputPath, blob, 0o644); err != nil {
		log.Fatal().Err(err).Str("path", *outputPath).Msg("write output")
	}
	log.Info().Str("path", *outputPath).Str("id", res.ID).Msg("analysis written")
}

func buildProperty(propType string, sizeSqft float64, hasHOA bool) *contracts.PropertyDetails {
	details := &contracts.PropertyDetails{Type: contracts.PropertyType(propType)}
	if sizeSqft > 0 {
		details.SizeSqft = &sizeSqft
	}
	if hasHOA {
		details.HasHOA = &hasHOA
	}
	return details
}
