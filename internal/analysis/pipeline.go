package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tiptopassets/analysis-engine/internal/contracts"
	"github.com/tiptopassets/analysis-engine/internal/coverage"
	"github.com/tiptopassets/analysis-engine/internal/extraction"
	"github.com/tiptopassets/analysis-engine/internal/geocode"
	"github.com/tiptopassets/analysis-engine/internal/market"
	"github.com/tiptopassets/analysis-engine/internal/revenue"
)

const (
	AvailabilityAvailable   = "available"
	AvailabilityLimited     = "limited"
	AvailabilityUnavailable = "unavailable"
)

// Cache persists completed responses. Failures are logged, never surfaced:
// a lost cache write must not fail an otherwise successful analysis.
type Cache interface {
	Put(ctx context.Context, res contracts.AnalyzeResponse) error
}

// Orchestrator runs the full analysis pipeline for one property: location
// resolution, imagery narration, measurement extraction, market estimation,
// structured analysis, revenue validation, and provider coverage.
type Orchestrator struct {
	runner    StageRunner
	narrator  Narrator
	geocoder  geocode.Resolver
	extractor *extraction.Extractor
	market    *market.Estimator
	validator *revenue.Validator
	verifier  *coverage.Verifier
	cache     Cache
	log       zerolog.Logger
}

type OrchestratorConfig struct {
	Runner   StageRunner
	Narrator Narrator // optional; without it extraction sees an empty narrative
	Geocoder geocode.Resolver
	Cache    Cache // optional
	Logger   zerolog.Logger
}

func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	est := market.NewEstimator(nil)
	return &Orchestrator{
		runner:    cfg.Runner,
		narrator:  cfg.Narrator,
		geocoder:  cfg.Geocoder,
		extractor: extraction.New(),
		market:    est,
		validator: revenue.NewValidator(est),
		verifier:  coverage.NewVerifier(nil),
		cache:     cfg.Cache,
		log:       cfg.Logger,
	}
}

// Analyze runs the pipeline end to end. External failures abort the run
// with a typed stage error; the only degradations are the coordinate-only
// location fallback and a skipped narrative, both marked FallbackUsed.
// Cancellation always aborts, never degrades.
func (o *Orchestrator) Analyze(ctx context.Context, req contracts.AnalyzeRequest) (contracts.AnalyzeResponse, error) {
	res := contracts.AnalyzeResponse{
		ID:        uuid.NewString(),
		Address:   strings.TrimSpace(req.Address),
		CreatedAt: time.Now().UTC(),
	}
	if res.Address == "" && req.Coordinates == nil {
		return res, inputErr("analyze", fmt.Errorf("address or coordinates required"))
	}

	loc, fallback, err := o.resolveLocation(ctx, req)
	if err != nil {
		return res, err
	}
	res.LocationInfo = loc
	res.FallbackUsed = fallback

	res.MarketData = o.market.Estimate(loc.Coordinates)

	narrative, err := o.narrate(ctx, &res, req)
	if err != nil {
		return res, err
	}
	res.ImageAnalysis = o.extractor.Extract(narrative)

	details := contracts.PropertyDetails{Type: contracts.PropertySingleFamily}
	if req.Property != nil {
		details = *req.Property
	}

	raw, metrics, err := o.runner.RunStructuredAnalysis(ctx, StructuredAnalysisInput{
		Address:  res.Address,
		Location: loc,
		Market:   res.MarketData,
		Image:    res.ImageAnalysis,
		Property: details,
	})
	if err != nil {
		o.log.Error().Err(err).Int("attempts", metrics.Attempts).Msg("structured analysis failed")
		return res, stageErr(StageStructuredAnalysis, err)
	}

	res.Analysis = o.validator.Validate(raw, &loc.Coordinates, details.Type)

	res.ProviderCoverage = o.verifyCoverage(&res.Analysis, loc, details)
	res.ServiceAvailability = summarizeAvailability(res.ProviderCoverage)

	if o.cache != nil {
		if err := o.cache.Put(ctx, res); err != nil {
			o.log.Warn().Err(err).Str("id", res.ID).Msg("result cache write failed")
		}
	}
	return res, nil
}

func (o *Orchestrator) resolveLocation(ctx context.Context, req contracts.AnalyzeRequest) (contracts.LocationInfo, bool, error) {
	if req.Coordinates != nil {
		loc, err := o.geocoder.Reverse(ctx, *req.Coordinates)
		if err != nil {
			if ctx.Err() != nil {
				return contracts.LocationInfo{}, false, stageErr(StageLocation, err)
			}
			o.log.Warn().Err(err).Msg("reverse geocoding failed, assuming US location")
			return contracts.LocationInfo{Country: "US", Coordinates: *req.Coordinates}, true, nil
		}
		loc.Coordinates = *req.Coordinates
		return loc, false, nil
	}
	loc, err := o.geocoder.Geocode(ctx, req.Address)
	if err != nil {
		return contracts.LocationInfo{}, false, stageErr(StageLocation, err)
	}
	return loc, false, nil
}

func (o *Orchestrator) narrate(ctx context.Context, res *contracts.AnalyzeResponse, req contracts.AnalyzeRequest) (string, error) {
	if o.narrator == nil {
		return "", nil
	}
	narrative, err := o.narrator.Narrate(ctx, res.Address, req.SatelliteImageRef)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			return "", stageErr(StageNarrative, err)
		}
		o.log.Warn().Err(err).Msg("imagery narration failed, continuing without measurements")
		res.FallbackUsed = true
		return "", nil
	}
	return narrative, nil
}

// verifyCoverage runs the verifier concurrently for every asset category
// the analysis names providers for. The verifier is pure, so the only
// shared state is the result map.
func (o *Orchestrator) verifyCoverage(a *contracts.PropertyAnalysis, loc contracts.LocationInfo, details contracts.PropertyDetails) map[contracts.Category][]contracts.ProviderCandidate {
	out := make(map[contracts.Category][]contracts.ProviderCandidate, len(contracts.AssetCategories))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, cat := range contracts.AssetCategories {
		if len(a.ProvidersFor(cat)) == 0 {
			continue
		}
		wg.Add(1)
		go func(cat contracts.Category) {
			defer wg.Done()
			candidates := o.verifier.Verify(cat, loc, details)
			mu.Lock()
			out[cat] = candidates
			mu.Unlock()
		}(cat)
	}
	wg.Wait()
	return out
}

func summarizeAvailability(cov map[contracts.Category][]contracts.ProviderCandidate) string {
	available, covered := 0, 0
	for _, candidates := range cov {
		if len(candidates) == 0 {
			continue
		}
		covered++
		for _, c := range candidates {
			if c.Available {
				available++
				break
			}
		}
	}
	switch {
	case covered == 0 || available == 0:
		return AvailabilityUnavailable
	case available < covered:
		return AvailabilityLimited
	default:
		return AvailabilityAvailable
	}
}
