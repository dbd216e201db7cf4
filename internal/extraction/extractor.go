// Package extraction turns free-form satellite-image narratives into typed,
// confidence-scored measurements. The narrative comes from a generative
// vision model and may omit any feature, contradict itself, or phrase the
// same fact a dozen ways, so every pattern here is best-effort: a miss is a
// nil value, never an error.
package extraction

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tiptopassets/analysis-engine/internal/contracts"
)

// Plausible bounds per feature. Out-of-range values are clamped to the
// nearest bound rather than discarded, so a wildly wrong narrative still
// yields a usable (if conservative) measurement.
const (
	MinRoofSqft   = 100
	MaxRoofSqft   = 10000
	MinParking    = 0
	MaxParking    = 20
	MinGardenSqft = 0
	MaxGardenSqft = 5000
	MinPoolSqft   = 0
	MaxPoolSqft   = 2000
	MinScore      = 0
	MaxScore      = 100
)

// Confidence assigned to a measurement depending on how it was matched.
const (
	confidenceExplicit    = 80 // number with an explicit unit next to the keyword
	confidenceInferred    = 55 // number near the keyword, unit assumed
	confidenceQualitative = 60 // mapped from a qualitative adjective
)

var (
	reRoofSize = regexp.MustCompile(`(?i)roof(?:top)?[^.\n]{0,60}?([\d,]+(?:\.\d+)?)\s*(?:sq\.?\s*(?:ft|feet)|square\s*(?:feet|foot)|sqft|ft2)`)
	reRoofAlt  = regexp.MustCompile(`(?i)([\d,]+(?:\.\d+)?)\s*(?:sq\.?\s*(?:ft|feet)|square\s*(?:feet|foot)|sqft)[^.\n]{0,40}?roof`)

	reParkingSpaces = regexp.MustCompile(`(?i)(\d{1,3})\s*(?:car|parking|vehicle)?\s*(?:parking\s*)?(?:spaces?|spots?|stalls?)`)
	reParkingAlt    = regexp.MustCompile(`(?i)parking\s*(?:for|area[^.\n]{0,20}?)\s*(\d{1,3})`)
	reParkingDims   = regexp.MustCompile(`(?i)(?:parking|spaces?|stalls?)[^.\n]{0,40}?(\d{1,2}\s*[x×]\s*\d{1,2}\s*(?:ft|feet|m)?)`)

	reGardenArea = regexp.MustCompile(`(?i)(?:garden|yard|lawn|green\s*space)[^.\n]{0,60}?([\d,]+(?:\.\d+)?)\s*(?:sq\.?\s*(?:ft|feet)|square\s*(?:feet|foot)|sqft)`)

	rePoolDims = regexp.MustCompile(`(?i)pool[^.\n]{0,50}?(\d{1,3})\s*[x×]\s*(\d{1,3})\s*(?:ft|feet)?`)
	rePoolArea = regexp.MustCompile(`(?i)pool[^.\n]{0,50}?([\d,]+(?:\.\d+)?)\s*(?:sq\.?\s*(?:ft|feet)|square\s*(?:feet|foot)|sqft)`)
	reNoPool   = regexp.MustCompile(`(?i)\bno\s+(?:swimming\s+)?pool\b|\bwithout\s+a?\s*pool\b|\bpool[^.\n]{0,20}?\b(?:absent|not\s+(?:present|visible))\b`)
	rePool     = regexp.MustCompile(`(?i)\b(?:swimming\s+)?pool\b`)

	rePercent = `(\d{1,3})\s*(?:%|percent)`

	reSolarScore   = regexp.MustCompile(`(?i)solar[^.\n]{0,50}?` + rePercent)
	reGardenScore  = regexp.MustCompile(`(?i)garden[^.\n]{0,50}?` + rePercent)
	reOverallScore = regexp.MustCompile(`(?i)(?:overall|analysis|image)[^.\n]{0,40}?(?:reliability|confidence)[^.\n]{0,30}?` + rePercent)

	reThousands = strings.NewReplacer(",", "")
)

// Qualitative adjectives map to fixed numeric buckets so qualitative and
// percentage scores share one scale.
var qualitativeBuckets = []struct {
	words []string
	score float64
}{
	{[]string{"excellent", "outstanding", "ideal"}, 90},
	{[]string{"good", "strong", "high"}, 70},
	{[]string{"moderate", "fair", "average", "medium"}, 50},
	{[]string{"poor", "low", "weak", "minimal"}, 20},
}

var roofTypes = []string{"flat", "gabled", "hipped", "sloped", "pitched", "metal", "shingle", "tile"}
var poolTypes = []string{"in-ground", "inground", "above-ground", "above ground", "infinity", "lap"}
var orientations = []string{"south", "southwest", "southeast", "north", "northwest", "northeast", "east", "west"}

type Extractor struct{}

func New() *Extractor { return &Extractor{} }

// Extract parses a narrative into an ImageAnalysis. It never fails: in the
// worst case every field is nil, which downstream components must treat as a
// valid low-confidence input.
func (e *Extractor) Extract(narrative string) contracts.ImageAnalysis {
	out := contracts.ImageAnalysis{Narrative: narrative}
	if strings.TrimSpace(narrative) == "" {
		return out
	}

	out.RoofSize = e.extractRoofSize(narrative)
	out.RoofType = matchKeyword(narrative, "roof", roofTypes)
	out.RoofOrientation = extractOrientation(narrative)
	out.SolarPotentialScore = extractScore(narrative, reSolarScore, "solar")
	out.ParkingSpaces = e.extractParkingSpaces(narrative)
	out.ParkingDimensions = extractParkingDims(narrative)
	out.GardenArea = extractArea(narrative, reGardenArea, MinGardenSqft, MaxGardenSqft)
	out.GardenPotentialScore = extractScore(narrative, reGardenScore, "garden")
	out.PoolPresent, out.PoolDimensions, out.PoolType = e.extractPool(narrative)
	out.OverallReliability = extractScore(narrative, reOverallScore, "reliability")
	return out
}

func (e *Extractor) extractRoofSize(text string) contracts.Measurement {
	for _, re := range []*regexp.Regexp{reRoofSize, reRoofAlt} {
		if m := re.FindStringSubmatch(text); m != nil {
			if v, ok := parseNumber(m[1]); ok {
				return measurement(clamp(v, MinRoofSqft, MaxRoofSqft), contracts.UnitSqft, confidenceExplicit)
			}
		}
	}
	return contracts.Measurement{Unit: contracts.UnitSqft}
}

func (e *Extractor) extractParkingSpaces(text string) contracts.Measurement {
	if m := reParkingSpaces.FindStringSubmatch(text); m != nil {
		if v, ok := parseNumber(m[1]); ok {
			return measurement(clamp(v, MinParking, MaxParking), contracts.UnitCount, confidenceExplicit)
		}
	}
	if m := reParkingAlt.FindStringSubmatch(text); m != nil {
		if v, ok := parseNumber(m[1]); ok {
			return measurement(clamp(v, MinParking, MaxParking), contracts.UnitCount, confidenceInferred)
		}
	}
	return contracts.Measurement{Unit: contracts.UnitCount}
}

func (e *Extractor) extractPool(text string) (*bool, contracts.Measurement, *string) {
	dims := contracts.Measurement{Unit: contracts.UnitSqft}
	if reNoPool.MatchString(text) {
		f := false
		return &f, dims, nil
	}
	if !rePool.MatchString(text) {
		return nil, dims, nil
	}
	t := true

	if m := rePoolDims.FindStringSubmatch(text); m != nil {
		w, okW := parseNumber(m[1])
		l, okL := parseNumber(m[2])
		if okW && okL {
			dims = measurement(clamp(w*l, MinPoolSqft, MaxPoolSqft), contracts.UnitSqft, confidenceExplicit)
		}
	} else if m := rePoolArea.FindStringSubmatch(text); m != nil {
		if v, ok := parseNumber(m[1]); ok {
			dims = measurement(clamp(v, MinPoolSqft, MaxPoolSqft), contracts.UnitSqft, confidenceExplicit)
		}
	}
	return &t, dims, matchKeyword(text, "pool", poolTypes)
}

func extractArea(text string, re *regexp.Regexp, min, max float64) contracts.Measurement {
	if m := re.FindStringSubmatch(text); m != nil {
		if v, ok := parseNumber(m[1]); ok {
			return measurement(clamp(v, min, max), contracts.UnitSqft, confidenceExplicit)
		}
	}
	return contracts.Measurement{Unit: contracts.UnitSqft}
}

// extractScore prefers an explicit percentage and falls back to a
// qualitative adjective near the keyword.
func extractScore(text string, re *regexp.Regexp, keyword string) contracts.Measurement {
	if m := re.FindStringSubmatch(text); m != nil {
		if v, ok := parseNumber(m[1]); ok {
			return measurement(clamp(v, MinScore, MaxScore), contracts.UnitPercent, confidenceExplicit)
		}
	}
	if score, ok := qualitativeNear(text, keyword); ok {
		return measurement(score, contracts.UnitPercent, confidenceQualitative)
	}
	return contracts.Measurement{Unit: contracts.UnitPercent}
}

// qualitativeNear looks for a bucket adjective within the same clause as the
// keyword, in either order ("excellent solar potential", "solar potential is
// excellent").
func qualitativeNear(text, keyword string) (float64, bool) {
	lower := strings.ToLower(text)
	idx := strings.Index(lower, keyword)
	if idx < 0 {
		return 0, false
	}
	start := idx - 40
	if start < 0 {
		start = 0
	}
	end := idx + len(keyword) + 80
	if end > len(lower) {
		end = len(lower)
	}
	window := lower[start:end]
	for _, bucket := range qualitativeBuckets {
		for _, w := range bucket.words {
			if containsWord(window, w) {
				return bucket.score, true
			}
		}
	}
	return 0, false
}

func extractOrientation(text string) *string {
	lower := strings.ToLower(text)
	idx := strings.Index(lower, "roof")
	if idx < 0 {
		idx = strings.Index(lower, "facing")
	}
	if idx < 0 {
		return nil
	}
	start := idx - 40
	if start < 0 {
		start = 0
	}
	end := idx + 80
	if end > len(lower) {
		end = len(lower)
	}
	window := lower[start:end]
	// Longer names first so "southwest" is not reported as "south".
	for _, o := range []string{"southwest", "southeast", "northwest", "northeast", "south", "north", "east", "west"} {
		if containsWord(window, o) {
			v := o
			return &v
		}
	}
	return nil
}

func extractParkingDims(text string) *string {
	if m := reParkingDims.FindStringSubmatch(text); m != nil {
		v := strings.Join(strings.Fields(m[1]), " ")
		return &v
	}
	return nil
}

// matchKeyword returns the first descriptor that appears in the same clause
// as the anchor keyword.
func matchKeyword(text, anchor string, descriptors []string) *string {
	lower := strings.ToLower(text)
	idx := strings.Index(lower, anchor)
	if idx < 0 {
		return nil
	}
	start := idx - 50
	if start < 0 {
		start = 0
	}
	end := idx + len(anchor) + 50
	if end > len(lower) {
		end = len(lower)
	}
	window := lower[start:end]
	for _, d := range descriptors {
		if strings.Contains(window, d) {
			v := strings.ReplaceAll(d, " ", "-")
			return &v
		}
	}
	return nil
}

func containsWord(haystack, word string) bool {
	idx := 0
	for {
		i := strings.Index(haystack[idx:], word)
		if i < 0 {
			return false
		}
		i += idx
		before := i == 0 || !isLetter(haystack[i-1])
		afterIdx := i + len(word)
		after := afterIdx >= len(haystack) || !isLetter(haystack[afterIdx])
		if before && after {
			return true
		}
		idx = i + len(word)
		if idx >= len(haystack) {
			return false
		}
	}
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func parseNumber(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(reThousands.Replace(strings.TrimSpace(raw)), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func measurement(value float64, unit contracts.MeasurementUnit, confidence float64) contracts.Measurement {
	return contracts.Measurement{Value: &value, Unit: unit, ConfidenceScore: &confidence}
}
