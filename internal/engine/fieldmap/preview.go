package fieldmap

import "math"

// Conflict recommendation thresholds, evaluated in order: confident new data
// wins, near-identical values merge, anything else keeps what the project
// already has.
const (
	conflictUseNewMinConfidence = 85
	conflictMergeMaxRelDiff     = 0.10
)

// Conflict recommendations.
const (
	RecommendUseNew       = "use_new"
	RecommendMerge        = "merge"
	RecommendKeepExisting = "keep_existing"
)

// Conflict records a proposed value that disagrees with existing project
// data.
type Conflict struct {
	Field          string      `json:"field"` // section.field
	ExistingValue  interface{} `json:"existingValue"`
	NewValue       interface{} `json:"newValue"`
	Confidence     int         `json:"confidence"`
	Recommendation string      `json:"recommendation"`
}

// ImportPreview is the transient per-session result the review UI decides
// to commit or discard. Never persisted directly.
type ImportPreview struct {
	Analysis    ImportAnalysis         `json:"analysis"`
	Rules       []MappingRule          `json:"mappingRules"`
	PreviewData map[string]interface{} `json:"previewData"`
	Conflicts   []Conflict             `json:"conflicts"`
}

// CreateImportPreview applies the mapping rules to build the projected data
// set, converting known units, and flags conflicts against existing project
// data. Unrecognized unit conversions pass the value through unchanged.
func (a *Analyzer) CreateImportPreview(analysis ImportAnalysis, existing map[string]interface{}) ImportPreview {
	rules := a.GenerateMappingRules(analysis)
	preview := ImportPreview{
		Analysis:    analysis,
		Rules:       rules,
		PreviewData: map[string]interface{}{},
	}

	fieldsByName := map[string]DetectedField{}
	for _, f := range analysis.Fields {
		fieldsByName[f.OriginalName] = f
	}

	for _, rule := range rules {
		field, ok := fieldsByName[rule.SourceField]
		if !ok {
			continue
		}

		value := field.Value
		if rule.Transformation == TransformationUnitConversion {
			if n, isNum := value.(float64); isNum {
				value = convertUnit(n, field.Unit)
			}
		}
		preview.PreviewData[rule.Target()] = value

		existingValue, present := existing[rule.Target()]
		if !present || valuesEqual(existingValue, value) {
			continue
		}
		preview.Conflicts = append(preview.Conflicts, Conflict{
			Field:          rule.Target(),
			ExistingValue:  existingValue,
			NewValue:       value,
			Confidence:     rule.Confidence,
			Recommendation: recommend(rule.Confidence, existingValue, value),
		})
	}

	return preview
}

// convertUnit applies the known conversions; anything else passes through
// unchanged (documented limitation).
func convertUnit(v float64, fromUnit string) float64 {
	switch fromUnit {
	case "m³/d", "m3/d":
		return v / 86.4 // to L/s
	case "L/min", "l/min":
		return v / 60 // to L/s
	case "°F", "F":
		return (v - 32) * 5 / 9 // to °C
	default:
		return v
	}
}

// recommend picks the conflict resolution; the first applicable rule wins.
func recommend(confidence int, existing, proposed interface{}) string {
	if confidence > conflictUseNewMinConfidence {
		return RecommendUseNew
	}
	if relativeDiff(existing, proposed) < conflictMergeMaxRelDiff {
		return RecommendMerge
	}
	return RecommendKeepExisting
}

// relativeDiff returns |new-old|/|old| for numeric pairs, +Inf otherwise.
func relativeDiff(existing, proposed interface{}) float64 {
	oldN, okOld := toFloat(existing)
	newN, okNew := toFloat(proposed)
	if !okOld || !okNew || oldN == 0 {
		return math.Inf(1)
	}
	return math.Abs(newN-oldN) / math.Abs(oldN)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func valuesEqual(a, b interface{}) bool {
	aN, okA := toFloat(a)
	bN, okB := toFloat(b)
	if okA && okB {
		return aN == bN
	}
	return a == b
}
