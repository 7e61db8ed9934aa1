// Package fieldmap turns raw import content (free text or structured
// records) into typed candidate fields, scores them against a pattern
// catalog of known engineering parameters, and derives mapping rules plus an
// import preview with conflict detection.
//
// Parsing is best-effort by contract: malformed input yields an analysis
// with zero fields and a suggestion string, never an error.
package fieldmap

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Candidate gate and scoring constants.
const (
	minKeyLength = 2
	// Domain sanity bound for numeric values, not a hard physical limit.
	numericSaneMin = 0.0
	numericSaneMax = 100000.0
	// Fields no pattern claims still surface, at low confidence.
	confidenceUnmatched = 40
)

// DetectedField is one typed candidate extracted from the raw input.
// Ephemeral; discarded after mapping.
type DetectedField struct {
	OriginalName     string            `json:"originalName"`
	DetectedType     string            `json:"detectedType"` // number|text|date|boolean
	Confidence       int               `json:"confidence"`   // 0-100
	Value            interface{}       `json:"value"`
	Unit             string            `json:"unit,omitempty"`
	SuggestedMapping string            `json:"suggestedMapping,omitempty"`
	Ambiguity        *MappingAmbiguity `json:"ambiguity,omitempty"`
}

// MappingAmbiguity records an unresolvable tie between patterns. The field
// is left unmapped and a human disambiguates.
type MappingAmbiguity struct {
	Candidates []string `json:"candidates"` // section.field targets, catalog order
	Confidence int      `json:"confidence"`
}

// ImportAnalysis aggregates the detection pass over one file.
type ImportAnalysis struct {
	FileName   string          `json:"fileName"`
	Fields     []DetectedField `json:"fields"`
	Suggestion string          `json:"suggestion,omitempty"`
}

// Analyzer runs detection against an injected pattern catalog.
type Analyzer struct {
	patterns []Pattern
}

func NewAnalyzer(patterns []Pattern) *Analyzer {
	return &Analyzer{patterns: patterns}
}

var (
	// key: value / key = value
	keyValueLine = regexp.MustCompile(`^\s*([^:=]+?)\s*[:=]\s*(.+?)\s*$`)
	// label number unit  (e.g. "BOD 320 mg/L")
	labelNumberUnit = regexp.MustCompile(`^\s*([A-Za-z][A-Za-z\s_./%°-]*?)\s+(-?\d+(?:[.,]\d+)?)\s*([A-Za-z/%°³µ]\S*)?\s*$`)
	// trailing unit on a value token (e.g. "7.2" or "320 mg/L")
	numberWithUnit = regexp.MustCompile(`^(-?\d+(?:[.,]\d+)?)\s*([A-Za-z/%°³µ]\S*)?$`)

	dateLike = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}([T\s].*)?$|^\d{1,2}/\d{1,2}/\d{2,4}$`)
)

// AnalyzeText scans free text line by line with the two extraction families
// (key:value / key=value, and "label number unit").
func (a *Analyzer) AnalyzeText(fileName, content string) ImportAnalysis {
	analysis := ImportAnalysis{FileName: fileName}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var key, rawValue, unit string
		if m := keyValueLine.FindStringSubmatch(line); m != nil {
			key, rawValue = m[1], m[2]
			if vm := numberWithUnit.FindStringSubmatch(rawValue); vm != nil {
				rawValue, unit = vm[1], vm[2]
			}
		} else if m := labelNumberUnit.FindStringSubmatch(line); m != nil {
			key, rawValue, unit = strings.TrimSpace(m[1]), m[2], m[3]
		} else {
			continue
		}

		if field, ok := a.buildField(key, rawValue, unit); ok {
			analysis.Fields = append(analysis.Fields, field)
		}
	}

	if len(analysis.Fields) == 0 {
		analysis.Suggestion = "No recognizable parameters found. Expected lines like 'BOD: 320 mg/L' or 'pH = 7.2', or a structured record."
	}
	return analysis
}

// AnalyzeRecord flattens a structured record (nested maps become dotted
// keys) and runs the same candidate gate and scoring as the text path.
func (a *Analyzer) AnalyzeRecord(fileName string, record map[string]interface{}) ImportAnalysis {
	analysis := ImportAnalysis{FileName: fileName}

	flat := map[string]interface{}{}
	flatten("", record, flat)

	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys) // deterministic field order regardless of map iteration

	for _, key := range keys {
		raw := flat[key]
		var rawValue, unit string
		switch v := raw.(type) {
		case string:
			rawValue = v
			if vm := numberWithUnit.FindStringSubmatch(strings.TrimSpace(v)); vm != nil {
				rawValue, unit = vm[1], vm[2]
			}
		case nil:
			continue
		default:
			rawValue = fmt.Sprintf("%v", v)
		}
		if field, ok := a.buildField(key, rawValue, unit); ok {
			analysis.Fields = append(analysis.Fields, field)
		}
	}

	if len(analysis.Fields) == 0 {
		analysis.Suggestion = "No recognizable parameters found in the record."
	}
	return analysis
}

func flatten(prefix string, in map[string]interface{}, out map[string]interface{}) {
	for k, v := range in {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]interface{}); ok {
			flatten(key, nested, out)
			continue
		}
		out[key] = v
	}
}

// buildField applies the candidate gate, types the value and scores the key
// against the pattern catalog.
func (a *Analyzer) buildField(key, rawValue, unit string) (DetectedField, bool) {
	key = strings.TrimSpace(key)
	rawValue = strings.TrimSpace(rawValue)

	value, detectedType := typeValue(rawValue)
	if !isValidParameter(key, rawValue, value, detectedType) {
		return DetectedField{}, false
	}

	field := DetectedField{
		OriginalName: key,
		DetectedType: detectedType,
		Confidence:   confidenceUnmatched,
		Value:        value,
		Unit:         unit,
	}

	// Only the terminal segment of a dotted key is matched against the
	// catalog ("project.site.flow" matches as "flow").
	matchKey := key
	if idx := strings.LastIndex(key, "."); idx >= 0 {
		matchKey = key[idx+1:]
	}

	winner, ambiguity := a.bestPattern(matchKey)
	if ambiguity != nil {
		field.Ambiguity = ambiguity
		field.Confidence = ambiguity.Confidence
	} else if winner != nil {
		field.SuggestedMapping = winner.Mapping()
		field.Confidence = winner.Confidence
		if field.Unit == "" {
			field.Unit = winner.DefaultUnit
		}
	}

	return field, true
}

// bestPattern returns the highest-confidence pattern matching the key.
// Equal confidence is broken by the longer (more specific) pattern source;
// an exact tie on both is surfaced as a MappingAmbiguity instead of relying
// on catalog order.
func (a *Analyzer) bestPattern(key string) (*Pattern, *MappingAmbiguity) {
	var winner *Pattern
	var tied []string

	for i := range a.patterns {
		p := &a.patterns[i]
		if !p.Expr.MatchString(key) {
			continue
		}
		switch {
		case winner == nil,
			p.Confidence > winner.Confidence,
			p.Confidence == winner.Confidence && len(p.Expr.String()) > len(winner.Expr.String()):
			winner = p
			tied = nil
		case p.Confidence == winner.Confidence && len(p.Expr.String()) == len(winner.Expr.String()):
			tied = append(tied, p.Mapping())
		}
	}

	if winner == nil {
		return nil, nil
	}
	if len(tied) > 0 {
		return nil, &MappingAmbiguity{
			Candidates: append([]string{winner.Mapping()}, tied...),
			Confidence: winner.Confidence,
		}
	}
	return winner, nil
}

// isValidParameter gates candidates: short keys, empty values and numbers
// outside the domain sanity bound are discarded.
func isValidParameter(key, rawValue string, value interface{}, detectedType string) bool {
	if len(key) < minKeyLength {
		return false
	}
	if rawValue == "" || value == nil {
		return false
	}
	if detectedType == "number" {
		n := value.(float64)
		if n < numericSaneMin || n > numericSaneMax {
			return false
		}
	}
	return true
}

// typeValue parses the raw value into its detected type.
func typeValue(raw string) (interface{}, string) {
	if raw == "" {
		return nil, "text"
	}
	normalized := strings.Replace(raw, ",", ".", 1)
	if n, err := strconv.ParseFloat(normalized, 64); err == nil {
		return n, "number"
	}
	switch strings.ToLower(raw) {
	case "true", "yes", "si", "sí":
		return true, "boolean"
	case "false", "no":
		return false, "boolean"
	}
	if dateLike.MatchString(raw) {
		return raw, "date"
	}
	return raw, "text"
}
