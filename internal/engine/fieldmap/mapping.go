package fieldmap

import "sort"

// TransformationUnitConversion marks a rule whose source unit differs from
// the target parameter's expected units.
const TransformationUnitConversion = "unit_conversion"

// MappingRule maps one detected source field onto a canonical target.
type MappingRule struct {
	SourceField     string `json:"sourceField"`
	TargetSectionID string `json:"targetSectionId"`
	TargetFieldID   string `json:"targetFieldId"`
	Confidence      int    `json:"confidence"`
	Transformation  string `json:"transformation,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

// Target returns the section.field identifier the rule writes to.
func (r MappingRule) Target() string {
	return r.TargetSectionID + "." + r.TargetFieldID
}

// GenerateMappingRules derives one rule per field carrying a suggested
// mapping, sorted descending by confidence. Ambiguous and unmatched fields
// yield no rule.
func (a *Analyzer) GenerateMappingRules(analysis ImportAnalysis) []MappingRule {
	var rules []MappingRule

	for _, field := range analysis.Fields {
		if field.SuggestedMapping == "" {
			continue
		}
		pattern := a.patternByMapping(field.SuggestedMapping)
		if pattern == nil {
			continue
		}

		rule := MappingRule{
			SourceField:     field.OriginalName,
			TargetSectionID: pattern.Section,
			TargetFieldID:   pattern.TargetField,
			Confidence:      field.Confidence,
		}
		if field.Unit != "" && !unitExpected(field.Unit, pattern.ExpectedUnits) {
			rule.Transformation = TransformationUnitConversion
			rule.Notes = "source unit " + field.Unit + " differs from expected " + pattern.ExpectedUnits[0]
		}
		rules = append(rules, rule)
	}

	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Confidence > rules[j].Confidence
	})
	return rules
}

func (a *Analyzer) patternByMapping(mapping string) *Pattern {
	for i := range a.patterns {
		if a.patterns[i].Mapping() == mapping {
			return &a.patterns[i]
		}
	}
	return nil
}

func unitExpected(unit string, expected []string) bool {
	for _, u := range expected {
		if u == unit {
			return true
		}
	}
	return false
}
