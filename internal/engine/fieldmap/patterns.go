package fieldmap

import "regexp"

// Pattern matches raw field names onto a canonical engineering parameter.
// Confidence is fixed per pattern (75-95), not computed dynamically.
type Pattern struct {
	Parameter     string
	Section       string
	TargetField   string
	Expr          *regexp.Regexp
	Confidence    int
	ExpectedUnits []string // canonical unit first
	DefaultUnit   string   // inferred when the source gives none
}

// Mapping returns the section.field target identifier.
func (p Pattern) Mapping() string {
	return p.Section + "." + p.TargetField
}

// DefaultPatterns is the shipped pattern catalog. Injected into the Analyzer
// so tests can swap in alternates; order only matters for equal-confidence
// ties, which are broken by pattern specificity (see bestPattern).
func DefaultPatterns() []Pattern {
	return []Pattern{
		{
			Parameter:     "design-flow",
			Section:       "project-basics",
			TargetField:   "design-flow",
			Expr:          regexp.MustCompile(`(?i)^(design[\s_-]*flow|flow([\s_-]*rate)?|influent[\s_-]*flow|caudal|q)$`),
			Confidence:    95,
			ExpectedUnits: []string{"L/s"},
			DefaultUnit:   "m³/d",
		},
		{
			Parameter:     "population",
			Section:       "project-basics",
			TargetField:   "population",
			Expr:          regexp.MustCompile(`(?i)^(population([\s_-]*(served|equivalent))?|inhabitants|habitantes|pe)$`),
			Confidence:    90,
			ExpectedUnits: []string{"inhabitants"},
			DefaultUnit:   "inhabitants",
		},
		{
			Parameter:     "ph",
			Section:       "water-quality",
			TargetField:   "ph",
			Expr:          regexp.MustCompile(`(?i)^ph([\s_-]*value)?$`),
			Confidence:    95,
			ExpectedUnits: []string{""},
			DefaultUnit:   "",
		},
		{
			Parameter:     "turbidity",
			Section:       "water-quality",
			TargetField:   "turbidity",
			Expr:          regexp.MustCompile(`(?i)^(turbidity|turbidez)$`),
			Confidence:    85,
			ExpectedUnits: []string{"NTU"},
			DefaultUnit:   "NTU",
		},
		{
			Parameter:     "bod",
			Section:       "water-quality",
			TargetField:   "bod",
			Expr:          regexp.MustCompile(`(?i)^(bod5?|dbo5?|biochemical[\s_-]*oxygen[\s_-]*demand)$`),
			Confidence:    92,
			ExpectedUnits: []string{"mg/L"},
			DefaultUnit:   "mg/L",
		},
		{
			Parameter:     "cod",
			Section:       "water-quality",
			TargetField:   "cod",
			Expr:          regexp.MustCompile(`(?i)^(cod|dqo|chemical[\s_-]*oxygen[\s_-]*demand)$`),
			Confidence:    92,
			ExpectedUnits: []string{"mg/L"},
			DefaultUnit:   "mg/L",
		},
		{
			Parameter:     "tss",
			Section:       "water-quality",
			TargetField:   "tss",
			Expr:          regexp.MustCompile(`(?i)^(tss|sst|(total[\s_-]*)?suspended[\s_-]*solids)$`),
			Confidence:    88,
			ExpectedUnits: []string{"mg/L"},
			DefaultUnit:   "mg/L",
		},
		{
			Parameter:     "temperature",
			Section:       "water-quality",
			TargetField:   "temperature",
			Expr:          regexp.MustCompile(`(?i)^(temp(erature)?|temperatura)$`),
			Confidence:    80,
			ExpectedUnits: []string{"°C"},
			DefaultUnit:   "°C",
		},
		{
			Parameter:     "removal-efficiency",
			Section:       "treatment-goals",
			TargetField:   "removal-efficiency",
			Expr:          regexp.MustCompile(`(?i)^((removal|treatment)[\s_-]*)?efficiency$`),
			Confidence:    75,
			ExpectedUnits: []string{"%"},
			DefaultUnit:   "%",
		},
	}
}
