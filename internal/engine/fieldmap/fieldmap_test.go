package fieldmap

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func newTestAnalyzer() *Analyzer {
	return NewAnalyzer(DefaultPatterns())
}

func fieldByName(t *testing.T, analysis ImportAnalysis, name string) DetectedField {
	t.Helper()
	for _, f := range analysis.Fields {
		if f.OriginalName == name {
			return f
		}
	}
	t.Fatalf("field %q not detected; got %+v", name, analysis.Fields)
	return DetectedField{}
}

// ==========================
// Text Analysis
// ==========================

func TestAnalyzer_AnalyzeText_KeyValueLines(t *testing.T) {
	analyzer := newTestAnalyzer()

	content := "pH: 7.2\nBOD = 320 mg/L\nTemperature 28 °C\nnotes: collected upstream"
	analysis := analyzer.AnalyzeText("sample.txt", content)

	ph := fieldByName(t, analysis, "pH")
	assert.Equal(t, "number", ph.DetectedType)
	assert.Equal(t, 7.2, ph.Value)
	assert.Equal(t, "water-quality.ph", ph.SuggestedMapping)
	assert.GreaterOrEqual(t, ph.Confidence, 90)

	bod := fieldByName(t, analysis, "BOD")
	assert.Equal(t, "water-quality.bod", bod.SuggestedMapping)
	assert.Equal(t, "mg/L", bod.Unit)

	temp := fieldByName(t, analysis, "Temperature")
	assert.Equal(t, "water-quality.temperature", temp.SuggestedMapping)
	assert.Equal(t, 28.0, temp.Value)

	notes := fieldByName(t, analysis, "notes")
	assert.Equal(t, "text", notes.DetectedType)
	assert.Empty(t, notes.SuggestedMapping)
	assert.Equal(t, confidenceUnmatched, notes.Confidence)
}

func TestAnalyzer_AnalyzeText_UnitInference(t *testing.T) {
	analyzer := newTestAnalyzer()

	// No unit given: the pattern's default unit is inferred.
	analysis := analyzer.AnalyzeText("sample.txt", "COD: 640")
	cod := fieldByName(t, analysis, "COD")
	assert.Equal(t, "mg/L", cod.Unit)
}

func TestAnalyzer_AnalyzeText_CandidateGate(t *testing.T) {
	analyzer := newTestAnalyzer()

	tests := []struct {
		name    string
		content string
	}{
		{"key too short", "q: 12"},           // single-character key is discarded
		{"empty value", "flow:"},             // no value
		{"negative number", "BOD: -5"},       // below sanity bound
		{"absurd number", "flow: 2000000"},   // above sanity bound
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := analyzer.AnalyzeText("sample.txt", tt.content)
			assert.Empty(t, analysis.Fields)
		})
	}
}

func TestAnalyzer_AnalyzeText_EmptyInputIsNotAnError(t *testing.T) {
	analyzer := newTestAnalyzer()

	for _, content := range []string{"", "   \n\n  ", "%%% garbage ###"} {
		analysis := analyzer.AnalyzeText("empty.txt", content)
		assert.Empty(t, analysis.Fields)
		assert.NotEmpty(t, analysis.Suggestion, "empty analysis must carry a suggestion")
	}
}

func TestAnalyzer_AnalyzeText_Idempotent(t *testing.T) {
	analyzer := newTestAnalyzer()
	content := "pH: 7.2\nBOD: 320 mg/L\nCOD: 640 mg/L\nflow: 1200 m³/d"

	first := analyzer.AnalyzeText("sample.txt", content)
	second := analyzer.AnalyzeText("sample.txt", content)

	assert.Equal(t, first, second, "analysis must be deterministic")
}

// ==========================
// Structured Records
// ==========================

func TestAnalyzer_AnalyzeRecord_FlattensNestedKeys(t *testing.T) {
	analyzer := newTestAnalyzer()

	record := map[string]interface{}{
		"project": map[string]interface{}{
			"flow":       "1200 m³/d",
			"population": 45000,
		},
		"ph": 7.8,
	}
	analysis := analyzer.AnalyzeRecord("project.json", record)

	flow := fieldByName(t, analysis, "project.flow")
	assert.Equal(t, "project-basics.design-flow", flow.SuggestedMapping)
	assert.Equal(t, "m³/d", flow.Unit)

	pop := fieldByName(t, analysis, "project.population")
	assert.Equal(t, "project-basics.population", pop.SuggestedMapping)

	ph := fieldByName(t, analysis, "ph")
	assert.Equal(t, "water-quality.ph", ph.SuggestedMapping)
}

func TestAnalyzer_AnalyzeRecord_DeterministicOrder(t *testing.T) {
	analyzer := newTestAnalyzer()

	record := map[string]interface{}{"ph": 7.0, "bod": 300.0, "cod": 600.0, "tss": 250.0}
	first := analyzer.AnalyzeRecord("r.json", record)
	second := analyzer.AnalyzeRecord("r.json", record)

	assert.Equal(t, first, second)
}

// ==========================
// Pattern Scoring & Tie-Breaking
// ==========================

func TestAnalyzer_BestPattern_HighestConfidenceWins(t *testing.T) {
	patterns := []Pattern{
		{Parameter: "a", Section: "s", TargetField: "a", Expr: regexp.MustCompile(`(?i)^flow$`), Confidence: 80},
		{Parameter: "b", Section: "s", TargetField: "b", Expr: regexp.MustCompile(`(?i)^(flow|caudal)$`), Confidence: 95},
	}
	analyzer := NewAnalyzer(patterns)

	analysis := analyzer.AnalyzeText("f.txt", "flow: 100")
	field := fieldByName(t, analysis, "flow")
	assert.Equal(t, "s.b", field.SuggestedMapping)
	assert.Equal(t, 95, field.Confidence)
}

func TestAnalyzer_BestPattern_EqualConfidencePrefersLongerPattern(t *testing.T) {
	patterns := []Pattern{
		{Parameter: "short", Section: "s", TargetField: "short", Expr: regexp.MustCompile(`(?i)^flow$`), Confidence: 90},
		{Parameter: "long", Section: "s", TargetField: "long", Expr: regexp.MustCompile(`(?i)^(flow|flowrate)$`), Confidence: 90},
	}
	analyzer := NewAnalyzer(patterns)

	analysis := analyzer.AnalyzeText("f.txt", "flow: 100")
	field := fieldByName(t, analysis, "flow")
	assert.Equal(t, "s.long", field.SuggestedMapping, "more specific pattern wins the tie")
	assert.Nil(t, field.Ambiguity)
}

func TestAnalyzer_BestPattern_ExactTieSurfacesAmbiguity(t *testing.T) {
	patterns := []Pattern{
		{Parameter: "a", Section: "s1", TargetField: "a", Expr: regexp.MustCompile(`(?i)^fl.w$`), Confidence: 90},
		{Parameter: "b", Section: "s2", TargetField: "b", Expr: regexp.MustCompile(`(?i)^flo.$`), Confidence: 90},
	}
	analyzer := NewAnalyzer(patterns)

	analysis := analyzer.AnalyzeText("f.txt", "flow: 100")
	field := fieldByName(t, analysis, "flow")

	assert.Empty(t, field.SuggestedMapping, "ambiguous fields are left unmapped")
	require.NotNil(t, field.Ambiguity)
	assert.ElementsMatch(t, []string{"s1.a", "s2.b"}, field.Ambiguity.Candidates)
	assert.Equal(t, 90, field.Ambiguity.Confidence)
}

// ==========================
// Mapping Rules
// ==========================

func TestAnalyzer_GenerateMappingRules_SortedByConfidence(t *testing.T) {
	analyzer := newTestAnalyzer()

	content := "efficiency: 85 %\npH: 7.2\nturbidity: 4 NTU\nBOD: 320 mg/L"
	analysis := analyzer.AnalyzeText("sample.txt", content)
	rules := analyzer.GenerateMappingRules(analysis)

	require.Len(t, rules, 4)
	for i := 1; i < len(rules); i++ {
		assert.GreaterOrEqual(t, rules[i-1].Confidence, rules[i].Confidence)
	}
	assert.Equal(t, "water-quality.ph", rules[0].Target())
}

func TestAnalyzer_GenerateMappingRules_UnitConversionTransformation(t *testing.T) {
	analyzer := newTestAnalyzer()

	analysis := analyzer.AnalyzeText("sample.txt", "flow: 1200 m³/d\nBOD: 320 mg/L")
	rules := analyzer.GenerateMappingRules(analysis)

	var flowRule, bodRule *MappingRule
	for i := range rules {
		switch rules[i].TargetFieldID {
		case "design-flow":
			flowRule = &rules[i]
		case "bod":
			bodRule = &rules[i]
		}
	}
	require.NotNil(t, flowRule)
	require.NotNil(t, bodRule)

	assert.Equal(t, TransformationUnitConversion, flowRule.Transformation,
		"m³/d differs from the expected L/s")
	assert.Empty(t, bodRule.Transformation, "mg/L is already the expected unit")
}

// ==========================
// Import Preview
// ==========================

func TestAnalyzer_CreateImportPreview_UnitConversions(t *testing.T) {
	analyzer := newTestAnalyzer()

	tests := []struct {
		name    string
		content string
		target  string
		want    float64
	}{
		{"m3/d to L/s", "flow: 864 m³/d", "project-basics.design-flow", 10},
		{"L/min to L/s", "flow: 120 L/min", "project-basics.design-flow", 2},
		{"F to C", "temperature: 98.6 °F", "water-quality.temperature", 37},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := analyzer.AnalyzeText("s.txt", tt.content)
			preview := analyzer.CreateImportPreview(analysis, nil)

			require.Contains(t, preview.PreviewData, tt.target)
			assert.InDelta(t, tt.want, preview.PreviewData[tt.target], 0.01)
		})
	}
}

func TestAnalyzer_CreateImportPreview_UnknownConversionPassesThrough(t *testing.T) {
	analyzer := newTestAnalyzer()

	// gal/min is not a known conversion; the value passes through unchanged.
	analysis := analyzer.AnalyzeText("s.txt", "flow: 500 gal/min")
	preview := analyzer.CreateImportPreview(analysis, nil)

	assert.Equal(t, 500.0, preview.PreviewData["project-basics.design-flow"])
}

func TestAnalyzer_CreateImportPreview_ConflictRecommendations(t *testing.T) {
	analyzer := newTestAnalyzer()

	tests := []struct {
		name     string
		content  string
		existing map[string]interface{}
		wantRec  string
	}{
		{
			// pH pattern confidence 95 > 85: confident new data wins.
			name:     "high confidence recommends use_new",
			content:  "pH: 7.2",
			existing: map[string]interface{}{"water-quality.ph": 6.0},
			wantRec:  RecommendUseNew,
		},
		{
			// efficiency confidence 75 <= 85, values within 10%: merge.
			name:     "close values recommend merge",
			content:  "efficiency: 82 %",
			existing: map[string]interface{}{"treatment-goals.removal-efficiency": 80.0},
			wantRec:  RecommendMerge,
		},
		{
			// efficiency confidence 75 <= 85, values far apart: keep existing.
			name:     "distant low-confidence values keep existing",
			content:  "efficiency: 40 %",
			existing: map[string]interface{}{"treatment-goals.removal-efficiency": 90.0},
			wantRec:  RecommendKeepExisting,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := analyzer.AnalyzeText("s.txt", tt.content)
			preview := analyzer.CreateImportPreview(analysis, tt.existing)

			require.Len(t, preview.Conflicts, 1)
			assert.Equal(t, tt.wantRec, preview.Conflicts[0].Recommendation)
		})
	}
}

func TestAnalyzer_CreateImportPreview_NoConflictWhenValuesAgree(t *testing.T) {
	analyzer := newTestAnalyzer()

	analysis := analyzer.AnalyzeText("s.txt", "pH: 7.2")
	preview := analyzer.CreateImportPreview(analysis, map[string]interface{}{"water-quality.ph": 7.2})

	assert.Empty(t, preview.Conflicts)
}
