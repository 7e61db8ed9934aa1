package techcheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proposal-workers/internal/engine/catalog"
)

func newTestChecker() *Checker {
	return NewChecker(DefaultRanges())
}

// ==========================
// Per-Field Range Checks
// ==========================

func TestChecker_ValidateField_RangeClassification(t *testing.T) {
	checker := newTestChecker()

	tests := []struct {
		name      string
		fieldID   string
		value     float64
		sector    catalog.Sector
		wantLevel string
		wantValid bool
	}{
		{
			name:      "residential flow far above max is a warning, not a rejection",
			fieldID:   FieldDesignFlow,
			value:     50000,
			sector:    catalog.SectorResidential,
			wantLevel: LevelWarning,
			wantValid: true,
		},
		{
			name:      "municipal BOD below min is an error",
			fieldID:   FieldBOD,
			value:     40,
			sector:    catalog.SectorMunicipal,
			wantLevel: LevelError,
			wantValid: false,
		},
		{
			name:      "municipal BOD in range is info",
			fieldID:   FieldBOD,
			value:     300,
			sector:    catalog.SectorMunicipal,
			wantLevel: LevelInfo,
			wantValid: true,
		},
		{
			name:      "industrial COD tolerates far higher loads than municipal",
			fieldID:   FieldCOD,
			value:     5000,
			sector:    catalog.SectorIndustrial,
			wantLevel: LevelInfo,
			wantValid: true,
		},
		{
			name:      "pH above sector max is a warning",
			fieldID:   FieldPH,
			value:     9.5,
			sector:    catalog.SectorMunicipal,
			wantLevel: LevelWarning,
			wantValid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := checker.ValidateField(tt.fieldID, tt.value, Context{Sector: tt.sector})
			require.NoError(t, err)

			assert.Equal(t, tt.wantLevel, result.Level)
			assert.Equal(t, tt.wantValid, result.IsValid)
			assert.NotEmpty(t, result.Message)
		})
	}
}

func TestChecker_ValidateField_UnsupportedSector(t *testing.T) {
	checker := newTestChecker()

	_, err := checker.ValidateField(FieldBOD, 300, Context{Sector: catalog.Sector("agricultural")})
	assert.ErrorIs(t, err, ErrUnsupportedSector)
}

func TestChecker_ValidateField_UnknownFieldIsInfo(t *testing.T) {
	checker := newTestChecker()

	result, err := checker.ValidateField("alkalinity", 120, Context{Sector: catalog.SectorMunicipal})
	require.NoError(t, err)
	assert.Equal(t, LevelInfo, result.Level)
	assert.True(t, result.IsValid)
}

// ==========================
// Contextual Refinements
// ==========================

func TestChecker_ValidateField_MunicipalPerCapitaRefinement(t *testing.T) {
	checker := newTestChecker()

	tests := []struct {
		name       string
		flow       float64
		population float64
		wantLevel  string
	}{
		// 5000 m3/d over 20000 people = 250 L/cap/d: plausible.
		{"plausible per-capita flow stays info", 5000, 20000, LevelInfo},
		// 5000 m3/d over 2000 people = 2500 L/cap/d: implausible.
		{"excessive per-capita flow downgrades to warning", 5000, 2000, LevelWarning},
		// 500 m3/d over 20000 people = 25 L/cap/d: too little water.
		{"starved per-capita flow downgrades to warning", 500, 20000, LevelWarning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := checker.ValidateField(FieldDesignFlow, tt.flow, Context{
				Sector:       catalog.SectorMunicipal,
				ExistingData: map[string]float64{FieldPopulation: tt.population},
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantLevel, result.Level)
		})
	}
}

func TestChecker_ValidateField_PerCapitaRefinementIsMunicipalOnly(t *testing.T) {
	checker := newTestChecker()

	result, err := checker.ValidateField(FieldDesignFlow, 1500, Context{
		Sector:       catalog.SectorIndustrial,
		ExistingData: map[string]float64{FieldPopulation: 10},
	})
	require.NoError(t, err)
	assert.Equal(t, LevelInfo, result.Level)
}

func TestChecker_ValidateField_BODCODRatioRefinement(t *testing.T) {
	checker := newTestChecker()

	tests := []struct {
		name        string
		bod         float64
		cod         float64
		wantLevel   string
		wantMention string
	}{
		{"ratio above 0.8 warns about bad data", 550, 600, LevelWarning, "0.92"},
		{"ratio below 0.2 notes low biodegradability", 160, 900, LevelInfo, "low biodegradability"},
		{"healthy ratio stays clean", 300, 600, LevelInfo, "within"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := checker.ValidateField(FieldBOD, tt.bod, Context{
				Sector:       catalog.SectorMunicipal,
				ExistingData: map[string]float64{FieldCOD: tt.cod},
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantLevel, result.Level)
			assert.Contains(t, result.Message, tt.wantMention)
		})
	}
}

// ==========================
// Cross-Field Consistency
// ==========================

func TestChecker_ValidateConsistency_BODGreaterThanCOD(t *testing.T) {
	checker := newTestChecker()

	results := checker.ValidateConsistency(map[string]float64{
		FieldBOD: 300,
		FieldCOD: 200,
	}, Context{Sector: catalog.SectorMunicipal})

	require.Len(t, results, 1)
	assert.Equal(t, LevelError, results[0].Level)
	assert.False(t, results[0].IsValid)
	assert.Contains(t, results[0].Message, "physically impossible")
}

func TestChecker_ValidateConsistency_FlowPerCapitaAndTemperature(t *testing.T) {
	checker := newTestChecker()

	results := checker.ValidateConsistency(map[string]float64{
		FieldDesignFlow:  5000,
		FieldPopulation:  1000, // 5000 L/cap/d
		FieldTemperature: 52,
	}, Context{Sector: catalog.SectorIndustrial})

	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, LevelWarning, r.Level)
		assert.True(t, r.IsValid, "consistency warnings never invalidate data")
	}
}

func TestChecker_ValidateConsistency_CleanDataYieldsNothing(t *testing.T) {
	checker := newTestChecker()

	results := checker.ValidateConsistency(map[string]float64{
		FieldBOD:         300,
		FieldCOD:         600,
		FieldDesignFlow:  5000,
		FieldPopulation:  20000,
		FieldTemperature: 22,
	}, Context{Sector: catalog.SectorMunicipal})

	assert.Empty(t, results)
}

func TestChecker_ValidateConsistency_DoesNotMutateInput(t *testing.T) {
	checker := newTestChecker()

	data := map[string]float64{FieldBOD: 300, FieldCOD: 200}
	checker.ValidateConsistency(data, Context{Sector: catalog.SectorMunicipal})

	assert.Equal(t, map[string]float64{FieldBOD: 300, FieldCOD: 200}, data)
}
