package costing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proposal-workers/internal/engine/catalog"
)

// ==========================
// Test Helper Functions
// ==========================

func newTestCalculator() *Calculator {
	return NewCalculator(catalog.Default())
}

func techsWithComplexity(ratings ...catalog.Rating) []catalog.TechnologyOption {
	techs := make([]catalog.TechnologyOption, 0, len(ratings))
	for _, r := range ratings {
		techs = append(techs, catalog.TechnologyOption{Name: "test", Complexity: r, Energy: r})
	}
	return techs
}

// ==========================
// CAPEX Tests
// ==========================

func TestCalculator_CAPEX_SumInvariant(t *testing.T) {
	calc := newTestCalculator()

	tests := []struct {
		name   string
		flow   float64
		sector catalog.Sector
		techs  []catalog.TechnologyOption
	}{
		{"municipal medium flow", 2000, catalog.SectorMunicipal, techsWithComplexity(catalog.RatingHigh)},
		{"industrial small flow", 150, catalog.SectorIndustrial, techsWithComplexity(catalog.RatingMedium)},
		{"residential tiny flow", 12.5, catalog.SectorResidential, techsWithComplexity(catalog.RatingLow)},
		{"commercial odd flow", 333.33, catalog.SectorCommercial, techsWithComplexity(catalog.RatingMedium, catalog.RatingLow)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			breakdown, err := calc.CAPEX(tt.flow, tt.techs, tt.sector)
			require.NoError(t, err)

			sum := breakdown.Equipment + breakdown.Construction + breakdown.Engineering +
				breakdown.Permits + breakdown.Contingency
			assert.InDelta(t, sum, breakdown.Total, 1.0, "total must equal component sum within one currency unit")
			assert.GreaterOrEqual(t, breakdown.Equipment, 0.0)
			assert.GreaterOrEqual(t, breakdown.Contingency, 0.0)
		})
	}
}

func TestCalculator_CAPEX_ComplexityMultiplier(t *testing.T) {
	calc := newTestCalculator()
	flow := 1000.0

	low, err := calc.CAPEX(flow, techsWithComplexity(catalog.RatingLow), catalog.SectorMunicipal)
	require.NoError(t, err)
	medium, err := calc.CAPEX(flow, techsWithComplexity(catalog.RatingMedium), catalog.SectorMunicipal)
	require.NoError(t, err)
	high, err := calc.CAPEX(flow, techsWithComplexity(catalog.RatingHigh), catalog.SectorMunicipal)
	require.NoError(t, err)

	assert.InDelta(t, low.Equipment*1.1, medium.Equipment, 2.0)
	assert.InDelta(t, low.Equipment*1.3, high.Equipment, 2.0)

	// Maximum complexity dominates: a low+high mix prices like high.
	mixed, err := calc.CAPEX(flow, techsWithComplexity(catalog.RatingLow, catalog.RatingHigh), catalog.SectorMunicipal)
	require.NoError(t, err)
	assert.Equal(t, high.Equipment, mixed.Equipment)
}

func TestCalculator_CAPEX_DerivedComponents(t *testing.T) {
	calc := newTestCalculator()

	breakdown, err := calc.CAPEX(1000, techsWithComplexity(catalog.RatingLow), catalog.SectorMunicipal)
	require.NoError(t, err)

	direct := breakdown.Equipment + breakdown.Construction
	assert.InDelta(t, 0.15*direct, breakdown.Engineering, 1.0)
	assert.InDelta(t, 0.05*direct, breakdown.Permits, 1.0)
	assert.InDelta(t, 0.15*(direct+breakdown.Engineering+breakdown.Permits), breakdown.Contingency, 1.0)
}

func TestCalculator_CAPEX_InvalidInput(t *testing.T) {
	calc := newTestCalculator()
	techs := techsWithComplexity(catalog.RatingLow)

	tests := []struct {
		name    string
		flow    float64
		sector  catalog.Sector
		wantErr error
	}{
		{"zero flow", 0, catalog.SectorMunicipal, ErrInvalidInput},
		{"negative flow", -10, catalog.SectorMunicipal, ErrInvalidInput},
		{"unknown sector", 100, catalog.Sector("agricultural"), ErrUnsupportedSector},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := calc.CAPEX(tt.flow, techs, tt.sector)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCalculator_CAPEX_TinyFlowSucceeds(t *testing.T) {
	calc := newTestCalculator()

	breakdown, err := calc.CAPEX(1e-9, techsWithComplexity(catalog.RatingLow), catalog.SectorMunicipal)
	require.NoError(t, err)
	assert.Less(t, breakdown.Total, 1.0, "near-zero flow yields near-zero cost")
}

func TestCalculator_CAPEX_MonotonicInFlow(t *testing.T) {
	calc := newTestCalculator()
	techs := techsWithComplexity(catalog.RatingMedium)

	var previous float64
	for _, flow := range []float64{1, 10, 100, 1000, 10000, 100000} {
		breakdown, err := calc.CAPEX(flow, techs, catalog.SectorIndustrial)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, breakdown.Total, previous, "flow %v", flow)
		previous = breakdown.Total
	}
}

// ==========================
// OPEX Tests
// ==========================

func TestCalculator_OPEX_SumInvariant(t *testing.T) {
	calc := newTestCalculator()

	opex, err := calc.OPEX(2000, techsWithComplexity(catalog.RatingHigh), catalog.SectorMunicipal)
	require.NoError(t, err)

	sum := opex.Energy + opex.Chemicals + opex.Labor + opex.Maintenance
	assert.InDelta(t, sum, opex.Total, 1.0)
}

func TestCalculator_OPEX_EnergyIntensityByRating(t *testing.T) {
	calc := newTestCalculator()
	flow := 1000.0

	high, err := calc.OPEX(flow, techsWithComplexity(catalog.RatingHigh), catalog.SectorMunicipal)
	require.NoError(t, err)
	low, err := calc.OPEX(flow, techsWithComplexity(catalog.RatingLow), catalog.SectorMunicipal)
	require.NoError(t, err)

	// 2.5 vs 0.8 kWh/m3
	assert.InDelta(t, high.Energy/low.Energy, 2.5/0.8, 0.01)
	assert.InDelta(t, 0.30*high.Energy, high.Maintenance, 1.0)
}

func TestCalculator_OPEX_ChemicalsScaleBySector(t *testing.T) {
	calc := newTestCalculator()
	techs := techsWithComplexity(catalog.RatingMedium)

	industrial, err := calc.OPEX(1000, techs, catalog.SectorIndustrial)
	require.NoError(t, err)
	municipal, err := calc.OPEX(1000, techs, catalog.SectorMunicipal)
	require.NoError(t, err)

	assert.Greater(t, industrial.Chemicals, municipal.Chemicals,
		"industrial chemical dosing rate exceeds municipal")
}

func TestCalculator_OPEX_MonotonicInFlow(t *testing.T) {
	calc := newTestCalculator()
	techs := techsWithComplexity(catalog.RatingMedium)

	var previous float64
	for _, flow := range []float64{1, 50, 500, 5000, 50000} {
		opex, err := calc.OPEX(flow, techs, catalog.SectorMunicipal)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, opex.Total, previous)
		previous = opex.Total
	}
}

func TestCalculator_OPEX_InvalidInput(t *testing.T) {
	calc := newTestCalculator()
	techs := techsWithComplexity(catalog.RatingLow)

	_, err := calc.OPEX(-1, techs, catalog.SectorMunicipal)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = calc.OPEX(100, techs, catalog.Sector("mining"))
	assert.ErrorIs(t, err, ErrUnsupportedSector)
}

func TestCalculator_ComponentsAreWholeCurrencyUnits(t *testing.T) {
	calc := newTestCalculator()

	breakdown, err := calc.CAPEX(333.33, techsWithComplexity(catalog.RatingMedium), catalog.SectorCommercial)
	require.NoError(t, err)

	for name, v := range map[string]float64{
		"equipment":    breakdown.Equipment,
		"construction": breakdown.Construction,
		"engineering":  breakdown.Engineering,
		"permits":      breakdown.Permits,
		"contingency":  breakdown.Contingency,
	} {
		assert.Equal(t, math.Trunc(v), v, "%s should be rounded to a whole currency unit", name)
	}
}
