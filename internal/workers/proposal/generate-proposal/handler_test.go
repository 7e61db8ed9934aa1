package generateproposal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proposal-workers/internal/common/logger"
	"proposal-workers/internal/engine/catalog"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestHandler(t *testing.T) *Handler {
	return NewHandler(LoadConfig(), catalog.Default(), logger.NewTestLogger(t))
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_LargeMunicipality(t *testing.T) {
	handler := createTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{
		Sector:      "municipal",
		DesignFlow:  12000,
		OrganicLoad: 350,
		Population:  80000,
	})
	require.NoError(t, err)

	require.Len(t, output.SelectedTechnologies, 1)
	assert.Equal(t, "Conventional Activated Sludge", output.SelectedTechnologies[0].Name)
	require.NotEmpty(t, output.Reasoning)
	assert.Contains(t, output.Reasoning[0], "Population > 50,000")
	assert.Contains(t, output.Reasoning[0], "80000")

	assert.NotEmpty(t, output.ProposalID)
	assert.Greater(t, output.CAPEX.Total, 0.0)
	assert.Greater(t, output.OPEX.Total, 0.0)
}

func TestHandler_Execute_HighStrengthIndustrial(t *testing.T) {
	handler := createTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{
		Sector:      "industrial",
		DesignFlow:  3000,
		OrganicLoad: 900,
	})
	require.NoError(t, err)

	require.Len(t, output.SelectedTechnologies, 1)
	assert.Equal(t, "DAF + Coagulation/Flocculation", output.SelectedTechnologies[0].Name)
	assert.Contains(t, output.Reasoning[0], "BOD > 800 mg/L")

	// BOD 900 also warrants a tertiary advisory in the trail.
	require.Len(t, output.Reasoning, 2)
	assert.Contains(t, output.Reasoning[1], "tertiary treatment")
}

func TestHandler_Execute_OutputInternallyConsistent(t *testing.T) {
	handler := createTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{
		Sector:      "commercial",
		DesignFlow:  800,
		OrganicLoad: 300,
	})
	require.NoError(t, err)

	sumCapex := output.CAPEX.Equipment + output.CAPEX.Construction +
		output.CAPEX.Engineering + output.CAPEX.Permits + output.CAPEX.Contingency
	assert.InDelta(t, output.CAPEX.Total, sumCapex, 1.0)

	sumOpex := output.OPEX.Energy + output.OPEX.Chemicals + output.OPEX.Labor + output.OPEX.Maintenance
	assert.InDelta(t, output.OPEX.Total, sumOpex, 1.0)

	require.Len(t, output.EquipmentList, 1)
	assert.Equal(t, "Extended Aeration", output.EquipmentList[0].Name)
	assert.InDelta(t, output.CAPEX.Equipment, output.EquipmentList[0].UnitCost, 1e-9)
}

func TestHandler_Execute_EfficiencyCompliance(t *testing.T) {
	handler := createTestHandler(t)

	tests := []struct {
		name           string
		target         float64
		wantCompliance bool
	}{
		{"no target always complies", 0, true},
		{"achievable target", 80, true},
		{"target beyond the train's efficiency", 99, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := handler.Execute(context.Background(), &Input{
				Sector:           "municipal",
				DesignFlow:       5000,
				OrganicLoad:      300,
				Population:       30000,
				TargetEfficiency: tt.target,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantCompliance, output.TreatmentEfficiency.OverallCompliance)
		})
	}
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_InvalidInput(t *testing.T) {
	handler := createTestHandler(t)

	tests := []struct {
		name    string
		input   *Input
		wantErr error
	}{
		{"nil input", nil, ErrInvalidInput},
		{"zero flow", &Input{Sector: "municipal"}, ErrInvalidInput},
		{"negative flow", &Input{Sector: "municipal", DesignFlow: -10}, ErrInvalidInput},
		{"unknown sector", &Input{Sector: "agricultural", DesignFlow: 1000}, ErrUnsupportedSector},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := handler.Execute(context.Background(), tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestHandler_Execute_FreshProposalIDPerRun(t *testing.T) {
	handler := createTestHandler(t)
	input := &Input{Sector: "residential", DesignFlow: 50, OrganicLoad: 250}

	first, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	second, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.NotEqual(t, first.ProposalID, second.ProposalID)
	assert.Equal(t, first.SelectedTechnologies, second.SelectedTechnologies)
}
