package validatetechnicaldata

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proposal-workers/internal/common/logger"
	"proposal-workers/internal/engine/techcheck"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestHandler(t *testing.T) *Handler {
	checker := techcheck.NewChecker(techcheck.DefaultRanges())
	return NewHandler(LoadConfig(), checker, logger.NewTestLogger(t))
}

func floatPtr(v float64) *float64 { return &v }

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_OverRangeFlowIsWarningNotError(t *testing.T) {
	handler := createTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{
		Sector:  "residential",
		FieldID: "design-flow",
		Value:   floatPtr(50000),
	})
	require.NoError(t, err)

	require.Len(t, output.Results, 1)
	assert.Equal(t, techcheck.LevelWarning, output.Results[0].Level)
	assert.True(t, output.Results[0].IsValid)
	assert.True(t, output.IsValid, "over-range values pass with a warning, not an error")
	assert.Equal(t, 0, output.ErrorCount)
	assert.Equal(t, 1, output.WarningCount)
}

func TestHandler_Execute_BelowMinimumIsError(t *testing.T) {
	handler := createTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{
		Sector:  "municipal",
		FieldID: "bod",
		Value:   floatPtr(100),
	})
	require.NoError(t, err)

	require.Len(t, output.Results, 1)
	assert.Equal(t, techcheck.LevelError, output.Results[0].Level)
	assert.False(t, output.IsValid)
	assert.Equal(t, 1, output.ErrorCount)
	assert.NotEmpty(t, output.Results[0].Suggestion)
}

func TestHandler_Execute_BODRefinedAgainstExistingCOD(t *testing.T) {
	handler := createTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{
		Sector:       "municipal",
		FieldID:      "bod",
		Value:        floatPtr(200),
		ExistingData: map[string]float64{"cod": 1100},
	})
	require.NoError(t, err)

	require.Len(t, output.Results, 1)
	assert.Contains(t, output.Results[0].Message, "low biodegradability")
	assert.Contains(t, output.Results[0].Suggestion, "physicochemical")
}

func TestHandler_Execute_BatchFlagsBODAboveCOD(t *testing.T) {
	handler := createTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{
		Sector: "municipal",
		Data: map[string]float64{
			"bod": 550,
			"cod": 400,
		},
	})
	require.NoError(t, err)

	assert.Len(t, output.Results, 2)
	require.NotEmpty(t, output.ConsistencyResults)
	assert.Equal(t, "bod", output.ConsistencyResults[0].FieldID)
	assert.Equal(t, techcheck.LevelError, output.ConsistencyResults[0].Level)
	assert.Contains(t, output.ConsistencyResults[0].Message, "physically impossible")
	assert.False(t, output.IsValid)
}

func TestHandler_Execute_BatchMergesExistingData(t *testing.T) {
	handler := createTestHandler(t)

	// Flow looks fine in isolation; against the existing population it is
	// absurd (70000 m³/d for 500 people).
	output, err := handler.Execute(context.Background(), &Input{
		Sector:       "municipal",
		Data:         map[string]float64{"design-flow": 70000},
		ExistingData: map[string]float64{"population": 500},
	})
	require.NoError(t, err)

	require.NotEmpty(t, output.ConsistencyResults)
	assert.Equal(t, "design-flow", output.ConsistencyResults[0].FieldID)
	assert.Equal(t, techcheck.LevelWarning, output.ConsistencyResults[0].Level)
	assert.True(t, output.IsValid)
}

func TestHandler_Execute_UnknownFieldIsInfo(t *testing.T) {
	handler := createTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{
		Sector:  "commercial",
		FieldID: "color",
		Value:   floatPtr(12),
	})
	require.NoError(t, err)

	require.Len(t, output.Results, 1)
	assert.Equal(t, techcheck.LevelInfo, output.Results[0].Level)
	assert.True(t, output.IsValid)
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
		{"missing sector", &Input{FieldID: "bod", Value: floatPtr(300)}, ErrInvalidInput},
		{"no field and no data", &Input{Sector: "municipal"}, ErrInvalidInput},
		{"value without field id", &Input{Sector: "municipal", Value: floatPtr(300)}, ErrInvalidInput},
		{"unknown sector", &Input{Sector: "agricultural", FieldID: "bod", Value: floatPtr(300)}, ErrUnsupportedSector},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := handler.Execute(context.Background(), tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
