package auditproposal

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proposal-workers/internal/common/logger"
	"proposal-workers/internal/engine/catalog"
	"proposal-workers/internal/engine/costing"
	"proposal-workers/internal/engine/redflags"
	"proposal-workers/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeCaseProvider struct {
	cases []models.ProvenCase
	err   error
	calls int
}

func (f *fakeCaseProvider) FindSimilar(ctx context.Context, sector catalog.Sector, designFlow float64, maxResults int) ([]models.ProvenCase, error) {
	f.calls++
	return f.cases, f.err
}

func createTestHandler(t *testing.T, cases CaseProvider) *Handler {
	return NewHandler(LoadConfig(), cases, logger.NewTestLogger(t))
}

func createTestProposal() models.Proposal {
	return models.Proposal{
		ID:                  "prop-1",
		Sector:              catalog.SectorMunicipal,
		DesignFlow:          5000,
		CAPEX:               costing.CostBreakdown{Total: 1000000},
		TreatmentEfficiency: models.TreatmentEfficiency{OverallCompliance: true},
		AIMetadata: &models.AIMetadata{
			ConfidenceLevel: "High",
			ProvenCases: []models.ProvenCase{
				{ID: "pc-1", CapexUSD: 1000000, Similarity: 0.9},
				{ID: "pc-2", CapexUSD: 1100000, Similarity: 0.85},
			},
		},
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_HealthyProposal(t *testing.T) {
	provider := &fakeCaseProvider{}
	handler := createTestHandler(t, provider)

	output, err := handler.Execute(context.Background(), &Input{Proposal: createTestProposal()})
	require.NoError(t, err)

	assert.Equal(t, "prop-1", output.ProposalID)
	assert.Empty(t, output.Flags)
	assert.Equal(t, 0, output.FlagCount)
	assert.Equal(t, 0, output.CriticalCount)
	assert.Equal(t, 0, provider.calls, "proven cases already attached, no lookup needed")
}

func TestHandler_Execute_CriticalFlagsCounted(t *testing.T) {
	handler := createTestHandler(t, &fakeCaseProvider{})

	proposal := createTestProposal()
	proposal.TreatmentEfficiency.OverallCompliance = false
	proposal.AIMetadata.ConfidenceLevel = "Low"

	output, err := handler.Execute(context.Background(), &Input{Proposal: proposal})
	require.NoError(t, err)

	assert.Equal(t, 2, output.CriticalCount)
	assert.Equal(t, output.FlagCount, len(output.Flags))
	assert.Equal(t, redflags.SeverityCritical, output.Flags[0].Severity)
	assert.Equal(t, redflags.SeverityCritical, output.Flags[1].Severity)
}

func TestHandler_Execute_LoadsProvenCasesWhenMissing(t *testing.T) {
	provider := &fakeCaseProvider{
		cases: []models.ProvenCase{
			{ID: "pc-1", CapexUSD: 1000000, Similarity: 0.9},
		},
	}
	handler := createTestHandler(t, provider)

	proposal := createTestProposal()
	proposal.AIMetadata.ProvenCases = nil

	output, err := handler.Execute(context.Background(), &Input{Proposal: proposal})
	require.NoError(t, err)

	assert.Equal(t, 1, provider.calls)
	// With the loaded anchor the "no proven cases" flag must not fire.
	for _, flag := range output.Flags {
		assert.NotEqual(t, "No proven cases consulted", flag.Title)
	}
}

func TestHandler_Execute_NoMetadataSkipsLookup(t *testing.T) {
	provider := &fakeCaseProvider{}
	handler := createTestHandler(t, provider)

	proposal := createTestProposal()
	proposal.AIMetadata = nil

	output, err := handler.Execute(context.Background(), &Input{Proposal: proposal})
	require.NoError(t, err)

	assert.Empty(t, output.Flags)
	assert.Equal(t, 0, provider.calls)
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_InvalidInput(t *testing.T) {
	handler := createTestHandler(t, &fakeCaseProvider{})

	_, err := handler.Execute(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = handler.Execute(context.Background(), &Input{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestHandler_Execute_ProvenCaseLookupFailure(t *testing.T) {
	provider := &fakeCaseProvider{err: errors.New("search cluster down")}
	handler := createTestHandler(t, provider)

	proposal := createTestProposal()
	proposal.AIMetadata.ProvenCases = nil

	_, err := handler.Execute(context.Background(), &Input{Proposal: proposal})
	assert.ErrorIs(t, err, ErrProvenCaseSearchFailed)
}
