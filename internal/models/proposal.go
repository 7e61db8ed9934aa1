// Package models holds the data shapes shared between the engine packages
// and the workers. The Proposal snapshot is owned by the backend that
// generates and versions proposals; this side only reads it.
package models

import (
	"proposal-workers/internal/engine/catalog"
	"proposal-workers/internal/engine/costing"
)

// Proposal is the read-only snapshot audited before human review.
type Proposal struct {
	ID                  string                  `json:"id"`
	Sector              catalog.Sector          `json:"sector"`
	DesignFlow          float64                 `json:"designFlow"` // m3/d
	CAPEX               costing.CostBreakdown   `json:"capex"`
	OPEX                costing.OperationalCost `json:"opex"`
	EquipmentList       []EquipmentItem         `json:"equipmentList,omitempty"`
	TreatmentEfficiency TreatmentEfficiency     `json:"treatmentEfficiency"`
	AIMetadata          *AIMetadata             `json:"aiMetadata,omitempty"`
}

// EquipmentItem is one entry of the sized equipment list.
type EquipmentItem struct {
	Name     string  `json:"name"`
	Stage    string  `json:"stage"`
	Quantity int     `json:"quantity"`
	UnitCost float64 `json:"unitCost"`
}

// TreatmentEfficiency summarizes the compliance evaluation of the proposed
// train against the discharge targets.
type TreatmentEfficiency struct {
	OverallCompliance bool               `json:"overallCompliance"`
	ByParameter       map[string]float64 `json:"byParameter,omitempty"` // removal %, keyed by parameter
}

// AIMetadata describes how the proposal was generated and how well it is
// supported by reference data.
type AIMetadata struct {
	ConfidenceLevel string       `json:"confidenceLevel"` // High|Medium|Low
	Assumptions     []string     `json:"assumptions,omitempty"`
	ProvenCases     []ProvenCase `json:"provenCases,omitempty"`
}

// ProvenCase is a completed reference project used as a sanity anchor for a
// new proposal.
type ProvenCase struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Sector     catalog.Sector `json:"sector"`
	DesignFlow float64        `json:"designFlow"` // m3/d
	CapexUSD   float64        `json:"capexUsd"`
	Similarity float64        `json:"similarity"` // 0-1
}
