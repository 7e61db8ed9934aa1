// internal/workers/proposal/generate-proposal/models.go
package generateproposal

import (
	"proposal-workers/internal/engine/catalog"
	"proposal-workers/internal/engine/costing"
	"proposal-workers/internal/models"
)

type Input struct {
	ProjectName      string  `json:"projectName,omitempty"`
	Sector           string  `json:"sector"`
	DesignFlow       float64 `json:"designFlow"`  // m3/d
	OrganicLoad      float64 `json:"organicLoad"` // BOD, mg/L
	Population       int     `json:"population,omitempty"`
	TargetEfficiency float64 `json:"targetEfficiency,omitempty"` // %
}

type Output struct {
	ProposalID           string                     `json:"proposalId"`
	Sector               string                     `json:"sector"`
	SelectedTechnologies []catalog.TechnologyOption `json:"selectedTechnologies"`
	Reasoning            []string                   `json:"reasoning"`
	CAPEX                costing.CostBreakdown      `json:"capex"`
	OPEX                 costing.OperationalCost    `json:"opex"`
	EquipmentList        []models.EquipmentItem     `json:"equipmentList"`
	TreatmentEfficiency  models.TreatmentEfficiency `json:"treatmentEfficiency"`
	GenerationTimeMs     int64                      `json:"generationTimeMs"`
}
