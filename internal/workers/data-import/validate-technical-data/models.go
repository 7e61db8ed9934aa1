// internal/workers/data-import/validate-technical-data/models.go
package validatetechnicaldata

import (
	"proposal-workers/internal/engine/techcheck"
)

// Input validates either one field (FieldID + Value) or a whole data set
// (Data). ExistingData supplies related parameters already on the project so
// cross-field refinements can run either way.
type Input struct {
	Sector       string             `json:"sector"`
	FieldID      string             `json:"fieldId,omitempty"`
	Value        *float64           `json:"value,omitempty"`
	Data         map[string]float64 `json:"data,omitempty"`
	ExistingData map[string]float64 `json:"existingData,omitempty"`
}

type Output struct {
	Results            []techcheck.Result `json:"results"`
	ConsistencyResults []techcheck.Result `json:"consistencyResults,omitempty"`
	IsValid            bool               `json:"isValid"`
	ErrorCount         int                `json:"errorCount"`
	WarningCount       int                `json:"warningCount"`
	ValidationTimeMs   int64              `json:"validationTimeMs"`
}
