// internal/workers/data-import/analyze-import/models.go
package analyzeimport

import (
	"proposal-workers/internal/engine/fieldmap"
)

// Input carries one import file: either free text content or a structured
// record, plus the project's existing data for conflict detection.
type Input struct {
	FileName     string                 `json:"fileName"`
	Content      string                 `json:"content,omitempty"`
	Record       map[string]interface{} `json:"record,omitempty"`
	ExistingData map[string]interface{} `json:"existingData,omitempty"`
}

type Output struct {
	SessionID      string                  `json:"sessionId"`
	Analysis       fieldmap.ImportAnalysis `json:"analysis"`
	Rules          []fieldmap.MappingRule  `json:"mappingRules"`
	PreviewData    map[string]interface{}  `json:"previewData"`
	Conflicts      []fieldmap.Conflict     `json:"conflicts"`
	FieldCount     int                     `json:"fieldCount"`
	AnalysisTimeMs int64                   `json:"analysisTimeMs"`
}
