// internal/workers/proposal/audit-proposal/models.go
package auditproposal

import (
	"proposal-workers/internal/engine/redflags"
	"proposal-workers/internal/models"
)

type Input struct {
	Proposal models.Proposal `json:"proposal"`
}

type Output struct {
	ProposalID    string               `json:"proposalId"`
	Flags         []redflags.SmartFlag `json:"flags"`
	FlagCount     int                  `json:"flagCount"`
	CriticalCount int                  `json:"criticalCount"`
	AuditTimeMs   int64                `json:"auditTimeMs"`
}
