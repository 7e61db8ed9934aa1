// internal/workers/communication/notify-reviewer/models.go
package notifyreviewer

import (
	"proposal-workers/internal/engine/redflags"
)

type Input struct {
	ProposalID    string               `json:"proposalId"`
	ProjectName   string               `json:"projectName,omitempty"`
	ReviewerEmail string               `json:"reviewerEmail"`
	ReviewerPhone string               `json:"reviewerPhone,omitempty"`
	Flags         []redflags.SmartFlag `json:"flags"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"status"` // "sent", "disabled"
	EmailSent      bool   `json:"emailSent"`
	SMSSent        bool   `json:"smsSent"`
	SentAt         string `json:"sentAt"` // ISO 8601
}

// Statuses
const (
	StatusSent     = "sent"
	StatusDisabled = "disabled"
)
