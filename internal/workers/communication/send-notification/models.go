// internal/workers/communication/send-notification/models.go
package sendnotification

type Input struct {
	CandidateID      string                 `json:"candidatId"`
	NotificationType string                 `json:"notificationType"`
	Priority         string                 `json:"priority,omitempty"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

type Output struct {
	NotificationID string   `json:"notificationId"`
	Status         string   `json:"status"` // "sent", "partial", "disabled"
	Channels       []string `json:"channels"`
	FailedChannels []string `json:"failedChannels,omitempty"`
	SentAt         string   `json:"sentAt"` // ISO 8601
}

// Notification types shipped with the built-in registry.
const (
	TypeCandidateRegistered = "candidate_registered"
	TypeEligibilityResult   = "eligibility_result"
	TypeStageChanged        = "stage_changed"
)

// Statuses
const (
	StatusSent     = "sent"
	StatusPartial  = "partial"
	StatusDisabled = "disabled"
)

const PriorityHigh = "high"
