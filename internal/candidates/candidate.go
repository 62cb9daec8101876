// internal/candidates/candidate.go
package candidates

import (
	"strings"
	"time"

	"insertion-workers/internal/eligibility"
)

// PipelineStatus is the recruitment stage of a candidate (statut column).
type PipelineStatus string

const (
	StatusNew        PipelineStatus = "NOUVEAU"
	StatusDiagnostic PipelineStatus = "DIAGNOSTIC"
	StatusSelected   PipelineStatus = "SELECTIONNE"
	StatusConverted  PipelineStatus = "CONVERTI"
)

// PipelineStatuses lists the stages in board column order.
var PipelineStatuses = []PipelineStatus{StatusNew, StatusDiagnostic, StatusSelected, StatusConverted}

func (s PipelineStatus) Valid() bool {
	for _, v := range PipelineStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// ParsePipelineStatus accepts any case and surrounding spaces.
func ParsePipelineStatus(raw string) (PipelineStatus, bool) {
	s := PipelineStatus(strings.ToUpper(strings.TrimSpace(raw)))
	return s, s.Valid()
}

// Candidate is a row of the candidats table.
type Candidate struct {
	ID                string             `json:"id"`
	LastName          string             `json:"nom"`
	FirstName         string             `json:"prenom"`
	Email             string             `json:"email,omitempty"`
	Phone             string             `json:"telephone,omitempty"`
	DateOfBirth       string             `json:"dateNaissance,omitempty"` // YYYY-MM-DD
	Gender            string             `json:"sexe,omitempty"`
	Region            string             `json:"region,omitempty"`
	Department        string             `json:"departement,omitempty"`
	Commune           string             `json:"commune,omitempty"`
	City              string             `json:"ville,omitempty"`
	CallID            string             `json:"appelId,omitempty"`
	Status            PipelineStatus     `json:"statut"`
	EligibilityStatus eligibility.Status `json:"statutEligibilite"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
}

// EligibilityInput projects the attributes the evaluator reads.
func (c *Candidate) EligibilityInput() eligibility.Candidate {
	return eligibility.Candidate{
		ID:          c.ID,
		DateOfBirth: c.DateOfBirth,
		Gender:      c.Gender,
		Region:      c.Region,
		Department:  c.Department,
		Commune:     c.Commune,
		City:        c.City,
		CallID:      c.CallID,
	}
}

// NormalizeDateOfBirth rewrites any accepted date of birth to YYYY-MM-DD.
// Unreadable values are cleared so the stored row stays castable to date.
func NormalizeDateOfBirth(raw string) string {
	dob, ok := eligibility.ParseDateOfBirth(raw)
	if !ok {
		return ""
	}
	return dob.Format("2006-01-02")
}

// AuditEntry is a row of audit_log.
type AuditEntry struct {
	EventType    string
	ResourceType string
	ResourceID   string
	Details      map[string]interface{}
}

// ListFilter pages through candidates by id. Zero Limit means 100.
type ListFilter struct {
	CallID  string
	AfterID string
	Limit   int
}
