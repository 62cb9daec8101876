// internal/workers/candidates/update-candidate-record/models.go
package updatecandidaterecord

import "insertion-workers/internal/eligibility"

type Input struct {
	CandidateID   string                 `json:"candidatId"`
	CandidateData map[string]interface{} `json:"candidateData"`
}

type Output struct {
	CandidateID               string               `json:"candidatId"`
	StatutEligibilite         eligibility.Status   `json:"statutEligibilite"`
	PreviousStatutEligibilite eligibility.Status   `json:"previousStatutEligibilite"`
	EligibilityChanged        bool                 `json:"eligibilityChanged"`
	Reasons                   []eligibility.Reason `json:"reasons"`
	UpdatedAt                 string               `json:"updatedAt"` // ISO 8601
}
