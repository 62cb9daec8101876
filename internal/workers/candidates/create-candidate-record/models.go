// internal/workers/candidates/create-candidate-record/models.go
package createcandidaterecord

import "insertion-workers/internal/eligibility"

type Input struct {
	CandidateData map[string]interface{} `json:"candidateData"`
}

type Output struct {
	CandidateID       string               `json:"candidatId"`
	Statut            string               `json:"statut"`
	StatutEligibilite eligibility.Status   `json:"statutEligibilite"`
	Reasons           []eligibility.Reason `json:"reasons"`
	Indexed           bool                 `json:"indexed"`
	CreatedAt         string               `json:"createdAt"` // ISO 8601
}
