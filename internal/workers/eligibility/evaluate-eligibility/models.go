// internal/workers/eligibility/evaluate-eligibility/models.go
package evaluateeligibility

import (
	"insertion-workers/internal/candidates"
	"insertion-workers/internal/eligibility"
)

// Input carries the candidate attributes inline. When candidatId is set and
// persist is true the result is written to statut_eligibilite.
type Input struct {
	CandidateID string `json:"candidatId"`
	Persist     bool   `json:"persist"`
	candidates.Fields
}

type Output struct {
	CandidateID       string               `json:"candidatId,omitempty"`
	StatutEligibilite eligibility.Status   `json:"statutEligibilite"`
	Reasons           []eligibility.Reason `json:"reasons"`
	Age               *int                 `json:"age"`
	PolicyApplied     bool                 `json:"policyApplied"`
	ProgrammeID       string               `json:"programmeId,omitempty"`
	Persisted         bool                 `json:"persisted"`
	EvaluatedAt       string               `json:"evaluatedAt"` // ISO 8601
}
