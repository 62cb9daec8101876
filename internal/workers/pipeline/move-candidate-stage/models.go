// internal/workers/pipeline/move-candidate-stage/models.go
package movecandidatestage

type Input struct {
	CandidateID string `json:"candidatId"`
	Statut      string `json:"statut"`
	Motif       string `json:"motif,omitempty"`
	MovedBy     string `json:"movedBy,omitempty"`
}

type Output struct {
	CandidateID    string `json:"candidatId"`
	PreviousStatut string `json:"previousStatut"`
	Statut         string `json:"statut"`
	Changed        bool   `json:"changed"`
	MovedAt        string `json:"movedAt"` // ISO 8601
}
