// internal/workers/pipeline/list-pipeline-board/models.go
package listpipelineboard

import "insertion-workers/internal/eligibility"

type Input struct {
	AppelID   string `json:"appelId"`
	Recompute bool   `json:"recompute"`
}

type Output struct {
	AppelID    string   `json:"appelId"`
	Columns    []Column `json:"columns"`
	Total      int      `json:"total"`
	Recomputed int      `json:"recomputed"` // cards whose badge changed
}

// Column holds the cards of one pipeline stage.
type Column struct {
	Statut string `json:"statut"`
	Count  int    `json:"count"`
	Cards  []Card `json:"cards"`
}

// Card is a candidate on the board with its eligibility badge.
type Card struct {
	CandidateID       string             `json:"candidatId"`
	Nom               string             `json:"nom"`
	Prenom            string             `json:"prenom"`
	Email             string             `json:"email,omitempty"`
	Telephone         string             `json:"telephone,omitempty"`
	StatutEligibilite eligibility.Status `json:"statutEligibilite"`
}
