// internal/workers/candidates/validate-candidate-data/models.go
package validatecandidatedata

import (
	"insertion-workers/internal/candidates"
	"insertion-workers/internal/common/validation"
)

type Input struct {
	CandidateData map[string]interface{} `json:"candidateData"`
	Mode          string                 `json:"mode"` // "create" (default) or "update"
}

type Output struct {
	IsValid          bool                         `json:"isValid"`
	ValidatedData    *candidates.Fields           `json:"validatedData"`
	ValidationErrors []validation.ValidationError `json:"validationErrors"`
}

const (
	ModeCreate = "create"
	ModeUpdate = "update"
)
