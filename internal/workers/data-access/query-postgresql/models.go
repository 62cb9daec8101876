// internal/workers/data-access/query-postgresql/models.go
package querypostgresql

import "insertion-workers/internal/models"

type Input struct {
	QueryType   string                 `json:"queryType"`
	ProgrammeID string                 `json:"programmeId,omitempty"`
	ProjetID    string                 `json:"projetId,omitempty"`
	AppelID     string                 `json:"appelId,omitempty"`
	Filters     map[string]interface{} `json:"filters,omitempty"`
}

type Output struct {
	Data               interface{} `json:"data"`
	RowCount           int         `json:"rowCount"`
	QueryExecutionTime int64       `json:"queryExecutionTime"` // milliseconds
}

type QueryType = models.QueryType

var (
	QueryTypeProgrammeDetails    = models.QueryTypeProgrammeDetails
	QueryTypeProjectDetails      = models.QueryTypeProjectDetails
	QueryTypeCallDetails         = models.QueryTypeCallDetails
	QueryTypeCallCandidates      = models.QueryTypeCallCandidates
	QueryTypeEligibilityCriteria = models.QueryTypeEligibilityCriteria
)
