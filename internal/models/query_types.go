// internal/models/query_types.go
package models

// QueryType names a canned query of the data-access workers.
type QueryType string

// Relational queries served by query-postgresql.
const (
	QueryTypeProgrammeDetails    QueryType = "programme_details"
	QueryTypeProjectDetails      QueryType = "project_details"
	QueryTypeCallDetails         QueryType = "call_details"
	QueryTypeCallCandidates      QueryType = "call_candidates"
	QueryTypeEligibilityCriteria QueryType = "eligibility_criteria"
)

// Search queries served by query-elasticsearch.
const (
	QueryTypeCandidateSearch  QueryType = "candidate_search"
	QueryTypeCandidatesByZone QueryType = "candidates_by_zone"
)
