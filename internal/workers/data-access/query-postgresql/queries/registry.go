// internal/workers/data-access/query-postgresql/queries/registry.go
package queries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"insertion-workers/internal/models"
)

var (
	ErrMissingParam     = errors.New("missing required parameter")
	ErrUnknownQueryType = errors.New("unknown query type")
)

// MissingParamError names the parameter a query needed.
type MissingParamError struct {
	Param string
}

func (e *MissingParamError) Error() string { return fmt.Sprintf("%s: %s", ErrMissingParam, e.Param) }
func (e *MissingParamError) Unwrap() error { return ErrMissingParam }

// QueryFunc returns: data, rowCount, executionTime (ms), error.
// A missing record is data nil with rowCount 0, not an error.
type QueryFunc func(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error)

var Registry = map[models.QueryType]QueryFunc{
	models.QueryTypeProgrammeDetails:    ProgrammeDetails,
	models.QueryTypeProjectDetails:      ProjectDetails,
	models.QueryTypeCallDetails:         CallDetails,
	models.QueryTypeCallCandidates:      CallCandidates,
	models.QueryTypeEligibilityCriteria: EligibilityCriteria,
}

func Execute(ctx context.Context, db *sql.DB, queryType models.QueryType, params map[string]interface{}) (interface{}, int, int64, error) {
	fn, exists := Registry[queryType]
	if !exists {
		return nil, 0, 0, fmt.Errorf("%w: %s", ErrUnknownQueryType, queryType)
	}
	return fn(ctx, db, params)
}

func requireString(params map[string]interface{}, key string) (string, error) {
	v, ok := params[key].(string)
	if !ok || v == "" {
		return "", &MissingParamError{Param: key}
	}
	return v, nil
}
