// internal/eligibility/provider.go
package eligibility

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a ReferenceProvider when a record does not exist.
var ErrNotFound = errors.New("REFERENCE_NOT_FOUND")

// ReferenceProvider resolves the call -> project -> programme -> policy chain.
// Implementations bound their own latency; the evaluator treats every error
// like ErrNotFound.
type ReferenceProvider interface {
	FindCallByID(ctx context.Context, id string) (*Call, error)
	FindProjectByID(ctx context.Context, id string) (*Project, error)
	FindPolicyByProgrammeID(ctx context.Context, programmeID string) (*Policy, error)
}
