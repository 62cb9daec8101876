// internal/reference/postgres.go
package reference

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"insertion-workers/internal/candidates"
	"insertion-workers/internal/eligibility"
)

const (
	queryCall = `
		SELECT id, COALESCE(projet_id::text, '')
		FROM appels_candidature
		WHERE id = $1`

	queryProject = `
		SELECT id, COALESCE(programme_id::text, '')
		FROM projets
		WHERE id = $1`

	queryPolicy = `
		SELECT programme_id, age_min, age_max, genres_autorises, zones_eligibles
		FROM criteres_eligibilite
		WHERE programme_id = $1`
)

// PostgresProvider reads the call, project and policy tables of the ERP.
type PostgresProvider struct {
	db      *sql.DB
	timeout time.Duration
}

// NewPostgresProvider bounds each lookup by timeout (no bound when zero).
func NewPostgresProvider(db *sql.DB, timeout time.Duration) *PostgresProvider {
	return &PostgresProvider{db: db, timeout: timeout}
}

func (p *PostgresProvider) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.timeout)
}

func (p *PostgresProvider) FindCallByID(ctx context.Context, id string) (*eligibility.Call, error) {
	ctx, cancel := p.bounded(ctx)
	defer cancel()

	var call eligibility.Call
	err := p.db.QueryRowContext(ctx, queryCall, id).Scan(&call.ID, &call.ProjectID)
	if err != nil {
		return nil, notFound(err, "call", id)
	}
	return &call, nil
}

func (p *PostgresProvider) FindProjectByID(ctx context.Context, id string) (*eligibility.Project, error) {
	ctx, cancel := p.bounded(ctx)
	defer cancel()

	var project eligibility.Project
	err := p.db.QueryRowContext(ctx, queryProject, id).Scan(&project.ID, &project.ProgrammeID)
	if err != nil {
		return nil, notFound(err, "project", id)
	}
	return &project, nil
}

func (p *PostgresProvider) FindPolicyByProgrammeID(ctx context.Context, programmeID string) (*eligibility.Policy, error) {
	ctx, cancel := p.bounded(ctx)
	defer cancel()

	var (
		policy         eligibility.Policy
		minAge, maxAge sql.NullInt64
		genders, zones []sql.NullString
	)
	err := p.db.QueryRowContext(ctx, queryPolicy, programmeID).Scan(
		&policy.ProgrammeID,
		&minAge,
		&maxAge,
		pq.Array(&genders),
		pq.Array(&zones),
	)
	if err != nil {
		return nil, notFound(err, "policy", programmeID)
	}

	policy.MinAge = intOrNil(minAge)
	policy.MaxAge = intOrNil(maxAge)
	policy.AuthorizedGenders = normalizeGenders(validStrings(genders))
	policy.EligibleZones = validStrings(zones)
	return &policy, nil
}

func notFound(err error, kind, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s %s", eligibility.ErrNotFound, kind, id)
	}
	return fmt.Errorf("lookup %s %s: %w", kind, id, err)
}

func intOrNil(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

// normalizeGenders maps policy entries onto the M/F codes stored on
// candidates. Unrecognised entries are kept as written.
func normalizeGenders(values []string) []string {
	for i, v := range values {
		if g, ok := candidates.NormalizeGender(v); ok {
			values[i] = g
		}
	}
	return values
}

// validStrings drops NULL array elements.
func validStrings(values []sql.NullString) []string {
	if values == nil {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v.Valid {
			out = append(out, v.String)
		}
	}
	return out
}
