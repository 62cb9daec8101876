// internal/candidates/repository.go
package candidates

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"insertion-workers/internal/common/database"
	"insertion-workers/internal/eligibility"
)

var ErrCandidateNotFound = errors.New("CANDIDATE_NOT_FOUND")

const selectColumns = `
	id, COALESCE(nom, ''), COALESCE(prenom, ''), COALESCE(email, ''), COALESCE(telephone, ''),
	COALESCE(to_char(date_naissance, 'YYYY-MM-DD'), ''), COALESCE(sexe, ''),
	COALESCE(region, ''), COALESCE(departement, ''), COALESCE(commune, ''), COALESCE(ville, ''),
	COALESCE(appel_id::text, ''), statut, COALESCE(statut_eligibilite, ''), created_at, updated_at`

// Repository persists candidates and their audit trail.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanCandidate(row scanner) (*Candidate, error) {
	var c Candidate
	var status, eligibilityStatus string
	err := row.Scan(
		&c.ID, &c.LastName, &c.FirstName, &c.Email, &c.Phone,
		&c.DateOfBirth, &c.Gender,
		&c.Region, &c.Department, &c.Commune, &c.City,
		&c.CallID, &status, &eligibilityStatus, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Status = PipelineStatus(status)
	c.EligibilityStatus = eligibility.Status(eligibilityStatus)
	return &c, nil
}

// nullable maps empty strings to NULL.
func nullable(v string) interface{} {
	if v == "" {
		return nil
	}
	return v
}

// Insert assigns an id when missing and stamps both timestamps. The date of
// birth is stored as YYYY-MM-DD, or NULL when unreadable.
func (r *Repository) Insert(ctx context.Context, c *Candidate) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Status == "" {
		c.Status = StatusNew
	}
	c.DateOfBirth = NormalizeDateOfBirth(c.DateOfBirth)
	now := r.now()
	c.CreatedAt, c.UpdatedAt = now, now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO candidats (
			id, nom, prenom, email, telephone, date_naissance, sexe,
			region, departement, commune, ville, appel_id,
			statut, statut_eligibilite, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $15)`,
		c.ID, c.LastName, c.FirstName, nullable(c.Email), nullable(c.Phone),
		nullable(c.DateOfBirth), nullable(c.Gender),
		nullable(c.Region), nullable(c.Department), nullable(c.Commune), nullable(c.City),
		nullable(c.CallID), string(c.Status), string(c.EligibilityStatus), now,
	)
	if err != nil {
		return fmt.Errorf("insert candidate: %w", err)
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, id string) (*Candidate, error) {
	row := r.db.QueryRowContext(ctx, `SELECT`+selectColumns+` FROM candidats WHERE id = $1`, id)
	c, err := scanCandidate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrCandidateNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get candidate %s: %w", id, err)
	}
	return c, nil
}

// Update rewrites the personal attributes and the eligibility status. The
// pipeline status is left to UpdateStatus.
func (r *Repository) Update(ctx context.Context, c *Candidate) error {
	c.DateOfBirth = NormalizeDateOfBirth(c.DateOfBirth)
	c.UpdatedAt = r.now()
	res, err := r.db.ExecContext(ctx, `
		UPDATE candidats SET
			nom = $2, prenom = $3, email = $4, telephone = $5, date_naissance = $6, sexe = $7,
			region = $8, departement = $9, commune = $10, ville = $11, appel_id = $12,
			statut_eligibilite = $13, updated_at = $14
		WHERE id = $1`,
		c.ID, c.LastName, c.FirstName, nullable(c.Email), nullable(c.Phone),
		nullable(c.DateOfBirth), nullable(c.Gender),
		nullable(c.Region), nullable(c.Department), nullable(c.Commune), nullable(c.City),
		nullable(c.CallID), string(c.EligibilityStatus), c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update candidate %s: %w", c.ID, err)
	}
	return expectOne(res, c.ID)
}

// UpdateStatus moves a candidate to another pipeline stage and returns the
// stage it left. The eligibility status is not touched.
func (r *Repository) UpdateStatus(ctx context.Context, id string, to PipelineStatus) (PipelineStatus, error) {
	var from string
	err := database.NewPostgresFromDB(r.db).InTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `SELECT statut FROM candidats WHERE id = $1 FOR UPDATE`, id).Scan(&from)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", ErrCandidateNotFound, id)
		}
		if err != nil {
			return fmt.Errorf("lock candidate %s: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE candidats SET statut = $2, updated_at = $3 WHERE id = $1`,
			id, string(to), r.now(),
		); err != nil {
			return fmt.Errorf("update candidate status %s: %w", id, err)
		}
		return nil
	})
	return PipelineStatus(from), err
}

func (r *Repository) UpdateEligibility(ctx context.Context, id string, status eligibility.Status) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE candidats SET statut_eligibilite = $2, updated_at = $3 WHERE id = $1`,
		id, string(status), r.now(),
	)
	if err != nil {
		return fmt.Errorf("update eligibility %s: %w", id, err)
	}
	return expectOne(res, id)
}

// ListByCall returns every candidate of a call, oldest first.
func (r *Repository) ListByCall(ctx context.Context, callID string) ([]*Candidate, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT`+selectColumns+` FROM candidats WHERE appel_id = $1 ORDER BY created_at, id`, callID)
	if err != nil {
		return nil, fmt.Errorf("list candidates of call %s: %w", callID, err)
	}
	return collect(rows)
}

// List pages through candidates by ascending id.
func (r *Repository) List(ctx context.Context, f ListFilter) ([]*Candidate, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}

	var (
		conds []string
		args  []interface{}
	)
	where := func(cond string, v interface{}) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	// The first page has no cursor; an empty string is not a valid uuid.
	if f.AfterID != "" {
		where("id > $%d", f.AfterID)
	}
	if f.CallID != "" {
		where("appel_id = $%d", f.CallID)
	}

	query := `SELECT` + selectColumns + ` FROM candidats`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	args = append(args, limit)
	query += fmt.Sprintf(` ORDER BY id LIMIT $%d`, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	return collect(rows)
}

func (r *Repository) ExistsByEmailAndCall(ctx context.Context, email, callID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM candidats
			WHERE lower(email) = lower($1) AND COALESCE(appel_id::text, '') = $2
		)`, email, callID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("duplicate check: %w", err)
	}
	return exists, nil
}

func (r *Repository) InsertAudit(ctx context.Context, e AuditEntry) error {
	details, err := json.Marshal(e.Details)
	if err != nil {
		details = []byte("{}")
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		e.EventType, e.ResourceType, e.ResourceID, details, r.now(),
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func collect(rows *sql.Rows) ([]*Candidate, error) {
	defer rows.Close()

	out := make([]*Candidate, 0)
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidates: %w", err)
	}
	return out, nil
}

func expectOne(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrCandidateNotFound, id)
	}
	return nil
}
