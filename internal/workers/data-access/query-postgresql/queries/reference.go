// internal/workers/data-access/query-postgresql/queries/reference.go
package queries

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"insertion-workers/internal/eligibility"
	"insertion-workers/internal/reference"
)

func ProgrammeDetails(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	programmeID, err := requireString(params, "programmeId")
	if err != nil {
		return nil, 0, 0, err
	}

	start := time.Now()

	var id, nom, description, dateDebut, dateFin string
	var projectCount int
	err = db.QueryRowContext(ctx, `
		SELECT id, nom, COALESCE(description, ''),
		       COALESCE(to_char(date_debut, 'YYYY-MM-DD'), ''),
		       COALESCE(to_char(date_fin, 'YYYY-MM-DD'), ''),
		       (SELECT COUNT(*) FROM projets WHERE programme_id = programmes.id)
		FROM programmes
		WHERE id = $1`, programmeID).Scan(&id, &nom, &description, &dateDebut, &dateFin, &projectCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, time.Since(start).Milliseconds(), nil
	}
	if err != nil {
		return nil, 0, 0, err
	}

	result := map[string]interface{}{
		"id":           id,
		"nom":          nom,
		"description":  description,
		"dateDebut":    dateDebut,
		"dateFin":      dateFin,
		"projectCount": projectCount,
	}
	return result, 1, time.Since(start).Milliseconds(), nil
}

func ProjectDetails(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	projectID, err := requireString(params, "projetId")
	if err != nil {
		return nil, 0, 0, err
	}

	start := time.Now()

	var id, nom, programmeID, description string
	err = db.QueryRowContext(ctx, `
		SELECT id, nom, COALESCE(programme_id::text, ''), COALESCE(description, '')
		FROM projets
		WHERE id = $1`, projectID).Scan(&id, &nom, &programmeID, &description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, time.Since(start).Milliseconds(), nil
	}
	if err != nil {
		return nil, 0, 0, err
	}

	result := map[string]interface{}{
		"id":          id,
		"nom":         nom,
		"programmeId": programmeID,
		"description": description,
	}
	return result, 1, time.Since(start).Milliseconds(), nil
}

func CallDetails(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	callID, err := requireString(params, "appelId")
	if err != nil {
		return nil, 0, 0, err
	}

	start := time.Now()

	var id, titre, projectID, programmeID, statut, ouverture, cloture string
	var candidateCount int
	err = db.QueryRowContext(ctx, `
		SELECT a.id, a.titre, COALESCE(a.projet_id::text, ''), COALESCE(p.programme_id::text, ''),
		       COALESCE(a.statut, ''),
		       COALESCE(to_char(a.date_ouverture, 'YYYY-MM-DD'), ''),
		       COALESCE(to_char(a.date_cloture, 'YYYY-MM-DD'), ''),
		       (SELECT COUNT(*) FROM candidats c WHERE c.appel_id = a.id)
		FROM appels_candidature a
		LEFT JOIN projets p ON p.id = a.projet_id
		WHERE a.id = $1`, callID).Scan(&id, &titre, &projectID, &programmeID, &statut, &ouverture, &cloture, &candidateCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, time.Since(start).Milliseconds(), nil
	}
	if err != nil {
		return nil, 0, 0, err
	}

	result := map[string]interface{}{
		"id":             id,
		"titre":          titre,
		"projetId":       projectID,
		"programmeId":    programmeID,
		"statut":         statut,
		"dateOuverture":  ouverture,
		"dateCloture":    cloture,
		"candidateCount": candidateCount,
	}
	return result, 1, time.Since(start).Milliseconds(), nil
}

// EligibilityCriteria reads the programme policy through the same provider the
// evaluator uses, so both see identical criteria.
func EligibilityCriteria(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	programmeID, err := requireString(params, "programmeId")
	if err != nil {
		return nil, 0, 0, err
	}

	start := time.Now()

	policy, err := reference.NewPostgresProvider(db, 0).FindPolicyByProgrammeID(ctx, programmeID)
	if errors.Is(err, eligibility.ErrNotFound) {
		return nil, 0, time.Since(start).Milliseconds(), nil
	}
	if err != nil {
		return nil, 0, 0, err
	}

	result := map[string]interface{}{
		"programmeId":     policy.ProgrammeID,
		"ageMin":          policy.MinAge,
		"ageMax":          policy.MaxAge,
		"genresAutorises": nonNil(policy.AuthorizedGenders),
		"zonesEligibles":  nonNil(policy.EligibleZones),
	}
	return result, 1, time.Since(start).Milliseconds(), nil
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
