// internal/workers/data-access/query-postgresql/queries/candidates.go
package queries

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"insertion-workers/internal/candidates"
)

// CallCandidates lists the candidates of a call. Optional filters: statut,
// statutEligibilite.
func CallCandidates(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	callID, err := requireString(params, "appelId")
	if err != nil {
		return nil, 0, 0, err
	}
	filters, _ := params["filters"].(map[string]interface{})
	statut, _ := filters["statut"].(string)
	badge, _ := filters["statutEligibilite"].(string)

	start := time.Now()

	rows, err := candidates.NewRepository(db).ListByCall(ctx, callID)
	if err != nil {
		return nil, 0, 0, err
	}

	result := make([]*candidates.Candidate, 0, len(rows))
	for _, c := range rows {
		if statut != "" && !strings.EqualFold(string(c.Status), statut) {
			continue
		}
		if badge != "" && !strings.EqualFold(string(c.EligibilityStatus), badge) {
			continue
		}
		result = append(result, c)
	}
	return result, len(result), time.Since(start).Milliseconds(), nil
}
