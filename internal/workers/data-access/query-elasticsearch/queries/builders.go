// internal/workers/data-access/query-elasticsearch/queries/builders.go
package queries

import (
	"errors"
	"fmt"
	"strings"

	"insertion-workers/internal/models"
)

var (
	ErrUnknownQueryType = errors.New("unknown query type")
	ErrMissingIndex     = errors.New("index name is required")
	ErrMissingZone      = errors.New("zone filter is required")
)

// zoneFields are the candidate location fields, coarsest first.
var zoneFields = []string{"region", "departement", "commune", "ville"}

// CandidateQuery defines the structure of a query request
type CandidateQuery struct {
	Index      string
	QueryType  models.QueryType
	Filters    map[string]interface{}
	AppelID    string
	Pagination struct {
		From int
		Size int
	}
}

// BuildQuery builds the search body for the query type.
func BuildQuery(cq CandidateQuery) (map[string]interface{}, error) {
	if cq.Index == "" {
		return nil, ErrMissingIndex
	}

	switch cq.QueryType {
	case models.QueryTypeCandidateSearch:
		return buildCandidateSearchQuery(cq), nil
	case models.QueryTypeCandidatesByZone:
		return buildCandidatesByZoneQuery(cq)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownQueryType, cq.QueryType)
	}
}

// buildCandidateSearchQuery matches keywords on identity and location fields
// and filters on the exact-value fields.
func buildCandidateSearchQuery(cq CandidateQuery) map[string]interface{} {
	mustClauses := []interface{}{}

	if keywords := stringFilter(cq.Filters, "keywords"); keywords != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  keywords,
				"fields": []string{"nom^3", "prenom^3", "email^2", "commune", "ville", "region", "departement"},
				"type":   "best_fields",
			},
		})
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   orMatchAll(mustClauses),
				"filter": exactFilters(cq),
			},
		},
		"sort": []interface{}{
			map[string]interface{}{"_score": map[string]interface{}{"order": "desc"}},
			map[string]interface{}{"createdAt": map[string]interface{}{"order": "desc", "unmapped_type": "date"}},
		},
	}
}

// buildCandidatesByZoneQuery returns candidates located in a zone at any
// level of the location hierarchy.
func buildCandidatesByZoneQuery(cq CandidateQuery) (map[string]interface{}, error) {
	zone := stringFilter(cq.Filters, "zone")
	if zone == "" {
		return nil, ErrMissingZone
	}

	should := make([]interface{}, 0, len(zoneFields))
	for _, f := range zoneFields {
		should = append(should, map[string]interface{}{
			"match": map[string]interface{}{
				f: map[string]interface{}{"query": zone, "operator": "and"},
			},
		})
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"should":               should,
				"minimum_should_match": 1,
				"filter":               exactFilters(cq),
			},
		},
		"sort": []interface{}{
			map[string]interface{}{"nom.keyword": map[string]interface{}{"order": "asc", "unmapped_type": "keyword"}},
		},
	}, nil
}

func exactFilters(cq CandidateQuery) []interface{} {
	filters := []interface{}{}
	if cq.AppelID != "" {
		filters = append(filters, term("appelId", cq.AppelID))
	}
	if statut := stringFilter(cq.Filters, "statut"); statut != "" {
		filters = append(filters, term("statut", strings.ToUpper(statut)))
	}
	if badge := stringFilter(cq.Filters, "statutEligibilite"); badge != "" {
		filters = append(filters, term("statutEligibilite", strings.ToUpper(badge)))
	}
	if sexe := stringFilter(cq.Filters, "sexe"); sexe != "" {
		filters = append(filters, term("sexe", strings.ToUpper(sexe)))
	}
	return filters
}

func term(field, value string) map[string]interface{} {
	return map[string]interface{}{
		"term": map[string]interface{}{field + ".keyword": value},
	}
}

func orMatchAll(clauses []interface{}) []interface{} {
	if len(clauses) == 0 {
		return []interface{}{map[string]interface{}{"match_all": map[string]interface{}{}}}
	}
	return clauses
}

func stringFilter(filters map[string]interface{}, key string) string {
	v, _ := filters[key].(string)
	return strings.TrimSpace(v)
}
