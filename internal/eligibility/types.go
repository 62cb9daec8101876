// internal/eligibility/types.go
package eligibility

// Status is the eligibility classification stored on a candidate as statut_eligibilite.
type Status string

const (
	StatusEligible         Status = "ELIGIBLE"
	StatusOutOfZone        Status = "HORS_ZONE"
	StatusGenderNotAllowed Status = "GENRE_NON_AUTORISE"
	StatusOutOfAgeBracket  Status = "HORS_TRANCHE_AGE"
	StatusNotEligible      Status = "NON_ELIGIBLE"
	StatusToVerify         Status = "A_VERIFIER"
)

// Statuses lists every status in priority order.
var Statuses = []Status{
	StatusEligible,
	StatusOutOfZone,
	StatusGenderNotAllowed,
	StatusOutOfAgeBracket,
	StatusNotEligible,
	StatusToVerify,
}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Reason is a disqualifying condition fired by a programme policy.
type Reason string

const (
	ReasonAgeBelowMin         Reason = "AGE_BELOW_MIN"
	ReasonAgeAboveMax         Reason = "AGE_ABOVE_MAX"
	ReasonGenderNotAuthorized Reason = "GENDER_NOT_AUTHORIZED"
	ReasonOutOfZone           Reason = "OUT_OF_ZONE"
)

// Candidate carries the attributes the evaluator reads. Empty strings mean absent.
type Candidate struct {
	ID          string `json:"id,omitempty"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
	Gender      string `json:"gender,omitempty"`
	Region      string `json:"region,omitempty"`
	Department  string `json:"department,omitempty"`
	Commune     string `json:"commune,omitempty"`
	City        string `json:"city,omitempty"`
	CallID      string `json:"callId,omitempty"`
}

// locations returns the non-empty zone tokens of the candidate.
func (c Candidate) locations() []string {
	out := make([]string, 0, 4)
	for _, v := range []string{c.Region, c.Department, c.Commune, c.City} {
		if v = trim(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Call is a call-for-candidacy. ProjectID is empty when the call has no project.
type Call struct {
	ID        string
	ProjectID string
}

// Project belongs to at most one programme.
type Project struct {
	ID          string
	ProgrammeID string
}

// Policy is the programme-level eligibility configuration. A nil bound is not
// configured; a nil or empty set means no restriction.
type Policy struct {
	ProgrammeID       string
	MinAge            *int
	MaxAge            *int
	AuthorizedGenders []string
	EligibleZones     []string
}

// Assessment is the full result of one evaluation.
type Assessment struct {
	Status        Status   `json:"statutEligibilite"`
	Baseline      Status   `json:"baseline"`
	Age           *int     `json:"age,omitempty"`
	Reasons       []Reason `json:"reasons"`
	PolicyApplied bool     `json:"policyApplied"`
	ProgrammeID   string   `json:"programmeId,omitempty"`
}
