// internal/candidates/fields.go
package candidates

import (
	"encoding/json"
	"strings"
	"time"

	"insertion-workers/internal/common/validation"
	"insertion-workers/internal/eligibility"
)

// Fields is the candidate form payload shared by the workers and the ops API.
// Empty values mean "not provided".
type Fields struct {
	LastName    string `json:"nom,omitempty"`
	FirstName   string `json:"prenom,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"telephone,omitempty"`
	DateOfBirth string `json:"dateNaissance,omitempty"`
	Gender      string `json:"sexe,omitempty"`
	Region      string `json:"region,omitempty"`
	Department  string `json:"departement,omitempty"`
	Commune     string `json:"commune,omitempty"`
	City        string `json:"ville,omitempty"`
	CallID      string `json:"appelId,omitempty"`
}

const fieldProperties = `{
	"nom":           {"type": "string", "minLength": 1, "maxLength": 100},
	"prenom":        {"type": "string", "minLength": 1, "maxLength": 100},
	"email":         {"type": "string", "maxLength": 254},
	"telephone":     {"type": "string", "maxLength": 32},
	"dateNaissance": {"type": "string"},
	"sexe":          {"type": "string"},
	"region":        {"type": "string", "maxLength": 100},
	"departement":   {"type": "string", "maxLength": 100},
	"commune":       {"type": "string", "maxLength": 100},
	"ville":         {"type": "string", "maxLength": 100},
	"appelId":       {"type": "string"}
}`

var (
	createSchema = validation.MustCompile(`{"type": "object", "required": ["nom", "prenom"], "properties": ` + fieldProperties + `}`)
	updateSchema = validation.MustCompile(`{"type": "object", "properties": ` + fieldProperties + `}`)
)

// ValidateFields checks a raw payload and returns the normalized fields.
// requireIdentity demands nom and prenom, as on creation.
func ValidateFields(raw map[string]interface{}, requireIdentity bool, now time.Time) (*Fields, *validation.ValidationResult) {
	schema := updateSchema
	if requireIdentity {
		schema = createSchema
	}
	result := schema.Validate(raw)
	if !result.Valid {
		return nil, result
	}

	var f Fields
	data, _ := json.Marshal(raw)
	if err := json.Unmarshal(data, &f); err != nil {
		result.Add("(root)", "INVALID_TYPE", err.Error())
		return nil, result
	}
	f.trim()

	if requireIdentity && (f.LastName == "" || f.FirstName == "") {
		result.Add("nom", "MISSING_REQUIRED", "nom and prenom must not be blank")
	}
	if f.Email != "" {
		f.Email = strings.ToLower(f.Email)
		if !validation.ValidateEmail(f.Email) {
			result.Add("email", "INVALID_FORMAT", "invalid email format")
		}
	}
	if f.Phone != "" && !validation.ValidatePhone(f.Phone) {
		result.Add("telephone", "INVALID_FORMAT", "invalid phone number")
	}
	if f.DateOfBirth != "" {
		dob, ok := eligibility.ParseDateOfBirth(f.DateOfBirth)
		switch {
		case !ok:
			result.Add("dateNaissance", "INVALID_FORMAT", "date of birth must be a valid date (YYYY-MM-DD)")
		case dob.After(now):
			result.Add("dateNaissance", "INVALID_VALUE", "date of birth is in the future")
		default:
			f.DateOfBirth = dob.Format("2006-01-02")
		}
	}
	if f.Gender != "" {
		g, ok := NormalizeGender(f.Gender)
		if !ok {
			result.Add("sexe", "INVALID_VALUE", "sexe must be M or F")
		}
		f.Gender = g
	}

	if !result.Valid {
		return nil, result
	}
	return &f, result
}

// NormalizeGender maps the accepted spellings to M or F.
func NormalizeGender(raw string) (string, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "M", "H", "HOMME", "MASCULIN":
		return "M", true
	case "F", "FEMME", "FEMININ", "FÉMININ":
		return "F", true
	}
	return raw, false
}

func (f *Fields) trim() {
	for _, p := range []*string{
		&f.LastName, &f.FirstName, &f.Email, &f.Phone, &f.DateOfBirth, &f.Gender,
		&f.Region, &f.Department, &f.Commune, &f.City, &f.CallID,
	} {
		*p = strings.TrimSpace(*p)
	}
}

// NewCandidate builds a new row from validated fields.
func (f *Fields) NewCandidate() *Candidate {
	c := &Candidate{Status: StatusNew}
	f.MergeInto(c)
	return c
}

// MergeInto copies every provided field onto c.
func (f *Fields) MergeInto(c *Candidate) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&c.LastName, f.LastName)
	set(&c.FirstName, f.FirstName)
	set(&c.Email, f.Email)
	set(&c.Phone, f.Phone)
	set(&c.DateOfBirth, f.DateOfBirth)
	set(&c.Gender, f.Gender)
	set(&c.Region, f.Region)
	set(&c.Department, f.Department)
	set(&c.Commune, f.Commune)
	set(&c.City, f.City)
	set(&c.CallID, f.CallID)
}

// EligibilityInput projects the fields for an evaluation without a stored row.
func (f *Fields) EligibilityInput() eligibility.Candidate {
	return f.NewCandidate().EligibilityInput()
}
