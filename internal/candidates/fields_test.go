package candidates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFields(t *testing.T) {
	now := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name            string
		raw             map[string]interface{}
		requireIdentity bool
		wantField       string
		check           func(t *testing.T, f *Fields)
	}{
		{
			name: "normalizes a complete payload",
			raw: map[string]interface{}{
				"nom":           " Diop ",
				"prenom":        "Awa",
				"email":         "Awa.Diop@Example.SN",
				"telephone":     "+221 77 123 45 67",
				"dateNaissance": "12/04/2001",
				"sexe":          "femme",
				"ville":         "Thies",
				"appelId":       "call-1",
			},
			requireIdentity: true,
			check: func(t *testing.T, f *Fields) {
				assert.Equal(t, "Diop", f.LastName)
				assert.Equal(t, "awa.diop@example.sn", f.Email)
				assert.Equal(t, "2001-04-12", f.DateOfBirth)
				assert.Equal(t, "F", f.Gender)
				assert.Equal(t, "call-1", f.CallID)
			},
		},
		{
			name:            "missing identity on create",
			raw:             map[string]interface{}{"email": "awa@example.sn"},
			requireIdentity: true,
			wantField:       "nom",
		},
		{
			name:            "blank identity on create",
			raw:             map[string]interface{}{"nom": "  ", "prenom": "Awa"},
			requireIdentity: true,
			wantField:       "nom",
		},
		{
			name: "partial update needs no identity",
			raw:  map[string]interface{}{"region": "Kolda"},
			check: func(t *testing.T, f *Fields) {
				assert.Equal(t, "Kolda", f.Region)
				assert.Empty(t, f.LastName)
			},
		},
		{
			name:      "bad email",
			raw:       map[string]interface{}{"email": "awa@"},
			wantField: "email",
		},
		{
			name:      "bad phone",
			raw:       map[string]interface{}{"telephone": "12"},
			wantField: "telephone",
		},
		{
			name:      "unreadable date of birth",
			raw:       map[string]interface{}{"dateNaissance": "2001-02-30"},
			wantField: "dateNaissance",
		},
		{
			name:      "future date of birth",
			raw:       map[string]interface{}{"dateNaissance": "2030-01-01"},
			wantField: "dateNaissance",
		},
		{
			name:      "unknown gender",
			raw:       map[string]interface{}{"sexe": "X"},
			wantField: "sexe",
		},
		{
			name:      "wrong type",
			raw:       map[string]interface{}{"ville": 42},
			wantField: "ville",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, res := ValidateFields(tt.raw, tt.requireIdentity, now)
			if tt.wantField != "" {
				assert.Nil(t, f)
				assert.False(t, res.Valid)
				assert.True(t, res.HasErrors(tt.wantField), "errors: %v", res.GetErrorMessages())
				return
			}
			require.NotNil(t, f)
			assert.True(t, res.Valid)
			tt.check(t, f)
		})
	}
}

func TestFields_MergeInto(t *testing.T) {
	c := &Candidate{ID: "cand-1", LastName: "Diop", City: "Dakar", Status: StatusDiagnostic}
	f := &Fields{City: "Thies", Gender: "F"}

	f.MergeInto(c)

	assert.Equal(t, "Diop", c.LastName)
	assert.Equal(t, "Thies", c.City)
	assert.Equal(t, "F", c.Gender)
	assert.Equal(t, StatusDiagnostic, c.Status)
}

func TestFields_EligibilityInput(t *testing.T) {
	f := &Fields{DateOfBirth: "2001-04-12", Gender: "M", Commune: "Pikine", CallID: "call-1"}
	in := f.EligibilityInput()

	assert.Equal(t, "2001-04-12", in.DateOfBirth)
	assert.Equal(t, "Pikine", in.Commune)
	assert.Equal(t, "call-1", in.CallID)
}
