// internal/eligibility/rules.go
package eligibility

import "strings"

func trim(s string) string { return strings.TrimSpace(s) }

// nonBlank drops blank entries. A set made only of blanks restricts nothing.
func nonBlank(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = trim(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// baseline applies the age-only bracket used when no policy resolves.
func baseline(age *int, min, max int) Status {
	if age == nil {
		return StatusToVerify
	}
	if *age >= min && *age <= max {
		return StatusEligible
	}
	return StatusOutOfAgeBracket
}

// applyPolicy evaluates every rule independently and returns the fired reasons
// in a fixed order.
func applyPolicy(c Candidate, age *int, p Policy) []Reason {
	reasons := make([]Reason, 0, 4)

	if p.MinAge != nil && age != nil && *age < *p.MinAge {
		reasons = append(reasons, ReasonAgeBelowMin)
	}
	if p.MaxAge != nil && age != nil && *age > *p.MaxAge {
		reasons = append(reasons, ReasonAgeAboveMax)
	}
	if genders := nonBlank(p.AuthorizedGenders); len(genders) > 0 {
		if g := trim(c.Gender); g != "" && !containsFold(genders, g) {
			reasons = append(reasons, ReasonGenderNotAuthorized)
		}
	}
	if zones := nonBlank(p.EligibleZones); len(zones) > 0 && !zoneMatches(c.locations(), zones) {
		reasons = append(reasons, ReasonOutOfZone)
	}

	return reasons
}

func containsFold(set []string, v string) bool {
	for _, s := range set {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}

// zoneMatches is true when any candidate token and policy zone contain one
// another, ignoring case.
func zoneMatches(tokens, zones []string) bool {
	for _, t := range tokens {
		lt := strings.ToLower(t)
		for _, z := range zones {
			lz := strings.ToLower(z)
			if strings.Contains(lt, lz) || strings.Contains(lz, lt) {
				return true
			}
		}
	}
	return false
}

// resolveStatus picks one status from the fired reasons: zone, then gender,
// then age.
func resolveStatus(reasons []Reason, age *int) Status {
	if len(reasons) == 0 {
		if age == nil {
			return StatusToVerify
		}
		return StatusEligible
	}

	fired := make(map[Reason]bool, len(reasons))
	for _, r := range reasons {
		fired[r] = true
	}

	switch {
	case fired[ReasonOutOfZone]:
		return StatusOutOfZone
	case fired[ReasonGenderNotAuthorized]:
		return StatusGenderNotAllowed
	case fired[ReasonAgeBelowMin], fired[ReasonAgeAboveMax]:
		return StatusOutOfAgeBracket
	default:
		return StatusNotEligible
	}
}
