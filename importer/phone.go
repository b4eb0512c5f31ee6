package importer

import "strings"

// NormalizePhone reduces a raw phone value to a basic E.164-ish form.
// All non-digit characters are stripped; fewer than 7 remaining digits
// yields "" (no normal form, not an error). Exactly 10 digits are assumed
// to be US-national and get country code 1 prepended. The result always
// starts with "+".
//
// Both the validator and the executor dedupe by this function's output,
// so it must stay deterministic.
func NormalizePhone(raw string) string {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	s := digits.String()
	if len(s) < 7 {
		return ""
	}
	if len(s) == 10 {
		s = "1" + s
	}
	return "+" + s
}
