// Package phone normalizes the phone numbers lead intake receives from web
// forms and call logging.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// Numbers without a country prefix are assumed domestic.
const defaultRegion = "US"

// NormalizeE164 converts free-form input to E.164 so lead dedupe and dialer
// integrations see one canonical format. Input that cannot be parsed as a
// valid number is stored as typed, trimmed; intake never rejects a lead
// over its phone field.
func NormalizeE164(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	number, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err != nil || !phonenumbers.IsValidNumber(number) {
		return trimmed
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}
