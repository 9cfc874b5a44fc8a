package validation

import (
	"encoding/json"
	"net/mail"
	"net/url"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// No suitable third-party validation library appeared anywhere in the
// retrieved pack (none of the example repos import one), so these
// format checks wrap an existing parser for each format rather than
// hand-rolling a grammar: the standard library's, and google/uuid's
// for UUIDs.
var formatValidators = map[Format]func(string) bool{
	FormatEmail: func(s string) bool {
		_, err := mail.ParseAddress(s)
		return err == nil
	},
	FormatURL: func(s string) bool {
		u, err := url.Parse(s)
		return err == nil && u.Scheme != "" && u.Host != ""
	},
	FormatUUID: func(s string) bool {
		_, err := uuid.Parse(s)
		return err == nil
	},
	FormatISO8601: func(s string) bool {
		_, err := time.Parse(time.RFC3339, s)
		return err == nil
	},
	FormatJSON: func(s string) bool {
		return json.Valid([]byte(s))
	},
}

func validateFormat(f Format, s string) bool {
	fn, ok := formatValidators[f]
	if !ok {
		return true
	}
	return fn(s)
}

// sensitiveFieldPattern matches field names whose values should never
// surface in a FieldError or a log line.
var sensitiveFieldPattern = regexp.MustCompile(`(?i)(password|token|secret|key|auth|credential)`)
