package validation

// redactedPlaceholder replaces the value of any field whose name
// matches sensitiveFieldPattern, and truncates long values so a single
// oversized field can't blow up an error payload.
const redactedPlaceholder = "[REDACTED]"

const maxReportedValueLength = 200

func redactValue(fieldName string, value any) any {
	if sensitiveFieldPattern.MatchString(fieldName) {
		return redactedPlaceholder
	}
	if s, ok := value.(string); ok && len(s) > maxReportedValueLength {
		return s[:maxReportedValueLength] + "...(truncated)"
	}
	return value
}
