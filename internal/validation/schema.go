// Package validation implements the schema-registry & validation
// surface (component I): named field schemas, a bounded registry, and
// a validator producing a typed FieldError taxonomy. There is no direct
// teacher equivalent — the teacher validates ad hoc per HTTP handler —
// so this package is grounded on the teacher's general conventions
// (small typed structs, CoreError-style tagged errors) applied fresh.
package validation

import "regexp"

// FieldKind is the set of primitive shapes a FieldSchema can describe.
type FieldKind string

const (
	KindString FieldKind = "string"
	KindNumber FieldKind = "number"
	KindBool   FieldKind = "bool"
	KindArray  FieldKind = "array"
	KindObject FieldKind = "object"
)

// Format names a cross-cutting string format validator.
type Format string

const (
	FormatEmail   Format = "email"
	FormatURL     Format = "url"
	FormatUUID    Format = "uuid"
	FormatISO8601 Format = "iso8601"
	FormatJSON    Format = "json"
)

// FieldSchema describes the validation rules for one named field.
type FieldSchema struct {
	Name     string
	Kind     FieldKind
	Required bool

	MinLength *int
	MaxLength *int
	Pattern   *regexp.Regexp

	MinValue *float64
	MaxValue *float64

	Enum   []string
	Format Format

	// Items describes the schema every element must satisfy when
	// Kind == KindArray.
	Items *FieldSchema

	// Custom is an optional extra validator invoked after the built-in
	// rules, whether or not they reported errors (a type mismatch
	// returns before it runs); a non-nil error becomes a
	// CUSTOM_VALIDATION_FAILED field error with that message.
	Custom func(value any) error
}

// Schema is a named, registrable collection of field rules.
type Schema struct {
	Name   string
	Fields []FieldSchema
}
