package validation

import "testing"

func ptrInt(i int) *int         { return &i }
func ptrFloat(f float64) *float64 { return &f }

func TestValidate_RequiredFieldMissing(t *testing.T) {
	schema := Schema{Name: "note", Fields: []FieldSchema{{Name: "title", Kind: KindString, Required: true}}}
	errs := Validate(schema, map[string]any{})
	if len(errs) != 1 || errs[0].Code != FieldRequired {
		t.Fatalf("errs = %+v, want single FIELD_REQUIRED", errs)
	}
}

func TestValidate_StringLengthBounds(t *testing.T) {
	schema := Schema{Name: "note", Fields: []FieldSchema{
		{Name: "title", Kind: KindString, MinLength: ptrInt(3), MaxLength: ptrInt(5)},
	}}

	if errs := Validate(schema, map[string]any{"title": "ab"}); len(errs) != 1 || errs[0].Code != StringTooShort {
		t.Fatalf("errs = %+v, want STRING_TOO_SHORT", errs)
	}
	if errs := Validate(schema, map[string]any{"title": "abcdefg"}); len(errs) != 1 || errs[0].Code != StringTooLong {
		t.Fatalf("errs = %+v, want STRING_TOO_LONG", errs)
	}
	if errs := Validate(schema, map[string]any{"title": "abcd"}); len(errs) != 0 {
		t.Fatalf("errs = %+v, want none", errs)
	}
}

func TestValidate_NumberBounds(t *testing.T) {
	schema := Schema{Name: "metric", Fields: []FieldSchema{
		{Name: "score", Kind: KindNumber, MinValue: ptrFloat(0), MaxValue: ptrFloat(1)},
	}}
	if errs := Validate(schema, map[string]any{"score": -0.1}); len(errs) != 1 || errs[0].Code != NumberTooSmall {
		t.Fatalf("errs = %+v, want NUMBER_TOO_SMALL", errs)
	}
	if errs := Validate(schema, map[string]any{"score": 1.5}); len(errs) != 1 || errs[0].Code != NumberTooLarge {
		t.Fatalf("errs = %+v, want NUMBER_TOO_LARGE", errs)
	}
}

func TestValidate_EnumRejection(t *testing.T) {
	schema := Schema{Name: "memory", Fields: []FieldSchema{
		{Name: "sector", Kind: KindString, Enum: []string{"episodic", "semantic"}},
	}}
	if errs := Validate(schema, map[string]any{"sector": "bogus"}); len(errs) != 1 || errs[0].Code != InvalidEnumValue {
		t.Fatalf("errs = %+v, want INVALID_ENUM_VALUE", errs)
	}
}

func TestValidate_FormatEmail(t *testing.T) {
	schema := Schema{Name: "user", Fields: []FieldSchema{{Name: "email", Kind: KindString, Format: FormatEmail}}}
	if errs := Validate(schema, map[string]any{"email": "not-an-email"}); len(errs) != 1 || errs[0].Code != InvalidFormat {
		t.Fatalf("errs = %+v, want INVALID_FORMAT", errs)
	}
	if errs := Validate(schema, map[string]any{"email": "a@b.com"}); len(errs) != 0 {
		t.Fatalf("errs = %+v, want none", errs)
	}
}

func TestValidate_ArrayItemInvalidReportsNestedPath(t *testing.T) {
	schema := Schema{Name: "batch", Fields: []FieldSchema{
		{Name: "tags", Kind: KindArray, Items: &FieldSchema{Name: "tag", Kind: KindString, MinLength: ptrInt(2)}},
	}}
	errs := Validate(schema, map[string]any{"tags": []any{"ok", "x"}})
	if len(errs) != 1 {
		t.Fatalf("errs = %+v, want exactly one", errs)
	}
	if errs[0].Code != ArrayItemInvalid {
		t.Fatalf("code = %v, want ARRAY_ITEM_INVALID", errs[0].Code)
	}
	if errs[0].Field != "tags[1].tag" {
		t.Fatalf("field = %q, want tags[1].tag", errs[0].Field)
	}
}

func TestValidate_CustomValidatorFailure(t *testing.T) {
	schema := Schema{Name: "note", Fields: []FieldSchema{
		{Name: "content", Kind: KindString, Custom: func(v any) error {
			if v.(string) == "bad" {
				return errCustom
			}
			return nil
		}},
	}}
	errs := Validate(schema, map[string]any{"content": "bad"})
	if len(errs) != 1 || errs[0].Code != CustomValidationFailed {
		t.Fatalf("errs = %+v, want CUSTOM_VALIDATION_FAILED", errs)
	}
}

func TestValidate_RedactsSensitiveFieldValue(t *testing.T) {
	schema := Schema{Name: "secretish", Fields: []FieldSchema{
		{Name: "apiToken", Kind: KindString, MinLength: ptrInt(50)},
	}}
	errs := Validate(schema, map[string]any{"apiToken": "short"})
	if len(errs) != 1 {
		t.Fatalf("errs = %+v, want exactly one", errs)
	}
	if errs[0].Value != redactedPlaceholder {
		t.Fatalf("value = %v, want redacted placeholder", errs[0].Value)
	}
}

type customErr struct{}

func (customErr) Error() string { return "content must not be \"bad\"" }

var errCustom = customErr{}
