package validation

import "fmt"

// Validate checks value (a field name -> raw value map, e.g. a decoded
// JSON body) against schema and returns every FieldError found; a nil
// result means value is valid.
func Validate(schema Schema, value map[string]any) FieldErrors {
	var errs FieldErrors
	for _, f := range schema.Fields {
		errs = append(errs, validateField(f, value[f.Name], hasKey(value, f.Name))...)
	}
	return errs
}

func hasKey(m map[string]any, key string) bool {
	_, ok := m[key]
	return ok
}

func validateField(f FieldSchema, v any, present bool) FieldErrors {
	if !present || v == nil {
		if f.Required {
			return FieldErrors{{Field: f.Name, Code: FieldRequired, Message: "field is required"}}
		}
		return nil
	}

	var errs FieldErrors

	switch f.Kind {
	case KindString:
		s, ok := v.(string)
		if !ok {
			return FieldErrors{{Field: f.Name, Code: TypeMismatch, Message: "expected a string", Value: redactValue(f.Name, v)}}
		}
		if f.MinLength != nil && len(s) < *f.MinLength {
			errs = append(errs, FieldError{Field: f.Name, Code: StringTooShort, Message: fmt.Sprintf("must be at least %d characters", *f.MinLength), Value: redactValue(f.Name, s)})
		}
		if f.MaxLength != nil && len(s) > *f.MaxLength {
			errs = append(errs, FieldError{Field: f.Name, Code: StringTooLong, Message: fmt.Sprintf("must be at most %d characters", *f.MaxLength), Value: redactValue(f.Name, s)})
		}
		if f.Pattern != nil && !f.Pattern.MatchString(s) {
			errs = append(errs, FieldError{Field: f.Name, Code: PatternMismatch, Message: "does not match required pattern", Value: redactValue(f.Name, s)})
		}
		if len(f.Enum) > 0 && !contains(f.Enum, s) {
			errs = append(errs, FieldError{Field: f.Name, Code: InvalidEnumValue, Message: "value is not one of the allowed options", Value: redactValue(f.Name, s)})
		}
		if f.Format != "" && !validateFormat(f.Format, s) {
			errs = append(errs, FieldError{Field: f.Name, Code: InvalidFormat, Message: fmt.Sprintf("does not match format %q", f.Format), Value: redactValue(f.Name, s)})
		}

	case KindNumber:
		n, ok := asFloat(v)
		if !ok {
			return FieldErrors{{Field: f.Name, Code: TypeMismatch, Message: "expected a number", Value: redactValue(f.Name, v)}}
		}
		if f.MinValue != nil && n < *f.MinValue {
			errs = append(errs, FieldError{Field: f.Name, Code: NumberTooSmall, Message: fmt.Sprintf("must be >= %v", *f.MinValue), Value: redactValue(f.Name, n)})
		}
		if f.MaxValue != nil && n > *f.MaxValue {
			errs = append(errs, FieldError{Field: f.Name, Code: NumberTooLarge, Message: fmt.Sprintf("must be <= %v", *f.MaxValue), Value: redactValue(f.Name, n)})
		}

	case KindBool:
		if _, ok := v.(bool); !ok {
			return FieldErrors{{Field: f.Name, Code: TypeMismatch, Message: "expected a bool", Value: redactValue(f.Name, v)}}
		}

	case KindArray:
		items, ok := v.([]any)
		if !ok {
			return FieldErrors{{Field: f.Name, Code: TypeMismatch, Message: "expected an array", Value: redactValue(f.Name, v)}}
		}
		if f.Items != nil {
			for i, item := range items {
				itemErrs := validateField(*f.Items, item, true)
				for _, ie := range itemErrs {
					errs = append(errs, FieldError{
						Field:   fmt.Sprintf("%s[%d].%s", f.Name, i, ie.Field),
						Code:    ArrayItemInvalid,
						Message: ie.Message,
						Value:   ie.Value,
					})
				}
			}
		}

	case KindObject:
		if _, ok := v.(map[string]any); !ok {
			return FieldErrors{{Field: f.Name, Code: TypeMismatch, Message: "expected an object", Value: redactValue(f.Name, v)}}
		}
	}

	if f.Custom != nil {
		if err := f.Custom(v); err != nil {
			errs = append(errs, FieldError{Field: f.Name, Code: CustomValidationFailed, Message: err.Error()})
		}
	}

	return errs
}

func contains(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
