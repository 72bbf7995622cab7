package oasbind

import (
	"encoding/json"
	"math"
	"math/big"
	"regexp"
	"strconv"

	"github.com/getkin/kin-openapi/openapi3"
)

var dateTimePattern = regexp.MustCompile(openapi3.FormatOfStringDateTime)

// coercer validates decoded JSON values against schemas and converts them
// to typed Go values: integers to int64, numbers to float64 and date-time
// strings to time.Time.
type coercer struct {
	email    EmailOptions
	response bool
}

// coerce validates value against ref and returns it converted and frozen.
// All failures are collected as *FieldError located relative to value.
func (c coercer) coerce(ref *openapi3.SchemaRef, value any) (any, []error) {
	if ref == nil || ref.Value == nil {
		return Freeze(c.convert(nil, value, nil, nil)), nil
	}
	schema := ref.Value

	// kin-openapi cannot express a null array or object through the schema
	// type alone.
	if value == nil && schema.Nullable && (schema.Type.Is(openapi3.TypeArray) || schema.Type.Is(openapi3.TypeObject)) {
		return nil, nil
	}

	opts := []openapi3.SchemaValidationOption{openapi3.MultiErrors()}
	if c.response {
		opts = append(opts, openapi3.VisitAsResponse())
	} else {
		opts = append(opts, openapi3.VisitAsRequest())
	}

	var errs []error
	if err := schema.VisitJSON(value, opts...); err != nil {
		errs = appendSchemaErrors(errs, err, value)
	}
	out := c.convert(schema, value, nil, &errs)
	if len(errs) > 0 {
		return nil, errs
	}
	return Freeze(out), nil
}

func appendSchemaErrors(errs []error, err error, root any) []error {
	switch e := err.(type) {
	case openapi3.MultiError:
		for _, member := range e {
			errs = appendSchemaErrors(errs, member, root)
		}
		return errs
	case *openapi3.SchemaError:
		item := schemaErrorItem(nil, e, root)
		return append(errs, &FieldError{Loc: item.Loc, Message: item.Message})
	}
	return append(errs, &FieldError{Message: err.Error()})
}

// convert walks v alongside s. errs is nil when only conversion is wanted.
func (c coercer) convert(s *openapi3.Schema, v any, loc Loc, errs *[]error) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = c.convert(propertySchema(s, k), item, loc.Join(k), errs)
		}
		return out
	case []any:
		var items *openapi3.Schema
		if s != nil && s.Items != nil {
			items = s.Items.Value
		}
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = c.convert(items, item, loc.Join(i), errs)
		}
		return out
	case json.Number:
		return convertNumber(s, t)
	case float64:
		// Defaults and examples are decoded without UseNumber.
		if s != nil && s.Type.Is(openapi3.TypeInteger) && t == math.Trunc(t) {
			return int64(t)
		}
		return t
	case string:
		if s == nil || errs == nil {
			return t
		}
		return c.convertString(s, t, loc, errs)
	}
	return v
}

// convertNumber returns an int64 or float64 when either holds n exactly,
// and n itself otherwise so it marshals back unchanged.
func convertNumber(s *openapi3.Schema, n json.Number) any {
	wantInt := s != nil && s.Type.Is(openapi3.TypeInteger)
	if wantInt || s == nil || s.Type == nil {
		if i, err := n.Int64(); err == nil {
			return i
		}
	}
	f, err := n.Float64()
	if err != nil || !exactFloat(n, f) {
		return n
	}
	return f
}

func exactFloat(n json.Number, f float64) bool {
	want, ok := new(big.Rat).SetString(n.String())
	if !ok {
		return false
	}
	got, ok := new(big.Rat).SetString(strconv.FormatFloat(f, 'g', -1, 64))
	return ok && want.Cmp(got) == 0
}

func (c coercer) convertString(s *openapi3.Schema, v string, loc Loc, errs *[]error) any {
	switch s.Format {
	case "date-time":
		t, err := ParseDateTime(v)
		if err != nil {
			// Malformed values are already reported by the schema check.
			if dateTimePattern.MatchString(v) {
				*errs = append(*errs, &FieldError{Loc: loc, Message: err.Error()})
			}
			return v
		}
		return t
	case "email":
		if err := ValidateEmail(v, c.email); err != nil {
			*errs = append(*errs, &FieldError{Loc: loc, Message: err.Error()})
		}
	}
	return v
}

// propertySchema finds the schema of an object property, looking through
// allOf, oneOf and anyOf members and additionalProperties.
func propertySchema(s *openapi3.Schema, name string) *openapi3.Schema {
	if s == nil {
		return nil
	}
	if ref := s.Properties[name]; ref != nil {
		return ref.Value
	}
	for _, group := range []openapi3.SchemaRefs{s.AllOf, s.OneOf, s.AnyOf} {
		for _, member := range group {
			if member == nil {
				continue
			}
			if found := propertySchema(member.Value, name); found != nil {
				return found
			}
		}
	}
	if s.AdditionalProperties.Schema != nil {
		return s.AdditionalProperties.Schema.Value
	}
	return nil
}

// castString converts a raw parameter string to the primitive type of s.
func castString(s *openapi3.Schema, name, raw string) (any, error) {
	if s == nil || s.Type == nil {
		return raw, nil
	}
	switch {
	case s.Type.Is(openapi3.TypeInteger):
		i, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, &CastError{Name: name, Value: raw, Type: openapi3.TypeInteger}
		}
		return i, nil
	case s.Type.Is(openapi3.TypeNumber):
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, &CastError{Name: name, Value: raw, Type: openapi3.TypeNumber}
		}
		return f, nil
	case s.Type.Is(openapi3.TypeBoolean):
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, &CastError{Name: name, Value: raw, Type: openapi3.TypeBoolean}
		}
		return b, nil
	}
	return raw, nil
}
