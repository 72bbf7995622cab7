package oasbind

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Messages used for validation error items.
const (
	MsgFieldRequired     = "Field required"
	MsgParameterEmpty    = "Empty parameter value"
	MsgParameterInvalid  = "Invalid parameter value"
	MsgParameterRequired = "Parameter required"
)

// ErrNoItems is returned by [ValidationError.Add] when either side carries no items.
var ErrNoItems = errors.New("validation error does not have list of error items")

// ValidationErrorItem locates one failing value.
type ValidationErrorItem struct {
	Loc     Loc    `json:"loc"`
	Message string `json:"message"`
}

// ValidationError is a request or response validation failure. An error
// without items is valid and renders its message as the detail.
type ValidationError struct {
	Message string
	Items   []ValidationErrorItem
}

// NewValidationError returns a message-only validation error. When ctx
// carries an error location (see [WithErrorLoc]) the message becomes a single
// item at that location.
func NewValidationError(ctx context.Context, msg string) *ValidationError {
	if loc := ErrorLoc(ctx); len(loc) > 0 {
		return &ValidationError{Items: []ValidationErrorItem{{Loc: loc.Join(), Message: msg}}}
	}
	return &ValidationError{Message: msg}
}

// NewValidationErrorItems returns a validation error holding items, each
// prefixed with the error location carried by ctx.
func NewValidationErrorItems(ctx context.Context, items ...ValidationErrorItem) *ValidationError {
	loc := ErrorLoc(ctx)
	out := make([]ValidationErrorItem, len(items))
	for i, item := range items {
		out[i] = ValidationErrorItem{Loc: loc.Join(item.Loc...), Message: item.Message}
	}
	return &ValidationError{Items: out}
}

// NewValidationErrorFromMap walks a nested mapping and turns every non-map
// leaf into an item located at the keys leading to it:
//
//	oasbind.NewValidationErrorFromMap(ctx, map[string]any{
//	    "body": map[string]any{"name": "Name is not unique"},
//	})
//
// Supported maps are map[string]any, map[int]any, map[any]any and the
// ozzo-validation Errors type. Leaves are strings, errors or anything
// printable with fmt.
func NewValidationErrorFromMap(ctx context.Context, data any) *ValidationError {
	var items []ValidationErrorItem
	walkErrorMap(nil, data, &items)
	return NewValidationErrorItems(ctx, items...)
}

func walkErrorMap(loc Loc, data any, items *[]ValidationErrorItem) {
	switch m := data.(type) {
	case validation.Errors:
		for _, k := range sortedKeys(m) {
			var seg any = k
			if n, err := strconv.Atoi(k); err == nil {
				seg = n
			}
			walkErrorMap(loc.Join(seg), m[k], items)
		}
	case map[string]any:
		for _, k := range sortedKeys(m) {
			walkErrorMap(loc.Join(k), m[k], items)
		}
	case map[int]any:
		keys := make([]int, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Ints(keys)
		for _, k := range keys {
			walkErrorMap(loc.Join(k), m[k], items)
		}
	case map[any]any:
		keys := make([]any, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return fmt.Sprint(keys[i]) < fmt.Sprint(keys[j]) })
		for _, k := range keys {
			walkErrorMap(loc.Join(k), m[k], items)
		}
	case string:
		*items = append(*items, ValidationErrorItem{Loc: loc, Message: m})
	case error:
		var nested validation.Errors
		if errors.As(m, &nested) {
			walkErrorMap(loc, nested, items)
			return
		}
		*items = append(*items, ValidationErrorItem{Loc: loc, Message: m.Error()})
	default:
		*items = append(*items, ValidationErrorItem{Loc: loc, Message: fmt.Sprint(m)})
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (e *ValidationError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "Validation error"
	}
	if len(e.Items) == 0 {
		return msg
	}
	parts := make([]string, len(e.Items))
	for i, item := range e.Items {
		parts[i] = item.Loc.String() + ": " + item.Message
	}
	return msg + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) StatusCode() int { return http.StatusUnprocessableEntity }

// Detail is the value rendered under "detail" in the error response: the
// item list, or the message when there are no items.
func (e *ValidationError) Detail() any {
	if len(e.Items) > 0 {
		return e.Items
	}
	return e.Error()
}

// Add combines the items of e and other into a new error. Both sides must
// carry items, otherwise ErrNoItems is returned.
func (e *ValidationError) Add(other *ValidationError) (*ValidationError, error) {
	if len(e.Items) == 0 {
		return nil, ErrNoItems
	}
	if other == nil || len(other.Items) == 0 {
		return nil, fmt.Errorf("other: %w", ErrNoItems)
	}
	items := make([]ValidationErrorItem, 0, len(e.Items)+len(other.Items))
	items = append(items, e.Items...)
	items = append(items, other.Items...)
	return &ValidationError{Message: e.Message, Items: items}, nil
}

// ParameterReason classifies a parameter failure.
type ParameterReason int

const (
	ParameterInvalid ParameterReason = iota
	ParameterEmpty
	ParameterRequired
)

var parameterMessages = map[ParameterReason]string{
	ParameterInvalid:  MsgParameterInvalid,
	ParameterEmpty:    MsgParameterEmpty,
	ParameterRequired: MsgParameterRequired,
}

// ParameterError reports a parameter that could not be read or deserialized.
type ParameterError struct {
	Name   string
	In     string
	Reason ParameterReason
	Err    error
}

func (e *ParameterError) Error() string {
	msg := fmt.Sprintf("%s parameter %q: %s", e.In, e.Name, parameterMessages[e.Reason])
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParameterError) Unwrap() error { return e.Err }

// CastError reports a raw string that cannot be cast to its declared type.
type CastError struct {
	Name  string
	Value string
	Type  string
}

func (e *CastError) Error() string {
	return fmt.Sprintf("'%s' is not a type of '%s'", e.Value, e.Type)
}

// MediaTypeError reports a content type with no declared schema.
type MediaTypeError struct {
	MimeType string
}

func (e *MediaTypeError) Error() string {
	return "Schema missing for following mimetype: " + e.MimeType
}

// ResponseStatusError reports a response status the operation does not declare.
type ResponseStatusError struct {
	Status    int
	Available []string
}

func (e *ResponseStatusError) Error() string {
	available := append([]string(nil), e.Available...)
	sort.Strings(available)
	return fmt.Sprintf("Unknown response http status: %d. Available response http statuses: %s",
		e.Status, strings.Join(available, ", "))
}

// FieldError is one failure at a location relative to the validated value.
type FieldError struct {
	Loc     Loc
	Message string
}

func (e *FieldError) Error() string {
	if len(e.Loc) == 0 {
		return e.Message
	}
	return e.Loc.String() + ": " + e.Message
}

// FromRequestErrors translates errors collected while validating a request
// into a single ValidationError. Items are located under baseLoc, which
// defaults to "body".
func FromRequestErrors(errs []error, baseLoc ...any) *ValidationError {
	loc := Loc(baseLoc)
	if len(baseLoc) == 0 {
		loc = Loc{"body"}
	}
	items := make([]ValidationErrorItem, 0, len(errs))
	for _, err := range errs {
		items = appendErrorItems(items, loc, err)
	}
	return &ValidationError{Message: "Request parameters or body validation error", Items: items}
}

// FromResponseErrors translates errors collected while validating a response.
// Items are located under "response".
func FromResponseErrors(errs []error) *ValidationError {
	loc := Loc{"response"}
	items := make([]ValidationErrorItem, 0, len(errs))
	for _, err := range errs {
		items = appendErrorItems(items, loc, err)
	}
	return &ValidationError{Message: "Response data validation error", Items: items}
}

func appendErrorItems(items []ValidationErrorItem, loc Loc, err error) []ValidationErrorItem {
	// kin-openapi errors are matched by type: MultiError.As would otherwise
	// match any of its members.
	switch e := err.(type) {
	case openapi3.MultiError:
		for _, member := range e {
			items = appendErrorItems(items, loc, member)
		}
		return items
	case *openapi3.SchemaError:
		return append(items, schemaErrorItem(loc, e, nil))
	}

	var (
		paramErr *ParameterError
		castErr  *CastError
		fieldErr *FieldError
	)
	switch {
	case errors.As(err, &paramErr):
		return append(items, ValidationErrorItem{Loc: loc.Join(paramErr.Name), Message: parameterMessages[paramErr.Reason]})
	case errors.As(err, &castErr):
		return append(items, ValidationErrorItem{Loc: loc.Join(castErr.Name), Message: castErr.Error()})
	case errors.As(err, &fieldErr):
		return append(items, ValidationErrorItem{Loc: loc.Join(fieldErr.Loc...), Message: fieldErr.Message})
	}
	return append(items, ValidationErrorItem{Loc: loc.Join(), Message: err.Error()})
}

// schemaErrorItem converts a schema error into an item. Pointer segments that
// index into an array of root become ints.
func schemaErrorItem(loc Loc, err *openapi3.SchemaError, root any) ValidationErrorItem {
	out := loc.Join()
	node := root
	for _, seg := range err.JSONPointer() {
		switch n := node.(type) {
		case []any:
			if i, convErr := strconv.Atoi(seg); convErr == nil {
				out = append(out, i)
				if i >= 0 && i < len(n) {
					node = n[i]
				} else {
					node = nil
				}
				continue
			}
			node = nil
		case map[string]any:
			node = n[seg]
		default:
			node = nil
		}
		if seg != "" {
			out = append(out, seg)
		}
	}
	if err.SchemaField == "required" {
		return ValidationErrorItem{Loc: out, Message: MsgFieldRequired}
	}
	return ValidationErrorItem{Loc: out, Message: err.Reason}
}
