package oasbind

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Bind decodes the validated body of r into dst, normalizes it and applies
// its rules. Failures are reported as a *ValidationError located under
// "body", so a handler can return it as is:
//
//	var pet Pet
//	if err := oasbind.Bind(r, &pet); err != nil {
//	    return err
//	}
func Bind(r *http.Request, dst any) error {
	vc, err := GetContext(r)
	if err != nil {
		return err
	}
	ctx := WithErrorLoc(r.Context(), "body")

	raw, err := json.Marshal(Thaw(vc.Data))
	if err != nil {
		return &ServerError{Err: err}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			var loc Loc
			for _, seg := range strings.Split(typeErr.Field, ".") {
				loc = append(loc, seg)
			}
			return NewValidationErrorItems(ctx, ValidationErrorItem{
				Loc:     loc,
				Message: "Invalid value for type " + typeErr.Type.String(),
			})
		}
		return NewValidationError(ctx, err.Error())
	}

	normalize(r.Context(), dst)

	err = Validate(r.Context(), dst)
	if err == nil {
		return nil
	}
	var (
		errs     validation.Errors
		internal validation.InternalError
	)
	switch {
	case errors.As(err, &internal):
		return &ServerError{Err: internal.InternalError()}
	case errors.As(err, &errs):
		return NewValidationErrorFromMap(ctx, errs)
	}
	return NewValidationError(ctx, err.Error())
}
