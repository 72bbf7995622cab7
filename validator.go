package oasbind

import (
	"net/http"
)

// Validator runs request and response validation for operations of one
// spec. It is safe for concurrent use.
type Validator struct {
	Spec        *Spec
	Email       EmailOptions
	MaxBodySize int64
}

func (v *Validator) coercer() coercer {
	return coercer{email: v.Email}
}

// ValidateRequest validates r against op in a fixed order: parameters, then
// body, then security. Parameter and body failures are reported together as
// one *ValidationError. Security is only resolved once the data is valid, so
// a malformed and unauthenticated request gets 422, not 401 or 403.
func (v *Validator) ValidateRequest(r *http.Request, op *Operation) (*ValidatedContext, error) {
	c := v.coercer()
	limit := v.MaxBodySize
	if limit <= 0 {
		limit = DefaultMaxBodySize
	}

	params, paramErrs := c.validateParameters(op, r)
	data, bodyErrs, err := c.validateBody(op, r, limit)
	if err != nil {
		return nil, err
	}
	if len(paramErrs) > 0 || len(bodyErrs) > 0 {
		verr := FromRequestErrors(paramErrs, "parameters")
		verr.Items = append(verr.Items, FromRequestErrors(bodyErrs, "body").Items...)
		return nil, verr
	}

	security, err := ResolveSecurity(v.Spec, op, RequestCredentials(r))
	if err != nil {
		return nil, err
	}

	return &ValidatedContext{
		Request:    r,
		Operation:  op,
		Parameters: params,
		Security:   security,
		Data:       data,
	}, nil
}

// ValidateResponse validates a buffered response of op.
func (v *Validator) ValidateResponse(op *Operation, status int, header http.Header, body []byte) error {
	return ValidateResponse(op, status, header, body, v.Email)
}
