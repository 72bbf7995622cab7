package oasbind

import (
	"context"
	"net/http"
)

// ValidatedContext is the per-request result of validation. Its parameter
// maps, security data and body are read-only.
type ValidatedContext struct {
	Request    *http.Request
	Operation  *Operation
	Parameters Parameters
	Security   Map
	// Data is the coerced body: a Map, a List, a scalar or nil.
	Data any
}

type validatedKey struct{}

// WithValidatedContext attaches vc to ctx.
func WithValidatedContext(ctx context.Context, vc *ValidatedContext) context.Context {
	return context.WithValue(ctx, validatedKey{}, vc)
}

// GetContext returns the validated context of r. It returns a
// *ContextError when r did not pass through the validation pipeline.
func GetContext(r *http.Request) (*ValidatedContext, error) {
	vc, ok := r.Context().Value(validatedKey{}).(*ValidatedContext)
	if !ok || vc == nil {
		return nil, &ContextError{}
	}
	return vc, nil
}

// GetValidatedData returns the coerced request body.
func GetValidatedData(r *http.Request) (any, error) {
	vc, err := GetContext(r)
	if err != nil {
		return nil, err
	}
	return vc.Data, nil
}

// GetValidatedParameters returns the coerced request parameters.
func GetValidatedParameters(r *http.Request) (Parameters, error) {
	vc, err := GetContext(r)
	if err != nil {
		return Parameters{}, err
	}
	return vc.Parameters, nil
}

// GetSecurity returns the credentials of the satisfied security alternative.
func GetSecurity(r *http.Request) (Map, error) {
	vc, err := GetContext(r)
	if err != nil {
		return Map{}, err
	}
	return vc.Security, nil
}
