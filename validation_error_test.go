package oasbind_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gobd/oasbind"
)

func TestErrorStatuses(t *testing.T) {
	tests := []struct {
		err     error
		status  int
		message string
	}{
		{&oasbind.ConfigurationError{}, http.StatusInternalServerError, "OpenAPI schema configuration error"},
		{&oasbind.OperationError{OperationID: "x"}, http.StatusInternalServerError, "OpenAPI operation not found: x"},
		{&oasbind.BadRequest{}, http.StatusBadRequest, "Bad request"},
		{&oasbind.SecurityError{}, http.StatusForbidden, "Not authenticated"},
		{&oasbind.BasicSecurityError{}, http.StatusUnauthorized, "Not authenticated"},
		{&oasbind.InvalidCredentials{}, http.StatusForbidden, "Invalid credentials"},
		{&oasbind.BasicInvalidCredentials{}, http.StatusUnauthorized, "Invalid credentials"},
		{&oasbind.ObjectDoesNotExist{}, http.StatusNotFound, "Object not found"},
		{&oasbind.ObjectDoesNotExist{Label: "Post"}, http.StatusNotFound, "Post not found"},
		{&oasbind.ObjectDoesNotExist{Message: "Gone"}, http.StatusNotFound, "Gone"},
		{&oasbind.ServerError{Err: errors.New("secret")}, http.StatusInternalServerError, "Server error"},
		{&oasbind.ValidationError{}, http.StatusUnprocessableEntity, "Validation error"},
		{errors.New("plain"), http.StatusInternalServerError, "plain"},
		{fmt.Errorf("wrapped: %w", &oasbind.SecurityError{}), http.StatusForbidden, "wrapped: Not authenticated"},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.status, oasbind.ErrorStatus(tt.err))
			assert.Equal(t, tt.message, tt.err.Error())
		})
	}
}

func TestWriteErrorAddsChallenge(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	status := oasbind.WriteError(w, zerolog.Nop(), r, &oasbind.BasicInvalidCredentials{})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "basic", w.Header().Get("WWW-Authenticate"))
	assert.JSONEq(t, `{"detail": "Invalid credentials"}`, w.Body.String())
}

func TestWriteErrorHidesUntypedErrors(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	status := oasbind.WriteError(w, zerolog.Nop(), r, errors.New("password=hunter2"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.JSONEq(t, `{"detail": "Server error"}`, w.Body.String())
}

func TestNewValidationError(t *testing.T) {
	err := oasbind.NewValidationError(context.Background(), "Name is taken")
	assert.Empty(t, err.Items)
	assert.Equal(t, "Name is taken", err.Detail())

	ctx := oasbind.WithErrorLoc(context.Background(), "body")
	ctx = oasbind.WithErrorLoc(ctx, 0, "name")
	err = oasbind.NewValidationError(ctx, "Name is taken")
	require.Len(t, err.Items, 1)
	assert.Equal(t, oasbind.Loc{"body", 0, "name"}, err.Items[0].Loc)
	assert.Equal(t, "body.0.name: Name is taken", err.Items[0].Loc.String()+": "+err.Items[0].Message)
}

func TestWithErrorLocDoesNotLeak(t *testing.T) {
	base := oasbind.WithErrorLoc(context.Background(), "body")
	_ = oasbind.WithErrorLoc(base, "a")
	b := oasbind.WithErrorLoc(base, "b")

	assert.Equal(t, oasbind.Loc{"body"}, oasbind.ErrorLoc(base))
	assert.Equal(t, oasbind.Loc{"body", "b"}, oasbind.ErrorLoc(b))
}

func TestNewValidationErrorFromMap(t *testing.T) {
	ctx := oasbind.WithErrorLoc(context.Background(), "body")
	err := oasbind.NewValidationErrorFromMap(ctx, validation.Errors{
		"title": errors.New("cannot be blank"),
		"attendees": validation.Errors{
			"1": validation.Errors{"name": errors.New("is required")},
		},
	})

	assert.Equal(t, []oasbind.ValidationErrorItem{
		{Loc: oasbind.Loc{"body", "attendees", 1, "name"}, Message: "is required"},
		{Loc: oasbind.Loc{"body", "title"}, Message: "cannot be blank"},
	}, err.Items)

	err = oasbind.NewValidationErrorFromMap(context.Background(), map[string]any{
		"tags": map[int]any{2: "must be unique"},
	})
	assert.Equal(t, []oasbind.ValidationErrorItem{
		{Loc: oasbind.Loc{"tags", 2}, Message: "must be unique"},
	}, err.Items)
}

func TestValidationErrorAdd(t *testing.T) {
	a := oasbind.NewValidationErrorItems(context.Background(), oasbind.ValidationErrorItem{Loc: oasbind.Loc{"a"}, Message: "x"})
	b := oasbind.NewValidationErrorItems(context.Background(), oasbind.ValidationErrorItem{Loc: oasbind.Loc{"b"}, Message: "y"})

	merged, err := a.Add(b)
	require.NoError(t, err)
	assert.Len(t, merged.Items, 2)
	assert.Len(t, a.Items, 1)

	_, err = a.Add(oasbind.NewValidationError(context.Background(), "no items"))
	assert.ErrorIs(t, err, oasbind.ErrNoItems)
	_, err = oasbind.NewValidationError(context.Background(), "no items").Add(a)
	assert.ErrorIs(t, err, oasbind.ErrNoItems)
}

func TestFromRequestErrors(t *testing.T) {
	err := oasbind.FromRequestErrors([]error{
		&oasbind.ParameterError{Name: "id", In: "path", Reason: oasbind.ParameterEmpty},
		&oasbind.CastError{Name: "limit", Value: "x", Type: "integer"},
		&oasbind.FieldError{Loc: oasbind.Loc{"tags", 0}, Message: "bad"},
		errors.New("other"),
	}, "parameters")

	assert.Equal(t, []oasbind.ValidationErrorItem{
		{Loc: oasbind.Loc{"parameters", "id"}, Message: oasbind.MsgParameterEmpty},
		{Loc: oasbind.Loc{"parameters", "limit"}, Message: "'x' is not a type of 'integer'"},
		{Loc: oasbind.Loc{"parameters", "tags", 0}, Message: "bad"},
		{Loc: oasbind.Loc{"parameters"}, Message: "other"},
	}, err.Items)

	err = oasbind.FromRequestErrors([]error{&oasbind.MediaTypeError{MimeType: "text/plain"}})
	assert.Equal(t, oasbind.Loc{"body"}, err.Items[0].Loc)
}
