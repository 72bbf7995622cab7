package oasbind

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// pipeline wraps registered handlers with validation and the error boundary.
type pipeline struct {
	validator        *Validator
	validateResponse bool
	logger           zerolog.Logger
	metrics          *Metrics
}

// handler returns the http.Handler serving op with h.
func (p *pipeline) handler(op *Operation, h HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		status := p.serve(w, r, op, h)
		p.metrics.observe(op.ID, status, start)
	})
}

// serve runs the pipeline and returns the status sent to the client.
func (p *pipeline) serve(w http.ResponseWriter, r *http.Request, op *Operation, h HandlerFunc) int {
	vc, err := p.validator.ValidateRequest(r, op)
	if err != nil {
		p.metrics.failure(op.ID, failureStage(err))
		return p.fail(w, r, op, err)
	}
	r = r.WithContext(WithValidatedContext(r.Context(), vc))
	vc.Request = r

	if !p.validateResponse {
		sw := &statusWriter{ResponseWriter: w}
		if err := call(h, sw, r); err != nil {
			if sw.status != 0 {
				// The response is already on the wire.
				p.logger.Error().Err(err).Str("operation", op.ID).Int("status", sw.status).
					Msg("handler failed after writing its response")
				return sw.status
			}
			return p.fail(w, r, op, err)
		}
		return sw.statusCode()
	}

	rec := newResponseRecorder()
	if err := call(h, rec, r); err != nil {
		return p.fail(w, r, op, err)
	}
	if err := p.validator.ValidateResponse(op, rec.statusCode(), rec.header, rec.body.Bytes()); err != nil {
		p.metrics.failure(op.ID, StageResponse)
		return p.fail(w, r, op, err)
	}
	rec.flush(w)
	return rec.statusCode()
}

func (p *pipeline) fail(w http.ResponseWriter, r *http.Request, op *Operation, err error) int {
	return WriteError(w, p.logger.With().Str("operation", op.ID).Logger(), r, err)
}

func failureStage(err error) string {
	switch err.(type) {
	case *SecurityError, *BasicSecurityError, *InvalidCredentials, *BasicInvalidCredentials:
		return StageSecurity
	}
	return StageRequest
}

// call invokes h, turning a panic into a *ServerError.
func call(h HandlerFunc, w http.ResponseWriter, r *http.Request) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			err = &ServerError{Err: fmt.Errorf("panic: %v", rec)}
		}
	}()
	return h(w, r)
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(status int) {
	if sw.status == 0 {
		sw.status = status
	}
	sw.ResponseWriter.WriteHeader(status)
}

func (sw *statusWriter) Write(p []byte) (int, error) {
	if sw.status == 0 {
		sw.status = http.StatusOK
	}
	return sw.ResponseWriter.Write(p)
}

func (sw *statusWriter) Unwrap() http.ResponseWriter { return sw.ResponseWriter }

func (sw *statusWriter) statusCode() int {
	if sw.status == 0 {
		return http.StatusOK
	}
	return sw.status
}

// errorBody is the JSON body of every error response.
type errorBody struct {
	Detail any `json:"detail"`
}

// WriteError renders err as {"detail": ...} with the status and headers of
// its kind and returns the status. Errors that are not typed collapse to a
// generic *ServerError; their detail is only logged.
func WriteError(w http.ResponseWriter, logger zerolog.Logger, r *http.Request, err error) int {
	var (
		verr   *ValidationError
		sc     StatusCoder
		detail any
		logged bool
	)
	switch {
	case errors.As(err, &verr):
		detail = verr.Detail()
	case errors.As(err, &sc):
		detail = sc.(error).Error()
	default:
		logger.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("unhandled error")
		err = &ServerError{Err: err}
		detail = err.Error()
		logged = true
	}

	status := ErrorStatus(err)
	switch {
	case logged:
	case status >= http.StatusInternalServerError:
		logger.Error().Err(err).AnErr("cause", errors.Unwrap(err)).Str("method", r.Method).Str("path", r.URL.Path).Int("status", status).Msg("request failed")
	default:
		logger.Debug().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Int("status", status).Msg("request rejected")
	}

	var hc HeaderCarrier
	if errors.As(err, &hc) {
		for k, vals := range hc.Headers() {
			for _, v := range vals {
				w.Header().Add(k, v)
			}
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Detail: detail})
	return status
}
