package oasbind

import (
	"bytes"
	"net/http"
	"sort"
)

// responseRecorder buffers a handler response so it can be validated before
// anything reaches the client.
type responseRecorder struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newResponseRecorder() *responseRecorder {
	return &responseRecorder{header: http.Header{}}
}

func (rec *responseRecorder) Header() http.Header { return rec.header }

func (rec *responseRecorder) WriteHeader(status int) {
	if rec.status == 0 {
		rec.status = status
	}
}

func (rec *responseRecorder) Write(p []byte) (int, error) {
	if rec.status == 0 {
		rec.status = http.StatusOK
	}
	return rec.body.Write(p)
}

func (rec *responseRecorder) statusCode() int {
	if rec.status == 0 {
		return http.StatusOK
	}
	return rec.status
}

// flush copies the buffered response to w.
func (rec *responseRecorder) flush(w http.ResponseWriter) {
	dst := w.Header()
	for k, v := range rec.header {
		dst[k] = v
	}
	w.WriteHeader(rec.statusCode())
	_, _ = w.Write(rec.body.Bytes())
}

// ValidateResponse checks a response against the responses op declares: the
// status must be declared (or covered by a range or default), the content
// type must have a schema and a JSON body must match it.
func ValidateResponse(op *Operation, status int, header http.Header, body []byte, email EmailOptions) error {
	c := coercer{email: email, response: true}
	if errs := c.validateResponse(op, status, header, body); len(errs) > 0 {
		return FromResponseErrors(errs)
	}
	return nil
}

func (c coercer) validateResponse(op *Operation, status int, header http.Header, body []byte) []error {
	if op.Responses == nil {
		return nil
	}
	ref := op.Responses.Status(status)
	if ref == nil {
		ref = op.Responses.Default()
	}
	if ref == nil || ref.Value == nil {
		available := make([]string, 0, op.Responses.Len())
		for code := range op.Responses.Map() {
			available = append(available, code)
		}
		sort.Strings(available)
		return []error{&ResponseStatusError{Status: status, Available: available}}
	}
	resp := ref.Value
	if len(resp.Content) == 0 {
		return nil
	}

	mt := mediaType(header)
	media := resp.Content.Get(mt)
	if media == nil {
		return []error{&MediaTypeError{MimeType: mt}}
	}
	if !isJSON(mt) || media.Schema == nil {
		return nil
	}
	value, _, err := decodeBody(mt, body, media.Schema)
	if err != nil {
		return []error{&FieldError{Message: err.Error()}}
	}
	_, errs := c.coerce(media.Schema, value)
	return errs
}
