package oasbind

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// DefaultMaxBodySize bounds the request body read by the pipeline.
const DefaultMaxBodySize int64 = 10 << 20

// readBody reads at most limit bytes of the request body and puts the bytes
// back so handlers can still read them.
func readBody(r *http.Request, limit int64) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	_ = r.Body.Close()
	if err != nil {
		return nil, &BadRequest{Message: "Unable to read request body", Err: err}
	}
	if int64(len(data)) > limit {
		return nil, &BadRequest{Message: fmt.Sprintf("Request body exceeds %d bytes", limit)}
	}
	r.Body = io.NopCloser(bytes.NewReader(data))
	return data, nil
}

func mediaType(header http.Header) string {
	ct := header.Get("Content-Type")
	if ct == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return ct
	}
	return mt
}

func isJSON(mt string) bool {
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

// validateBody decodes and validates the body declared by op. Data errors
// are collected; read failures are returned as fatal.
func (c coercer) validateBody(op *Operation, r *http.Request, limit int64) (any, []error, error) {
	if op.RequestBody == nil {
		return nil, nil, nil
	}
	data, err := readBody(r, limit)
	if err != nil {
		return nil, nil, err
	}
	if len(data) == 0 {
		if op.RequestBody.Required {
			return nil, []error{&FieldError{Message: "Missing required request body"}}, nil
		}
		return nil, nil, nil
	}

	mt := mediaType(r.Header)
	media := op.RequestBody.Content.Get(mt)
	if media == nil {
		return nil, []error{&MediaTypeError{MimeType: mt}}, nil
	}

	value, castErrs, err := decodeBody(mt, data, media.Schema)
	if err != nil {
		return nil, []error{&FieldError{Message: err.Error()}}, nil
	}
	out, errs := c.coerce(media.Schema, value)
	if len(castErrs) == 0 {
		return out, errs, nil
	}

	// Fields that failed to cast keep their raw string, so the schema check
	// reports them a second time under a less useful message.
	failed := make(map[string]bool, len(castErrs))
	items := make([]error, 0, len(castErrs)+len(errs))
	for _, ce := range castErrs {
		failed[ce.Name] = true
		items = append(items, &FieldError{Loc: Loc{ce.Name}, Message: ce.Error()})
	}
	for _, e := range errs {
		var fe *FieldError
		if errors.As(e, &fe) && len(fe.Loc) > 0 {
			if name, ok := fe.Loc[0].(string); ok && failed[name] {
				continue
			}
		}
		items = append(items, e)
	}
	return nil, items, nil
}

// decodeBody turns raw bytes of the given media type into a JSON-like value.
// Form fields that cannot be cast to their declared type are returned as
// cast errors alongside the value.
func decodeBody(mt string, data []byte, schema *openapi3.SchemaRef) (any, []*CastError, error) {
	switch {
	case isJSON(mt):
		var v any
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&v); err != nil {
			return nil, nil, fmt.Errorf("invalid JSON body: %w", err)
		}
		if err := dec.Decode(new(json.RawMessage)); !errors.Is(err, io.EOF) {
			return nil, nil, errors.New("invalid JSON body: unexpected data after top-level value")
		}
		return v, nil, nil
	case mt == "application/x-www-form-urlencoded":
		values, err := url.ParseQuery(string(data))
		if err != nil {
			return nil, nil, fmt.Errorf("invalid form body: %w", err)
		}
		var s *openapi3.Schema
		if schema != nil {
			s = schema.Value
		}
		v, castErrs := formValues(values, s)
		return v, castErrs, nil
	}
	return string(data), nil, nil
}

// formValues casts each field to its property type. A field that fails
// keeps its raw string.
func formValues(values url.Values, s *openapi3.Schema) (map[string]any, []*CastError) {
	var castErrs []*CastError
	cast := func(s *openapi3.Schema, name, raw string) any {
		v, err := castString(s, name, raw)
		if err != nil {
			var ce *CastError
			if errors.As(err, &ce) {
				castErrs = append(castErrs, ce)
			}
			return raw
		}
		return v
	}

	out := make(map[string]any, len(values))
	for _, k := range sortedKeys(values) {
		vals := values[k]
		prop := propertySchema(s, k)
		if prop != nil && prop.Type.Is(openapi3.TypeArray) {
			var items *openapi3.Schema
			if prop.Items != nil {
				items = prop.Items.Value
			}
			list := make([]any, len(vals))
			for i, v := range vals {
				list[i] = cast(items, k, v)
			}
			out[k] = list
			continue
		}
		out[k] = cast(prop, k, vals[0])
	}
	return out, castErrs
}
