package oasbind_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/Gobd/oasbind"
)

const schemaPath = "testdata/openapi.yaml"

func loadSpec(t *testing.T) (oasbind.Schema, *oasbind.Spec) {
	t.Helper()
	schema, spec, err := oasbind.LoadAndCompile(context.Background(), schemaPath, nil)
	require.NoError(t, err)
	return schema, spec
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// setupChi binds ops to a fresh chi router using the test schema.
func setupChi(t *testing.T, ops *oasbind.Operations, opts ...oasbind.Option) chi.Router {
	t.Helper()
	r := chi.NewRouter()
	opts = append([]oasbind.Option{oasbind.WithSchemaPath(schemaPath), oasbind.WithOperations(ops)}, opts...)
	_, err := oasbind.Setup(r, opts...)
	require.NoError(t, err)
	return r
}

type request struct {
	method string
	target string
	body   string
	header map[string]string
}

func do(h http.Handler, req request) *httptest.ResponseRecorder {
	if req.method == "" {
		req.method = http.MethodGet
	}
	var body io.Reader
	if req.body != "" {
		body = strings.NewReader(req.body)
	}
	r := httptest.NewRequest(req.method, req.target, body)
	for k, v := range req.header {
		r.Header.Set(k, v)
	}
	if req.body != "" && r.Header.Get("Content-Type") == "" {
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

// detail decodes the "detail" of an error response.
func detail(t *testing.T, w *httptest.ResponseRecorder) any {
	t.Helper()
	var body struct {
		Detail any `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body.Detail
}

// items decodes a validation error response into loc/message pairs with
// locs joined by ".".
func items(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body struct {
		Detail []struct {
			Loc     []any  `json:"loc"`
			Message string `json:"message"`
		} `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	out := map[string]string{}
	for _, item := range body.Detail {
		parts := make([]string, len(item.Loc))
		for i, seg := range item.Loc {
			switch s := seg.(type) {
			case string:
				parts[i] = s
			case float64:
				// integer segments are marked to tell them from string keys
				b, _ := json.Marshal(s)
				parts[i] = "#" + string(b)
			}
		}
		out[strings.Join(parts, ".")] = item.Message
	}
	return out
}
