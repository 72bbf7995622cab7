package oasbind_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gobd/oasbind"
	"github.com/Gobd/oasbind/openapi"
)

func helloWorld(w http.ResponseWriter, r *http.Request) error {
	params, err := oasbind.GetValidatedParameters(r)
	if err != nil {
		return err
	}
	name, ok := params.Query.String("name")
	if !ok {
		name = "world"
	}
	return writeJSON(w, http.StatusOK, map[string]string{"message": "Hello, " + name + "!"})
}

func subscribe(w http.ResponseWriter, _ *http.Request) error {
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func whoami(w http.ResponseWriter, r *http.Request) error {
	security, err := oasbind.GetSecurity(r)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]string{"message": security.Keys()[0]})
}

func greetUser(w http.ResponseWriter, r *http.Request) error {
	security, err := oasbind.GetSecurity(r)
	if err != nil {
		return err
	}
	v, _ := security.Get("basic")
	return writeJSON(w, http.StatusOK, map[string]string{"message": v.(oasbind.BasicAuth).Username})
}

func maybe(w http.ResponseWriter, r *http.Request) error {
	security, err := oasbind.GetSecurity(r)
	if err != nil {
		return err
	}
	msg := "anonymous"
	if key, ok := security.String("apiKey"); ok {
		msg = key
	}
	return writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

func testOperations() *oasbind.Operations {
	ops := oasbind.NewOperations()
	ops.RegisterAs("hello_world", helloWorld)
	ops.Register(subscribe)
	ops.RegisterAs("basic_only", greetUser)
	ops.RegisterAs("key_or_token", whoami)
	ops.RegisterAs("maybe_authenticated", maybe)
	return ops
}

func TestHelloWorld(t *testing.T) {
	h := setupChi(t, testOperations())

	w := do(h, request{target: "/api/hello"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message": "Hello, world!"}`, w.Body.String())

	w = do(h, request{target: "/api/hello?name=Ann"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message": "Hello, Ann!"}`, w.Body.String())

	w = do(h, request{target: "/api/hello?name="})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{"detail": [{"loc": ["parameters", "name"], "message": "Empty parameter value"}]}`, w.Body.String())
}

func TestMissingParametersAreAllReported(t *testing.T) {
	h := setupChi(t, testOperations())

	w := do(h, request{target: "/api/subscribe"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, map[string]string{
		"parameters.name":  oasbind.MsgParameterRequired,
		"parameters.email": oasbind.MsgParameterRequired,
	}, items(t, w))

	w = do(h, request{target: "/api/subscribe?name=Ann&email=ann"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, map[string]string{"parameters.email": "'ann' is not an 'email'"}, items(t, w))

	w = do(h, request{target: "/api/subscribe?name=Ann&email=ann@example.com"})
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestSecurity(t *testing.T) {
	h := setupChi(t, testOperations())
	basic := func(s string) string { return "Basic " + base64.StdEncoding.EncodeToString([]byte(s)) }

	tests := []struct {
		name   string
		req    request
		status int
		body   string
	}{
		{"basic missing", request{target: "/api/basic"}, http.StatusUnauthorized, `{"detail": "Not authenticated"}`},
		{"basic malformed", request{target: "/api/basic", header: map[string]string{"Authorization": "Basic !!!"}}, http.StatusForbidden, ""},
		{"basic without colon", request{target: "/api/basic", header: map[string]string{"Authorization": basic("ann")}}, http.StatusForbidden, ""},
		{"basic valid", request{target: "/api/basic", header: map[string]string{"Authorization": basic("ann:secret")}}, http.StatusOK, `{"message": "ann"}`},
		{"either none", request{target: "/api/either"}, http.StatusForbidden, `{"detail": "Not authenticated"}`},
		{"either bearer", request{target: "/api/either", header: map[string]string{"Authorization": "Bearer tok"}}, http.StatusOK, `{"message": "bearer"}`},
		{"either both prefers first", request{target: "/api/either", header: map[string]string{"Authorization": "Bearer tok", "X-API-Key": "k"}}, http.StatusOK, `{"message": "apiKey"}`},
		{"optional anonymous", request{target: "/api/maybe"}, http.StatusOK, `{"message": "anonymous"}`},
		{"optional with key", request{target: "/api/maybe", header: map[string]string{"X-API-Key": "k1"}}, http.StatusOK, `{"message": "k1"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(h, tt.req)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.body != "" {
				assert.JSONEq(t, tt.body, w.Body.String())
			}
			if tt.status == http.StatusUnauthorized {
				assert.Equal(t, "basic", w.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestSecurityRunsAfterDataValidation(t *testing.T) {
	ops := oasbind.NewOperations().RegisterAs("list_items", func(w http.ResponseWriter, _ *http.Request) error {
		return writeJSON(w, http.StatusOK, []string{})
	})
	h := setupChi(t, ops)

	w := do(h, request{target: "/api/items?limit=0"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, items(t, w), "parameters.limit")

	w = do(h, request{target: "/api/items"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestInheritedSecurityAndDefaults(t *testing.T) {
	var got oasbind.Parameters
	ops := oasbind.NewOperations().RegisterAs("list_items", func(w http.ResponseWriter, r *http.Request) error {
		vc, err := oasbind.GetContext(r)
		if err != nil {
			return err
		}
		got = vc.Parameters
		key, _ := vc.Security.String("apiKey")
		return writeJSON(w, http.StatusOK, []string{key})
	})
	h := setupChi(t, ops)

	w := do(h, request{target: "/api/items?tags=a&tags=b", header: map[string]string{"X-API-Key": "secret"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `["secret"]`, w.Body.String())

	limit, ok := got.Query.Get("limit")
	assert.True(t, ok)
	assert.Equal(t, int64(10), limit)
	tags, ok := got.Query.List("tags")
	require.True(t, ok)
	assert.Equal(t, 2, tags.Len())
	assert.Equal(t, "b", tags.Get(1))
}

type event struct {
	Title    string    `json:"title"`
	StartsAt time.Time `json:"starts_at"`
}

func (e *event) Normalize() { oasbind.TrimSpace(e) }

func (e *event) Rules() []*oasbind.FieldRules {
	return []*oasbind.FieldRules{
		oasbind.Field(&e.Title, oasbind.Required, oasbind.Length(1, 20)),
	}
}

func createEvent(w http.ResponseWriter, r *http.Request) error {
	data, err := oasbind.GetValidatedData(r)
	if err != nil {
		return err
	}
	body := data.(oasbind.Map)
	if _, ok := mustGet(body, "starts_at").(time.Time); !ok {
		return errors.New("starts_at not converted")
	}

	var ev event
	if err := oasbind.Bind(r, &ev); err != nil {
		return err
	}
	organizer, _ := body.Map("organizer")
	email, _ := organizer.String("email")
	return writeJSON(w, http.StatusCreated, map[string]any{
		"id":        1,
		"title":     ev.Title,
		"starts_at": ev.StartsAt.Format(time.RFC3339),
		"organizer": map[string]string{"email": email},
	})
}

func mustGet(m oasbind.Map, key string) any {
	v, _ := m.Get(key)
	return v
}

func TestRequestBody(t *testing.T) {
	h := setupChi(t, oasbind.NewOperations().RegisterAs("create_event", createEvent))

	w := do(h, request{method: http.MethodPost, target: "/api/events", body: `{
		"title": "  Launch  ",
		"starts_at": "2026-10-18T10:00:00+02:00",
		"organizer": {"email": "ann@example.com"},
		"venue": null
	}`})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.JSONEq(t, `{
		"id": 1,
		"title": "Launch",
		"starts_at": "2026-10-18T10:00:00+02:00",
		"organizer": {"email": "ann@example.com"}
	}`, w.Body.String())

	w = do(h, request{method: http.MethodPost, target: "/api/events", body: `{
		"starts_at": "2026-10-18T10:00:00",
		"organizer": {"email": "nope"},
		"attendees": [{"name": "a"}, {}]
	}`})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, map[string]string{
		"body.title":             oasbind.MsgFieldRequired,
		"body.starts_at":         "'2026-10-18T10:00:00' is not a 'date-time'",
		"body.organizer.email":   "'nope' is not an 'email'",
		"body.attendees.#1.name": oasbind.MsgFieldRequired,
	}, items(t, w))

	w = do(h, request{method: http.MethodPost, target: "/api/events", body: `{
		"title": "An event title that is far too long",
		"starts_at": "2026-10-18T10:00:00Z",
		"organizer": {"email": "ann@example.com"}
	}`})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, map[string]string{"body.title": "the length must be between 1 and 20"}, items(t, w))

	w = do(h, request{method: http.MethodPost, target: "/api/events"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, map[string]string{"body": "Missing required request body"}, items(t, w))

	w = do(h, request{method: http.MethodPost, target: "/api/events", body: `title=x`, header: map[string]string{"Content-Type": "text/csv"}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, map[string]string{"body": "Schema missing for following mimetype: text/csv"}, items(t, w))

	w = do(h, request{method: http.MethodPost, target: "/api/events", body: `{"title": "Launch"} trailing`})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, map[string]string{"body": "invalid JSON body: unexpected data after top-level value"}, items(t, w))
}

func TestValidatedDataRoundTrips(t *testing.T) {
	doc := openapi.DocBase("t", "", "1")
	openapi.Post(doc, "/records", "create_record", openapi.Endpoint{
		Request:  openapi3.NewObjectSchema().WithAnyAdditionalProperties(),
		Response: openapi.Object(map[string]*openapi3.Schema{}),
	})
	schema, spec, err := openapi.Build(context.Background(), doc)
	require.NoError(t, err)

	var echoed []byte
	ops := oasbind.NewOperations().RegisterAs("create_record", func(w http.ResponseWriter, r *http.Request) error {
		data, err := oasbind.GetValidatedData(r)
		if err != nil {
			return err
		}
		if echoed, err = json.Marshal(data); err != nil {
			return err
		}
		return writeJSON(w, http.StatusOK, map[string]any{})
	})
	router := chi.NewRouter()
	_, err = oasbind.Setup(router, oasbind.WithSchema(schema, spec), oasbind.WithOperations(ops))
	require.NoError(t, err)

	input := `{
		"big": 12345678901234567890,
		"small": 7,
		"ratio": 0.1,
		"precise": 3.141592653589793238462643383279,
		"flag": true,
		"nested": {"list": [1, "two", {"deep": [2.5, false]}], "empty": {}}
	}`
	w := do(router, request{method: http.MethodPost, target: "/records", body: input})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, input, string(echoed))
	assert.Contains(t, string(echoed), `"big":12345678901234567890`)
	assert.Contains(t, string(echoed), `"precise":3.141592653589793238462643383279`)
}

func TestFormBody(t *testing.T) {
	var got oasbind.Map
	ops := oasbind.NewOperations().RegisterAs("login", func(w http.ResponseWriter, r *http.Request) error {
		data, err := oasbind.GetValidatedData(r)
		if err != nil {
			return err
		}
		got = data.(oasbind.Map)
		return writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	})
	h := setupChi(t, ops)
	form := map[string]string{"Content-Type": "application/x-www-form-urlencoded"}

	w := do(h, request{method: http.MethodPost, target: "/api/login", body: "username=ann&password=x&remember=true", header: form})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	remember, _ := got.Get("remember")
	assert.Equal(t, true, remember)

	w = do(h, request{method: http.MethodPost, target: "/api/login", body: "username=ann", header: form})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, map[string]string{"body.password": oasbind.MsgFieldRequired}, items(t, w))

	w = do(h, request{method: http.MethodPost, target: "/api/login", body: "username=ann&password=x&remember=maybe", header: form})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, map[string]string{"body.remember": "'maybe' is not a type of 'boolean'"}, items(t, w))

	w = do(h, request{method: http.MethodPost, target: "/api/login", body: "username=ann&remember=maybe", header: form})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, map[string]string{
		"body.password": oasbind.MsgFieldRequired,
		"body.remember": "'maybe' is not a type of 'boolean'",
	}, items(t, w))
}

func TestResponseValidation(t *testing.T) {
	ops := oasbind.NewOperations().
		RegisterAs("hello_world", func(w http.ResponseWriter, _ *http.Request) error {
			return writeJSON(w, http.StatusOK, map[string]string{"greeting": "hi"})
		}).
		RegisterAs("create_event", func(w http.ResponseWriter, _ *http.Request) error {
			return writeJSON(w, http.StatusOK, map[string]string{})
		})

	h := setupChi(t, ops)
	w := do(h, request{target: "/api/hello"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, map[string]string{"response.message": oasbind.MsgFieldRequired}, items(t, w))

	w = do(h, request{method: http.MethodPost, target: "/api/events", body: `{"title": "x", "starts_at": "2026-10-18T10:00:00Z", "organizer": {"email": "a@b.co"}}`})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, map[string]string{
		"response": "Unknown response http status: 200. Available response http statuses: 201",
	}, items(t, w))

	h = setupChi(t, ops, oasbind.WithResponseValidation(false))
	w = do(h, request{target: "/api/hello"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"greeting": "hi"}`, w.Body.String())
}

func TestHandlerErrors(t *testing.T) {
	ops := oasbind.NewOperations().
		RegisterAs("hello_world", func(http.ResponseWriter, *http.Request) error {
			return &oasbind.ObjectDoesNotExist{Label: "Greeting"}
		}).
		RegisterAs("subscribe", func(http.ResponseWriter, *http.Request) error {
			return errors.New("database is down")
		}).
		RegisterAs("create_event", func(http.ResponseWriter, *http.Request) error {
			panic("boom")
		})
	h := setupChi(t, ops, oasbind.WithLogger(zerolog.Nop()))

	w := do(h, request{target: "/api/hello"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"detail": "Greeting not found"}`, w.Body.String())

	w = do(h, request{target: "/api/subscribe?name=a&email=a@b.co"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"detail": "Server error"}`, w.Body.String())

	w = do(h, request{method: http.MethodPost, target: "/api/events", body: `{"title": "x", "starts_at": "2026-10-18T10:00:00Z", "organizer": {"email": "a@b.co"}}`})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"detail": "Server error"}`, w.Body.String())
}

func TestHandlerErrorAfterPartialResponse(t *testing.T) {
	ops := oasbind.NewOperations().RegisterAs("hello_world", func(w http.ResponseWriter, _ *http.Request) error {
		if err := writeJSON(w, http.StatusAccepted, map[string]string{"message": "queued"}); err != nil {
			return err
		}
		return errors.New("flush failed")
	})
	h := setupChi(t, ops, oasbind.WithResponseValidation(false))

	w := do(h, request{target: "/api/hello"})
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"message": "queued"}`, w.Body.String())
}

type UserView struct {
	deleted []int64
}

func (v *UserView) Methods() []oasbind.ViewMethod {
	return []oasbind.ViewMethod{
		{Method: http.MethodGet, Handler: v.get},
		{Method: http.MethodPatch, Handler: v.patch},
		{Method: http.MethodDelete, Handler: v.delete, OperationID: "delete_user"},
	}
}

func (v *UserView) get(w http.ResponseWriter, r *http.Request) error {
	params, err := oasbind.GetValidatedParameters(r)
	if err != nil {
		return err
	}
	id, _ := params.Path.Get("user_id")
	return writeJSON(w, http.StatusOK, map[string]any{"id": id, "name": "Ann"})
}

func (v *UserView) patch(w http.ResponseWriter, r *http.Request) error {
	data, err := oasbind.GetValidatedData(r)
	if err != nil {
		return err
	}
	name, _ := data.(oasbind.Map).String("name")
	return writeJSON(w, http.StatusOK, map[string]any{"id": 1, "name": name})
}

func (v *UserView) delete(w http.ResponseWriter, r *http.Request) error {
	params, err := oasbind.GetValidatedParameters(r)
	if err != nil {
		return err
	}
	id, _ := params.Path.Get("user_id")
	v.deleted = append(v.deleted, id.(int64))
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func TestView(t *testing.T) {
	view := &UserView{}
	h := setupChi(t, oasbind.NewOperations().RegisterView(view))

	w := do(h, request{target: "/api/users/7"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"id": 7, "name": "Ann"}`, w.Body.String())

	w = do(h, request{method: http.MethodPatch, target: "/api/users/7", body: `{"name": "Bob"}`})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id": 1, "name": "Bob"}`, w.Body.String())

	w = do(h, request{method: http.MethodDelete, target: "/api/users/9"})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []int64{9}, view.deleted)

	w = do(h, request{method: http.MethodPut, target: "/api/users/7"})
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "DELETE, GET, PATCH", w.Header().Get("Allow"))

	w = do(h, request{target: "/api/users/abc"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, map[string]string{"parameters.user_id": "'abc' is not a type of 'integer'"}, items(t, w))
}

func TestServeMux(t *testing.T) {
	mux := oasbind.NewServeMux(nil)
	ops := testOperations().RegisterView(&UserView{})
	_, err := oasbind.Setup(mux, oasbind.WithSchemaPath(schemaPath), oasbind.WithOperations(ops), oasbind.WithDocs("/docs"))
	require.NoError(t, err)

	w := do(mux, request{target: "/api/hello?name=Ann"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message": "Hello, Ann!"}`, w.Body.String())

	w = do(mux, request{target: "/api/users/3"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id": 3, "name": "Ann"}`, w.Body.String())

	w = do(mux, request{target: "/api/openapi.yaml"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "openapi: 3.0.3")

	w = do(mux, request{target: "/docs/index.html"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSchemaHandler(t *testing.T) {
	h := setupChi(t, testOperations())

	w := do(h, request{target: "/api/openapi.json"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), `"openapi":"3.0.3"`)

	w = do(h, request{target: "/api/openapi.txt"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Unsupported schema format: txt", detail(t, w))

	h = setupChi(t, testOperations(), oasbind.WithSchemaHandler(false))
	w = do(h, request{target: "/api/openapi.json"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSetupErrors(t *testing.T) {
	_, err := oasbind.Setup(oasbind.NewServeMux(nil))
	var cfgErr *oasbind.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)

	_, err = oasbind.Setup(oasbind.NewServeMux(nil), oasbind.WithSchemaPath("testdata/missing.yaml"))
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "testdata/missing.yaml")

	ops := oasbind.NewOperations().RegisterAs("does_not_exist", subscribe)
	_, err = oasbind.Setup(oasbind.NewServeMux(nil), oasbind.WithSchemaPath(schemaPath), oasbind.WithOperations(ops))
	var opErr *oasbind.OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "does_not_exist", opErr.OperationID)

	ops = oasbind.NewOperations().RegisterAs("subscribe", subscribe).RegisterAs("subscribe", subscribe)
	_, err = oasbind.Setup(oasbind.NewServeMux(nil), oasbind.WithSchemaPath(schemaPath), oasbind.WithOperations(ops))
	assert.ErrorAs(t, err, &cfgErr)
}

func TestSetupPrefersInMemorySchema(t *testing.T) {
	schema, spec := loadSpec(t)
	app, err := oasbind.Setup(oasbind.NewServeMux(nil),
		oasbind.WithSchemaPath("testdata/missing.yaml"),
		oasbind.WithSchema(schema, spec),
		oasbind.WithLevel("prod"),
	)
	require.NoError(t, err)
	assert.Same(t, spec, app.Spec)
	assert.Equal(t, "/v1", app.Prefix)
}

func TestSetupServerURL(t *testing.T) {
	app, err := oasbind.Setup(oasbind.NewServeMux(nil),
		oasbind.WithSchemaPath(schemaPath),
		oasbind.WithServerURL("https://example.com/base/"),
		oasbind.WithOperations(testOperations()),
		oasbind.WithCache(true),
		oasbind.WithContext(context.Background()),
	)
	require.NoError(t, err)
	assert.Equal(t, "/base", app.Prefix)
	for _, route := range app.Routes {
		assert.Regexp(t, "^/base/", route.Path)
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := oasbind.NewMetrics(reg)
	h := setupChi(t, testOperations(), oasbind.WithMetrics(m))

	do(h, request{target: "/api/hello"})
	do(h, request{target: "/api/hello?name="})
	do(h, request{target: "/api/basic"})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("hello_world", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("hello_world", "422")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ValidationFailures.WithLabelValues("hello_world", oasbind.StageRequest)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ValidationFailures.WithLabelValues("basic_only", oasbind.StageSecurity)))
	assert.Equal(t, 2, testutil.CollectAndCount(m.RequestDuration))
}
