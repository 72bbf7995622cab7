package oasbind

import (
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/rs/zerolog"
)

// MethodAny marks a route that dispatches every method itself.
const MethodAny = "*"

// LevelExtension tags a server with the settings level, or list of levels,
// it serves. It is consulted when the document declares several servers.
const LevelExtension = "x-oasbind-level"

// Route is one entry of the materialized route table.
type Route struct {
	Method string
	Path   string
	Name   string
	// Alias routes name an additional operation of a view. They share the
	// view's dispatch route and carry no handler.
	Alias bool
	// OperationIDs lists the operations served by the route.
	OperationIDs []string

	handler http.Handler
}

// Handler returns the handler of the route, or nil for alias routes.
func (r Route) Handler() http.Handler { return r.handler }

// GetRouteName turns an operation identifier into a route name.
func GetRouteName(operationID string) string {
	return strings.ReplaceAll(operationID, " ", "-")
}

// AddPrefix prepends prefix to path. One trailing slash of prefix is
// dropped, so "/api/" and "/api" give the same result.
func AddPrefix(prefix, path string) string {
	return strings.TrimSuffix(prefix, "/") + path
}

// routeBuilder turns registered handlers into routes bound to the pipeline.
type routeBuilder struct {
	spec     *Spec
	prefix   string
	pipeline *pipeline
}

// ConvertOperationsToRoutes resolves every registered operation against spec
// and returns the route table. Unknown identifiers fail with
// *OperationError; an identifier registered twice or a handler whose name
// cannot be derived fails with *ConfigurationError.
func ConvertOperationsToRoutes(ops *Operations, spec *Spec, prefix string) ([]Route, error) {
	b := routeBuilder{spec: spec, prefix: prefix, pipeline: &pipeline{validator: &Validator{Spec: spec}, logger: zerolog.Nop()}}
	return b.build(ops)
}

func (b routeBuilder) build(ops *Operations) ([]Route, error) {
	if ops == nil {
		return nil, nil
	}
	seen := map[string]bool{}
	claim := func(id string) error {
		if seen[id] {
			return &ConfigurationError{Message: fmt.Sprintf("Operation %q registered more than once", id)}
		}
		seen[id] = true
		return nil
	}

	var routes []Route
	for _, h := range ops.handlers {
		if h.err != nil {
			return nil, &ConfigurationError{Message: "Unable to register handler", Err: h.err}
		}
		op, err := b.spec.Operation(h.operationID)
		if err != nil {
			return nil, err
		}
		if err := claim(op.ID); err != nil {
			return nil, err
		}
		routes = append(routes, Route{
			Method:       op.Method,
			Path:         AddPrefix(b.prefix, op.Path),
			Name:         GetRouteName(op.ID),
			OperationIDs: []string{op.ID},
			handler:      b.pipeline.handler(op, h.handler),
		})
	}

	for _, v := range ops.views {
		viewRoutes, err := b.view(v, claim)
		if err != nil {
			return nil, err
		}
		routes = append(routes, viewRoutes...)
	}
	return routes, nil
}

// view emits one dispatch route for all methods of v plus an alias route per
// additional operation.
func (b routeBuilder) view(v viewDef, claim func(string) error) ([]Route, error) {
	if len(v.operations) == 0 {
		return nil, nil
	}
	handlers := map[string]http.Handler{}
	var (
		path string
		ids  []string
	)
	for _, vo := range v.operations {
		op, err := b.spec.Operation(vo.operationID)
		if err != nil {
			return nil, err
		}
		if err := claim(op.ID); err != nil {
			return nil, err
		}
		if path == "" {
			path = op.Path
		} else if op.Path != path {
			return nil, &ConfigurationError{Message: fmt.Sprintf(
				"View %s spans several paths: %s and %s", v.prefix, path, op.Path)}
		}
		handlers[op.Method] = b.pipeline.handler(op, vo.handler)
		ids = append(ids, op.ID)
	}

	full := AddPrefix(b.prefix, path)
	routes := []Route{{
		Method:       MethodAny,
		Path:         full,
		Name:         GetRouteName(ids[0]),
		OperationIDs: ids,
		handler:      methodDispatcher(handlers),
	}}
	for i, id := range ids[1:] {
		routes = append(routes, Route{
			Method:       v.operations[i+1].method,
			Path:         full,
			Name:         GetRouteName(id),
			Alias:        true,
			OperationIDs: []string{id},
		})
	}
	return routes, nil
}

func methodDispatcher(handlers map[string]http.Handler) http.Handler {
	allowed := make([]string, 0, len(handlers))
	for m := range handlers {
		allowed = append(allowed, m)
	}
	sort.Strings(allowed)
	allow := strings.Join(allowed, ", ")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.Method]
		if !ok && r.Method == http.MethodHead {
			h, ok = handlers[http.MethodGet]
		}
		if !ok {
			w.Header().Set("Allow", allow)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		h.ServeHTTP(w, r)
	})
}

// FindRoutePrefix picks the route prefix from the servers of spec. An
// explicit serverURL wins. A single declared server is used as is. With
// several servers, the one tagged with level (see LevelExtension) is used.
// The prefix is the path of the server URL, with variables set to defaults.
func FindRoutePrefix(spec *Spec, serverURL, level string) (string, error) {
	if serverURL != "" {
		return urlPath(serverURL)
	}
	servers := spec.Servers()
	switch len(servers) {
	case 0:
		return "", nil
	case 1:
		return serverPath(servers[0])
	}
	if level == "" {
		return "", &ConfigurationError{Message: "Unable to find server URL from schema when level is not provided"}
	}
	for _, server := range servers {
		if serverHasLevel(server, level) {
			return serverPath(server)
		}
	}
	return "", &ConfigurationError{Message: fmt.Sprintf("Unable to find server URL with level %q", level)}
}

func serverHasLevel(server *openapi3.Server, level string) bool {
	switch v := server.Extensions[LevelExtension].(type) {
	case string:
		return v == level
	case []any:
		return slices.Contains(v, any(level))
	case []string:
		return slices.Contains(v, level)
	}
	return false
}

func serverPath(server *openapi3.Server) (string, error) {
	p, err := server.BasePath()
	if err != nil {
		return "", &ConfigurationError{Message: "Invalid server URL " + server.URL, Err: err}
	}
	return strings.TrimSuffix(p, "/"), nil
}

func urlPath(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", &ConfigurationError{Message: "Invalid server URL " + raw, Err: err}
	}
	return strings.TrimSuffix(u.Path, "/"), nil
}
