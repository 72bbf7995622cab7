package oasbind

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// Operation is one compiled (method, path) entry of the document.
type Operation struct {
	ID          string
	Method      string
	Path        string
	Parameters  openapi3.Parameters
	RequestBody *openapi3.RequestBody
	Responses   *openapi3.Responses

	// Security is nil when the operation omits the security key and
	// inherits the document default. A non-nil empty slice marks a public
	// operation.
	Security *openapi3.SecurityRequirements
}

// Parameter returns the declared parameter with the given location and name.
func (o *Operation) Parameter(in, name string) *openapi3.Parameter {
	for _, ref := range o.Parameters {
		if p := ref.Value; p != nil && p.In == in && p.Name == name {
			return p
		}
	}
	return nil
}

// Spec is a compiled, read-only OpenAPI document.
type Spec struct {
	doc     *openapi3.T
	byID    map[string]*Operation
	byRoute map[string]*Operation
	ordered []*Operation
}

// Compile validates schema against the OpenAPI meta-schema and indexes its
// operations. Compiling the same schema twice yields equivalent specs.
func Compile(ctx context.Context, schema Schema) (*Spec, error) {
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, &ConfigurationError{Message: "Unable to encode schema", Err: err}
	}
	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, &ConfigurationError{Err: err}
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, &ConfigurationError{Err: err}
	}
	return newSpec(doc, schema)
}

func newSpec(doc *openapi3.T, schema Schema) (*Spec, error) {
	s := &Spec{
		doc:     doc,
		byID:    map[string]*Operation{},
		byRoute: map[string]*Operation{},
	}
	for _, path := range doc.Paths.InMatchingOrder() {
		item := doc.Paths.Value(path)
		for method, op := range item.Operations() {
			compiled := &Operation{
				ID:         op.OperationID,
				Method:     method,
				Path:       path,
				Parameters: mergeParameters(item.Parameters, op.Parameters),
				Responses:  op.Responses,
				Security:   operationSecurity(schema, path, method, op),
			}
			if op.RequestBody != nil {
				compiled.RequestBody = op.RequestBody.Value
			}
			if compiled.ID != "" {
				if prev, ok := s.byID[compiled.ID]; ok {
					return nil, &ConfigurationError{Message: fmt.Sprintf(
						"Duplicate operationId %q at %s %s and %s %s",
						compiled.ID, prev.Method, prev.Path, method, path)}
				}
				s.byID[compiled.ID] = compiled
			}
			s.byRoute[routeKey(method, path)] = compiled
			s.ordered = append(s.ordered, compiled)
		}
	}
	sort.SliceStable(s.ordered, func(i, j int) bool {
		if s.ordered[i].Path != s.ordered[j].Path {
			return s.ordered[i].Path < s.ordered[j].Path
		}
		return s.ordered[i].Method < s.ordered[j].Method
	})
	return s, nil
}

// operationSecurity reads the security key of the raw operation. kin-openapi
// keeps a nil pointer for an omitted key, but a raw tree edited by hand or
// produced by another tool is the authority.
func operationSecurity(schema Schema, path, method string, op *openapi3.Operation) *openapi3.SecurityRequirements {
	if schema == nil {
		return op.Security
	}
	rawOp, ok := lookup(schema, "paths", path, strings.ToLower(method)).(map[string]any)
	if !ok {
		return op.Security
	}
	if _, declared := rawOp["security"]; !declared {
		return nil
	}
	if op.Security == nil {
		return openapi3.NewSecurityRequirements()
	}
	return op.Security
}

func lookup(v any, keys ...string) any {
	for _, k := range keys {
		m, ok := v.(map[string]any)
		if !ok {
			if s, isSchema := v.(Schema); isSchema {
				m = s
			} else {
				return nil
			}
		}
		v = m[k]
	}
	return v
}

// mergeParameters returns path-level parameters overridden by operation-level
// ones with the same name and location.
func mergeParameters(pathParams, opParams openapi3.Parameters) openapi3.Parameters {
	out := make(openapi3.Parameters, 0, len(pathParams)+len(opParams))
	for _, p := range pathParams {
		if p.Value != nil && opParams.GetByInAndName(p.Value.In, p.Value.Name) != nil {
			continue
		}
		out = append(out, p)
	}
	return append(out, opParams...)
}

func routeKey(method, path string) string {
	return strings.ToUpper(method) + " " + path
}

// Document returns the underlying kin-openapi document.
func (s *Spec) Document() *openapi3.T { return s.doc }

// Operation returns the operation with the given identifier.
func (s *Spec) Operation(id string) (*Operation, error) {
	op, ok := s.byID[id]
	if !ok {
		return nil, &OperationError{OperationID: id}
	}
	return op, nil
}

// FindOperation returns the operation declared for method on the path
// template, e.g. "/users/{id}".
func (s *Spec) FindOperation(method, pathTemplate string) (*Operation, bool) {
	op, ok := s.byRoute[routeKey(method, pathTemplate)]
	return op, ok
}

// Operations returns all operations ordered by path then method.
func (s *Spec) Operations() []*Operation {
	return append([]*Operation(nil), s.ordered...)
}

// Servers returns the servers declared at document level.
func (s *Spec) Servers() openapi3.Servers { return s.doc.Servers }

// SecurityFor returns the effective security requirement of op: its own when
// declared, the document default otherwise. An empty result means no
// authentication is needed.
func (s *Spec) SecurityFor(op *Operation) openapi3.SecurityRequirements {
	if op.Security != nil {
		return *op.Security
	}
	return s.doc.Security
}

// SecurityScheme returns the named security scheme from components.
func (s *Spec) SecurityScheme(name string) *openapi3.SecurityScheme {
	if s.doc.Components == nil {
		return nil
	}
	ref := s.doc.Components.SecuritySchemes[name]
	if ref == nil {
		return nil
	}
	return ref.Value
}

// httpMethods lists the methods an OpenAPI path item may declare.
var httpMethods = []string{
	http.MethodConnect, http.MethodDelete, http.MethodGet, http.MethodHead,
	http.MethodOptions, http.MethodPatch, http.MethodPost, http.MethodPut, http.MethodTrace,
}

func isHTTPMethod(m string) bool {
	for _, known := range httpMethods {
		if strings.EqualFold(known, m) {
			return true
		}
	}
	return false
}
