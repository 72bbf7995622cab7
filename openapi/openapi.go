package openapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Gobd/oasbind"
	"github.com/getkin/kin-openapi/openapi3"
)

// Response describes an HTTP response with a description and body schemas.
type Response struct {
	Desc    string
	Schemas []*openapi3.Schema
}

// Endpoint describes a single API operation for the convenience helpers
// [Get], [Post], [Put], [Patch], and [Delete].
type Endpoint struct {
	Summary     string
	Description string
	Parameters  openapi3.Parameters
	Request     *openapi3.Schema               // single JSON request body schema
	Requests    []*openapi3.Schema             // several request body schemas (oneOf)
	Response    *openapi3.Schema               // single 200 response schema
	Responses   map[string]Response            // full response map (overrides Response if both set)
	Security    *openapi3.SecurityRequirements // nil inherits the document security
}

// Public is the security of operations that need no credentials.
func Public() *openapi3.SecurityRequirements {
	return openapi3.NewSecurityRequirements()
}

// NewRequest creates a required JSON request body. Several schemas are
// combined with oneOf.
func NewRequest(schemas ...*openapi3.Schema) (*openapi3.RequestBodyRef, error) {
	if len(schemas) == 0 {
		return nil, errors.New("no schemas given")
	}
	body := openapi3.NewRequestBody().WithRequired(true).WithJSONSchema(oneOf(schemas))
	return &openapi3.RequestBodyRef{Value: body}, nil
}

// NewRequestMust is like [NewRequest] but panics on error.
func NewRequestMust(schemas ...*openapi3.Schema) *openapi3.RequestBodyRef {
	o, err := NewRequest(schemas...)
	if err != nil {
		panic(err)
	}
	return o
}

// NewResponse creates an OpenAPI responses object.
// Map key is status code (e.g. "200", "4XX", "default").
func NewResponse(vs map[string]Response) (*openapi3.Responses, error) {
	if len(vs) == 0 {
		return nil, errors.New("no values given")
	}

	opts := make([]openapi3.NewResponsesOption, 0, len(vs))
	for statusCode, r := range vs {
		resp := openapi3.NewResponse().WithDescription(r.Desc)
		if len(r.Schemas) > 0 {
			resp = resp.WithJSONSchema(oneOf(r.Schemas))
		}
		opts = append(opts, openapi3.WithName(statusCode, resp))
	}
	return openapi3.NewResponses(opts...), nil
}

// NewResponseMust is like [NewResponse] but panics on error.
func NewResponseMust(vs map[string]Response) *openapi3.Responses {
	o, err := NewResponse(vs)
	if err != nil {
		panic(err)
	}
	return o
}

func oneOf(schemas []*openapi3.Schema) *openapi3.Schema {
	if len(schemas) == 1 {
		return schemas[0]
	}
	s := &openapi3.Schema{}
	for _, schema := range schemas {
		s.OneOf = append(s.OneOf, &openapi3.SchemaRef{Value: schema})
	}
	return s
}

// DocBase returns a basic OpenAPI 3.0.3 document structure.
func DocBase(serviceName, description, version string) *openapi3.T {
	return &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       serviceName,
			Description: description,
			Version:     version,
		},
		Paths: &openapi3.Paths{},
	}
}

// AddServer declares a server. Levels tag the server for selection by the
// settings level when a document has several servers.
func AddServer(doc *openapi3.T, url string, levels ...string) {
	server := &openapi3.Server{URL: url}
	switch len(levels) {
	case 0:
	case 1:
		server.Extensions = map[string]any{oasbind.LevelExtension: levels[0]}
	default:
		tags := make([]any, len(levels))
		for i, l := range levels {
			tags[i] = l
		}
		server.Extensions = map[string]any{oasbind.LevelExtension: tags}
	}
	doc.Servers = append(doc.Servers, server)
}

// AddSecurityScheme declares a security scheme under name.
func AddSecurityScheme(doc *openapi3.T, name string, scheme *openapi3.SecurityScheme) {
	if doc.Components == nil {
		doc.Components = &openapi3.Components{}
	}
	if doc.Components.SecuritySchemes == nil {
		doc.Components.SecuritySchemes = openapi3.SecuritySchemes{}
	}
	doc.Components.SecuritySchemes[name] = &openapi3.SecuritySchemeRef{Value: scheme}
}

// AddPath adds an operation to the OpenAPI spec at the given path and method.
func AddPath(path, method string, s *openapi3.T, op *openapi3.Operation) {
	p := s.Paths.Value(path)
	if p == nil {
		p = &openapi3.PathItem{}
	}
	p.SetOperation(method, op)
	s.Paths.Set(path, p)
}

// addEndpoint builds an [openapi3.Operation] from ep and registers it at path+method.
func addEndpoint(doc *openapi3.T, path, method, operationID string, ep Endpoint) {
	op := &openapi3.Operation{
		OperationID: operationID,
		Summary:     ep.Summary,
		Description: ep.Description,
		Parameters:  ep.Parameters,
		Security:    ep.Security,
	}

	switch {
	case len(ep.Requests) > 0:
		op.RequestBody = NewRequestMust(ep.Requests...)
	case ep.Request != nil:
		op.RequestBody = NewRequestMust(ep.Request)
	}

	responses := ep.Responses
	if responses == nil && ep.Response != nil {
		responses = map[string]Response{
			"200": {Desc: "OK", Schemas: []*openapi3.Schema{ep.Response}},
		}
	}
	if responses != nil {
		op.Responses = NewResponseMust(responses)
	} else {
		op.Responses = NewResponseMust(map[string]Response{"200": {Desc: "OK"}})
	}

	AddPath(path, method, doc, op)
}

// Get registers a GET endpoint on doc.
func Get(doc *openapi3.T, path, operationID string, ep Endpoint) {
	addEndpoint(doc, path, http.MethodGet, operationID, ep)
}

// Post registers a POST endpoint on doc.
func Post(doc *openapi3.T, path, operationID string, ep Endpoint) {
	addEndpoint(doc, path, http.MethodPost, operationID, ep)
}

// Put registers a PUT endpoint on doc.
func Put(doc *openapi3.T, path, operationID string, ep Endpoint) {
	addEndpoint(doc, path, http.MethodPut, operationID, ep)
}

// Patch registers a PATCH endpoint on doc.
func Patch(doc *openapi3.T, path, operationID string, ep Endpoint) {
	addEndpoint(doc, path, http.MethodPatch, operationID, ep)
}

// Delete registers a DELETE endpoint on doc.
func Delete(doc *openapi3.T, path, operationID string, ep Endpoint) {
	addEndpoint(doc, path, http.MethodDelete, operationID, ep)
}

// Build serializes doc and compiles it, returning the pair accepted by
// oasbind.WithSchema.
func Build(ctx context.Context, doc *openapi3.T) (oasbind.Schema, *oasbind.Spec, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, nil, &oasbind.ConfigurationError{Message: "Unable to serialize document", Err: err}
	}
	schema, err := oasbind.LoadSchema(data, oasbind.SchemaJSON)
	if err != nil {
		return nil, nil, err
	}
	spec, err := oasbind.Compile(ctx, schema)
	if err != nil {
		return nil, nil, err
	}
	return schema, spec, nil
}
