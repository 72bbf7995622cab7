package openapi

import (
	"github.com/getkin/kin-openapi/openapi3"
)

// Object returns an object schema with props, of which required must be
// present.
func Object(props map[string]*openapi3.Schema, required ...string) *openapi3.Schema {
	s := openapi3.NewObjectSchema().WithProperties(props)
	s.Required = required
	return s
}

// Nullable marks s as nullable and returns it.
func Nullable(s *openapi3.Schema) *openapi3.Schema {
	s.Nullable = true
	return s
}

// Query returns a query parameter.
func Query(name string, schema *openapi3.Schema, required bool) *openapi3.ParameterRef {
	p := openapi3.NewQueryParameter(name).WithSchema(schema).WithRequired(required)
	return &openapi3.ParameterRef{Value: p}
}

// PathParam returns a path parameter. Path parameters are always required.
func PathParam(name string, schema *openapi3.Schema) *openapi3.ParameterRef {
	return &openapi3.ParameterRef{Value: openapi3.NewPathParameter(name).WithSchema(schema)}
}

// Header returns a header parameter.
func Header(name string, schema *openapi3.Schema, required bool) *openapi3.ParameterRef {
	p := openapi3.NewHeaderParameter(name).WithSchema(schema).WithRequired(required)
	return &openapi3.ParameterRef{Value: p}
}
