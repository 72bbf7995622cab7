// Package openapi builds OpenAPI 3 documents in code. The result can be
// bound without a schema file:
//
//	doc := openapi.DocBase("Shop API", "Example API", "1.0.0")
//	openapi.Get(doc, "/items", "listItems", openapi.Endpoint{
//	    Response: openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema()),
//	})
//	schema, spec, err := openapi.Build(ctx, doc)
//	app, err := oasbind.Setup(router, oasbind.WithSchema(schema, spec))
package openapi
