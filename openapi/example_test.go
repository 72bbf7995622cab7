package openapi_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gobd/oasbind"
	"github.com/Gobd/oasbind/openapi"
)

func item() *openapi3.Schema {
	return openapi.Object(map[string]*openapi3.Schema{
		"name":  openapi3.NewStringSchema(),
		"price": openapi3.NewFloat64Schema(),
	}, "name")
}

func ExamplePost() {
	doc := openapi.DocBase("Shop API", "Example API", "1.0.0")

	openapi.Post(doc, "/items", "createItem", openapi.Endpoint{
		Summary:  "Create an item",
		Request:  item(),
		Response: item(),
	})

	fmt.Println(doc.Paths.Value("/items").Post.OperationID)
	// Output: createItem
}

func ExampleDocBase() {
	doc := openapi.DocBase("My Service", "A cool service", "0.1.0")
	fmt.Println(doc.Info.Title)
	fmt.Println(doc.OpenAPI)
	// Output:
	// My Service
	// 3.0.3
}

func ExampleBuild() {
	doc := openapi.DocBase("Shop API", "Example API", "1.0.0")
	openapi.Get(doc, "/items/{id}", "getItem", openapi.Endpoint{
		Parameters: openapi3.Parameters{openapi.PathParam("id", openapi3.NewInt64Schema())},
		Response:   item(),
	})

	_, spec, err := openapi.Build(context.Background(), doc)
	if err != nil {
		panic(err)
	}
	op, _ := spec.Operation("getItem")
	fmt.Println(op.Method, op.Path)
	// Output: GET /items/{id}
}

func TestBuildSecurity(t *testing.T) {
	doc := openapi.DocBase("Shop API", "Example API", "1.0.0")
	openapi.AddSecurityScheme(doc, "key", openapi3.NewSecurityScheme().WithType("apiKey").WithIn("header").WithName("X-API-Key"))
	doc.Security = openapi3.SecurityRequirements{openapi3.NewSecurityRequirement().Authenticate("key")}

	openapi.Get(doc, "/public", "public", openapi.Endpoint{Security: openapi.Public()})
	openapi.Get(doc, "/private", "private", openapi.Endpoint{})

	_, spec, err := openapi.Build(context.Background(), doc)
	require.NoError(t, err)

	public, err := spec.Operation("public")
	require.NoError(t, err)
	require.NotNil(t, public.Security)
	assert.Empty(t, *public.Security)
	assert.Empty(t, spec.SecurityFor(public))

	private, err := spec.Operation("private")
	require.NoError(t, err)
	assert.Nil(t, private.Security)
	assert.Len(t, spec.SecurityFor(private), 1)
}

func TestAddServerLevels(t *testing.T) {
	doc := openapi.DocBase("Shop API", "Example API", "1.0.0")
	openapi.AddServer(doc, "http://localhost/api", "dev", "test")
	openapi.AddServer(doc, "https://example.com/v1", "prod")
	openapi.Get(doc, "/items", "listItems", openapi.Endpoint{})

	_, spec, err := openapi.Build(context.Background(), doc)
	require.NoError(t, err)

	prefix, err := oasbind.FindRoutePrefix(spec, "", "test")
	require.NoError(t, err)
	assert.Equal(t, "/api", prefix)

	prefix, err = oasbind.FindRoutePrefix(spec, "", "prod")
	require.NoError(t, err)
	assert.Equal(t, "/v1", prefix)
}

func TestNewRequestRequiresSchema(t *testing.T) {
	_, err := openapi.NewRequest()
	assert.Error(t, err)
	assert.Panics(t, func() { openapi.NewRequestMust() })
}
