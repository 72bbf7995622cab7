// Package oasbind binds an OpenAPI 3 schema to HTTP handlers.
//
// The schema file is compiled once at startup. Handlers are registered by
// operationId, either as functions named after the operation or as views
// serving several methods of one path:
//
//	func helloWorld(w http.ResponseWriter, r *http.Request) error {
//	    params, err := oasbind.GetValidatedParameters(r)
//	    if err != nil {
//	        return err
//	    }
//	    name, _ := params.Query.String("name")
//	    return json.NewEncoder(w).Encode(map[string]string{"message": "Hello, " + name})
//	}
//
//	ops := oasbind.NewOperations()
//	ops.Register(helloWorld) // operationId "helloWorld"
//
//	router := chi.NewRouter()
//	_, err := oasbind.Setup(router,
//	    oasbind.WithSchemaPath("openapi.yaml"),
//	    oasbind.WithOperations(ops),
//	)
//
// Every request to a bound operation passes through the same pipeline:
// parameters, then body, then security. Parameter and body failures are
// collected into one [ValidationError] answered with 422. Security runs only
// once the data is valid and answers 401 or 403. The handler then sees
// coerced, read-only data via [GetContext], and when response validation is
// enabled its response is checked before it reaches the client.
//
// Errors returned by handlers are rendered as {"detail": ...}. Typed errors
// keep their status; anything else becomes a 500 [ServerError] whose cause
// is only logged.
//
// Sub-packages:
//   - openapi – building documents in code, for tests and generated APIs
//   - cmd/oasbind – checking a schema and listing its routes
package oasbind
