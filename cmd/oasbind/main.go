// Command oasbind inspects OpenAPI schemas the way the oasbind package binds
// them.
//
//	oasbind check openapi.yaml
//	oasbind routes openapi.yaml --level prod
//	oasbind serve openapi.yaml --docs /docs
package main

func main() {
	Execute()
}
