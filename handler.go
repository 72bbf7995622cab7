package oasbind

import (
	"encoding/json"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
	"gopkg.in/yaml.v3"
)

// Schema formats served by SchemaHandler.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// SchemaHandler serves schema as JSON or YAML depending on the extension of
// the request path, or the "format" URL parameter when routed by chi. Other
// formats answer 500 with a *ConfigurationError.
func SchemaHandler(schema Schema, logger zerolog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		format := chi.URLParam(r, "format")
		if format == "" {
			format = strings.TrimPrefix(path.Ext(r.URL.Path), ".")
		}

		var (
			body        []byte
			contentType string
			err         error
		)
		switch format {
		case FormatJSON:
			contentType = "application/json"
			body, err = json.Marshal(schema)
		case FormatYAML:
			contentType = "application/yaml"
			body, err = yaml.Marshal(map[string]any(schema))
		default:
			WriteError(w, logger, r, &ConfigurationError{Message: "Unsupported schema format: " + format})
			return
		}
		if err != nil {
			WriteError(w, logger, r, &ServerError{Err: err})
			return
		}
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write(body)
	})
}

// DocsHandler serves Swagger UI pointed at specURL.
//
//	r.Get("/docs/*", oasbind.DocsHandler("/api/openapi.json"))
func DocsHandler(specURL string) http.Handler {
	return httpSwagger.Handler(httpSwagger.URL(specURL))
}

// registerSchemaRoutes mounts the schema endpoints below prefix. chi routers
// get a single "openapi.{format}" route, other routers one per format.
func registerSchemaRoutes(router Router, prefix string, h http.Handler) {
	if _, ok := router.(chi.Router); ok {
		router.Method(http.MethodGet, AddPrefix(prefix, "/openapi.{format}"), h)
		return
	}
	for _, format := range []string{FormatJSON, FormatYAML} {
		router.Method(http.MethodGet, AddPrefix(prefix, "/openapi."+format), h)
	}
}

// registerDocsRoute mounts Swagger UI at docsPath.
func registerDocsRoute(router Router, docsPath, specURL string) {
	docsPath = strings.TrimSuffix(docsPath, "/")
	if _, ok := router.(chi.Router); ok {
		router.Method(http.MethodGet, docsPath+"/*", DocsHandler(specURL))
		return
	}
	router.Method(http.MethodGet, docsPath+"/", DocsHandler(specURL))
}
