package oasbind

import (
	"context"

	"github.com/rs/zerolog"
)

// App is the result of Setup.
type App struct {
	Schema Schema
	Spec   *Spec
	Prefix string
	Routes []Route
}

type setupConfig struct {
	ctx              context.Context
	schemaPath       string
	schema           Schema
	spec             *Spec
	loader           SchemaLoader
	operations       []*Operations
	serverURL        string
	settings         Settings
	validateResponse bool
	schemaHandler    bool
	docsPath         string
	cache            bool
	email            EmailOptions
	logger           zerolog.Logger
	metrics          *Metrics
	maxBodySize      int64
}

// Option configures Setup.
type Option func(*setupConfig)

// WithContext sets the context used while loading and compiling the schema.
func WithContext(ctx context.Context) Option {
	return func(c *setupConfig) { c.ctx = ctx }
}

// WithSchemaPath loads the schema from a .json, .yml or .yaml file.
func WithSchemaPath(path string) Option {
	return func(c *setupConfig) { c.schemaPath = path }
}

// WithSchema uses an already loaded schema and its compiled spec.
func WithSchema(schema Schema, spec *Spec) Option {
	return func(c *setupConfig) {
		c.schema = schema
		c.spec = spec
	}
}

// WithSchemaLoader parses the schema file with loader instead of picking a
// loader from the file extension.
func WithSchemaLoader(loader SchemaLoader) Option {
	return func(c *setupConfig) { c.loader = loader }
}

// WithOperations adds registered handlers. It can be given several times.
func WithOperations(ops ...*Operations) Option {
	return func(c *setupConfig) { c.operations = append(c.operations, ops...) }
}

// WithServerURL sets the route prefix explicitly instead of reading it from
// the servers of the schema.
func WithServerURL(u string) Option {
	return func(c *setupConfig) { c.serverURL = u }
}

// WithSettings sets the settings, whose level selects the server.
func WithSettings(s Settings) Option {
	return func(c *setupConfig) { c.settings = s }
}

// WithLevel sets the level of the settings.
func WithLevel(level string) Option {
	return func(c *setupConfig) { c.settings.Level = level }
}

// WithResponseValidation toggles validation of handler responses.
func WithResponseValidation(enabled bool) Option {
	return func(c *setupConfig) { c.validateResponse = enabled }
}

// WithSchemaHandler toggles the {prefix}/openapi.{json,yaml} endpoints.
func WithSchemaHandler(enabled bool) Option {
	return func(c *setupConfig) { c.schemaHandler = enabled }
}

// WithDocs serves Swagger UI at path. It requires the schema handler.
func WithDocs(path string) Option {
	return func(c *setupConfig) { c.docsPath = path }
}

// WithCache memoizes loading and compiling of the schema file per path.
func WithCache(enabled bool) Option {
	return func(c *setupConfig) { c.cache = enabled }
}

// WithEmailOptions configures validation of the email string format.
func WithEmailOptions(opts EmailOptions) Option {
	return func(c *setupConfig) { c.email = opts }
}

// WithLogger sets the logger of setup and of the error boundary.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *setupConfig) { c.logger = logger }
}

// WithMetrics records request metrics into m.
func WithMetrics(m *Metrics) Option {
	return func(c *setupConfig) { c.metrics = m }
}

// WithMaxBodySize limits the size of request bodies.
func WithMaxBodySize(n int64) Option {
	return func(c *setupConfig) { c.maxBodySize = n }
}

// Setup loads and compiles the schema, materializes routes for the
// registered operations and adds them to router.
//
//	ops := oasbind.NewOperations()
//	ops.Register(helloWorld)
//	app, err := oasbind.Setup(chi.NewRouter(),
//		oasbind.WithSchemaPath("openapi.yaml"),
//		oasbind.WithOperations(ops),
//	)
func Setup(router Router, opts ...Option) (*App, error) {
	cfg := setupConfig{
		ctx:              context.Background(),
		validateResponse: true,
		schemaHandler:    true,
		logger:           zerolog.Nop(),
		maxBodySize:      DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.settings.Level == "" {
		cfg.settings.Level = DefaultLevel
	}

	schema, spec, err := cfg.load()
	if err != nil {
		return nil, err
	}

	prefix, err := FindRoutePrefix(spec, cfg.serverURL, cfg.settings.Level)
	if err != nil {
		return nil, err
	}
	cfg.logger.Info().Str("prefix", prefix).Str("level", cfg.settings.Level).Int("operations", len(spec.Operations())).Msg("binding schema")

	b := routeBuilder{
		spec:   spec,
		prefix: prefix,
		pipeline: &pipeline{
			validator: &Validator{
				Spec:        spec,
				Email:       cfg.email,
				MaxBodySize: cfg.maxBodySize,
			},
			validateResponse: cfg.validateResponse,
			logger:           cfg.logger,
			metrics:          cfg.metrics,
		},
	}
	routes, err := b.build(Merge(cfg.operations...))
	if err != nil {
		return nil, err
	}
	for _, route := range routes {
		cfg.logger.Debug().Str("method", route.Method).Str("path", route.Path).Str("name", route.Name).Bool("alias", route.Alias).Msg("route")
	}
	RegisterRoutes(router, routes)

	if cfg.schemaHandler {
		registerSchemaRoutes(router, prefix, SchemaHandler(schema, cfg.logger))
		if cfg.docsPath != "" {
			registerDocsRoute(router, cfg.docsPath, AddPrefix(prefix, "/openapi.json"))
		}
	}

	return &App{Schema: schema, Spec: spec, Prefix: prefix, Routes: routes}, nil
}

func (c *setupConfig) load() (Schema, *Spec, error) {
	if c.schema != nil && c.spec != nil {
		if c.schemaPath != "" {
			c.logger.Warn().Str("path", c.schemaPath).Msg("schema path ignored, in-memory schema supplied")
		}
		return c.schema, c.spec, nil
	}
	if c.schemaPath == "" {
		return nil, nil, &ConfigurationError{Message: "Please supply a schema path or a loaded schema and spec"}
	}
	c.logger.Info().Str("path", c.schemaPath).Bool("cache", c.cache).Msg("loading schema")
	if c.cache {
		return LoadAndCompileCached(c.ctx, c.schemaPath, c.loader)
	}
	return LoadAndCompile(c.ctx, c.schemaPath, c.loader)
}
