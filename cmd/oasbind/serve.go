package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Gobd/oasbind"
)

var (
	serveDocs     string
	serveNoVerify bool
)

var serveCmd = &cobra.Command{
	Use:   "serve <schema>",
	Short: "Serve a schema with stub handlers, Swagger UI and metrics",
	Long: `Serve every operation of a schema with a stub handler answering 501.

Requests still pass through parameter, body and security validation, so the
server can be used to try clients against a schema before the handlers exist.
The schema is served at <prefix>/openapi.json and <prefix>/openapi.yaml and
Prometheus metrics at /metrics.`,
	Args: cobra.ExactArgs(1),
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveDocs, "docs", "/docs", "path of Swagger UI, empty to disable")
	serveCmd.Flags().BoolVar(&serveNoVerify, "no-response-validation", false, "skip response validation")
	rootCmd.AddCommand(serveCmd)
}

type notImplementedError struct{}

func (notImplementedError) Error() string   { return "Not implemented" }
func (notImplementedError) StatusCode() int { return http.StatusNotImplemented }

func stub(http.ResponseWriter, *http.Request) error {
	return notImplementedError{}
}

func newLogger(settings oasbind.Settings) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug || settings.Debug {
		level = zerolog.DebugLevel
	}
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

// stubOperations binds every identified operation of spec to stub.
// Operations without an operationId cannot be registered and are skipped.
func stubOperations(spec *oasbind.Spec, logger zerolog.Logger) *oasbind.Operations {
	ops := oasbind.NewOperations()
	for _, op := range spec.Operations() {
		if op.ID == "" {
			logger.Warn().Str("method", op.Method).Str("path", op.Path).Msg("skipping operation without operationId")
			continue
		}
		ops.RegisterAs(op.ID, stub)
	}
	return ops
}

func runServe(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	logger := newLogger(settings)

	schema, spec, err := oasbind.LoadAndCompile(cmd.Context(), args[0], nil)
	if err != nil {
		return err
	}
	ops := stubOperations(spec, logger)

	reg := prometheus.NewRegistry()
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	app, err := oasbind.Setup(r,
		oasbind.WithContext(cmd.Context()),
		oasbind.WithSchema(schema, spec),
		oasbind.WithOperations(ops),
		oasbind.WithSettings(settings),
		oasbind.WithDocs(serveDocs),
		oasbind.WithResponseValidation(!serveNoVerify),
		oasbind.WithLogger(logger),
		oasbind.WithMetrics(oasbind.NewMetrics(reg)),
	)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              settings.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("addr", srv.Addr).Str("prefix", app.Prefix).Int("routes", len(app.Routes)).Msg("listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
