package main

import (
	"fmt"
	"net/http"
	"os"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/spf13/cobra"

	"github.com/Gobd/oasbind"
)

var (
	routesServerURL string
	routesLevel     string
)

var routesCmd = &cobra.Command{
	Use:   "routes <schema>",
	Short: "Print the route table materialized for every operation",
	Long: `Print the route table materialized for every operation of a schema.

The route prefix comes from --server-url when given, from the only server of
the schema, or from the server tagged with the settings level.

Examples:
  oasbind routes openapi.yaml
  oasbind routes openapi.yaml --level prod
  oasbind routes openapi.yaml --server-url https://example.com/api/v2`,
	Args: cobra.ExactArgs(1),
	RunE: runRoutes,
}

func init() {
	routesCmd.Flags().StringVar(&routesServerURL, "server-url", "", "server URL whose path prefixes every route")
	routesCmd.Flags().StringVar(&routesLevel, "level", "", "settings level selecting the server (overrides settings)")
	rootCmd.AddCommand(routesCmd)
}

func runRoutes(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	if routesLevel != "" {
		settings.Level = routesLevel
	}

	_, spec, err := oasbind.LoadAndCompile(cmd.Context(), args[0], nil)
	if err != nil {
		return err
	}
	prefix, err := oasbind.FindRoutePrefix(spec, routesServerURL, settings.Level)
	if err != nil {
		return err
	}

	ops := oasbind.NewOperations()
	for _, op := range spec.Operations() {
		ops.RegisterAs(op.ID, notImplemented)
	}
	routes, err := oasbind.ConvertOperationsToRoutes(ops, spec, prefix)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METHOD\tPATH\tNAME")
	for _, route := range routes {
		fmt.Fprintf(w, "%s\t%s\t%s\n", route.Method, route.Path, route.Name)
	}
	return w.Flush()
}

func notImplemented(http.ResponseWriter, *http.Request) error {
	return &oasbind.ServerError{Message: "Not implemented"}
}

func loadSettings() (oasbind.Settings, error) {
	if settingsFile != "" {
		return oasbind.LoadSettings(settingsFile)
	}
	return oasbind.SettingsFromEnv(), nil
}

func sortedSchemes(req openapi3.SecurityRequirement) []string {
	names := make([]string, 0, len(req))
	for name, scopes := range req {
		if len(scopes) > 0 {
			name += "[" + strings.Join(scopes, ",") + "]"
		}
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
