package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	settingsFile string
	debug        bool
)

var rootCmd = &cobra.Command{
	Use:   "oasbind",
	Short: "Check OpenAPI schemas and list the routes they bind",
	Long: `oasbind compiles OpenAPI 3 schemas the same way applications using the
oasbind package do at startup.

  oasbind check <schema>    # compile and list operations
  oasbind routes <schema>   # print the route table
  oasbind serve <schema>    # serve the schema, Swagger UI and metrics`,
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&settingsFile, "settings", "s", "", "settings file path (YAML); defaults to the environment")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "debug logging")
}
