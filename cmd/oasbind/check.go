package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Gobd/oasbind"
)

var checkCmd = &cobra.Command{
	Use:   "check <schema>",
	Short: "Compile a schema and list its operations",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	_, spec, err := oasbind.LoadAndCompile(cmd.Context(), args[0], nil)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "OPERATION\tMETHOD\tPATH\tSECURITY")
	for _, op := range spec.Operations() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", op.ID, op.Method, op.Path, describeSecurity(spec, op))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\n%s: %d operations\n", args[0], len(spec.Operations()))
	return nil
}

func describeSecurity(spec *oasbind.Spec, op *oasbind.Operation) string {
	reqs := spec.SecurityFor(op)
	if len(reqs) == 0 {
		return "-"
	}
	alts := make([]string, len(reqs))
	for i, req := range reqs {
		alts[i] = "{" + strings.Join(sortedSchemes(req), "+") + "}"
	}
	return strings.Join(alts, " | ")
}
