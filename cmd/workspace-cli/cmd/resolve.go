package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"z-novel-workspace/internal/application/endpoint"
)

var resolveJSON bool

var resolveCmd = &cobra.Command{
	Use:   "resolve <base-url>",
	Short: "Derive chat and models endpoints from a provider base URL",
	Long:  "Derive chat and models endpoints from a provider base URL. A trailing '#' uses the URL verbatim as the chat endpoint.",
	Args:  cobra.ExactArgs(1),
	RunE:  runResolve,
}

func init() {
	resolveCmd.Flags().BoolVar(&resolveJSON, "json", false, "print result as JSON")
}

func runResolve(cmd *cobra.Command, args []string) error {
	ep := endpoint.Resolve(args[0])
	if resolveJSON {
		return printJSON(cmd, ep)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "chat:   %s\n", orDash(ep.ChatCompletion))
	fmt.Fprintf(out, "models: %s\n", orDash(ep.Models))
	if ep.ManualModelEntryRequired {
		fmt.Fprintln(out, "models must be added manually")
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
