package cmd

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"z-novel-workspace/internal/application/endpoint"
	"z-novel-workspace/internal/application/provider"
	"z-novel-workspace/internal/wire"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Manage third-party model providers",
}

var providersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List providers in display order",
	Args:  cobra.NoArgs,
	RunE:  runProvidersList,
}

var providersCheckCmd = &cobra.Command{
	Use:   "check <provider-id>",
	Short: "Verify a provider's stored API key",
	Args:  cobra.ExactArgs(1),
	RunE:  runProvidersCheck,
}

var providersDiscoverCmd = &cobra.Command{
	Use:   "discover <provider-id>",
	Short: "Fetch the provider's model list and add every model",
	Args:  cobra.ExactArgs(1),
	RunE:  runProvidersDiscover,
}

func init() {
	providersCmd.AddCommand(providersListCmd)
	providersCmd.AddCommand(providersCheckCmd)
	providersCmd.AddCommand(providersDiscoverCmd)
}

// withRegistry 初始化服务商依赖后执行 fn
func withRegistry(cmd *cobra.Command, fn func(*provider.Registry) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	tools, cleanup, err := wire.InitializeProviderTools(commandContext(cmd), cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	return fn(tools.Registry)
}

func runProvidersList(cmd *cobra.Command, _ []string) error {
	return withRegistry(cmd, func(r *provider.Registry) error {
		list, err := r.ListProviders(commandContext(cmd))
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCHAT ENDPOINT\tMODELS")
		for _, p := range list {
			ep := endpoint.Resolve(p.BaseURL)
			models := ep.Models
			if ep.ManualModelEntryRequired {
				models = "(manual)"
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", p.ID, p.Name, orDash(ep.ChatCompletion), orDash(models))
		}
		return w.Flush()
	})
}

func runProvidersCheck(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	return withRegistry(cmd, func(r *provider.Registry) error {
		ctx := commandContext(cmd)
		p, err := r.Lookup(ctx, id)
		if err != nil {
			return err
		}

		res := r.CheckAPIKey(ctx, p)
		if err := printJSON(cmd, res); err != nil {
			return err
		}
		if !res.Valid {
			return fmt.Errorf("api key check failed for provider %d", id)
		}
		return nil
	})
}

func runProvidersDiscover(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	return withRegistry(cmd, func(r *provider.Registry) error {
		ctx := commandContext(cmd)
		p, err := r.Lookup(ctx, id)
		if err != nil {
			return err
		}

		res := r.FetchAndAddModels(ctx, p)
		if err := printJSON(cmd, res); err != nil {
			return err
		}
		if !res.Success {
			return fmt.Errorf("%s", res.Message)
		}
		return nil
	})
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid provider id %q", raw)
	}
	return id, nil
}
