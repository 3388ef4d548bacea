package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"z-novel-workspace/internal/config"
	"z-novel-workspace/pkg/logger"
)

var configDir string

var rootCmd = &cobra.Command{
	Use:           "workspace-cli",
	Short:         "z-novel workspace tools",
	Long:          "Resolve provider endpoints, list providers and verify credentials against the workspace backend.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default: $WORKSPACE_CONFIG_DIR or ./configs)")

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(providersCmd)
}

// loadConfig 加载配置并初始化日志，日志写到 stderr 以免污染输出
func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()

	var (
		cfg *config.Config
		err error
	)
	if configDir != "" {
		cfg, err = config.LoadFrom(configDir)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	logger.InitWithWriter(os.Stderr, cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
	return cfg, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
