// Package cli implements the stickerctl developer commands.
package cli

import (
	"context"
	"os"

	"github.com/dmorgan81/stickerbot/internal/config"
	"github.com/dmorgan81/stickerbot/internal/log"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	logLevel   string
	cfg        *config.Config
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:          "stickerctl",
		Short:        "Generate and compose city stickers from the command line",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			opts.cfg = cfg

			level := cfg.Server.LogLevel
			if cmd.Flags().Changed("log-level") {
				level = opts.logLevel
			}
			logger := log.New(cmd.ErrOrStderr(), log.ParseLevel(level))
			cmd.SetContext(log.NewContext(cmd.Context(), logger))
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", os.Getenv("STICKERBOT_CONFIG"), "path to an optional YAML config file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "debug, info, warn or error")

	cmd.AddCommand(newComposeCmd(opts), newGenerateCmd(opts))
	return cmd
}

func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
