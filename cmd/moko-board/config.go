package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mobil-koeln/moko-board/internal/config"
	"github.com/mobil-koeln/moko-board/internal/configserver"
	"github.com/mobil-koeln/moko-board/internal/output"
)

// defaultServePath is the file `config serve` edits without --config
const defaultServePath = "moko-board.yaml"

func newConfigCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show, check and edit the configuration",
	}
	cmd.AddCommand(newConfigShowCmd(g))
	cmd.AddCommand(newConfigValidateCmd(g))
	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigServeCmd(g))
	return cmd
}

func newConfigShowCmd(g *globalFlags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show [from [to [refresh_seconds]]]",
		Short: "Print the effective configuration",
		Args:  cobra.MaximumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := readConfig(g, args)
			if err != nil {
				return err
			}
			if asJSON {
				return output.WriteJSON(cmd.OutOrStdout(), cfg)
			}
			data, err := yaml.Marshal(&cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newConfigValidateCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [from [to [refresh_seconds]]]",
		Short: "Check the configuration and exit non-zero if it is unusable",
		Args:  cobra.MaximumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadConfig(g, args); err != nil {
				return err
			}
			path := resolveConfigPath(g)
			if path == "" {
				path = "defaults"
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", path)
			return nil
		},
	}
}

func newConfigInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a config file with the default settings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultServePath
			if len(args) == 1 {
				path = args[0]
			}
			if config.DetectFormat(path) != config.FormatYAML {
				return fmt.Errorf("%s: config files are written as YAML, use a .yaml extension", path)
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			if err := config.Save(path, config.Default()); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s, set \"from\" to your station's CRS code\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

func newConfigServeCmd(g *globalFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the config file over HTTP for remote editing",
		Long: `Serve the config file over HTTP.

  GET  /config            current settings (JSON, or YAML with ?format=yaml)
  PUT  /config            merge a JSON or YAML body, validate and save
  GET  /config/defaults   the default settings
  GET  /healthz           liveness check

A running board reads its configuration at startup; restart it to pick
up changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := resolveConfigPath(g)
			if path == "" {
				path = defaultServePath
			}

			logger, closeLog, err := newLogger(g, cmd.ErrOrStderr(), false)
			if err != nil {
				return err
			}
			defer closeLog()

			ctx, stop := output.SignalContext(cmd.Context())
			defer stop()

			srv := configserver.New(path, configserver.WithLogger(logger))
			return ignoreCanceled(srv.ListenAndServe(ctx, addr))
		},
	}
	cmd.Flags().StringVar(&addr, "addr", configserver.DefaultAddr, "Listen address")
	return cmd
}
