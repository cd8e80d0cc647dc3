package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// buildRootCmd constructs the racket command tree.
func buildRootCmd() *cobra.Command {
	fv := &flagValues{}
	root := &cobra.Command{
		Use:           "racket",
		Short:         "Serve the active model of a racket installation over HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&fv.settingsPath, "settings", "", "Daemon settings file (.yaml, .json or .toml)")
	pf.StringVar(&fv.root, "root", "", "Installation root (defaults RACKET_ROOT or the current directory)")
	pf.StringVar(&fv.configName, "config-name", "", "Configuration file name inside the root (default racket.yaml)")
	pf.StringVar(&fv.logLevel, "log-level", "", "Log level: debug|info|warn|error (defaults RACKET_LOG_LEVEL or info)")
	pf.StringVar(&fv.logFormat, "log-format", "", "Log format: console|json")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveSettings(fv)
		if err != nil {
			return err
		}
		setupLogger(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
		return nil
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveSettings(fv)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
	serveCmd.Flags().StringVar(&fv.addr, "addr", "", "HTTP listen address, e.g. :8080")
	serveCmd.Flags().StringVar(&fv.predictor, "predictor", "", "Prediction backend: server|llama")
	serveCmd.Flags().StringVar(&fv.predictorURL, "predictor-url", "", "Base URL of the serving REST API")

	initCmd := &cobra.Command{
		Use:     "init [identifier]",
		Short:   "Create the configuration file from the template",
		Example: "  racket init\n  racket --root /srv/racket init my-service",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveSettings(fv)
			if err != nil {
				return err
			}
			id := cfg.ServiceName
			if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
				id = args[0]
			}
			mgr := newConfigManager(cfg)
			if err := mgr.Init(id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), mgr.FilePath())
			return nil
		},
	}

	configCmd := &cobra.Command{Use: "config", Short: "Inspect the installation configuration"}
	configPath := &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveSettings(fv)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), newConfigManager(cfg).FilePath())
			return nil
		},
	}
	configShow := &cobra.Command{
		Use:   "show",
		Short: "Print the configuration document as stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveSettings(fv)
			if err != nil {
				return err
			}
			mgr := newConfigManager(cfg)
			rec, ok, err := mgr.Get()
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("not initialized or empty: %s", mgr.FilePath())
			}
			b, err := yaml.Marshal(map[string]any(rec))
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}
	configGet := &cobra.Command{
		Use:     "get <key>",
		Short:   "Print a single top-level configuration value",
		Example: "  racket config get active-model",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveSettings(fv)
			if err != nil {
				return err
			}
			v, ok, err := newConfigManager(cfg).Value(args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("key %q not found", args[0])
			}
			if s, isStr := v.(string); isStr {
				fmt.Fprintln(cmd.OutOrStdout(), s)
				return nil
			}
			b, err := yaml.Marshal(v)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}
	configCmd.AddCommand(configPath, configShow, configGet)

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "racket %s\n", version)
			return nil
		},
	}

	root.AddCommand(serveCmd, initCmd, configCmd, versionCmd)
	root.SetContext(context.Background())
	return root
}
