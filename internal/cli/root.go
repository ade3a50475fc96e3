package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wesleyorama2/memberload/internal/config"
	"github.com/wesleyorama2/memberload/internal/logging"
	"github.com/wesleyorama2/memberload/internal/output"
)

var version = "0.1.0"

// RootCmd represents the base command when called without any subcommands
var RootCmd = NewRootCmd()

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "memberload",
		Short:   "Load-test session script for the members portal",
		Version: version,
		Long: `memberload simulates members of the managed care portal: each session
logs in, performs weighted page-load actions and logs out, reporting
every timed action as a success or failure event.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// If no subcommand is provided, print help
			return cmd.Help()
		},
	}

	root.PersistentFlags().StringP("config", "c", "", "Path to a YAML or JSON config file")
	root.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	root.PersistentFlags().String("log-format", "", "Log format (console, json)")
	root.PersistentFlags().Bool("no-color", false, "Disable colored output")

	root.AddCommand(newActionsCmd())
	root.AddCommand(newCredentialsCmd())
	root.AddCommand(newSessionCmd())
	root.AddCommand(newStubCmd())

	return root
}

// Execute runs the root command.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return RootCmd.Execute()
}

// loadConfig returns the file named by --config, or the defaults, with the
// logging flags applied on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}
	if format, _ := cmd.Flags().GetString("log-format"); format != "" {
		cfg.Log.Format = format
	}
	return cfg, nil
}

// setup loads the configuration and builds the logger for a command
func setup(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// noColor reports whether command output should be printed without color
func noColor(cmd *cobra.Command) bool {
	disabled, _ := cmd.Flags().GetBool("no-color")
	return disabled || !output.IsTerminal(cmd.OutOrStdout())
}
