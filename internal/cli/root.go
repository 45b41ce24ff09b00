// Package cli provides the command-line interface for image-brightness.
package cli

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ironsheep/image-brightness/internal/config"
	"github.com/ironsheep/image-brightness/internal/version"
)

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	logLevel   string
	logJSON    bool
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	g := &globalOptions{}

	root := &cobra.Command{
		Use:   "image-brightness",
		Short: "Per-channel brightness adjustment with color analysis",
		Long: `image-brightness adds a brightness delta to selected RGB channels of an
image and compares the result with the original: the most frequent colors of
each version and a chart of each version's channel distributions.

It runs as a web application (serve), as an MCP tool server over stdio (mcp),
or once from the command line (process).`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate(version.String() + "\n")

	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&g.logJSON, "log-json", false, "emit logs as JSON")

	root.AddCommand(
		newServeCmd(g),
		newMCPCmd(g),
		newProcessCmd(g),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command and reports errors on stderr.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

// loadConfig layers defaults, the config file, IMAGE_BRIGHTNESS_* variables
// and the persistent flags, then validates the result.
func (g *globalOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	flags := cmd.Flags()
	override(flags, "log-level", &cfg.LogLevel, g.logLevel)
	override(flags, "log-json", &cfg.LogJSON, g.logJSON)
	return cfg, nil
}

// override copies v into dst when the named flag was set on the command line.
func override[T any](flags *pflag.FlagSet, name string, dst *T, v T) {
	if flags.Changed(name) {
		*dst = v
	}
}

func validate(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration:\n%w", err)
	}
	return nil
}

// rootLogger writes to stderr in every mode; stdout is reserved for command
// output and the MCP protocol.
func rootLogger(cfg *config.Config) hclog.Logger {
	return cfg.Logger("image-brightness", os.Stderr)
}

func newVersionCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), version.Get())
			}
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
