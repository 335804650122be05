package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/soaringjerry/EcoImpact/internal/utils"
)

// Set with -ldflags "-X main.commit=... -X main.buildTime=...".
var (
	commit    string
	buildTime string
)

type rootOptions struct {
	configPath string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "ecoimpact",
		Short:         "EcoImpact carbon footprint server and tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", utils.SafeEnv("ECOIMPACT_CONFIG", ""), "path to YAML config file")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newEstimateCommand())
	cmd.AddCommand(newMigrateCommand(opts))
	cmd.AddCommand(newVersionCommand())
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			c, b := buildInfo()
			fmt.Fprintf(cmd.OutOrStdout(), "commit=%s build_time=%s\n", c, b)
		},
	}
}

// buildInfo prefers linker-set values and falls back to the environment.
func buildInfo() (string, string) {
	c, b := commit, buildTime
	if c == "" {
		c = utils.SafeEnv("ECOIMPACT_COMMIT", "")
	}
	if b == "" {
		b = utils.SafeEnv("ECOIMPACT_BUILD_TIME", "")
	}
	return c, b
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
