// Package commands wires up the osprey command tree.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/ospreyhq/osprey-cli/cmd/osprey/commands/build"
	"github.com/ospreyhq/osprey-cli/cmd/osprey/commands/common"
	"github.com/ospreyhq/osprey-cli/cmd/osprey/commands/generate"
	"github.com/ospreyhq/osprey-cli/cmd/osprey/commands/launch"
	"github.com/ospreyhq/osprey-cli/cmd/osprey/commands/serve"
	"github.com/ospreyhq/osprey-cli/cmd/osprey/commands/start"
	zipcmd "github.com/ospreyhq/osprey-cli/cmd/osprey/commands/zip"
)

var (
	cfgFile    string
	projectDir string
)

var rootCmd = &cobra.Command{
	Use:   "osprey",
	Short: "Build and dev tooling for Osprey desktop projects",
	Long: `osprey builds, serves and launches Osprey desktop projects.

A project is a directory containing a services.config.json or
project.config.json file. Run the commands from inside the project,
or point them at one with --project.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return common.InitConfig(cfgFile, projectDir)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.osprey/cli.yaml)")
	rootCmd.PersistentFlags().StringVarP(&projectDir, "project", "p", "",
		"project directory (default: current directory)")

	rootCmd.AddCommand(start.Cmd)
	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(build.Cmd)
	rootCmd.AddCommand(generate.Cmd)
	rootCmd.AddCommand(zipcmd.Cmd)
	rootCmd.AddCommand(launch.Cmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
