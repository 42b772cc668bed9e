package main

import (
	"github.com/go-go-golems/agentline/cmd/agentline/cmds"
	"github.com/go-go-golems/glazed/pkg/cmds/logging"
	"github.com/spf13/cobra"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:     "agentline",
	Short:   "agentline reconstructs agent packet streams into renderable timelines",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.InitLoggerFromCobra(cmd)
	},
}

func main() {
	cobra.CheckErr(logging.AddLoggingLayerToRootCommand(rootCmd, "agentline"))
	cmds.AddRootFlags(rootCmd)
	cobra.CheckErr(cmds.AddCommands(rootCmd))
	cobra.CheckErr(rootCmd.Execute())
}
