package cmd

import "github.com/spf13/cobra"

func Configuration() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration actions",
		Long:  "Generate or update the driftbot configuration file",
	}

	cmd.AddCommand(generateConfig())
	cmd.AddCommand(updateConfig())

	return cmd
}
