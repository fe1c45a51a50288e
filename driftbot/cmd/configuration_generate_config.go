package cmd

import (
	"fmt"

	"github.com/apx-project/semantic-drift-action/pkg/configuration"
	"github.com/spf13/cobra"
)

var (
	forceWrite bool
)

func init() {
	generatecmd.Flags().BoolVarP(&forceWrite, "force", "f", false, "Force creation when file exists")
}

func generateConfig() *cobra.Command {
	generatecmd.RunE = func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		if err := configuration.GenerateConfig(forceWrite); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", configuration.ConfigFilename)
		return nil
	}

	return generatecmd
}

var generatecmd = &cobra.Command{
	Use:     "generate",
	Short:   fmt.Sprintf("Generate %s config file", configuration.ConfigFilename),
	Long:    fmt.Sprintf("Generate a %s config file with default values.", configuration.ConfigFilename),
	Aliases: []string{"generate-config"},
}
