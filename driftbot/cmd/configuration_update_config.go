// Copyright Kusari, Inc. and contributors <https://www.kusari.dev/>
// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"

	"github.com/apx-project/semantic-drift-action/pkg/configuration"
	"github.com/spf13/cobra"
)

func updateConfig() *cobra.Command {
	updatecmd.RunE = func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		return configuration.UpdateConfig()
	}

	return updatecmd
}

var updatecmd = &cobra.Command{
	Use:   "update",
	Short: fmt.Sprintf("Update %s config file", configuration.ConfigFilename),
	Long: fmt.Sprintf("Update a %s config file, keeping existing values "+
		"and adding any missing settings.", configuration.ConfigFilename),
	Aliases: []string{"update-config"},
}
