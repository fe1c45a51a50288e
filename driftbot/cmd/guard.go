// Copyright (c) Kusari <https://www.kusari.dev/>
// SPDX-License-Identifier: MIT

package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/apx-project/semantic-drift-action/api"
	"github.com/apx-project/semantic-drift-action/pkg/action"
	"github.com/apx-project/semantic-drift-action/pkg/comment"
	"github.com/apx-project/semantic-drift-action/pkg/configguard"
	"github.com/apx-project/semantic-drift-action/pkg/sarif"
	"github.com/spf13/cobra"
)

var (
	guardFormat string
	guardRaw    bool
)

func init() {
	guardcmd.Flags().StringVarP(&guardFormat, "format", "f", "json", "Output format: json, sarif or markdown")
	guardcmd.Flags().BoolVar(&guardRaw, "raw", false, "Print markdown without terminal styling")
}

func Guard() *cobra.Command {
	guardcmd.RunE = func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		logger := newLogger()
		report := configguard.Summarize(registryRoot, localRoot)
		if report == nil {
			logger.Debug("No config guard packs found", "registry", registryRoot, "local", localRoot)
			report = &api.AggregateReport{Packs: []api.PackGuardSummary{}}
		}

		return writeGuardReport(cmd.OutOrStdout(), report, guardFormat, guardRaw)
	}

	return guardcmd
}

func writeGuardReport(w io.Writer, report *api.AggregateReport, format string, raw bool) error {
	switch format {
	case "json":
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	case "sarif":
		out, err := sarif.ConvertGuardReport(report)
		if err != nil {
			return fmt.Errorf("failed to convert to SARIF: %w", err)
		}
		_, err = fmt.Fprintln(w, out)
		return err
	case "markdown":
		return action.Render(w, comment.FormatGuardSection(report), raw)
	default:
		return fmt.Errorf("unknown format %q (expected json, sarif or markdown)", format)
	}
}

var guardcmd = &cobra.Command{
	Use:   "guard",
	Short: "Summarize config guard packs",
	Long: `Scan the registry and local pack directories for config guard specs and
print the aggregate summary of missing environment variables and stale secrets.`,
	Args: cobra.NoArgs,
}
