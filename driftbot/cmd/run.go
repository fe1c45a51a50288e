// Copyright (c) Kusari <https://www.kusari.dev/>
// SPDX-License-Identifier: MIT

package cmd

import (
	"github.com/apx-project/semantic-drift-action/pkg/action"
	"github.com/apx-project/semantic-drift-action/pkg/github"
	"github.com/apx-project/semantic-drift-action/pkg/gitlab"
	"github.com/apx-project/semantic-drift-action/pkg/labels"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	runReportPath    string
	runLabelPrefix   string
	runProvider      string
	runDryRun        bool
	runRaw           bool
	runApplyLabels   bool
	runPostWhenClean bool
)

func init() {
	runcmd.Flags().StringVarP(&runReportPath, "report", "r", "drift-report.json", "Path to the precomputed drift report")
	runcmd.Flags().StringVar(&runLabelPrefix, "label-prefix", labels.DefaultPrefix, "Prefix for derived labels")
	runcmd.Flags().StringVarP(&runProvider, "provider", "p", action.ProviderAuto, "Where to post the report: auto, github, gitlab or none")
	runcmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Print the comment instead of posting it")
	runcmd.Flags().BoolVar(&runRaw, "raw", false, "Print markdown without terminal styling")
	runcmd.Flags().BoolVar(&runApplyLabels, "apply-labels", true, "Apply derived labels to the pull or merge request")
	runcmd.Flags().BoolVar(&runPostWhenClean, "post-when-clean", false, "Post the comment even when nothing was found")

	// Bind flags to viper
	mustBindPFlag("report_path", runcmd.Flags().Lookup("report"))
	mustBindPFlag("label_prefix", runcmd.Flags().Lookup("label-prefix"))
	mustBindPFlag("provider", runcmd.Flags().Lookup("provider"))
	mustBindPFlag("dry_run", runcmd.Flags().Lookup("dry-run"))
	mustBindPFlag("apply_labels", runcmd.Flags().Lookup("apply-labels"))
	mustBindPFlag("post_comment_when_clean", runcmd.Flags().Lookup("post-when-clean"))
}

func Run() *cobra.Command {
	runcmd.RunE = func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		owner, repo, prNumber := github.GetPRInfoFromEnv()
		projectID, mrIID := gitlab.GetMRInfoFromEnv()

		runURL := github.GetRunURLFromEnv()
		if runURL == "" {
			runURL = gitlab.GetPipelineURLFromEnv()
		}

		return action.Run(cmd.Context(), action.Options{
			ReportPath:    runReportPath,
			RegistryRoot:  registryRoot,
			LocalRoot:     localRoot,
			LabelPrefix:   runLabelPrefix,
			Provider:      runProvider,
			DryRun:        runDryRun,
			Raw:           runRaw,
			ApplyLabels:   runApplyLabels,
			PostWhenClean: runPostWhenClean,
			RunURL:        runURL,
			GitHub: github.CommentOptions{
				Owner:     owner,
				Repo:      repo,
				PRNumber:  prNumber,
				GitHubURL: github.GetGitHubAPIURLFromEnv(),
				Token:     github.GetTokenFromEnv(),
			},
			GitLab: gitlab.CommentOptions{
				ProjectID:   projectID,
				MergeReqIID: mrIID,
				GitLabURL:   gitlab.GetGitLabAPIURLFromEnv(),
				Token:       gitlab.GetTokenFromEnv(),
			},
			Logger: newLogger(),
			Stdout: cmd.OutOrStdout(),
		})
	}

	return runcmd
}

var runcmd = &cobra.Command{
	Use:   "run",
	Short: "Report drift and config guard findings on the current change",
	Long: `Load the drift report, summarize config guard packs and post the result
as a comment with labels on the current pull or merge request.

The provider is detected from the CI environment unless --provider is set.
With --dry-run, or outside CI, the comment is printed instead.

Examples:
  # GitHub Actions
  driftbot run --report out/drift-report.json

  # Preview locally
  driftbot run --dry-run --registry-root ./registry --local-root ./packs`,
	Args: cobra.NoArgs,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Update from viper (this gets env vars + config + flags)
		runReportPath = viper.GetString("report_path")
		runLabelPrefix = viper.GetString("label_prefix")
		runProvider = viper.GetString("provider")
		runDryRun = viper.GetBool("dry_run")
		runApplyLabels = viper.GetBool("apply_labels")
		runPostWhenClean = viper.GetBool("post_comment_when_clean")
	},
}
