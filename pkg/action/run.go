// Copyright (c) Kusari <https://www.kusari.dev/>
// SPDX-License-Identifier: MIT

package action

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/apx-project/semantic-drift-action/pkg/comment"
	"github.com/apx-project/semantic-drift-action/pkg/configguard"
	"github.com/apx-project/semantic-drift-action/pkg/github"
	"github.com/apx-project/semantic-drift-action/pkg/gitlab"
	"github.com/apx-project/semantic-drift-action/pkg/labels"
	"github.com/apx-project/semantic-drift-action/pkg/report"
	"github.com/briandowns/spinner"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/log"
)

// Tracker providers a report can be posted to
const (
	ProviderAuto   = "auto"
	ProviderGitHub = "github"
	ProviderGitLab = "gitlab"
	ProviderNone   = "none"
)

// ErrUnknownProvider is returned for a provider name Run does not know
var ErrUnknownProvider = errors.New("unknown provider")

// Options configures one run of the drift bot
type Options struct {
	ReportPath    string
	RegistryRoot  string
	LocalRoot     string
	LabelPrefix   string
	Provider      string
	DryRun        bool // Render the comment to Stdout instead of posting it
	Raw           bool // Print markdown without terminal styling
	ApplyLabels   bool
	PostWhenClean bool
	RunURL        string

	GitHub github.CommentOptions
	GitLab gitlab.CommentOptions

	Logger *log.Logger
	Stdout io.Writer
}

// DetectProvider picks the tracker from the CI environment
func DetectProvider() string {
	switch {
	case os.Getenv("GITHUB_ACTIONS") == "true":
		return ProviderGitHub
	case os.Getenv("GITLAB_CI") == "true":
		return ProviderGitLab
	default:
		return ProviderNone
	}
}

// BuildData loads the drift report, summarizes the config guard packs and
// derives the labels. A missing drift report is not an error.
func BuildData(opts Options) (*comment.Data, error) {
	logger := loggerOrDefault(opts.Logger)

	drift, err := report.Load(opts.ReportPath)
	if err != nil {
		if !errors.Is(err, report.ErrNoReport) {
			return nil, err
		}
		logger.Warn("No drift report found, continuing with config guard only", "path", opts.ReportPath)
	}

	guard := configguard.Summarize(opts.RegistryRoot, opts.LocalRoot)
	if guard == nil {
		logger.Debug("No config guard packs found", "registry", opts.RegistryRoot, "local", opts.LocalRoot)
	} else {
		logger.Debug("Summarized config guard packs", "packs", guard.TotalPacks, "missing_env", guard.MissingEnv, "stale_secrets", guard.StaleSecrets)
	}

	return &comment.Data{
		Drift:  drift,
		Guard:  guard,
		Labels: labels.Derive(opts.LabelPrefix, drift, guard),
		RunURL: opts.RunURL,
	}, nil
}

// Run builds the report data and either renders it or posts it to the
// configured tracker.
func Run(ctx context.Context, opts Options) error {
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	provider := opts.Provider
	if provider == "" || provider == ProviderAuto {
		provider = DetectProvider()
	}
	switch provider {
	case ProviderGitHub, ProviderGitLab, ProviderNone:
	default:
		return fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}

	data, err := BuildData(opts)
	if err != nil {
		return err
	}

	if opts.DryRun || provider == ProviderNone {
		return Render(stdout, comment.FormatComment(data), opts.Raw)
	}

	result, err := postWithSpinner(ctx, provider, data, opts)
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stderr, result.Message)
	return nil
}

func postWithSpinner(ctx context.Context, provider string, data *comment.Data, opts Options) (*comment.CommentResult, error) {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Writer = os.Stderr // Send spinner to stderr
	s.Prefix = "Posting drift report... "
	s.Start()

	// Ensure spinner stops no matter what
	defer s.Stop()

	return post(ctx, provider, data, opts)
}

func post(ctx context.Context, provider string, data *comment.Data, opts Options) (*comment.CommentResult, error) {
	logger := loggerOrDefault(opts.Logger)

	switch provider {
	case ProviderGitHub:
		gh := opts.GitHub
		if gh.Owner == "" || gh.Repo == "" || gh.PRNumber == 0 {
			return nil, fmt.Errorf("missing pull request context (owner %q, repo %q, number %d)", gh.Owner, gh.Repo, gh.PRNumber)
		}
		gh.ApplyLabels = opts.ApplyLabels
		gh.PostWhenClean = opts.PostWhenClean
		gh.Logger = logger
		return github.PostComment(ctx, data, gh)
	default:
		gl := opts.GitLab
		if gl.ProjectID == "" || gl.MergeReqIID == "" {
			return nil, fmt.Errorf("missing merge request context (project %q, iid %q)", gl.ProjectID, gl.MergeReqIID)
		}
		gl.ApplyLabels = opts.ApplyLabels
		gl.PostWhenClean = opts.PostWhenClean
		gl.Logger = logger
		return gitlab.PostComment(ctx, data, gl)
	}
}

// Render writes markdown to w, styled for the terminal unless raw is set.
// Styling failures fall back to the raw markdown.
func Render(w io.Writer, markdown string, raw bool) error {
	if raw {
		_, err := fmt.Fprint(w, markdown)
		return err
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		_, err = fmt.Fprint(w, markdown)
		return err
	}

	rendered, err := r.Render(markdown)
	if err != nil {
		_, err = fmt.Fprint(w, markdown)
		return err
	}

	_, err = fmt.Fprint(w, rendered)
	return err
}

func loggerOrDefault(logger *log.Logger) *log.Logger {
	if logger == nil {
		return log.Default()
	}
	return logger
}
