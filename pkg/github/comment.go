// Copyright (c) Kusari <https://www.kusari.dev/>
// SPDX-License-Identifier: MIT

package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/apx-project/semantic-drift-action/pkg/comment"
	"github.com/apx-project/semantic-drift-action/pkg/constants"
	urlBuilder "github.com/apx-project/semantic-drift-action/pkg/url"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// CommentOptions holds the configuration for posting a comment to GitHub
type CommentOptions struct {
	Owner         string
	Repo          string
	PRNumber      int
	GitHubURL     string
	Token         string
	ApplyLabels   bool
	PostWhenClean bool // Post the comment even when nothing was found
	Logger        *log.Logger
	Client        *http.Client
}

// issueComment represents a GitHub issue/PR comment
type issueComment struct {
	ID   int64  `json:"id"`
	Body string `json:"body"`
}

// client carries what every request needs
type client struct {
	http   *http.Client
	apiURL string
	token  string
	logger *log.Logger
}

// PostComment posts the drift report as a comment on a GitHub pull request
// and applies its labels. An existing bot comment is updated instead of
// creating a new one. Label failures are logged and do not fail the call.
func PostComment(ctx context.Context, data *comment.Data, opts CommentOptions) (*comment.CommentResult, error) {
	if data == nil {
		return &comment.CommentResult{
			Posted:  false,
			Message: "No report data available - skipping comment",
		}, nil
	}

	c := newClient(opts)
	hasIssues, issueCount := comment.CheckForIssues(data)
	postComment := hasIssues || opts.PostWhenClean
	applyLabels := opts.ApplyLabels && len(data.Labels) > 0

	if !postComment && !applyLabels {
		return &comment.CommentResult{
			Posted:      false,
			IssuesFound: 0,
			Message:     "No findings - skipping comment",
		}, nil
	}

	var (
		existingCommentID int64
		labelsApplied     int
	)

	g, ctx := errgroup.WithContext(ctx)
	if postComment {
		g.Go(func() error {
			id, err := c.upsertComment(ctx, opts, comment.FormatComment(data))
			existingCommentID = id
			return err
		})
	}
	if applyLabels {
		g.Go(func() error {
			if err := c.addLabels(ctx, opts, data.Labels); err != nil {
				c.logger.Warn("Could not apply labels", "pr", opts.PRNumber, "err", err)
				return nil
			}
			labelsApplied = len(data.Labels)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if !postComment {
		return &comment.CommentResult{
			Posted:        false,
			LabelsApplied: labelsApplied,
			Message:       fmt.Sprintf("No findings - skipping comment, applied %d label(s) to PR #%d", labelsApplied, opts.PRNumber),
		}, nil
	}

	action := "Posted"
	if existingCommentID > 0 {
		action = "Updated"
	}
	message := fmt.Sprintf("%s comment with %d issue(s) to PR #%d", action, issueCount, opts.PRNumber)
	if labelsApplied > 0 {
		message = fmt.Sprintf("%s comment with %d issue(s) and %d label(s) to PR #%d", action, issueCount, labelsApplied, opts.PRNumber)
	}

	return &comment.CommentResult{
		Posted:        true,
		IssuesFound:   issueCount,
		LabelsApplied: labelsApplied,
		Message:       message,
	}, nil
}

func newClient(opts CommentOptions) *client {
	// Determine API URL
	apiURL := opts.GitHubURL
	if apiURL == "" {
		apiURL = constants.DefaultGitHubAPIURL
	}

	httpClient := opts.Client
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &client{
		http:   httpClient,
		apiURL: strings.TrimSuffix(apiURL, "/"),
		token:  opts.Token,
		logger: logger,
	}
}

// upsertComment updates the existing bot comment or creates a new one.
// It returns the ID of the updated comment, or 0 when a new one was created.
func (c *client) upsertComment(ctx context.Context, opts CommentOptions, body string) (int64, error) {
	pr := strconv.Itoa(opts.PRNumber)

	existingCommentID, err := c.findExistingComment(ctx, opts)
	if err != nil {
		c.logger.Warn("Could not check for existing comments", "err", err)
	} else if existingCommentID > 0 {
		c.logger.Debug("Found existing summary comment", "id", existingCommentID)
	} else {
		c.logger.Debug("No existing summary comment found")
	}

	reqBody := map[string]string{"body": body}

	if existingCommentID > 0 {
		endpoint, err := urlBuilder.Build(c.apiURL, "repos", opts.Owner, opts.Repo, "issues", "comments", strconv.FormatInt(existingCommentID, 10))
		if err != nil {
			return 0, err
		}
		if err := c.do(ctx, http.MethodPatch, *endpoint, reqBody, nil); err != nil {
			return 0, fmt.Errorf("failed to update comment on GitHub: %w", err)
		}
		return existingCommentID, nil
	}

	endpoint, err := urlBuilder.Build(c.apiURL, "repos", opts.Owner, opts.Repo, "issues", pr, "comments")
	if err != nil {
		return 0, err
	}
	if err := c.do(ctx, http.MethodPost, *endpoint, reqBody, nil); err != nil {
		return 0, fmt.Errorf("failed to post comment to GitHub: %w", err)
	}
	return 0, nil
}

// findExistingComment finds an existing summary comment on the PR by its marker
func (c *client) findExistingComment(ctx context.Context, opts CommentOptions) (int64, error) {
	endpoint, err := urlBuilder.Build(c.apiURL, "repos", opts.Owner, opts.Repo, "issues", strconv.Itoa(opts.PRNumber), "comments")
	if err != nil {
		return 0, err
	}

	var comments []issueComment
	if err := c.do(ctx, http.MethodGet, *endpoint, nil, &comments); err != nil {
		return 0, err
	}

	c.logger.Debug("Searching comments for existing summary", "count", len(comments))
	for _, ic := range comments {
		if strings.Contains(ic.Body, comment.MarkerToken) {
			return ic.ID, nil
		}
	}

	return 0, nil
}

// addLabels adds labels to the PR, keeping any labels already present
func (c *client) addLabels(ctx context.Context, opts CommentOptions, labels []string) error {
	endpoint, err := urlBuilder.Build(c.apiURL, "repos", opts.Owner, opts.Repo, "issues", strconv.Itoa(opts.PRNumber), "labels")
	if err != nil {
		return err
	}

	reqBody := map[string][]string{"labels": labels}
	if err := c.do(ctx, http.MethodPost, *endpoint, reqBody, nil); err != nil {
		return fmt.Errorf("failed to add labels on GitHub: %w", err)
	}
	return nil
}

// do sends one API request. A non-nil reqBody is sent as JSON and a non-nil
// out receives the decoded response.
func (c *client) do(ctx context.Context, method, endpoint string, reqBody, out any) error {
	var body io.Reader
	if reqBody != nil {
		jsonBody, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GitHub API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// GetTokenFromEnv retrieves the GitHub token from environment variables
func GetTokenFromEnv() string {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		return token
	}
	return os.Getenv("GH_TOKEN")
}

// GetGitHubAPIURLFromEnv retrieves the GitHub API URL from environment
// Returns empty string if not set (will use default api.github.com)
func GetGitHubAPIURLFromEnv() string {
	return os.Getenv("GITHUB_API_URL")
}

// GetRunURLFromEnv builds a link to the current GitHub Actions run
func GetRunURLFromEnv() string {
	return urlBuilder.RunURL(os.Getenv("GITHUB_SERVER_URL"), os.Getenv("GITHUB_REPOSITORY"), os.Getenv("GITHUB_RUN_ID"))
}

// GetPRInfoFromEnv retrieves PR info from GitHub Actions environment variables
// Returns owner, repo, and PR number
func GetPRInfoFromEnv() (owner, repo string, prNumber int) {
	// GITHUB_REPOSITORY is in format "owner/repo"
	if repository := os.Getenv("GITHUB_REPOSITORY"); repository != "" {
		parts := strings.SplitN(repository, "/", 2)
		if len(parts) == 2 {
			owner = parts[0]
			repo = parts[1]
		}
	}

	// For pull request events, GITHUB_REF_NAME is "123/merge" for PR #123
	if refName := os.Getenv("GITHUB_REF_NAME"); refName != "" {
		first, _, _ := strings.Cut(refName, "/")
		if num, err := strconv.Atoi(first); err == nil {
			prNumber = num
		}
	}

	// Alternative: parse from GITHUB_REF which is "refs/pull/123/merge"
	if prNumber == 0 {
		ref := os.Getenv("GITHUB_REF")
		if rest, ok := strings.CutPrefix(ref, "refs/pull/"); ok {
			first, _, _ := strings.Cut(rest, "/")
			if num, err := strconv.Atoi(first); err == nil {
				prNumber = num
			}
		}
	}

	return owner, repo, prNumber
}
