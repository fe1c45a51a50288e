// Copyright (c) Kusari <https://www.kusari.dev/>
// SPDX-License-Identifier: MIT

package gitlab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/apx-project/semantic-drift-action/pkg/comment"
	"github.com/apx-project/semantic-drift-action/pkg/constants"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// CommentOptions holds the configuration for posting a comment to GitLab
type CommentOptions struct {
	ProjectID     string
	MergeReqIID   string
	GitLabURL     string
	Token         string
	ApplyLabels   bool
	PostWhenClean bool // Post the note even when nothing was found
	Logger        *log.Logger
	Client        *http.Client
}

// mrNote represents a GitLab merge request note
type mrNote struct {
	ID   int    `json:"id"`
	Body string `json:"body"`
}

// noteRequest is the request body for GitLab's notes API
type noteRequest struct {
	Body string `json:"body"`
}

// labelsRequest adds labels to a merge request without removing others
type labelsRequest struct {
	AddLabels string `json:"add_labels"`
}

// PostComment posts the drift report as a note on a GitLab merge request and
// applies its labels. An existing bot note is updated instead of creating a
// new one. Label failures are logged and do not fail the call.
func PostComment(ctx context.Context, data *comment.Data, opts CommentOptions) (*comment.CommentResult, error) {
	if data == nil {
		return &comment.CommentResult{
			Posted:  false,
			Message: "No report data available - skipping comment",
		}, nil
	}

	hasIssues, issueCount := comment.CheckForIssues(data)
	postNote := hasIssues || opts.PostWhenClean
	applyLabels := opts.ApplyLabels && len(data.Labels) > 0

	if !postNote && !applyLabels {
		return &comment.CommentResult{
			Posted:      false,
			IssuesFound: 0,
			Message:     "No findings - skipping comment",
		}, nil
	}

	// Determine API URL
	apiURL := opts.GitLabURL
	if apiURL == "" {
		apiURL = constants.DefaultGitLabAPIURL
	}
	apiURL = strings.TrimSuffix(apiURL, "/")
	mrURL := fmt.Sprintf("%s/projects/%s/merge_requests/%s", apiURL, url.PathEscape(opts.ProjectID), url.PathEscape(opts.MergeReqIID))

	httpClient := opts.Client
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	var (
		existingNoteID int
		labelsApplied  int
	)

	g, ctx := errgroup.WithContext(ctx)
	if postNote {
		g.Go(func() error {
			body := comment.FormatComment(data)

			id, err := findExistingNote(ctx, httpClient, mrURL, opts.Token)
			if err != nil {
				logger.Warn("Could not check for existing notes", "err", err)
			}
			existingNoteID = id

			if id > 0 {
				logger.Debug("Updating existing summary note", "id", id)
				if err := send(ctx, httpClient, http.MethodPut, fmt.Sprintf("%s/notes/%d", mrURL, id), opts.Token, noteRequest{Body: body}, nil); err != nil {
					return fmt.Errorf("failed to update comment on GitLab: %w", err)
				}
				return nil
			}

			logger.Debug("Posting new summary note")
			if err := send(ctx, httpClient, http.MethodPost, mrURL+"/notes", opts.Token, noteRequest{Body: body}, nil); err != nil {
				return fmt.Errorf("failed to post comment to GitLab: %w", err)
			}
			return nil
		})
	}
	if applyLabels {
		g.Go(func() error {
			req := labelsRequest{AddLabels: strings.Join(data.Labels, ",")}
			if err := send(ctx, httpClient, http.MethodPut, mrURL, opts.Token, req, nil); err != nil {
				logger.Warn("Could not apply labels", "mr", opts.MergeReqIID, "err", err)
				return nil
			}
			labelsApplied = len(data.Labels)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if !postNote {
		return &comment.CommentResult{
			Posted:        false,
			LabelsApplied: labelsApplied,
			Message:       fmt.Sprintf("No findings - skipping comment, applied %d label(s) to MR !%s", labelsApplied, opts.MergeReqIID),
		}, nil
	}

	action := "Posted"
	if existingNoteID > 0 {
		action = "Updated"
	}
	message := fmt.Sprintf("%s comment with %d issue(s) to MR !%s", action, issueCount, opts.MergeReqIID)
	if labelsApplied > 0 {
		message = fmt.Sprintf("%s comment with %d issue(s) and %d label(s) to MR !%s", action, issueCount, labelsApplied, opts.MergeReqIID)
	}

	return &comment.CommentResult{
		Posted:        true,
		IssuesFound:   issueCount,
		LabelsApplied: labelsApplied,
		Message:       message,
	}, nil
}

// findExistingNote finds an existing summary note on the MR by its marker
func findExistingNote(ctx context.Context, client *http.Client, mrURL, token string) (int, error) {
	var notes []mrNote
	if err := send(ctx, client, http.MethodGet, mrURL+"/notes", token, nil, &notes); err != nil {
		return 0, err
	}

	for _, note := range notes {
		if strings.Contains(note.Body, comment.MarkerToken) {
			return note.ID, nil
		}
	}
	return 0, nil
}

// send performs one GitLab API request
func send(ctx context.Context, client *http.Client, method, endpoint, token string, reqBody, out any) error {
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

	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("PRIVATE-TOKEN", token)

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GitLab API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// GetTokenFromEnv retrieves the GitLab token from environment variables
// It checks GITLAB_TOKEN first, then falls back to CI_JOB_TOKEN
func GetTokenFromEnv() string {
	if token := os.Getenv("GITLAB_TOKEN"); token != "" {
		return token
	}
	return os.Getenv("CI_JOB_TOKEN")
}

// GetGitLabAPIURLFromEnv retrieves the GitLab API URL from environment
// Returns empty string if not set (will use default gitlab.com)
func GetGitLabAPIURLFromEnv() string {
	// Check for explicit API URL
	if apiURL := os.Getenv("GITLAB_API_URL"); apiURL != "" {
		return apiURL
	}
	// Check for CI_SERVER_URL and construct API URL
	if serverURL := os.Getenv("CI_SERVER_URL"); serverURL != "" {
		return strings.TrimSuffix(serverURL, "/") + "/api/v4"
	}
	return ""
}

// GetMRInfoFromEnv retrieves MR info from GitLab CI environment variables
func GetMRInfoFromEnv() (projectID, mrIID string) {
	return os.Getenv("CI_PROJECT_ID"), os.Getenv("CI_MERGE_REQUEST_IID")
}

// GetPipelineURLFromEnv returns the link to the current pipeline
func GetPipelineURLFromEnv() string {
	return os.Getenv("CI_PIPELINE_URL")
}
