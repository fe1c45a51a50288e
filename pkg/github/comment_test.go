// Copyright (c) Kusari <https://www.kusari.dev/>
// SPDX-License-Identifier: MIT

package github

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/apx-project/semantic-drift-action/api"
	"github.com/apx-project/semantic-drift-action/pkg/comment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var findings = &comment.Data{
	Drift: &api.DriftReport{Changes: []api.DriftChange{
		{Path: "api/user.proto", Kind: "removed", Severity: api.SeverityBreaking},
	}},
	Labels: []string{"semantic-drift:breaking"},
}

func TestPostComment(t *testing.T) {
	tests := []struct {
		name          string
		data          *comment.Data
		applyLabels   bool
		postWhenClean bool
		setupServer   func() *httptest.Server
		expectPosted  bool
		expectError   bool
		expectMessage string
		expectIssues  int
		expectLabels  int
	}{
		{
			name: "nil data returns early",
			data: nil,
			setupServer: func() *httptest.Server {
				return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					t.Fatal("Server should not be called for nil data")
				}))
			},
			expectMessage: "No report data available - skipping comment",
		},
		{
			name: "no findings and no labels",
			data: &comment.Data{Labels: []string{"semantic-drift:none"}},
			setupServer: func() *httptest.Server {
				return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					t.Fatal("Server should not be called when no findings")
				}))
			},
			expectMessage: "No findings - skipping comment",
		},
		{
			name:        "no findings still applies labels",
			data:        &comment.Data{Labels: []string{"semantic-drift:none"}},
			applyLabels: true,
			setupServer: func() *httptest.Server {
				return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					switch {
					case r.Method == "POST" && r.URL.Path == "/repos/owner/repo/issues/1/labels":
						var body map[string][]string
						assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
						assert.Equal(t, []string{"semantic-drift:none"}, body["labels"])
						w.WriteHeader(http.StatusOK)
					default:
						t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
						w.WriteHeader(http.StatusNotFound)
					}
				}))
			},
			expectMessage: "No findings - skipping comment, applied 1 label(s) to PR #1",
			expectLabels:  1,
		},
		{
			name: "creates new comment when no existing",
			data: findings,
			setupServer: func() *httptest.Server {
				return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					switch {
					case r.Method == "GET" && r.URL.Path == "/repos/owner/repo/issues/1/comments":
						w.Header().Set("Content-Type", "application/json")
						_ = json.NewEncoder(w).Encode([]issueComment{})
					case r.Method == "POST" && r.URL.Path == "/repos/owner/repo/issues/1/comments":
						assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
						var body map[string]string
						assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
						assert.Contains(t, body["body"], comment.MarkerToken)
						w.WriteHeader(http.StatusCreated)
					default:
						t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
						w.WriteHeader(http.StatusNotFound)
					}
				}))
			},
			expectPosted:  true,
			expectMessage: "Posted comment with 1 issue(s) to PR #1",
			expectIssues:  1,
		},
		{
			name:        "updates existing comment and applies labels",
			data:        findings,
			applyLabels: true,
			setupServer: func() *httptest.Server {
				return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					switch {
					case r.Method == "GET" && r.URL.Path == "/repos/owner/repo/issues/1/comments":
						w.Header().Set("Content-Type", "application/json")
						_ = json.NewEncoder(w).Encode([]issueComment{
							{ID: 123, Body: "Some other comment"},
							{ID: 456, Body: "Semantic Drift Report\n<!-- SEMANTIC_DRIFT_COMMENT -->"},
						})
					case r.Method == "PATCH" && r.URL.Path == "/repos/owner/repo/issues/comments/456":
						w.WriteHeader(http.StatusOK)
					case r.Method == "POST" && r.URL.Path == "/repos/owner/repo/issues/1/labels":
						w.WriteHeader(http.StatusOK)
					default:
						t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
						w.WriteHeader(http.StatusNotFound)
					}
				}))
			},
			expectPosted:  true,
			expectMessage: "Updated comment with 1 issue(s) and 1 label(s) to PR #1",
			expectIssues:  1,
			expectLabels:  1,
		},
		{
			name:        "label failure does not fail the comment",
			data:        findings,
			applyLabels: true,
			setupServer: func() *httptest.Server {
				return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					switch {
					case r.Method == "GET" && r.URL.Path == "/repos/owner/repo/issues/1/comments":
						_ = json.NewEncoder(w).Encode([]issueComment{})
					case r.Method == "POST" && r.URL.Path == "/repos/owner/repo/issues/1/comments":
						w.WriteHeader(http.StatusCreated)
					case r.Method == "POST" && r.URL.Path == "/repos/owner/repo/issues/1/labels":
						w.WriteHeader(http.StatusForbidden)
					default:
						t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
						w.WriteHeader(http.StatusNotFound)
					}
				}))
			},
			expectPosted:  true,
			expectMessage: "Posted comment with 1 issue(s) to PR #1",
			expectIssues:  1,
		},
		{
			name:          "clean report posted when requested",
			data:          &comment.Data{},
			postWhenClean: true,
			setupServer: func() *httptest.Server {
				return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					switch {
					case r.Method == "GET" && r.URL.Path == "/repos/owner/repo/issues/1/comments":
						_ = json.NewEncoder(w).Encode([]issueComment{})
					case r.Method == "POST" && r.URL.Path == "/repos/owner/repo/issues/1/comments":
						w.WriteHeader(http.StatusCreated)
					default:
						t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
						w.WriteHeader(http.StatusNotFound)
					}
				}))
			},
			expectPosted:  true,
			expectMessage: "Posted comment with 0 issue(s) to PR #1",
		},
		{
			name: "post failure returns error",
			data: findings,
			setupServer: func() *httptest.Server {
				return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					switch {
					case r.Method == "GET":
						_ = json.NewEncoder(w).Encode([]issueComment{})
					default:
						w.WriteHeader(http.StatusInternalServerError)
						_, _ = w.Write([]byte("boom"))
					}
				}))
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := tt.setupServer()
			defer server.Close()

			opts := CommentOptions{
				Owner:         "owner",
				Repo:          "repo",
				PRNumber:      1,
				GitHubURL:     server.URL,
				Token:         "test-token",
				ApplyLabels:   tt.applyLabels,
				PostWhenClean: tt.postWhenClean,
			}

			result, err := PostComment(context.Background(), tt.data, opts)

			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "failed to post comment to GitHub")
				return
			}

			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Equal(t, tt.expectPosted, result.Posted)
			assert.Equal(t, tt.expectMessage, result.Message)
			assert.Equal(t, tt.expectIssues, result.IssuesFound)
			assert.Equal(t, tt.expectLabels, result.LabelsApplied)
		})
	}
}

func TestPostCommentListFailureCreatesComment(t *testing.T) {
	var posts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case "GET":
			w.WriteHeader(http.StatusUnauthorized)
		case "POST":
			posts.Add(1)
			w.WriteHeader(http.StatusCreated)
		default:
			t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	result, err := PostComment(context.Background(), findings, CommentOptions{
		Owner: "owner", Repo: "repo", PRNumber: 9, GitHubURL: server.URL + "/", Token: "t",
	})
	require.NoError(t, err)
	assert.True(t, result.Posted)
	assert.Equal(t, int32(1), posts.Load())
}

func TestGetTokenFromEnv(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("GH_TOKEN", "")
	assert.Equal(t, "", GetTokenFromEnv())

	t.Setenv("GH_TOKEN", "gh-token")
	assert.Equal(t, "gh-token", GetTokenFromEnv())

	t.Setenv("GITHUB_TOKEN", "github-token")
	assert.Equal(t, "github-token", GetTokenFromEnv())
}

func TestGetPRInfoFromEnv(t *testing.T) {
	tests := []struct {
		name        string
		repository  string
		refName     string
		ref         string
		expectOwner string
		expectRepo  string
		expectPR    int
	}{
		{
			name:        "from ref name",
			repository:  "owner/repo",
			refName:     "42/merge",
			expectOwner: "owner",
			expectRepo:  "repo",
			expectPR:    42,
		},
		{
			name:        "from ref",
			repository:  "owner/repo",
			refName:     "main",
			ref:         "refs/pull/7/merge",
			expectOwner: "owner",
			expectRepo:  "repo",
			expectPR:    7,
		},
		{
			name:       "no pull request",
			repository: "bad",
			refName:    "main",
			ref:        "refs/heads/main",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GITHUB_REPOSITORY", tt.repository)
			t.Setenv("GITHUB_REF_NAME", tt.refName)
			t.Setenv("GITHUB_REF", tt.ref)

			owner, repo, pr := GetPRInfoFromEnv()
			assert.Equal(t, tt.expectOwner, owner)
			assert.Equal(t, tt.expectRepo, repo)
			assert.Equal(t, tt.expectPR, pr)
		})
	}
}

func TestGetRunURLFromEnv(t *testing.T) {
	t.Setenv("GITHUB_SERVER_URL", "https://github.com")
	t.Setenv("GITHUB_REPOSITORY", "owner/repo")
	t.Setenv("GITHUB_RUN_ID", "99")
	assert.Equal(t, "https://github.com/owner/repo/actions/runs/99", GetRunURLFromEnv())

	t.Setenv("GITHUB_RUN_ID", "")
	assert.Equal(t, "", GetRunURLFromEnv())
}
