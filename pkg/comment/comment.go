// Copyright (c) Kusari <https://www.kusari.dev/>
// SPDX-License-Identifier: MIT

package comment

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/apx-project/semantic-drift-action/api"
	"github.com/apx-project/semantic-drift-action/pkg/report"
)

//go:embed templates/driftComment.tmpl
var templateFS embed.FS

const (
	// MarkerToken identifies a comment previously posted by the bot
	MarkerToken = "SEMANTIC_DRIFT_COMMENT"

	marker = "<!-- " + MarkerToken + " -->"
)

// Data is everything a drift comment reports on
type Data struct {
	Drift  *api.DriftReport
	Guard  *api.AggregateReport
	Labels []string
	RunURL string // Link to the CI run that produced the report
}

// driftCommentData holds the data for the drift comment template
type driftCommentData struct {
	Counts     report.Counts
	Changes    []api.DriftChange
	Guard      *api.AggregateReport
	GuardLines []string
	Labels     []string
	RunURL     string
	Marker     string
}

// CommentResult holds the result of posting a comment
type CommentResult struct {
	Posted        bool
	IssuesFound   int
	LabelsApplied int
	Message       string
}

// CheckForIssues determines if there are issues to report
func CheckForIssues(data *Data) (bool, int) {
	if data == nil {
		return false, 0
	}

	issueCount := report.Tally(data.Drift).Total()
	if data.Guard != nil {
		issueCount += data.Guard.MissingEnv + data.Guard.StaleSecrets
	}
	return issueCount > 0, issueCount
}

// FormatComment creates a markdown comment from the report data using the shared template
func FormatComment(data *Data) string {
	if data == nil {
		data = &Data{}
	}

	tmplContent, err := templateFS.ReadFile("templates/driftComment.tmpl")
	if err != nil {
		// Fallback to basic format if template fails
		return FormatCommentFallback(data)
	}

	tmpl, err := template.New("driftComment").
		Funcs(template.FuncMap{"sanitize": SanitizePath}).
		Parse(string(tmplContent))
	if err != nil {
		return FormatCommentFallback(data)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, newTemplateData(data)); err != nil {
		return FormatCommentFallback(data)
	}

	return buf.String()
}

func newTemplateData(data *Data) driftCommentData {
	td := driftCommentData{
		Counts: report.Tally(data.Drift),
		Guard:  data.Guard,
		Labels: data.Labels,
		RunURL: data.RunURL,
		Marker: marker,
	}
	if data.Drift != nil {
		td.Changes = data.Drift.Changes
	}
	if data.Guard != nil {
		for _, p := range data.Guard.Packs {
			td.GuardLines = append(td.GuardLines, PackLine(p))
		}
	}
	return td
}

// FormatCommentFallback provides a basic format if template rendering fails
func FormatCommentFallback(data *Data) string {
	if data == nil {
		data = &Data{}
	}

	var sb strings.Builder

	sb.WriteString("#### Semantic Drift Report\n\n")

	counts := report.Tally(data.Drift)
	if counts.Total() == 0 {
		sb.WriteString("**:white_check_mark: No Semantic Drift Detected**\n\n")
	} else {
		sb.WriteString("**:warning: Semantic Drift Detected**\n")
		sb.WriteString(fmt.Sprintf("_%d change(s): %d breaking, %d minor, %d patch._\n\n",
			counts.Total(), counts.Breaking, counts.Minor, counts.Patch))
		for _, c := range data.Drift.Changes {
			sb.WriteString(fmt.Sprintf("- **%s** `%s` (%s): %s\n", c.Severity, SanitizePath(c.Path), c.Kind, c.Description))
		}
		sb.WriteString("\n")
	}

	if data.Guard != nil {
		sb.WriteString(FormatGuardSection(data.Guard))
		sb.WriteString("\n")
	}

	if len(data.Labels) > 0 {
		sb.WriteString("**Labels:** " + strings.Join(data.Labels, ", ") + "\n\n")
	}

	if data.RunURL != "" {
		sb.WriteString(fmt.Sprintf("> **Note:** [View the CI run](%s) for the full report.\n\n", data.RunURL))
	}

	sb.WriteString("--------\n\n")
	sb.WriteString(marker + "\n")

	return sb.String()
}

// FormatGuardSection renders the config-guard totals and one bullet per pack
func FormatGuardSection(guard *api.AggregateReport) string {
	var sb strings.Builder

	sb.WriteString("## Config Guard\n\n")
	sb.WriteString(fmt.Sprintf("_%d pack(s) checked: %d missing env var(s), %d stale secret(s)._\n\n",
		guard.TotalPacks, guard.MissingEnv, guard.StaleSecrets))
	for _, p := range guard.Packs {
		sb.WriteString(PackLine(p) + "\n")
	}

	return sb.String()
}

// PackLine formats one pack summary as a markdown bullet
func PackLine(p api.PackGuardSummary) string {
	var scope []string
	if p.Namespace != "" {
		scope = append(scope, p.Namespace)
	}
	if p.Environment != "" {
		scope = append(scope, p.Environment)
	}

	line := fmt.Sprintf("- `%s`", p.Label())
	if len(scope) > 0 {
		line += " (" + strings.Join(scope, "/") + ")"
	}
	return line + fmt.Sprintf(": %d/%d env missing, %d/%d secrets stale",
		p.MissingEnv, p.EnvCount, p.StaleSecrets, p.SecretsCount)
}

// SanitizePath ensures the path is in the correct format for APIs
func SanitizePath(path string) string {
	// Remove leading ./ if present
	path = strings.TrimPrefix(path, "./")
	// Remove leading / if present
	path = strings.TrimPrefix(path, "/")
	return path
}
