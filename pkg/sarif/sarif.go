package sarif

import (
	"encoding/json"
	"fmt"

	"github.com/apx-project/semantic-drift-action/api"
	"github.com/apx-project/semantic-drift-action/pkg/comment"
)

// SARIF 2.1.0 structures
type SarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []SarifRun `json:"runs"`
}

type SarifRun struct {
	Tool    SarifTool     `json:"tool"`
	Results []SarifResult `json:"results"`
}

type SarifTool struct {
	Driver SarifDriver `json:"driver"`
}

type SarifDriver struct {
	Name           string      `json:"name"`
	InformationUri string      `json:"informationUri,omitempty"`
	Version        string      `json:"version,omitempty"`
	Rules          []SarifRule `json:"rules,omitempty"`
}

type SarifRule struct {
	ID               string                        `json:"id"`
	ShortDescription SarifMultiformatMessageString `json:"shortDescription,omitempty"`
	FullDescription  SarifMultiformatMessageString `json:"fullDescription,omitempty"`
	Help             SarifMultiformatMessageString `json:"help,omitempty"`
	Properties       map[string]interface{}        `json:"properties,omitempty"`
}

type SarifResult struct {
	RuleID     string                 `json:"ruleId"`
	Level      string                 `json:"level,omitempty"` // "error", "warning", "note", "none"
	Message    SarifMessage           `json:"message"`
	Locations  []SarifLocation        `json:"locations,omitempty"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

type SarifMessage struct {
	Text     string `json:"text"`
	Markdown string `json:"markdown,omitempty"`
}

type SarifMultiformatMessageString struct {
	Text     string `json:"text"`
	Markdown string `json:"markdown,omitempty"`
}

type SarifLocation struct {
	PhysicalLocation SarifPhysicalLocation `json:"physicalLocation"`
}

type SarifPhysicalLocation struct {
	ArtifactLocation SarifArtifactLocation `json:"artifactLocation"`
	Region           SarifRegion           `json:"region,omitempty"`
}

type SarifArtifactLocation struct {
	URI       string `json:"uri"`
	URIBaseID string `json:"uriBaseId,omitempty"`
}

type SarifRegion struct {
	StartLine   int                   `json:"startLine,omitempty"`
	StartColumn int                   `json:"startColumn,omitempty"`
	EndLine     int                   `json:"endLine,omitempty"`
	EndColumn   int                   `json:"endColumn,omitempty"`
	Snippet     *SarifArtifactContent `json:"snippet,omitempty"`
}

type SarifArtifactContent struct {
	Text string `json:"text,omitempty"`
}

const (
	RuleMissingEnv  = "config-guard-missing-env"
	RuleStaleSecret = "config-guard-stale-secret"

	sarifSchema = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json"
)

// ConvertGuardReport converts a config guard aggregate to SARIF format.
// Each pack with missing environment variables or stale secrets becomes one
// result per rule, located at the pack's source file.
func ConvertGuardReport(report *api.AggregateReport) (string, error) {
	sarifLog := SarifLog{
		Version: "2.1.0",
		Schema:  sarifSchema,
		Runs: []SarifRun{
			{
				Tool: SarifTool{
					Driver: SarifDriver{
						Name:           "Config Guard",
						InformationUri: "https://github.com/apx-project/semantic-drift-action",
						Rules: []SarifRule{
							{
								ID: RuleMissingEnv,
								ShortDescription: SarifMultiformatMessageString{
									Text: "Missing Environment Variable",
								},
								FullDescription: SarifMultiformatMessageString{
									Text: "A pack declares required environment variables that are marked as not present",
								},
							},
							{
								ID: RuleStaleSecret,
								ShortDescription: SarifMultiformatMessageString{
									Text: "Stale Secret",
								},
								FullDescription: SarifMultiformatMessageString{
									Text: "A pack declares secret rotations that are older than their maximum age",
								},
							},
						},
					},
				},
				Results: []SarifResult{},
			},
		},
	}

	if report != nil {
		for _, p := range report.Packs {
			if p.MissingEnv > 0 {
				sarifLog.Runs[0].Results = append(sarifLog.Runs[0].Results, packResult(p, RuleMissingEnv, "error",
					fmt.Sprintf("%s has %d of %d required environment variable(s) missing", p.Label(), p.MissingEnv, p.EnvCount),
					map[string]interface{}{
						"env_count":   p.EnvCount,
						"missing_env": p.MissingEnv,
					}))
			}
			if p.StaleSecrets > 0 {
				sarifLog.Runs[0].Results = append(sarifLog.Runs[0].Results, packResult(p, RuleStaleSecret, "warning",
					fmt.Sprintf("%s has %d of %d secret(s) past their rotation window", p.Label(), p.StaleSecrets, p.SecretsCount),
					map[string]interface{}{
						"secrets_count": p.SecretsCount,
						"stale_secrets": p.StaleSecrets,
					}))
			}
		}
	}

	// Convert to JSON
	jsonBytes, err := json.MarshalIndent(sarifLog, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal SARIF: %w", err)
	}

	return string(jsonBytes), nil
}

// packResult builds one result for a pack, carrying its identity in the properties
func packResult(p api.PackGuardSummary, ruleID, level, text string, props map[string]interface{}) SarifResult {
	props["pack_id"] = p.ID
	props["pack_version"] = p.Version
	if p.Namespace != "" {
		props["namespace"] = p.Namespace
	}
	if p.Environment != "" {
		props["environment"] = p.Environment
	}

	result := SarifResult{
		RuleID:     ruleID,
		Level:      level,
		Message:    SarifMessage{Text: text},
		Properties: props,
	}
	if uri := comment.SanitizePath(p.Path); uri != "" {
		result.Locations = []SarifLocation{
			{
				PhysicalLocation: SarifPhysicalLocation{
					ArtifactLocation: SarifArtifactLocation{URI: uri},
					Region:           SarifRegion{StartLine: 1},
				},
			},
		}
	}
	return result
}
