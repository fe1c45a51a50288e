// Copyright (c) Kusari <https://www.kusari.dev/>
// SPDX-License-Identifier: MIT

package api

// PackGuardSummary is the per-file result of the config-guard extractor
type PackGuardSummary struct {
	ID           string `json:"id"`
	Version      string `json:"version"`
	Namespace    string `json:"namespace,omitempty"`   // empty when not declared
	Environment  string `json:"environment,omitempty"` // empty when not declared
	EnvCount     int    `json:"env_count"`
	MissingEnv   int    `json:"missing_env"`
	SecretsCount int    `json:"secrets_count"`
	StaleSecrets int    `json:"stale_secrets"`
	Path         string `json:"path"`
}

// PackIdentity is the (id, version) pair summaries are deduplicated on
type PackIdentity struct {
	ID      string
	Version string
}

// Key returns the identity used to deduplicate summaries
func (s PackGuardSummary) Key() PackIdentity {
	return PackIdentity{ID: s.ID, Version: s.Version}
}

// Label is the display form id@version
func (s PackGuardSummary) Label() string {
	return s.ID + "@" + s.Version
}

// Severity is the number of findings the pack contributes
func (s PackGuardSummary) Severity() int {
	return s.MissingEnv + s.StaleSecrets
}

// AggregateReport holds the deduplicated summaries of one scan
type AggregateReport struct {
	TotalPacks   int                `json:"total_packs"`
	MissingEnv   int                `json:"missing_env"`
	StaleSecrets int                `json:"stale_secrets"`
	Packs        []PackGuardSummary `json:"packs"`
}
