// Copyright (c) Kusari <https://www.kusari.dev/>
// SPDX-License-Identifier: MIT

package api

const (
	SeverityBreaking = "breaking"
	SeverityMinor    = "minor"
	SeverityPatch    = "patch"
)

// DriftReport is the precomputed semantic diff produced earlier in the pipeline
type DriftReport struct {
	Base    string        `json:"base"`
	Head    string        `json:"head"`
	Changes []DriftChange `json:"changes"`
}

type DriftChange struct {
	Path        string `json:"path"`
	Kind        string `json:"kind"` // added, removed, modified
	Severity    string `json:"severity"`
	Description string `json:"description"`
}
