// Copyright (c) Kusari <https://www.kusari.dev/>
// SPDX-License-Identifier: MIT

// Package configguard extracts environment and secret-rotation signals from
// config-guard pack specs.
//
// The specs are YAML, but only a handful of keys matter, so the files are
// read line by line and nesting is tracked from raw indentation. The scan is
// best effort: malformed lines are skipped and no syntax errors are reported.
package configguard

import "github.com/apx-project/semantic-drift-action/api"

// Summarize scans both roots and aggregates every config-guard spec found.
// It returns nil when no file qualified.
func Summarize(registryRoot, localRoot string) *api.AggregateReport {
	var summaries []api.PackGuardSummary
	for _, path := range FindCandidates(registryRoot, localRoot) {
		if s, ok := SummarizeFile(path); ok {
			summaries = append(summaries, *s)
		}
	}
	if len(summaries) == 0 {
		return nil
	}

	report := Aggregate(summaries)
	return &report
}
