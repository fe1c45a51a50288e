// Copyright (c) Kusari <https://www.kusari.dev/>
// SPDX-License-Identifier: MIT

package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/apx-project/semantic-drift-action/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var guardReport = &api.AggregateReport{
	TotalPacks: 1,
	MissingEnv: 1,
	Packs: []api.PackGuardSummary{
		{ID: "demo", Version: "1.0.0", EnvCount: 1, MissingEnv: 1, Path: "packs/demo.yaml"},
	},
}

func TestWriteGuardReport(t *testing.T) {
	tests := []struct {
		name           string
		format         string
		expectError    string
		expectContains []string
	}{
		{
			name:           "json",
			format:         "json",
			expectContains: []string{`"total_packs": 1`, `"missing_env": 1`, `"id": "demo"`},
		},
		{
			name:           "sarif",
			format:         "sarif",
			expectContains: []string{`"version": "2.1.0"`, `"ruleId": "config-guard-missing-env"`, `"uri": "packs/demo.yaml"`},
		},
		{
			name:           "markdown",
			format:         "markdown",
			expectContains: []string{"## Config Guard", "- `demo@1.0.0`: 1/1 env missing, 0/0 secrets stale"},
		},
		{
			name:        "unknown format",
			format:      "xml",
			expectError: `unknown format "xml"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := writeGuardReport(&out, guardReport, tt.format, true)

			if tt.expectError != "" {
				require.ErrorContains(t, err, tt.expectError)
				return
			}

			require.NoError(t, err)
			for _, expected := range tt.expectContains {
				assert.Contains(t, out.String(), expected)
			}
		})
	}
}

func TestWriteGuardReportEmptyJSON(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, writeGuardReport(&out, &api.AggregateReport{Packs: []api.PackGuardSummary{}}, "json", false))

	var decoded api.AggregateReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, 0, decoded.TotalPacks)
	assert.Empty(t, decoded.Packs)
}
