// Copyright (c) Kusari <https://www.kusari.dev/>
// SPDX-License-Identifier: MIT

package labels

import (
	"slices"

	"github.com/apx-project/semantic-drift-action/api"
	"github.com/apx-project/semantic-drift-action/pkg/report"
)

const DefaultPrefix = "semantic-drift"

// Derive returns the sorted labels for a drift report and a config-guard
// report. Either may be nil.
func Derive(prefix string, drift *api.DriftReport, guard *api.AggregateReport) []string {
	if prefix == "" {
		prefix = DefaultPrefix
	}

	var out []string
	c := report.Tally(drift)
	switch {
	case c.Breaking > 0:
		out = append(out, prefix+":breaking")
	case c.Minor > 0:
		out = append(out, prefix+":minor")
	case c.Patch > 0:
		out = append(out, prefix+":patch")
	default:
		out = append(out, prefix+":none")
	}

	if guard != nil {
		if guard.MissingEnv > 0 {
			out = append(out, prefix+":missing-env")
		}
		if guard.StaleSecrets > 0 {
			out = append(out, prefix+":stale-secrets")
		}
	}

	slices.Sort(out)
	return slices.Compact(out)
}
