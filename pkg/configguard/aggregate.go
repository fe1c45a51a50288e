// Copyright (c) Kusari <https://www.kusari.dev/>
// SPDX-License-Identifier: MIT

package configguard

import (
	"cmp"
	"slices"

	"github.com/apx-project/semantic-drift-action/api"
)

// Aggregate deduplicates summaries by (id, version), keeping the first seen,
// and orders the survivors by descending severity. Ties keep scan order.
func Aggregate(summaries []api.PackGuardSummary) api.AggregateReport {
	seen := make(map[api.PackIdentity]struct{}, len(summaries))
	packs := make([]api.PackGuardSummary, 0, len(summaries))
	for _, s := range summaries {
		if _, ok := seen[s.Key()]; ok {
			continue
		}
		seen[s.Key()] = struct{}{}
		packs = append(packs, s)
	}

	slices.SortStableFunc(packs, func(a, b api.PackGuardSummary) int {
		return cmp.Compare(b.Severity(), a.Severity())
	})

	report := api.AggregateReport{
		TotalPacks: len(packs),
		Packs:      packs,
	}
	for _, p := range packs {
		report.MissingEnv += p.MissingEnv
		report.StaleSecrets += p.StaleSecrets
	}
	return report
}
