// Copyright (c) Kusari <https://www.kusari.dev/>
// SPDX-License-Identifier: MIT

package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/apx-project/semantic-drift-action/api"
)

// ErrNoReport is returned when the drift report file does not exist
var ErrNoReport = errors.New("drift report not found")

// Counts tallies drift changes by severity
type Counts struct {
	Breaking int
	Minor    int
	Patch    int
	Other    int
}

// Total is the number of changes counted
func (c Counts) Total() int {
	return c.Breaking + c.Minor + c.Patch + c.Other
}

// Load reads a precomputed drift report
func Load(path string) (*api.DriftReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoReport, path)
		}
		return nil, fmt.Errorf("failed to read drift report: %w", err)
	}

	var r api.DriftReport
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to decode drift report %s: %w", path, err)
	}
	return &r, nil
}

// Tally counts the changes of r by severity. A nil report counts nothing.
func Tally(r *api.DriftReport) Counts {
	var c Counts
	if r == nil {
		return c
	}
	for _, change := range r.Changes {
		switch change.Severity {
		case api.SeverityBreaking:
			c.Breaking++
		case api.SeverityMinor:
			c.Minor++
		case api.SeverityPatch:
			c.Patch++
		default:
			c.Other++
		}
	}
	return c
}
