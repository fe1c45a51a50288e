// Copyright (c) Kusari <https://www.kusari.dev/>
// SPDX-License-Identifier: MIT

package configguard

import (
	"math"
	"strconv"
	"strings"
)

// rotationEntry is one secret's rotation window. Nil fields are unset.
type rotationEntry struct {
	lastRotatedDays *float64
	maxDays         *float64
}

func (r rotationEntry) stale() bool {
	return r.lastRotatedDays != nil && r.maxDays != nil && *r.lastRotatedDays > *r.maxDays
}

// parserState accumulates the signals of one file
type parserState struct {
	packID      *string
	packVersion *string
	namespace   *string
	environment *string
	envCount    int
	missingEnv  int
	rotations   []rotationEntry
}

// openItem records the side effects of entering a list item frame
func (p *parserState) openItem(f *frame) {
	switch f.role {
	case roleEnvItem:
		p.envCount++
	case roleRotationItem:
		p.rotations = append(p.rotations, rotationEntry{})
		f.rotation = len(p.rotations) - 1
	}
}

// route applies one key/value pair. Identity fields are first-write-wins.
func (p *parserState) route(key, value string, stack *contextStack, acting *frame) {
	switch key {
	case "id":
		if stack.isOpen(blockPack) {
			setOnce(&p.packID, value)
		}
	case "version":
		if stack.isOpen(blockPack) {
			setOnce(&p.packVersion, value)
		}
	case "namespace":
		if stack.isOpen(blockSpec) {
			setOnce(&p.namespace, value)
		}
	case "environment":
		if stack.isOpen(blockSpec) {
			setOnce(&p.environment, value)
		}
	}

	if acting == nil {
		return
	}

	switch acting.role {
	case roleEnvItem:
		if key == "present" && strings.EqualFold(value, "false") {
			p.missingEnv++
		}
	case roleRotationItem:
		entry := &p.rotations[acting.rotation]
		switch key {
		case "last_rotated_days":
			entry.lastRotatedDays = parseNumber(value)
		case "max_days":
			entry.maxDays = parseNumber(value)
		}
	}
}

func (p *parserState) staleSecrets() int {
	n := 0
	for _, r := range p.rotations {
		if r.stale() {
			n++
		}
	}
	return n
}

func setOnce(field **string, value string) {
	if *field == nil {
		*field = &value
	}
}

func parseNumber(value string) *float64 {
	n, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(n) {
		return nil
	}
	return &n
}
