// Copyright (c) Kusari <https://www.kusari.dev/>
// SPDX-License-Identifier: MIT

package configguard

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/apx-project/semantic-drift-action/api"
)

const (
	// Marker is the token a file must contain to be treated as a config-guard spec
	Marker = "config_guard_spec"

	defaultVersion = "0.0.0"
)

var specExtensions = []string{".yaml", ".yml"}

// SummarizeFile reads and summarizes one spec file. Unreadable files and
// files without the marker yield false.
func SummarizeFile(path string) (*api.PackGuardSummary, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	return SummarizeContent(path, string(data))
}

// SummarizeContent summarizes the contents of the spec file at path
func SummarizeContent(path, content string) (*api.PackGuardSummary, bool) {
	if !strings.Contains(content, Marker) {
		return nil, false
	}

	var (
		stack contextStack
		state parserState
	)

	for l := range scanLines(content) {
		stack.closeAt(l.indent)

		switch {
		case strings.HasPrefix(l.content, "- "):
			item := stack.push(stack.itemFrame(l.indent))
			state.openItem(item)
			if key, value, ok := splitPair(l.content[2:]); ok {
				state.route(key, value, &stack, item)
			}
		case strings.HasSuffix(l.content, ":"):
			name := strings.TrimSpace(strings.TrimSuffix(l.content, ":"))
			stack.push(frame{name: name, indent: l.indent, role: roleGeneric})
		default:
			if key, value, ok := splitPair(l.content); ok {
				state.route(key, value, &stack, stack.top())
			}
		}
	}

	summary := &api.PackGuardSummary{
		ID:           deref(state.packID, idFromPath(path)),
		Version:      deref(state.packVersion, defaultVersion),
		Namespace:    deref(state.namespace, ""),
		Environment:  deref(state.environment, ""),
		EnvCount:     state.envCount,
		MissingEnv:   state.missingEnv,
		SecretsCount: len(state.rotations),
		StaleSecrets: state.staleSecrets(),
		Path:         path,
	}
	return summary, true
}

func idFromPath(path string) string {
	base := filepath.Base(path)
	for _, ext := range specExtensions {
		if strings.HasSuffix(base, ext) {
			return strings.TrimSuffix(base, ext)
		}
	}
	return base
}

func hasSpecExtension(name string) bool {
	for _, ext := range specExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

func deref(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
