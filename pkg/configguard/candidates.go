// Copyright (c) Kusari <https://www.kusari.dev/>
// SPDX-License-Identifier: MIT

package configguard

import (
	"os"
	"path/filepath"
	"slices"
)

// RegistryFileName is the spec file name searched for under the registry root
const RegistryFileName = "pack.yaml"

// FindCandidates lists the spec files to summarize. Registry files come
// first, followed by the local packs. Absent roots contribute nothing.
func FindCandidates(registryRoot, localRoot string) []string {
	var candidates []string
	candidates = append(candidates, findRegistryFiles(registryRoot)...)
	candidates = append(candidates, findLocalFiles(localRoot)...)
	return candidates
}

// findRegistryFiles walks root depth-first with an explicit stack.
// Unreadable directories are skipped and symlinks are not followed.
func findRegistryFiles(root string) []string {
	if root == "" {
		return nil
	}

	var found []string
	pending := []string{root}
	for len(pending) > 0 {
		dir := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}

		var subdirs []string
		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())
			if entry.IsDir() {
				subdirs = append(subdirs, path)
				continue
			}
			if entry.Name() == RegistryFileName {
				found = append(found, path)
			}
		}
		// Reverse so the first directory in lexical order is popped first
		slices.Reverse(subdirs)
		pending = append(pending, subdirs...)
	}
	return found
}

func findLocalFiles(root string) []string {
	if root == "" {
		return nil
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil
	}

	var found []string
	for _, entry := range entries {
		if entry.IsDir() || !hasSpecExtension(entry.Name()) {
			continue
		}
		found = append(found, filepath.Join(root, entry.Name()))
	}
	return found
}
