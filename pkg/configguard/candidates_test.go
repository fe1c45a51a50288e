// Copyright (c) Kusari <https://www.kusari.dev/>
// SPDX-License-Identifier: MIT

package configguard

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestFindCandidates(t *testing.T) {
	root := t.TempDir()
	registry := filepath.Join(root, "registry")
	local := filepath.Join(root, "packs")

	writeFile(t, registry, "b/pack.yaml", "")
	writeFile(t, registry, "a/deep/er/pack.yaml", "")
	writeFile(t, registry, "a/pack.yaml", "")
	writeFile(t, registry, "a/pack.yml", "")
	writeFile(t, registry, "a/README.md", "")
	require.NoError(t, os.MkdirAll(filepath.Join(registry, "empty"), 0755))

	writeFile(t, local, "billing.yaml", "")
	writeFile(t, local, "auth.yml", "")
	writeFile(t, local, "notes.txt", "")
	writeFile(t, local, "nested/ignored.yaml", "")

	got := FindCandidates(registry, local)

	assert.Equal(t, []string{
		filepath.Join(registry, "a", "pack.yaml"),
		filepath.Join(registry, "a", "deep", "er", "pack.yaml"),
		filepath.Join(registry, "b", "pack.yaml"),
		filepath.Join(local, "auth.yml"),
		filepath.Join(local, "billing.yaml"),
	}, got)
}

func TestFindCandidatesMissingRoots(t *testing.T) {
	root := t.TempDir()

	tests := []struct {
		name     string
		registry string
		local    string
	}{
		{name: "both empty", registry: "", local: ""},
		{name: "both nonexistent", registry: filepath.Join(root, "nope"), local: filepath.Join(root, "nada")},
		{name: "roots are files", registry: writeFile(t, root, "file-a", ""), local: writeFile(t, root, "file-b", "")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, FindCandidates(tt.registry, tt.local))
		})
	}
}

func TestFindCandidatesSkipsUnreadableDirectories(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}

	registry := t.TempDir()
	writeFile(t, registry, "open/pack.yaml", "")
	writeFile(t, registry, "locked/pack.yaml", "")

	locked := filepath.Join(registry, "locked")
	require.NoError(t, os.Chmod(locked, 0000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0755) })

	got := FindCandidates(registry, "")
	assert.Equal(t, []string{filepath.Join(registry, "open", "pack.yaml")}, got)
}

func TestFindCandidatesHandlesDeepTrees(t *testing.T) {
	registry := t.TempDir()
	rel := ""
	for range 200 {
		rel = filepath.Join(rel, "d")
	}
	writeFile(t, registry, filepath.Join(rel, "pack.yaml"), "")

	got := FindCandidates(registry, "")
	require.Len(t, got, 1)
	assert.Equal(t, filepath.Join(registry, rel, "pack.yaml"), got[0])
}
