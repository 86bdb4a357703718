package spec

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDoc(t *testing.T, root, rel string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	content := `---
name: fixture
description: Fixture document used by discovery tests.
---

Body.
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewDiscovery(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		discovery, err := NewDiscovery()
		require.NoError(t, err)
		assert.Equal(t, DefaultIncludePatterns, discovery.includes)
		assert.Equal(t, DefaultExcludePatterns, discovery.excludes)
	})

	t.Run("custom patterns", func(t *testing.T) {
		discovery, err := NewDiscovery(
			WithIncludePatterns("agents/**/*.md"),
			WithExcludePatterns("agents/drafts/**"),
		)
		require.NoError(t, err)
		assert.Equal(t, []string{"agents/**/*.md"}, discovery.includes)
		assert.Equal(t, []string{"agents/drafts/**"}, discovery.excludes)
	})

	t.Run("invalid pattern", func(t *testing.T) {
		_, err := NewDiscovery(WithIncludePatterns("agents/[broken"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid glob pattern")
	})
}

func TestDiscover(t *testing.T) {
	tmpDir := t.TempDir()

	reviewer := writeDoc(t, tmpDir, "backend/code-reviewer.md")
	designer := writeDoc(t, tmpDir, "frontend/ui-designer.md")
	rootDoc := writeDoc(t, tmpDir, "triage.md")
	writeDoc(t, tmpDir, "README.md")
	writeDoc(t, tmpDir, ".git/notes.md")
	writeDoc(t, tmpDir, "node_modules/pkg/docs.md")
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "notes.txt"), []byte("not markdown"), 0o644))

	discovery, err := NewDiscovery()
	require.NoError(t, err)

	paths, err := discovery.Discover(context.Background(), tmpDir)
	require.NoError(t, err)

	assert.Equal(t, []string{reviewer, designer, rootDoc}, paths)
}

func TestDiscover_CustomInclude(t *testing.T) {
	tmpDir := t.TempDir()

	backend := writeDoc(t, tmpDir, "backend/code-reviewer.md")
	writeDoc(t, tmpDir, "frontend/ui-designer.md")

	discovery, err := NewDiscovery(WithIncludePatterns("backend/**/*.md"))
	require.NoError(t, err)

	paths, err := discovery.Discover(context.Background(), tmpDir)
	require.NoError(t, err)

	assert.Equal(t, []string{backend}, paths)
}

func TestDiscover_MissingRoot(t *testing.T) {
	discovery, err := NewDiscovery()
	require.NoError(t, err)

	_, err = discovery.Discover(context.Background(), filepath.Join(t.TempDir(), "does-not-exist"))
	require.Error(t, err)
}
