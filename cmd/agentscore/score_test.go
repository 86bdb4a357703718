package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jingkaihe/agentscore/pkg/report"
	"github.com/jingkaihe/agentscore/pkg/scoring"
)

func writeDoc(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	content := `---
name: sample
description: Reviews code changes for style problems
---

Body.
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestNewScoreConfig_Defaults(t *testing.T) {
	config := NewScoreConfig()
	assert.Equal(t, scoring.DefaultTier, config.Tier)
	assert.Equal(t, -1.0, config.Threshold)
	assert.Equal(t, report.FormatNarrative, config.Format)
	assert.Equal(t, -1, config.MaxRecommendations)
	assert.Equal(t, 0, config.Jobs)
	assert.False(t, config.Record)
}

func TestGetScoreConfigFromFlags(t *testing.T) {
	require.NoError(t, scoreCmd.ParseFlags([]string{
		"--tier", "expert",
		"--threshold", "7.5",
		"--format", "json",
		"--max-recommendations", "3",
		"--jobs", "4",
		"--include", "agents/**/*.md",
		"--record",
		"--quiet",
	}))

	config := getScoreConfigFromFlags(scoreCmd)
	assert.Equal(t, "expert", config.Tier)
	assert.Equal(t, 7.5, config.Threshold)
	assert.Equal(t, "json", config.Format)
	assert.Equal(t, 3, config.MaxRecommendations)
	assert.Equal(t, 4, config.Jobs)
	assert.Equal(t, []string{"agents/**/*.md"}, config.Include)
	assert.True(t, config.Record)
	assert.True(t, config.Quiet)
}

func TestResolvePaths(t *testing.T) {
	tmpDir := t.TempDir()
	writeDoc(t, filepath.Join(tmpDir, "a.md"))
	writeDoc(t, filepath.Join(tmpDir, "nested", "b.md"))
	writeDoc(t, filepath.Join(tmpDir, "README.md"))

	t.Run("directory scan skips readmes", func(t *testing.T) {
		paths, err := resolvePaths(context.Background(), []string{tmpDir}, NewScoreConfig())
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(tmpDir, "a.md"),
			filepath.Join(tmpDir, "nested", "b.md"),
		}, paths)
	})

	t.Run("file arguments come first and deduplicate", func(t *testing.T) {
		bPath := filepath.Join(tmpDir, "nested", "b.md")
		paths, err := resolvePaths(context.Background(), []string{bPath, tmpDir}, NewScoreConfig())
		require.NoError(t, err)
		assert.Equal(t, []string{
			bPath,
			filepath.Join(tmpDir, "a.md"),
		}, paths)
	})

	t.Run("exclude patterns replace the defaults", func(t *testing.T) {
		config := NewScoreConfig()
		config.Exclude = []string{"**/b.md"}
		paths, err := resolvePaths(context.Background(), []string{tmpDir}, config)
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(tmpDir, "README.md"),
			filepath.Join(tmpDir, "a.md"),
		}, paths)
	})

	t.Run("missing path errors", func(t *testing.T) {
		_, err := resolvePaths(context.Background(), []string{filepath.Join(tmpDir, "missing")}, NewScoreConfig())
		assert.Error(t, err)
	})
}
