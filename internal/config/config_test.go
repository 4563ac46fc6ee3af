package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Absent(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, &ProjectConfig{}, cfg)
}

func TestLoad_Yml(t *testing.T) {
	dir := t.TempDir()
	content := "excludeDirs:\n  - Generated/\n  - legacy/\nfast: true\noutputDir: out\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "slngraph.yml"), []byte(content), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"Generated/", "legacy/"}, cfg.ExcludeDirs)
	assert.True(t, cfg.Fast)
	assert.Equal(t, "out", cfg.OutputDir)
}

func TestLoad_YamlFallback(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "slngraph.yaml"), []byte("verbose: true\n"), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.True(t, cfg.Verbose)
}

func TestLoad_Malformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "slngraph.yml"), []byte(":\n bad: ["), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
}
