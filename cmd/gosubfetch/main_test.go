package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandListsSubcommands(t *testing.T) {
	cmd := newRootCommand()

	names := make(map[string]bool)
	for _, c := range cmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["fetch"])
}

func TestFetchSkipsExistingSubtitle(t *testing.T) {
	dir := t.TempDir()
	release := filepath.Join(dir, "Movie.2020.WEB.x264.mkv")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Movie.2020.WEB.x264.srt"), []byte("x"), 0o644))

	t.Setenv("DATABASE_PATH", filepath.Join(dir, "cache.db"))
	t.Setenv("LOG_LEVEL", "error")

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", filepath.Join(dir, "missing.json"), "fetch", release})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "subtitle already exists")
}

func TestFetchRequiresArgument(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{"fetch"})
	assert.Error(t, cmd.Execute())
}
