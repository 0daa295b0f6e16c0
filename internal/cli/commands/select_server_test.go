package commands

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banban-dev/banban/internal/cli/config"
	"github.com/banban-dev/banban/internal/cli/userconfig"
)

func TestRunSelectServer(t *testing.T) {
	cfg := &config.Config{Servers: []config.Server{
		{URL: "https://api.banban.test", Alias: "production"},
		{URL: "http://localhost:8080", Alias: "local"},
	}}
	store := &userconfig.Store{Path: filepath.Join(t.TempDir(), "config.json")}
	noPrompt := func(*config.Config) (*config.Server, error) {
		t.Fatal("prompt should not be shown")
		return nil, nil
	}

	var out bytes.Buffer
	require.NoError(t, runSelectServer(cfg, "local", store, noPrompt, &out))
	assert.Equal(t, "Selected server: local (http://localhost:8080)\n", out.String())

	selected, err := store.SelectedServer()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", selected)

	out.Reset()
	firstServer := func(c *config.Config) (*config.Server, error) { return &c.Servers[0], nil }
	require.NoError(t, runSelectServer(cfg, "", store, firstServer, &out))
	assert.Contains(t, out.String(), "production")

	assert.Error(t, runSelectServer(cfg, "staging", store, noPrompt, &out))
}
