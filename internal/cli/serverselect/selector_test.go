package serverselect

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banban-dev/banban/internal/cli/config"
)

type memorySelection struct {
	url     string
	saveErr error
	saves   int
}

func (m *memorySelection) SelectedServer() (string, error) { return m.url, nil }

func (m *memorySelection) SetSelectedServer(serverURL string) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.url = serverURL
	return nil
}

func twoServers() *config.Config {
	return &config.Config{Servers: []config.Server{
		{URL: "https://api.banban.test", Alias: "prod"},
		{URL: "http://localhost:8080", Alias: "local"},
	}}
}

func newResolver(sel *memorySelection, interactive bool) (*Resolver, *int) {
	prompts := 0
	return &Resolver{
		Selection:   sel,
		Interactive: interactive,
		Log:         zerolog.Nop(),
		Prompt: func(cfg *config.Config) (*config.Server, error) {
			prompts++
			return &cfg.Servers[1], nil
		},
	}, &prompts
}

func TestResolve_ExplicitAlias(t *testing.T) {
	sel := &memorySelection{url: "https://api.banban.test"}
	r, prompts := newResolver(sel, true)

	server, err := r.Resolve(twoServers(), "local")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", server.URL)
	assert.Zero(t, *prompts)
	assert.Zero(t, sel.saves, "a flag does not change the remembered server")
}

func TestResolve_SelectedServer(t *testing.T) {
	r, prompts := newResolver(&memorySelection{url: "https://api.banban.test"}, true)

	server, err := r.Resolve(twoServers(), "")
	require.NoError(t, err)
	assert.Equal(t, "prod", server.Alias)
	assert.Zero(t, *prompts)
}

func TestResolve_SingleServerIsRemembered(t *testing.T) {
	sel := &memorySelection{}
	r, _ := newResolver(sel, false)
	cfg := &config.Config{Servers: []config.Server{{URL: "http://localhost:8080", Alias: "local"}}}

	server, err := r.Resolve(cfg, "")
	require.NoError(t, err)
	assert.Equal(t, "local", server.Alias)
	assert.Equal(t, "http://localhost:8080", sel.url)
}

func TestResolve_StaleSelectionPrompts(t *testing.T) {
	sel := &memorySelection{url: "https://gone.banban.test"}
	r, prompts := newResolver(sel, true)

	server, err := r.Resolve(twoServers(), "")
	require.NoError(t, err)
	assert.Equal(t, "local", server.Alias)
	assert.Equal(t, 1, *prompts)
	assert.Equal(t, "http://localhost:8080", sel.url)
}

func TestResolve_NotInteractive(t *testing.T) {
	r, prompts := newResolver(&memorySelection{}, false)

	_, err := r.Resolve(twoServers(), "")
	assert.ErrorIs(t, err, ErrNotInteractive)
	assert.Zero(t, *prompts)
}

func TestResolve_SaveFailureIsNotFatal(t *testing.T) {
	sel := &memorySelection{saveErr: errors.New("read-only home")}
	r, _ := newResolver(sel, true)

	server, err := r.Resolve(twoServers(), "")
	require.NoError(t, err)
	assert.Equal(t, "local", server.Alias)
}

func TestPromptServerSelection_NoServers(t *testing.T) {
	_, err := PromptServerSelection(&config.Config{})
	assert.EqualError(t, err, "no servers configured in banban.json")
}
