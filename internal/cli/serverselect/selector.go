// Package serverselect decides which configured ban:ban server a command
// talks to.
package serverselect

import (
	"errors"
	"fmt"
	"os"

	"github.com/manifoldco/promptui"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/banban-dev/banban/internal/cli/config"
	"github.com/banban-dev/banban/internal/cli/userconfig"
)

// ErrNotInteractive is returned when a server must be picked but nobody can answer a prompt
var ErrNotInteractive = errors.New("several servers are configured; pass --server or run 'banban select-server'")

// Selection remembers the last chosen server between runs
type Selection interface {
	SelectedServer() (string, error)
	SetSelectedServer(serverURL string) error
}

// PromptFunc asks the user to pick one of the configured servers
type PromptFunc func(cfg *config.Config) (*config.Server, error)

// Resolver picks a server in this order: the --server flag, the remembered
// selection, the only configured server, an interactive prompt.
type Resolver struct {
	Selection   Selection
	Prompt      PromptFunc
	Interactive bool
	Log         zerolog.Logger
}

// NewResolver uses the user config file and a promptui menu when stdin is a terminal
func NewResolver(log zerolog.Logger) (*Resolver, error) {
	store, err := userconfig.Default()
	if err != nil {
		return nil, err
	}
	return &Resolver{
		Selection:   store,
		Prompt:      PromptServerSelection,
		Interactive: term.IsTerminal(int(os.Stdin.Fd())),
		Log:         log,
	}, nil
}

// Resolve returns the server to use
func (r *Resolver) Resolve(cfg *config.Config, serverAlias string) (*config.Server, error) {
	if serverAlias != "" {
		return cfg.GetServerByURLOrAlias(serverAlias)
	}

	selectedURL, err := r.Selection.SelectedServer()
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}
	if selectedURL != "" {
		if server, err := cfg.GetServerByURLOrAlias(selectedURL); err == nil {
			return server, nil
		}
		r.Log.Debug().Str("server", selectedURL).Msg("Selected server is no longer configured")
		r.remember("")
	}

	var server *config.Server
	switch {
	case len(cfg.Servers) == 1:
		server = &cfg.Servers[0]
	case !r.Interactive && len(cfg.Servers) > 1:
		return nil, ErrNotInteractive
	default:
		server, err = r.Prompt(cfg)
		if err != nil {
			return nil, err
		}
	}

	r.remember(server.URL)
	return server, nil
}

// remember stores the choice; commands still run when it cannot be saved
func (r *Resolver) remember(serverURL string) {
	if err := r.Selection.SetSelectedServer(serverURL); err != nil {
		r.Log.Warn().Err(err).Msg("Failed to save selected server")
	}
}

// PromptServerSelection shows an interactive menu of the configured servers
func PromptServerSelection(cfg *config.Config) (*config.Server, error) {
	if len(cfg.Servers) == 0 {
		return nil, fmt.Errorf("no servers configured in banban.json")
	}

	type serverOption struct {
		Label  string
		Server *config.Server
	}

	options := make([]serverOption, len(cfg.Servers))
	for i := range cfg.Servers {
		server := &cfg.Servers[i]
		options[i] = serverOption{
			Label:  fmt.Sprintf("%s (%s)", server.Alias, server.URL),
			Server: server,
		}
	}

	prompt := promptui.Select{
		Label: "Select a server",
		Items: options,
		Templates: &promptui.SelectTemplates{
			Label:    "{{ . }}",
			Active:   "> {{ .Label | cyan }}",
			Inactive: "  {{ .Label }}",
			Selected: "{{ .Label | green }}",
		},
		Size: 10,
	}

	index, _, err := prompt.Run()
	if err != nil {
		return nil, fmt.Errorf("server selection cancelled: %w", err)
	}
	return options[index].Server, nil
}
