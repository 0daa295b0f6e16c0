package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/banban-dev/banban/internal/cli/config"
	"github.com/banban-dev/banban/internal/cli/serverselect"
	"github.com/banban-dev/banban/internal/cli/userconfig"
)

// NewSelectServerCmd creates the select-server command
func NewSelectServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select-server [url-or-alias]",
		Short: "Choose the server later commands talk to",
		Long: `Choose the server later commands talk to.

Without an argument an interactive menu is shown.

Examples:
  $ banban select-server                          # Interactive selection
  $ banban select-server https://api.banban.app   # Select by URL
  $ banban select-server production               # Select by alias`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var urlOrAlias string
			if len(args) > 0 {
				urlOrAlias = args[0]
			}

			cfg, err := config.LoadFromCurrentDir()
			if err != nil {
				return fmt.Errorf("failed to load config: %w\nRun 'banban init <url>' to create a configuration file", err)
			}
			store, err := userconfig.Default()
			if err != nil {
				return err
			}
			return runSelectServer(cfg, urlOrAlias, store, serverselect.PromptServerSelection, os.Stdout)
		},
	}
}

func runSelectServer(cfg *config.Config, urlOrAlias string, sel serverselect.Selection, prompt serverselect.PromptFunc, out io.Writer) error {
	var (
		server *config.Server
		err    error
	)
	if urlOrAlias != "" {
		server, err = cfg.GetServerByURLOrAlias(urlOrAlias)
	} else {
		server, err = prompt(cfg)
	}
	if err != nil {
		return err
	}

	if err := sel.SetSelectedServer(server.URL); err != nil {
		return fmt.Errorf("failed to save selected server: %w", err)
	}

	fmt.Fprintf(out, "Selected server: %s (%s)\n", server.Alias, server.URL)
	return nil
}
