package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/banban-dev/banban/internal/cli/client"
	"github.com/banban-dev/banban/internal/cli/config"
)

// NewInitCmd creates the init command
func NewInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init <server-url>",
		Short: "Add a ban:ban server to ./banban.json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			currentDir, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get current directory: %w", err)
			}
			return runInit(cmd.Context(), args[0], currentDir, os.Stdout)
		},
	}
}

func runInit(ctx context.Context, serverURL, dir string, out io.Writer) error {
	serverURL = strings.TrimRight(serverURL, "/")
	if !strings.HasPrefix(serverURL, "http://") && !strings.HasPrefix(serverURL, "https://") {
		return fmt.Errorf("server URL must start with http:// or https://")
	}

	configPath := filepath.Join(dir, config.ConfigFileName)

	var cfg *config.Config
	isNewConfig := false

	if _, err := os.Stat(configPath); err == nil {
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load existing config: %w", err)
		}
		fmt.Fprintln(out, "Found existing banban.json")
	} else {
		cfg = config.DefaultConfig()
		cfg.Servers = []config.Server{}
		isNewConfig = true
	}

	if _, err := cfg.GetServerByURLOrAlias(serverURL); err == nil {
		fmt.Fprintf(out, "Server %s already exists in banban.json\n", serverURL)
		return nil
	}

	alias := "production"
	if len(cfg.Servers) > 0 {
		alias = fmt.Sprintf("server-%d", len(cfg.Servers)+1)
	}
	cfg.Servers = append(cfg.Servers, config.Server{URL: serverURL, Alias: alias})

	if err := config.Save(configPath, cfg); err != nil {
		return err
	}

	if isNewConfig {
		fmt.Fprintf(out, "✓ Created ./banban.json with server %s (%s)\n", serverURL, alias)
	} else {
		fmt.Fprintf(out, "✓ Added server %s (%s) to ./banban.json\n", serverURL, alias)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if health, err := client.New(serverURL).Health(healthCtx); err != nil {
		fmt.Fprintf(out, "⚠ Server is not reachable yet: %v\n", err)
	} else {
		fmt.Fprintf(out, "✓ Server is %s (%s %s)\n", health.Status, health.Service, health.Version)
	}

	fmt.Fprintln(out, "\nNext steps:")
	fmt.Fprintln(out, "  1. Run 'banban signup' to create an account, or")
	fmt.Fprintln(out, "  2. Run 'banban login' to authenticate")

	return nil
}
