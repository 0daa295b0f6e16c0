package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// NewVersionCmd creates the version command
func NewVersionCmd(version string) *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion(cmd.Context(), version, remote, globalOptions(cmd)...)
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "Also show the selected server's version")

	return cmd
}

func runVersion(ctx context.Context, version string, remote bool, opts ...Option) error {
	out := applyOptions(opts...).out
	fmt.Fprintf(out, "banban version %s\n", version)
	if !remote {
		return nil
	}

	e, err := newEnv(opts...)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	health, err := e.api.Health(ctx)
	if err != nil {
		return fmt.Errorf("failed to reach %s: %w", e.server.URL, err)
	}

	fmt.Fprintf(e.out, "server %s version %s (%s)\n", e.server.Alias, health.Version, health.Status)
	if health.Version != version {
		fmt.Fprintln(e.out, "\nWarning: CLI and server versions differ")
	}
	return nil
}
