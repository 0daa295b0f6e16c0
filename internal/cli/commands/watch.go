package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/banban-dev/banban/internal/cli/session"
)

// NewWatchCmd creates the watch command
func NewWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Keep the session fresh while the terminal is in use",
		Long: `Keep the session fresh while the terminal is in use.

The session is re-checked when the process returns to the foreground or when
you press Enter, at most once per recheck interval. Press Ctrl+C to stop.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, globalOptions(cmd)...)
		},
	}
}

// runWatch blocks until ctx is cancelled
func runWatch(ctx context.Context, opts ...Option) error {
	return watch(ctx, nil, opts...)
}

func watch(ctx context.Context, extra []session.Source, opts ...Option) error {
	e, err := newEnv(opts...)
	if err != nil {
		return err
	}

	interval, err := e.cfg.Interval()
	if err != nil {
		return err
	}

	store := e.store()
	if err := store.Check(ctx, session.PolicySurface); err != nil {
		return err
	}
	printSession(e.out, store.Snapshot())

	store.OnChange(func(snap session.Snapshot) {
		printSession(e.out, snap)
	})

	coordinator := session.NewCoordinator(store,
		session.WithInterval(interval),
		session.WithLogger(e.log),
	)

	sources := append([]session.Source{
		session.NewVisibilitySource(),
		session.LineSource{R: e.in, Signal: session.SignalFocus},
	}, extra...)
	detach := coordinator.Attach(ctx, sources...)

	fmt.Fprintln(e.out, "Watching session. Press Enter to re-check, Ctrl+C to stop.")
	<-ctx.Done()

	detach()
	coordinator.Wait()
	return nil
}

func printSession(w io.Writer, snap session.Snapshot) {
	switch {
	case snap.Loading:
		return
	case snap.Authenticated && snap.User != nil:
		fmt.Fprintf(w, "✓ Signed in as %s (%s)\n", snap.User.Nickname, snap.User.Email)
	case snap.State == session.StateUninitialized:
		fmt.Fprintln(w, "Signed out")
	default:
		fmt.Fprintln(w, "✗ Session expired. Run 'banban login' to sign in again")
	}
}
