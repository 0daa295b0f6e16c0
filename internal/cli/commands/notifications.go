package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/banban-dev/banban/internal/cli/client"
	"github.com/banban-dev/banban/internal/pagination"
)

// NewNotificationsCmd creates the notifications command
func NewNotificationsCmd() *cobra.Command {
	var flags listFlags
	var readID int64

	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"inbox"},
		Short:   "Show your notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			if readID > 0 {
				return runMarkRead(cmd.Context(), readID, globalOptions(cmd)...)
			}
			return runNotifications(cmd.Context(), flags, globalOptions(cmd)...)
		},
	}
	flags.register(cmd)
	cmd.Flags().Int64Var(&readID, "read", 0, "Mark the notification with this id as read")

	return cmd
}

func runNotifications(ctx context.Context, flags listFlags, opts ...Option) error {
	e, err := newEnv(opts...)
	if err != nil {
		return err
	}

	token, err := e.token()
	if err != nil {
		return err
	}

	fetch := func(ctx context.Context, req pagination.Request) (pagination.Page[client.Notification], error) {
		return e.api.ListNotifications(ctx, token, req)
	}

	pager, err := collect(ctx, e, fetch, client.NotificationID, flags)
	if err != nil {
		return err
	}

	notifications := pager.Items()
	if len(notifications) == 0 {
		fmt.Fprintln(e.out, "No notifications.")
		return nil
	}

	w := tabwriter.NewWriter(e.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\t\tMESSAGE\tRECEIVED")
	fmt.Fprintln(w, "──\t\t───────\t────────")
	for _, n := range notifications {
		marker := "●"
		if n.ReadAt != nil {
			marker = " "
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
			n.ID,
			marker,
			preview(n.Message),
			n.CreatedAt.Local().Format("2006-01-02 15:04"),
		)
	}
	w.Flush()

	printMoreHint(e.out, !pager.Done(), "banban notifications")
	return nil
}

func runMarkRead(ctx context.Context, id int64, opts ...Option) error {
	e, err := newEnv(opts...)
	if err != nil {
		return err
	}

	token, err := e.token()
	if err != nil {
		return err
	}

	if err := e.api.MarkNotificationRead(ctx, token, id); err != nil {
		return err
	}

	fmt.Fprintf(e.out, "✓ Marked notification %d as read\n", id)
	return nil
}
