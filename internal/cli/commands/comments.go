package commands

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/banban-dev/banban/internal/cli/client"
	"github.com/banban-dev/banban/internal/pagination"
)

// NewCommentsCmd creates the comments command
func NewCommentsCmd() *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "comments <feed-id>",
		Short: "Show the comments on a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			feedID, err := parseID(args[0], "feed")
			if err != nil {
				return err
			}
			return runComments(cmd.Context(), feedID, flags, globalOptions(cmd)...)
		},
	}
	flags.register(cmd)

	return cmd
}

// NewCommentCmd creates the comment command
func NewCommentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "comment <feed-id> <text>",
		Short: "Reply to a post",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			feedID, err := parseID(args[0], "feed")
			if err != nil {
				return err
			}
			return runComment(cmd.Context(), feedID, strings.Join(args[1:], " "), globalOptions(cmd)...)
		},
	}
}

func runComments(ctx context.Context, feedID int64, flags listFlags, opts ...Option) error {
	e, err := newEnv(opts...)
	if err != nil {
		return err
	}

	token, err := e.token()
	if err != nil {
		return err
	}

	fetch := func(ctx context.Context, req pagination.Request) (pagination.Page[client.Comment], error) {
		return e.api.ListComments(ctx, token, feedID, req)
	}

	pager, err := collect(ctx, e, fetch, client.CommentID, flags)
	if err != nil {
		return err
	}

	comments := pager.Items()
	if len(comments) == 0 {
		fmt.Fprintf(e.out, "No comments on #%d yet.\n", feedID)
		return nil
	}

	w := tabwriter.NewWriter(e.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "AUTHOR\tCOMMENT\tPOSTED")
	fmt.Fprintln(w, "──────\t───────\t──────")
	for _, c := range comments {
		fmt.Fprintf(w, "%s\t%s\t%s\n",
			c.AuthorNickname,
			preview(c.Content),
			c.CreatedAt.Local().Format("2006-01-02 15:04"),
		)
	}
	w.Flush()

	printMoreHint(e.out, !pager.Done(), fmt.Sprintf("banban comments %d", feedID))
	return nil
}

func runComment(ctx context.Context, feedID int64, content string, opts ...Option) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return fmt.Errorf("comment text is empty")
	}

	e, err := newEnv(opts...)
	if err != nil {
		return err
	}

	token, err := e.token()
	if err != nil {
		return err
	}

	comment, err := e.api.CreateComment(ctx, token, feedID, content)
	if err != nil {
		return err
	}

	fmt.Fprintf(e.out, "✓ Commented on #%d (comment %d)\n", feedID, comment.ID)
	return nil
}
