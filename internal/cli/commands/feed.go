package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/banban-dev/banban/internal/cli/client"
	"github.com/banban-dev/banban/internal/pagination"
)

const previewLength = 60

// NewFeedCmd creates the feed command
func NewFeedCmd() *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Show the latest posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFeed(cmd.Context(), flags, globalOptions(cmd)...)
		},
	}
	flags.register(cmd)

	return cmd
}

// NewPostCmd creates the post command
func NewPostCmd() *cobra.Command {
	var gameID int64

	cmd := &cobra.Command{
		Use:   "post <text>",
		Short: "Publish a post to the feed",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPost(cmd.Context(), strings.Join(args, " "), gameID, globalOptions(cmd)...)
		},
	}

	cmd.Flags().Int64Var(&gameID, "game", 0, "Attach the post to a balance game")

	return cmd
}

func runFeed(ctx context.Context, flags listFlags, opts ...Option) error {
	e, err := newEnv(opts...)
	if err != nil {
		return err
	}

	token, err := e.token()
	if err != nil {
		return err
	}

	fetch := func(ctx context.Context, req pagination.Request) (pagination.Page[client.Feed], error) {
		return e.api.ListFeeds(ctx, token, req)
	}

	pager, err := collect(ctx, e, fetch, client.FeedID, flags)
	if err != nil {
		return err
	}

	feeds := pager.Items()
	if len(feeds) == 0 {
		fmt.Fprintln(e.out, "No posts yet.")
		fmt.Fprintln(e.out, "\nWrite the first one with: banban post <text>")
		return nil
	}

	w := tabwriter.NewWriter(e.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tAUTHOR\tPOST\tCOMMENTS\tPOSTED")
	fmt.Fprintln(w, "──\t──────\t────\t────────\t──────")
	for _, f := range feeds {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n",
			f.ID,
			f.AuthorNickname,
			preview(f.Content),
			f.CommentCount,
			f.CreatedAt.Local().Format("2006-01-02 15:04"),
		)
	}
	w.Flush()

	printMoreHint(e.out, !pager.Done(), "banban feed")
	return nil
}

func runPost(ctx context.Context, content string, gameID int64, opts ...Option) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return fmt.Errorf("post text is empty")
	}

	e, err := newEnv(opts...)
	if err != nil {
		return err
	}

	token, err := e.token()
	if err != nil {
		return err
	}

	var game *int64
	if gameID > 0 {
		game = &gameID
	}

	feed, err := e.api.CreateFeed(ctx, token, content, game)
	if err != nil {
		return err
	}

	fmt.Fprintf(e.out, "✓ Posted #%d\n", feed.ID)
	return nil
}

// preview shortens text to a single table cell
func preview(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= previewLength {
		return text
	}
	return string(runes[:previewLength-1]) + "…"
}

func parseID(arg, what string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, arg)
	}
	return id, nil
}
