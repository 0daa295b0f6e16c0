package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/banban-dev/banban/internal/cli/client"
	"github.com/banban-dev/banban/internal/votechart"
)

const (
	chartRadius = 100
	barWidth    = 30
)

var (
	optionAColor = color.New(color.FgCyan, color.Bold)
	optionBColor = color.New(color.FgMagenta, color.Bold)
	checkColor   = color.New(color.FgGreen)
)

// NewGameCmd creates the game command
func NewGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Show today's balance game and its results",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGame(cmd.Context(), globalOptions(cmd)...)
		},
	}

	cmd.AddCommand(NewGameImportCmd())

	return cmd
}

// NewVoteCmd creates the vote command
func NewVoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vote <A|B>",
		Short: "Vote in today's balance game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVote(cmd.Context(), args[0], globalOptions(cmd)...)
		},
	}
}

// NewGameImportCmd creates the game import command
func NewGameImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Schedule balance games from a YAML file (admin only)",
		Long: `Schedule balance games from a YAML file (admin only).

The file holds a list of games:

  - title: Summer or winter?
    optionA: Summer
    optionB: Winter
    playDate: 2026-07-01`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGameImport(cmd.Context(), args[0], globalOptions(cmd)...)
		},
	}
}

func runGame(ctx context.Context, opts ...Option) error {
	e, err := newEnv(opts...)
	if err != nil {
		return err
	}

	token, err := e.token()
	if err != nil {
		return err
	}

	game, err := e.api.TodayGame(ctx, token)
	if err != nil {
		return fmt.Errorf("failed to load today's game: %w", err)
	}

	info, err := e.api.VoteInfo(ctx, token, game.ID)
	if err != nil {
		return fmt.Errorf("failed to load votes: %w", err)
	}

	printGame(e.out, game, info)
	return nil
}

func printGame(w io.Writer, game *client.Game, info *client.VoteInfo) {
	fmt.Fprintf(w, "%s  (#%d, %s)\n\n", game.Title, game.ID, game.PlayDate)

	chart := votechart.Compute([]votechart.Option{
		{Label: game.OptionA, Count: info.CountA},
		{Label: game.OptionB, Count: info.CountB},
	}, chartRadius)

	labels := []string{"A", "B"}
	colors := []*color.Color{optionAColor, optionBColor}
	for i, s := range chart.Slices {
		mine := " "
		if info.MyVote == labels[i] {
			mine = checkColor.Sprint("✓")
		}
		fmt.Fprintf(w, "%s %s %s %s %5.1f%% (%d)\n",
			mine,
			colors[i].Sprint(labels[i]),
			colors[i].Sprint(votechart.Bar(s.Percent, barWidth)),
			s.Label,
			s.Percent,
			s.Count,
		)
	}

	fmt.Fprintf(w, "\nTotal votes: %d\n", chart.Total)
	if info.MyVote == "" {
		fmt.Fprintln(w, "\nCast your vote with: banban vote <A|B>")
	}
}

func runVote(ctx context.Context, option string, opts ...Option) error {
	option = strings.ToUpper(strings.TrimSpace(option))
	if option != "A" && option != "B" {
		return fmt.Errorf("option must be A or B, got %q", option)
	}

	e, err := newEnv(opts...)
	if err != nil {
		return err
	}

	token, err := e.token()
	if err != nil {
		return err
	}

	game, err := e.api.TodayGame(ctx, token)
	if err != nil {
		return fmt.Errorf("failed to load today's game: %w", err)
	}

	if err := e.api.Vote(ctx, token, game.ID, option); err != nil {
		return err
	}

	fmt.Fprintf(e.out, "✓ Voted %s in %q\n\n", option, game.Title)

	info, err := e.api.VoteInfo(ctx, token, game.ID)
	if err != nil {
		return fmt.Errorf("failed to load votes: %w", err)
	}
	printGame(e.out, game, info)
	return nil
}

func runGameImport(ctx context.Context, path string, opts ...Option) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var games []client.CreateGameRequest
	if err := yaml.Unmarshal(data, &games); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(games) == 0 {
		return fmt.Errorf("no games found in %s", path)
	}

	for i, g := range games {
		if g.Title == "" || g.OptionA == "" || g.OptionB == "" || g.PlayDate == "" {
			return fmt.Errorf("game %d: title, optionA, optionB and playDate are required", i+1)
		}
	}

	e, err := newEnv(opts...)
	if err != nil {
		return err
	}

	token, err := e.token()
	if err != nil {
		return err
	}

	for _, g := range games {
		created, err := e.api.CreateGame(ctx, token, g)
		if err != nil {
			return fmt.Errorf("failed to create game for %s: %w", g.PlayDate, err)
		}
		fmt.Fprintf(e.out, "✓ Scheduled #%d %q for %s\n", created.ID, created.Title, created.PlayDate)
	}

	fmt.Fprintf(e.out, "\nImported %d game(s)\n", len(games))
	return nil
}
