package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/banban-dev/banban/internal/cli/commands"
)

var version = "dev" // Will be set during build

var rootCmd = &cobra.Command{
	Use:   "banban",
	Short: "ban:ban - the daily balance game",
	Long: `ban:ban CLI - vote in the daily balance game, read the feed and talk
about it with everyone else from your terminal.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("server", "", "Server alias or URL from banban.json")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log diagnostics to stderr")

	rootCmd.AddCommand(commands.NewVersionCmd(version))

	// Add all subcommands
	rootCmd.AddCommand(commands.NewInitCmd())
	rootCmd.AddCommand(commands.NewSelectServerCmd())
	rootCmd.AddCommand(commands.NewSignupCmd())
	rootCmd.AddCommand(commands.NewLoginCmd())
	rootCmd.AddCommand(commands.NewLogoutCmd())
	rootCmd.AddCommand(commands.NewWhoamiCmd())
	rootCmd.AddCommand(commands.NewFeedCmd())
	rootCmd.AddCommand(commands.NewPostCmd())
	rootCmd.AddCommand(commands.NewCommentsCmd())
	rootCmd.AddCommand(commands.NewCommentCmd())
	rootCmd.AddCommand(commands.NewNotificationsCmd())
	rootCmd.AddCommand(commands.NewGameCmd())
	rootCmd.AddCommand(commands.NewVoteCmd())
	rootCmd.AddCommand(commands.NewWatchCmd())
}

// Execute runs the root command
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
