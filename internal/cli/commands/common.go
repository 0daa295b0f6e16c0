package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/banban-dev/banban/internal/cli/auth"
	"github.com/banban-dev/banban/internal/cli/client"
	"github.com/banban-dev/banban/internal/cli/config"
	"github.com/banban-dev/banban/internal/cli/serverselect"
	"github.com/banban-dev/banban/internal/cli/session"
	"github.com/banban-dev/banban/internal/logger"
	"github.com/banban-dev/banban/internal/pagination"
)

// API is every endpoint the commands use
type API interface {
	session.API
	ListFeeds(ctx context.Context, token string, req pagination.Request) (pagination.Page[client.Feed], error)
	CreateFeed(ctx context.Context, token, content string, gameID *int64) (*client.Feed, error)
	ListComments(ctx context.Context, token string, feedID int64, req pagination.Request) (pagination.Page[client.Comment], error)
	CreateComment(ctx context.Context, token string, feedID int64, content string) (*client.Comment, error)
	ListNotifications(ctx context.Context, token string, req pagination.Request) (pagination.Page[client.Notification], error)
	MarkNotificationRead(ctx context.Context, token string, id int64) error
	TodayGame(ctx context.Context, token string) (*client.Game, error)
	Vote(ctx context.Context, token string, gameID int64, option string) error
	VoteInfo(ctx context.Context, token string, gameID int64) (*client.VoteInfo, error)
	CreateGame(ctx context.Context, token string, req client.CreateGameRequest) (*client.Game, error)
	Health(ctx context.Context) (*client.Health, error)
}

// env carries what a command needs to talk to one server
type env struct {
	api         API
	tokens      auth.TokenStore
	server      *config.Server
	cfg         *config.Config
	out         io.Writer
	in          io.Reader
	log         zerolog.Logger
	serverAlias string
}

// Option overrides a dependency of a command, mostly for tests
type Option func(*env)

// WithAPI replaces the HTTP API client
func WithAPI(api API) Option {
	return func(e *env) { e.api = api }
}

// WithTokenStore replaces the OS keychain
func WithTokenStore(tokens auth.TokenStore) Option {
	return func(e *env) { e.tokens = tokens }
}

// WithServer skips config discovery and uses the given server
func WithServer(server *config.Server) Option {
	return func(e *env) { e.server = server }
}

// WithConfig uses an already loaded project config
func WithConfig(cfg *config.Config) Option {
	return func(e *env) { e.cfg = cfg }
}

// WithOutput redirects command output
func WithOutput(w io.Writer) Option {
	return func(e *env) { e.out = w }
}

// WithInput replaces stdin
func WithInput(r io.Reader) Option {
	return func(e *env) { e.in = r }
}

// WithLogger sets the diagnostic logger
func WithLogger(log zerolog.Logger) Option {
	return func(e *env) { e.log = log }
}

// WithServerAlias selects a server by alias or URL
func WithServerAlias(alias string) Option {
	return func(e *env) { e.serverAlias = alias }
}

// globalOptions turns the root persistent flags into options
func globalOptions(cmd *cobra.Command) []Option {
	serverAlias, _ := cmd.Flags().GetString("server")
	verbose, _ := cmd.Flags().GetBool("verbose")
	return []Option{
		WithServerAlias(serverAlias),
		WithLogger(logger.NewCLI(verbose)),
	}
}

// applyOptions builds an env with defaults and no server resolved
func applyOptions(opts ...Option) *env {
	e := &env{
		tokens: auth.Default,
		out:    os.Stdout,
		in:     os.Stdin,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// newEnv resolves the selected server and builds its dependencies.
// This is common logic used by most commands.
func newEnv(opts ...Option) (*env, error) {
	e := applyOptions(opts...)

	if e.server == nil {
		if e.cfg == nil {
			cfg, err := config.LoadFromCurrentDir()
			if err != nil {
				return nil, fmt.Errorf("failed to load config: %w\nRun 'banban init <url>' to create a configuration file", err)
			}
			e.cfg = cfg
		}

		resolver, err := serverselect.NewResolver(e.log)
		if err != nil {
			return nil, err
		}
		server, err := resolver.Resolve(e.cfg, e.serverAlias)
		if err != nil {
			return nil, err
		}
		e.server = server
	}
	if e.cfg == nil {
		e.cfg = &config.Config{}
	}

	if e.server.URL == "" {
		return nil, fmt.Errorf("server URL is empty. Please edit banban.json and add a valid URL")
	}

	if e.api == nil {
		e.api = client.New(e.server.URL)
	}

	return e, nil
}

// store builds the session store for the selected server
func (e *env) store() *session.Store {
	return session.NewStore(e.api, e.tokens, e.server.URL, e.log)
}

// token returns the stored session token
func (e *env) token() (string, error) {
	return e.store().Token()
}

// pageSize picks the flag value when set, the config value otherwise
func (e *env) pageSize(flagSize int) int {
	if flagSize > 0 {
		return pagination.NormalizeSize(flagSize)
	}
	return e.cfg.EffectivePageSize()
}

// listFlags are shared by every paginated command
type listFlags struct {
	size  int
	pages int
	all   bool
}

func (f *listFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.size, "size", 0, "Page size (defaults to pageSize in banban.json)")
	cmd.Flags().IntVar(&f.pages, "pages", 1, "Number of pages to fetch")
	cmd.Flags().BoolVar(&f.all, "all", false, "Fetch every page")
}

func (f listFlags) maxPages() int {
	if f.all {
		return 0
	}
	return max(f.pages, 1)
}

// collect walks a list endpoint and reports a malformed page when the server
// sent one
func collect[T any](ctx context.Context, e *env, fetch pagination.FetchFunc[T], idOf pagination.IDFunc[T], flags listFlags) (*pagination.Pager[T], error) {
	pager, err := pagination.Collect(ctx, fetch, idOf, e.pageSize(flags.size), flags.maxPages())
	if err != nil {
		return nil, err
	}
	if pager.Malformed() {
		e.log.Warn().
			Int("pages", pager.Pages()).
			Msg("Server reported more pages but sent an empty one; stopping")
	}
	return pager, nil
}

func printMoreHint(w io.Writer, more bool, command string) {
	if more {
		fmt.Fprintf(w, "\nMore available: %s --all\n", command)
	}
}
