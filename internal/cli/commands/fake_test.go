package commands

import (
	"bytes"
	"context"
	"sync"

	"github.com/banban-dev/banban/internal/cli/auth"
	"github.com/banban-dev/banban/internal/cli/client"
	"github.com/banban-dev/banban/internal/cli/config"
	"github.com/banban-dev/banban/internal/pagination"
)

var testServer = &config.Server{URL: "https://api.banban.test", Alias: "production"}

// fakeAPI serves canned data and records the requests it saw
type fakeAPI struct {
	mu sync.Mutex

	user          client.User
	feeds         []client.Feed
	comments      []client.Comment
	notifications []client.Notification
	game          *client.Game
	votes         client.VoteInfo
	created       []client.CreateGameRequest
	readIDs       []int64
	cursors       []*int64
	meErr         error
	logoutCalls   int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		user: client.User{ID: "01HUSER", Email: "kim@banban.test", Nickname: "kim"},
		game: &client.Game{ID: 7, Title: "Summer or winter?", OptionA: "Summer", OptionB: "Winter", PlayDate: "2026-10-14"},
	}
}

// page slices items by descending id the way the server does
func page[T any](items []T, idOf func(T) int64, req pagination.Request) pagination.Page[T] {
	size := pagination.NormalizeSize(req.Size)
	var out []T
	for _, it := range items {
		if req.Cursor != nil && idOf(it) >= *req.Cursor {
			continue
		}
		out = append(out, it)
	}
	if len(out) > size {
		return pagination.Page[T]{Items: out[:size], HasNext: true}
	}
	return pagination.Page[T]{Items: out}
}

func (f *fakeAPI) recordCursor(req pagination.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if req.Cursor == nil {
		f.cursors = append(f.cursors, nil)
		return
	}
	c := *req.Cursor
	f.cursors = append(f.cursors, &c)
}

func (f *fakeAPI) Me(ctx context.Context, token string) (*client.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.meErr != nil {
		return nil, f.meErr
	}
	u := f.user
	return &u, nil
}

func (f *fakeAPI) Login(ctx context.Context, email, password string) (*client.LoginResponse, error) {
	if password != "secret" {
		return nil, &client.APIError{Status: 401, Message: "invalid email or password"}
	}
	u := f.user
	u.Email = email
	return &client.LoginResponse{Token: "token-" + email, User: u}, nil
}

func (f *fakeAPI) Signup(ctx context.Context, email, password, nickname string) (*client.LoginResponse, error) {
	u := f.user
	u.Email = email
	u.Nickname = nickname
	return &client.LoginResponse{Token: "token-" + email, User: u}, nil
}

func (f *fakeAPI) Logout(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logoutCalls++
	return nil
}

func (f *fakeAPI) ListFeeds(ctx context.Context, token string, req pagination.Request) (pagination.Page[client.Feed], error) {
	f.recordCursor(req)
	return page(f.feeds, client.FeedID, req), nil
}

func (f *fakeAPI) CreateFeed(ctx context.Context, token, content string, gameID *int64) (*client.Feed, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	feed := client.Feed{ID: int64(len(f.feeds) + 1), Content: content, GameID: gameID, AuthorNickname: f.user.Nickname}
	f.feeds = append([]client.Feed{feed}, f.feeds...)
	return &feed, nil
}

func (f *fakeAPI) ListComments(ctx context.Context, token string, feedID int64, req pagination.Request) (pagination.Page[client.Comment], error) {
	f.recordCursor(req)
	var onFeed []client.Comment
	for _, c := range f.comments {
		if c.FeedID == feedID {
			onFeed = append(onFeed, c)
		}
	}
	return page(onFeed, client.CommentID, req), nil
}

func (f *fakeAPI) CreateComment(ctx context.Context, token string, feedID int64, content string) (*client.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	comment := client.Comment{ID: int64(len(f.comments) + 1), FeedID: feedID, Content: content}
	f.comments = append(f.comments, comment)
	return &comment, nil
}

func (f *fakeAPI) ListNotifications(ctx context.Context, token string, req pagination.Request) (pagination.Page[client.Notification], error) {
	f.recordCursor(req)
	return page(f.notifications, client.NotificationID, req), nil
}

func (f *fakeAPI) MarkNotificationRead(ctx context.Context, token string, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readIDs = append(f.readIDs, id)
	return nil
}

func (f *fakeAPI) TodayGame(ctx context.Context, token string) (*client.Game, error) {
	if f.game == nil {
		return nil, &client.APIError{Status: 404, Message: "no game today"}
	}
	g := *f.game
	return &g, nil
}

func (f *fakeAPI) Vote(ctx context.Context, token string, gameID int64, option string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.votes.MyVote != "" {
		return &client.APIError{Status: 409, Message: "already voted"}
	}
	f.votes.MyVote = option
	if option == "A" {
		f.votes.CountA++
	} else {
		f.votes.CountB++
	}
	return nil
}

func (f *fakeAPI) VoteInfo(ctx context.Context, token string, gameID int64) (*client.VoteInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	info := f.votes
	info.GameID = gameID
	return &info, nil
}

func (f *fakeAPI) CreateGame(ctx context.Context, token string, req client.CreateGameRequest) (*client.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, req)
	return &client.Game{
		ID:       int64(len(f.created)),
		Title:    req.Title,
		OptionA:  req.OptionA,
		OptionB:  req.OptionB,
		PlayDate: req.PlayDate,
	}, nil
}

func (f *fakeAPI) Health(ctx context.Context) (*client.Health, error) {
	return &client.Health{Status: "ok", Service: "banban", Version: "1.2.0"}, nil
}

// safeBuffer is a bytes.Buffer safe for use from several goroutines
type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// testEnv wires a fake API and in-memory token store to a command
type testEnv struct {
	api    *fakeAPI
	tokens *auth.MemoryStore
	out    *safeBuffer
}

func newTestEnv(loggedIn bool) *testEnv {
	te := &testEnv{
		api:    newFakeAPI(),
		tokens: auth.NewMemoryStore(),
		out:    &safeBuffer{},
	}
	if loggedIn {
		_ = te.tokens.SaveToken(testServer.URL, "token-kim")
	}
	return te
}

func (te *testEnv) opts(extra ...Option) []Option {
	return append([]Option{
		WithAPI(te.api),
		WithTokenStore(te.tokens),
		WithServer(testServer),
		WithOutput(te.out),
	}, extra...)
}
