package server

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/banban-dev/banban/internal/auth"
	"github.com/banban-dev/banban/internal/config"
	"github.com/banban-dev/banban/internal/database"
	"github.com/banban-dev/banban/internal/models"
)

var testNow = time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

type fakeEnqueuer struct {
	mu    sync.Mutex
	tasks []*asynq.Task
}

func (f *fakeEnqueuer) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{Type: task.Type(), Payload: task.Payload()}, nil
}

type testServer struct {
	*Server
	enqueuer *fakeEnqueuer
	clock    *clockwork.FakeClock
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "test.sqlite"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })

	cfg := &config.Config{
		Server: config.ServerConfig{Port: "0", CORSOrigins: []string{"*"}},
		Auth:   config.AuthConfig{TokenTTL: time.Hour},
	}

	enq := &fakeEnqueuer{}
	clock := clockwork.NewFakeClockAt(testNow)

	srv, err := newServer(db, cfg, enq, clock, zerolog.Nop(), "1.2.0")
	require.NoError(t, err)

	return &testServer{Server: srv, enqueuer: enq, clock: clock}
}

// createUser stores a user and returns it with a valid token
func (ts *testServer) createUser(t *testing.T, nickname string, isAdmin bool) (models.User, string) {
	t.Helper()

	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)

	user := models.User{
		Email:        nickname + "@banban.test",
		PasswordHash: hash,
		Nickname:     nickname,
		IsAdmin:      isAdmin,
	}
	require.NoError(t, ts.db.Create(&user).Error)

	token, err := ts.issueToken(&user)
	require.NoError(t, err)
	return user, token
}

func (ts *testServer) createGame(t *testing.T, playDate string, published bool) models.BalanceGame {
	t.Helper()

	game := models.BalanceGame{
		Title:    "Summer or winter? " + playDate,
		OptionA:  "Summer",
		OptionB:  "Winter",
		PlayDate: playDate,
	}
	if published {
		now := testNow
		game.PublishedAt = &now
	}
	require.NoError(t, ts.db.Create(&game).Error)
	return game
}

// do sends a request and returns the recorded response
func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
