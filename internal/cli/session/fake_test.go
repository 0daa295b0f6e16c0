package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/banban-dev/banban/internal/cli/client"
)

const testServer = "https://api.banban.test"

// fakeAPI records session endpoint calls. When block is set, Me waits for it
// to be closed before answering.
type fakeAPI struct {
	mu        sync.Mutex
	user      *client.User
	meErr     error
	loginErr  error
	logoutErr error
	block     chan struct{}
	started   chan struct{}

	meCalls     atomic.Int32
	logoutCalls atomic.Int32
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{user: &client.User{ID: "01HUSER", Email: "kim@banban.test", Nickname: "kim"}}
}

func (f *fakeAPI) setMeErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.meErr = err
}

func (f *fakeAPI) Me(ctx context.Context, token string) (*client.User, error) {
	f.meCalls.Add(1)
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.meErr != nil {
		return nil, f.meErr
	}
	u := *f.user
	return &u, nil
}

func (f *fakeAPI) Login(ctx context.Context, email, password string) (*client.LoginResponse, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	if password != "secret" {
		return nil, errors.New("login failed: status 401: invalid email or password")
	}
	return &client.LoginResponse{Token: "token-" + email, User: *f.user}, nil
}

func (f *fakeAPI) Signup(ctx context.Context, email, password, nickname string) (*client.LoginResponse, error) {
	u := *f.user
	u.Email = email
	u.Nickname = nickname
	return &client.LoginResponse{Token: "token-" + email, User: u}, nil
}

func (f *fakeAPI) Logout(ctx context.Context, token string) error {
	f.logoutCalls.Add(1)
	return f.logoutErr
}
