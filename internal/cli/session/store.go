// Package session owns the client's belief about authentication state and
// keeps it fresh in the background.
//
// Store is the single owner of that state and of the stored token. The
// Coordinator decides when a silent re-check is worth a network call, and
// Sources deliver the external signals (foregrounding, user focus) that
// prompt it.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/banban-dev/banban/internal/cli/auth"
	"github.com/banban-dev/banban/internal/cli/client"
)

// State is the lifecycle stage of a Store
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateResolved
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateResolved:
		return "resolved"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ErrorPolicy selects how a failed check is handled
type ErrorPolicy int

const (
	// PolicySurface records the failure in the snapshot and returns it
	PolicySurface ErrorPolicy = iota
	// PolicySilent swallows the failure and leaves the snapshot untouched
	PolicySilent
)

// Snapshot is a point-in-time copy of the session state
type Snapshot struct {
	State         State
	User          *client.User
	Authenticated bool
	Loading       bool
	Err           error
}

// API is the part of the ban:ban API the session store talks to
type API interface {
	Me(ctx context.Context, token string) (*client.User, error)
	Login(ctx context.Context, email, password string) (*client.LoginResponse, error)
	Signup(ctx context.Context, email, password, nickname string) (*client.LoginResponse, error)
	Logout(ctx context.Context, token string) error
}

// Store owns the authentication state for one server
type Store struct {
	api    API
	tokens auth.TokenStore
	server string
	log    zerolog.Logger

	mu       sync.Mutex
	snap     Snapshot
	onChange func(Snapshot)
}

// NewStore creates a store in the uninitialized state. server keys the token
// in the token store.
func NewStore(api API, tokens auth.TokenStore, server string, log zerolog.Logger) *Store {
	return &Store{
		api:    api,
		tokens: tokens,
		server: server,
		log:    log.With().Str("component", "session").Logger(),
	}
}

// OnChange registers a callback invoked after every state change
func (s *Store) OnChange(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// Snapshot returns a copy of the current state
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked()
}

// Token returns the stored session token
func (s *Store) Token() (string, error) {
	return s.tokens.LoadToken(s.server)
}

// HasToken reports whether a session token is stored
func (s *Store) HasToken() bool {
	token, err := s.tokens.LoadToken(s.server)
	return err == nil && token != ""
}

// Check asks the session endpoint who the stored token belongs to
func (s *Store) Check(ctx context.Context, policy ErrorPolicy) error {
	token, err := s.tokens.LoadToken(s.server)
	if err != nil {
		if policy == PolicySilent {
			s.log.Debug().Err(err).Msg("Silent check skipped: no token")
			return nil
		}
		s.update(func(snap *Snapshot) {
			snap.State = StateResolved
			snap.Loading = false
			snap.Authenticated = false
			snap.User = nil
			snap.Err = err
		})
		return err
	}

	if policy == PolicySurface {
		s.update(func(snap *Snapshot) {
			snap.State = StateLoading
			snap.Loading = true
		})
	}

	user, err := s.api.Me(ctx, token)
	if err != nil {
		if policy == PolicySilent {
			s.log.Debug().Err(err).Msg("Silent session check failed")
			return nil
		}
		s.update(func(snap *Snapshot) {
			snap.State = StateResolved
			snap.Loading = false
			snap.Err = err
			if errors.Is(err, client.ErrUnauthorized) {
				snap.Authenticated = false
				snap.User = nil
			}
		})
		return fmt.Errorf("session check failed: %w", err)
	}

	s.resolve(user)
	s.log.Debug().Str("user_id", user.ID).Msg("Session check succeeded")
	return nil
}

// Login authenticates and stores the resulting token
func (s *Store) Login(ctx context.Context, email, password string) error {
	return s.authenticate(func() (*client.LoginResponse, error) {
		return s.api.Login(ctx, email, password)
	})
}

// Signup creates an account and stores the resulting token
func (s *Store) Signup(ctx context.Context, email, password, nickname string) error {
	return s.authenticate(func() (*client.LoginResponse, error) {
		return s.api.Signup(ctx, email, password, nickname)
	})
}

func (s *Store) authenticate(call func() (*client.LoginResponse, error)) error {
	s.update(func(snap *Snapshot) {
		snap.State = StateLoading
		snap.Loading = true
	})

	resp, err := call()
	if err != nil {
		s.update(func(snap *Snapshot) {
			snap.State = StateResolved
			snap.Loading = false
			snap.Err = err
		})
		return err
	}

	if err := s.tokens.SaveToken(s.server, resp.Token); err != nil {
		s.update(func(snap *Snapshot) {
			snap.State = StateResolved
			snap.Loading = false
			snap.Err = err
		})
		return fmt.Errorf("failed to save authentication token: %w", err)
	}

	user := resp.User
	s.resolve(&user)
	return nil
}

// Logout ends the session. The server is told on a best-effort basis; the
// local token is always removed and the store returns to uninitialized.
func (s *Store) Logout(ctx context.Context) error {
	if token, err := s.tokens.LoadToken(s.server); err == nil {
		if err := s.api.Logout(ctx, token); err != nil {
			s.log.Warn().Err(err).Msg("Server logout failed")
		}
	}

	if err := s.tokens.DeleteToken(s.server); err != nil {
		return err
	}

	s.update(func(snap *Snapshot) {
		*snap = Snapshot{}
	})
	return nil
}

func (s *Store) resolve(user *client.User) {
	s.update(func(snap *Snapshot) {
		snap.State = StateResolved
		snap.Loading = false
		snap.Authenticated = true
		snap.User = user
		snap.Err = nil
	})
}

func (s *Store) update(fn func(*Snapshot)) {
	s.mu.Lock()
	fn(&s.snap)
	snap := s.copyLocked()
	onChange := s.onChange
	s.mu.Unlock()

	if onChange != nil {
		onChange(snap)
	}
}

func (s *Store) copyLocked() Snapshot {
	snap := s.snap
	if snap.User != nil {
		u := *snap.User
		snap.User = &u
	}
	return snap
}
