package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banban-dev/banban/internal/cli/auth"
	"github.com/banban-dev/banban/internal/cli/client"
)

func TestRunLogin(t *testing.T) {
	t.Setenv("BANBAN_EMAIL", "")
	t.Setenv("BANBAN_PASSWORD", "")
	te := newTestEnv(false)

	err := runLogin(context.Background(), "kim@banban.test", "secret", te.opts()...)
	require.NoError(t, err)

	token, err := te.tokens.LoadToken(testServer.URL)
	require.NoError(t, err)
	assert.Equal(t, "token-kim@banban.test", token)
	assert.Contains(t, te.out.String(), "✓ Login successful!")
	assert.Contains(t, te.out.String(), "kim (kim@banban.test)")
}

func TestRunLogin_WrongPassword(t *testing.T) {
	t.Setenv("BANBAN_EMAIL", "")
	t.Setenv("BANBAN_PASSWORD", "")
	te := newTestEnv(false)

	err := runLogin(context.Background(), "kim@banban.test", "nope", te.opts()...)
	require.Error(t, err)

	_, err = te.tokens.LoadToken(testServer.URL)
	assert.ErrorIs(t, err, auth.ErrNoToken)
}

func TestRunLogin_CredentialsFromEnv(t *testing.T) {
	t.Setenv("BANBAN_EMAIL", "env@banban.test")
	t.Setenv("BANBAN_PASSWORD", "secret")
	te := newTestEnv(false)

	err := runLogin(context.Background(), "", "", te.opts()...)
	require.NoError(t, err)

	token, err := te.tokens.LoadToken(testServer.URL)
	require.NoError(t, err)
	assert.Equal(t, "token-env@banban.test", token)
}

func TestRunLogin_MissingEmail(t *testing.T) {
	t.Setenv("BANBAN_EMAIL", "")
	te := newTestEnv(false)

	err := runLogin(context.Background(), "", "secret", te.opts()...)
	assert.ErrorContains(t, err, "email is required")
}

func TestRunSignup(t *testing.T) {
	t.Setenv("BANBAN_EMAIL", "")
	t.Setenv("BANBAN_PASSWORD", "")
	te := newTestEnv(false)

	err := runSignup(context.Background(), "new@banban.test", "secret", "newbie", te.opts()...)
	require.NoError(t, err)

	assert.Contains(t, te.out.String(), "Welcome to ban:ban, newbie!")
	_, err = te.tokens.LoadToken(testServer.URL)
	assert.NoError(t, err)
}

func TestRunSignup_RequiresNickname(t *testing.T) {
	te := newTestEnv(false)

	err := runSignup(context.Background(), "new@banban.test", "secret", "", te.opts()...)
	assert.ErrorContains(t, err, "nickname is required")
}

func TestRunLogout(t *testing.T) {
	te := newTestEnv(true)

	err := runLogout(context.Background(), te.opts()...)
	require.NoError(t, err)

	_, err = te.tokens.LoadToken(testServer.URL)
	assert.ErrorIs(t, err, auth.ErrNoToken)
	assert.Equal(t, 1, te.api.logoutCalls)
	assert.Contains(t, te.out.String(), "Logged out of production")
}

func TestRunLogout_WithoutToken(t *testing.T) {
	te := newTestEnv(false)

	err := runLogout(context.Background(), te.opts()...)
	require.NoError(t, err)
	assert.Zero(t, te.api.logoutCalls)
}

func TestRunWhoami(t *testing.T) {
	te := newTestEnv(true)

	err := runWhoami(context.Background(), te.opts()...)
	require.NoError(t, err)
	assert.Equal(t, "kim (kim@banban.test) on production\n", te.out.String())
}

func TestRunWhoami_Expired(t *testing.T) {
	te := newTestEnv(true)
	te.api.meErr = client.ErrUnauthorized

	err := runWhoami(context.Background(), te.opts()...)
	assert.ErrorIs(t, err, client.ErrUnauthorized)
}
