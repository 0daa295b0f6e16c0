package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banban-dev/banban/internal/cli/client"
)

func TestRunComments(t *testing.T) {
	te := newTestEnv(true)
	te.api.comments = []client.Comment{
		{ID: 3, FeedID: 1, AuthorNickname: "park", Content: "winter, obviously"},
		{ID: 2, FeedID: 2, AuthorNickname: "lee", Content: "other post"},
		{ID: 1, FeedID: 1, AuthorNickname: "choi", Content: "summer!"},
	}

	err := runComments(context.Background(), 1, listFlags{all: true}, te.opts()...)
	require.NoError(t, err)

	out := te.out.String()
	assert.Contains(t, out, "winter, obviously")
	assert.Contains(t, out, "summer!")
	assert.NotContains(t, out, "other post")
}

func TestRunComments_Empty(t *testing.T) {
	te := newTestEnv(true)

	err := runComments(context.Background(), 9, listFlags{pages: 1}, te.opts()...)
	require.NoError(t, err)
	assert.Contains(t, te.out.String(), "No comments on #9 yet.")
}

func TestRunComment(t *testing.T) {
	te := newTestEnv(true)

	err := runComment(context.Background(), 4, "agreed", te.opts()...)
	require.NoError(t, err)

	require.Len(t, te.api.comments, 1)
	assert.Equal(t, int64(4), te.api.comments[0].FeedID)
	assert.Equal(t, "agreed", te.api.comments[0].Content)
	assert.Contains(t, te.out.String(), "Commented on #4")
}
