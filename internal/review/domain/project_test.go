package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	t.Parallel()

	allowed := [][2]ProjectStatus{
		{StatusPending, StatusInReview},
		{StatusPending, StatusArchived},
		{StatusInReview, StatusApproved},
		{StatusInReview, StatusArchived},
		{StatusApproved, StatusArchived},
		{StatusPending, StatusPending},
		{StatusApproved, StatusApproved},
	}
	for _, edge := range allowed {
		require.True(t, CanTransition(edge[0], edge[1]), "%s -> %s", edge[0], edge[1])
	}

	denied := [][2]ProjectStatus{
		{StatusInReview, StatusPending},
		{StatusApproved, StatusPending},
		{StatusApproved, StatusInReview},
		{StatusArchived, StatusPending},
		{StatusArchived, StatusInReview},
		{StatusArchived, StatusApproved},
		{StatusPending, StatusApproved},
	}
	for _, edge := range denied {
		require.False(t, CanTransition(edge[0], edge[1]), "%s -> %s", edge[0], edge[1])
	}
}

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	t.Run("prefixes https when scheme omitted", func(t *testing.T) {
		got, err := NormalizeURL("acme.com")
		require.NoError(t, err)
		require.Equal(t, "https://acme.com", got)
	})

	t.Run("keeps explicit schemes", func(t *testing.T) {
		got, err := NormalizeURL("http://staging.acme.com/preview")
		require.NoError(t, err)
		require.Equal(t, "http://staging.acme.com/preview", got)
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		for _, raw := range []string{"", "   ", "://nope", "https://", "ftp://acme.com", "ht tp://x.com"} {
			_, err := NormalizeURL(raw)
			require.ErrorIs(t, err, ErrInvalidURL, "input %q", raw)
		}
	})
}
