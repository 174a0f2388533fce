package repository

import (
	"path/filepath"
	"testing"

	"github.com/ponyo877/salachat/server/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteHistory(t *testing.T) *SQLiteHistory {
	t.Helper()
	h, err := OpenSQLiteHistory(filepath.Join(t.TempDir(), "salachat.db"))
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })
	return h
}

func TestSQLiteHistory_AppendReplay(t *testing.T) {
	h := newSQLiteHistory(t)

	require.NoError(t, h.Ensure("lobby"))
	lines, err := h.Replay("lobby")
	require.NoError(t, err)
	assert.Empty(t, lines)

	require.NoError(t, h.Append("lobby", "[05-03-2024 09:08] alice: oi"))
	require.NoError(t, h.Append("lobby", "[05-03-2024 09:09] bob: olá"))
	require.NoError(t, h.Append("games", "[05-03-2024 09:09] carol: gg"))

	lines, err = h.Replay("lobby")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"[05-03-2024 09:08] alice: oi",
		"[05-03-2024 09:09] bob: olá",
	}, lines)

	lines, err = h.Replay("nowhere")
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestSQLiteHistory_SearchIsCaseSensitive(t *testing.T) {
	h := newSQLiteHistory(t)
	require.NoError(t, h.Append("lobby", "alice: Oi"))
	require.NoError(t, h.Append("lobby", "bob: oi"))
	require.NoError(t, h.Append("lobby", "carol: 100% oi"))

	lines, err := h.Search("lobby", "oi")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob: oi", "carol: 100% oi"}, lines)

	lines, err = h.Search("lobby", "%")
	require.NoError(t, err)
	assert.Equal(t, []string{"carol: 100% oi"}, lines)

	require.NoError(t, h.Ensure("empty"))
	lines, err = h.Search("empty", "oi")
	require.NoError(t, err)
	assert.Empty(t, lines)

	_, err = h.Search("nowhere", "oi")
	assert.ErrorIs(t, err, usecase.ErrNoHistory)
}

func TestSQLiteHistory_Rooms(t *testing.T) {
	h := newSQLiteHistory(t)
	require.NoError(t, h.Ensure("zeta"))
	require.NoError(t, h.Append("alpha", "oi"))

	rooms, err := h.Rooms()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, rooms)
}
