package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := Open("", true)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndLoadGame(t *testing.T) {
	s := openTestStorage(t)

	rec := GameRecord{
		ID:        "g1",
		White:     "alice",
		Black:     "bob",
		Moves:     []string{"e4", "e5", "Nf3"},
		UpdatedAt: time.Unix(100, 0).UTC(),
	}
	require.NoError(t, s.SaveGame(rec))

	loaded, err := s.LoadGame("g1")
	require.NoError(t, err)
	assert.Equal(t, rec.ID, loaded.ID)
	assert.Equal(t, rec.White, loaded.White)
	assert.Equal(t, rec.Black, loaded.Black)
	assert.Equal(t, rec.Moves, loaded.Moves)
	assert.True(t, rec.UpdatedAt.Equal(loaded.UpdatedAt))
}

func TestLoadMissingGame(t *testing.T) {
	s := openTestStorage(t)

	_, err := s.LoadGame("nope")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestSaveOverwrites(t *testing.T) {
	s := openTestStorage(t)

	require.NoError(t, s.SaveGame(GameRecord{ID: "g1", Moves: []string{"e4"}}))
	require.NoError(t, s.SaveGame(GameRecord{ID: "g1", Moves: []string{"e4", "e5"}, Result: "stalemate"}))

	loaded, err := s.LoadGame("g1")
	require.NoError(t, err)
	assert.Equal(t, []string{"e4", "e5"}, loaded.Moves)
	assert.Equal(t, "stalemate", loaded.Result)
}

func TestListGamesNewestFirst(t *testing.T) {
	s := openTestStorage(t)

	require.NoError(t, s.SaveGame(GameRecord{ID: "old", UpdatedAt: time.Unix(10, 0)}))
	require.NoError(t, s.SaveGame(GameRecord{ID: "new", UpdatedAt: time.Unix(20, 0)}))

	records, err := s.ListGames()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "new", records[0].ID)
	assert.Equal(t, "old", records[1].ID)
}

func TestDeleteGame(t *testing.T) {
	s := openTestStorage(t)

	require.NoError(t, s.SaveGame(GameRecord{ID: "g1"}))
	require.NoError(t, s.DeleteGame("g1"))

	_, err := s.LoadGame("g1")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}
