package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAndRecent(t *testing.T) {
	store := NewStore(t.TempDir())

	for i, goal := range []string{"first", "second", "third"} {
		require.NoError(t, store.Append("general", Record{
			Goal:      goal,
			Answer:    "answer " + goal,
			Timestamp: time.Date(2025, 1, 1, i, 0, 0, 0, time.UTC),
		}))
	}

	recent, err := store.Recent("general", 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "second", recent[0].Goal, "recent window must be oldest-first")
	assert.Equal(t, "third", recent[1].Goal)
}

func TestRecentMissingCategory(t *testing.T) {
	store := NewStore(t.TempDir())
	recent, err := store.Recent("nope", 5)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestCategoriesAndClear(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, store.Append("work", Record{Goal: "g", Answer: "a"}))
	require.NoError(t, store.Append("home", Record{Goal: "g", Answer: "a"}))

	cats, err := store.Categories()
	require.NoError(t, err)
	assert.Equal(t, []string{"home", "work"}, cats)

	require.NoError(t, store.Clear("home"))
	cats, err = store.Categories()
	require.NoError(t, err)
	assert.Equal(t, []string{"work"}, cats)

	require.Error(t, store.Clear("../escape"))
}

func TestWindow(t *testing.T) {
	store := NewStore(t.TempDir())
	assert.Empty(t, store.Window("general", 3))

	require.NoError(t, store.Append("general", Record{Goal: "what is Go?", Answer: "a language"}))
	window := store.Window("general", 3)
	assert.Contains(t, window, "Q: what is Go?")
	assert.Contains(t, window, "A: a language")
}
