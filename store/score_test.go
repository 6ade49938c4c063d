package store_test

import (
	"testing"

	"github.com/spottedbot/spotted/store"
	"github.com/stretchr/testify/assert"
)

func scoreboard() []store.ScoreEntry {
	return []store.ScoreEntry{
		{UserID: "U333CCCC3", DisplayName: "carol", Points: -2},
		{UserID: "U111AAAA1", DisplayName: "alice", Points: 5},
		{UserID: "U444DDDD4", DisplayName: "dave", Points: 5},
		{UserID: "U222BBBB2", DisplayName: "bob", Points: 1},
	}
}

func TestTopEntriesRanksBestFirst(t *testing.T) {
	top := store.TopEntries(scoreboard(), 3)

	if assert.Equal(t, 3, len(top)) {
		assert.Equal(t, "U111AAAA1", top[0].UserID)
		assert.Equal(t, "U444DDDD4", top[1].UserID)
		assert.Equal(t, "U222BBBB2", top[2].UserID)
	}
}

func TestTopEntriesBreaksTiesByUserID(t *testing.T) {
	top := store.TopEntries(scoreboard(), 2)

	// Alice and dave are tied at 5 so the ordering falls back to user id
	assert.Equal(t, "U111AAAA1", top[0].UserID)
	assert.Equal(t, "U444DDDD4", top[1].UserID)
}

func TestWorstEntriesRanksWorstFirst(t *testing.T) {
	worst := store.WorstEntries(scoreboard(), 2)

	if assert.Equal(t, 2, len(worst)) {
		assert.Equal(t, "U333CCCC3", worst[0].UserID)
		assert.Equal(t, "U222BBBB2", worst[1].UserID)
	}
}

func TestTopEntriesWithCountLargerThanBoard(t *testing.T) {
	top := store.TopEntries(scoreboard(), 100)

	assert.Equal(t, 4, len(top))
}

func TestTopEntriesWithNegativeCount(t *testing.T) {
	top := store.TopEntries(scoreboard(), -1)

	assert.Empty(t, top)
}

func TestTopEntriesDoesNotMutateInput(t *testing.T) {
	entries := scoreboard()
	store.TopEntries(entries, 2)

	assert.Equal(t, "U333CCCC3", entries[0].UserID)
}
