// Package store defines the scoreboard storage interface along with its
// leveldb implementation
package store

import (
	"sort"
	"strings"
)

// ScoreEntry holds one user's standing on the scoreboard
type ScoreEntry struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Points      int    `json:"points"`
}

// ScoreStorer defines the interface of the scoreboard storage. UpdateScore is
// the only mutation the game needs: an atomic delta apply that creates the
// user's entry when absent and returns the resulting total
type ScoreStorer interface {
	// GetScore returns a user's current score, 0 when the user has never
	// been scored
	GetScore(userID string) (points int, err error)

	// UpdateScore applies a delta to a user's score, creating the entry when
	// absent, and refreshes the stored display name
	UpdateScore(userID string, delta int, displayName string) (newTotal int, err error)

	// Scan returns the complete scoreboard
	Scan() (entries []ScoreEntry, err error)

	// Top returns the count best scores, ranked
	Top(count int) (entries []ScoreEntry, err error)

	// Worst returns the count worst scores, ranked
	Worst(count int) (entries []ScoreEntry, err error)

	// ResetAll wipes the scoreboard
	ResetAll() (err error)

	// Close closes the underlying storage
	Close() (err error)
}

// rankedEntries sorts best-first, with ties broken by user id for a stable
// ordering
type rankedEntries []ScoreEntry

func (r rankedEntries) Len() int { return len(r) }

func (r rankedEntries) Less(i, j int) bool {
	return r[i].Points > r[j].Points || (r[i].Points == r[j].Points && strings.Compare(r[i].UserID, r[j].UserID) < 0)
}

func (r rankedEntries) Swap(i, j int) { r[i], r[j] = r[j], r[i] }

// TopEntries ranks entries best-first and keeps the first count. Shared by
// the storage implementations so ranking behaves the same on every backend
func TopEntries(entries []ScoreEntry, count int) []ScoreEntry {
	ranked := make(rankedEntries, len(entries))
	copy(ranked, entries)
	sort.Sort(ranked)

	return clip(ranked, count)
}

// WorstEntries ranks entries worst-first and keeps the first count
func WorstEntries(entries []ScoreEntry, count int) []ScoreEntry {
	ranked := make(rankedEntries, len(entries))
	copy(ranked, entries)
	sort.Sort(sort.Reverse(ranked))

	return clip(ranked, count)
}

func clip(entries []ScoreEntry, count int) []ScoreEntry {
	if count < 0 {
		count = 0
	}

	if len(entries) > count {
		entries = entries[:count]
	}

	return entries
}
