package inmemorydb

import (
	"sync"

	"github.com/spottedbot/spotted/store"
)

// InMemoryDB implements the spotted ScoreStorer interface and keeps a copy of
// the scoreboard in memory while writing through score mutations to the
// wrapped (persistent) ScoreStorer. Reads (including the http read side and
// digests) are served from memory
type InMemoryDB struct {
	mutex            sync.Mutex
	persistentStorer store.ScoreStorer
	scores           map[string]store.ScoreEntry
}

// New returns a new instance of InMemoryDB wrapping the persistent ScoreStorer.
// Note that instantiation might have some latency induced by the initial scan to load
// the current scoreboard from the persistentStorer in memory
func New(storer store.ScoreStorer) (imdb *InMemoryDB, err error) {
	imdb = new(InMemoryDB)
	imdb.persistentStorer = storer
	imdb.scores = make(map[string]store.ScoreEntry)

	entries, err := storer.Scan()
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		imdb.scores[entry.UserID] = entry
	}

	return imdb, nil
}

// GetScore returns a user's current score from memory, 0 when the user has
// never been scored
func (imdb *InMemoryDB) GetScore(userID string) (points int, err error) {
	imdb.mutex.Lock()
	defer imdb.mutex.Unlock()

	return imdb.scores[userID].Points, nil
}

// UpdateScore applies the delta on the persistent storer first and mirrors
// the resulting total in memory
func (imdb *InMemoryDB) UpdateScore(userID string, delta int, displayName string) (newTotal int, err error) {
	imdb.mutex.Lock()
	defer imdb.mutex.Unlock()

	newTotal, err = imdb.persistentStorer.UpdateScore(userID, delta, displayName)
	if err != nil {
		return 0, err
	}

	imdb.scores[userID] = store.ScoreEntry{UserID: userID, DisplayName: displayName, Points: newTotal}

	return newTotal, nil
}

// Scan returns the complete scoreboard from memory without querying the
// persistent storer
func (imdb *InMemoryDB) Scan() (entries []store.ScoreEntry, err error) {
	imdb.mutex.Lock()
	defer imdb.mutex.Unlock()

	entries = make([]store.ScoreEntry, 0, len(imdb.scores))
	for _, entry := range imdb.scores {
		entries = append(entries, entry)
	}

	return entries, nil
}

// Top returns the count best scores, ranked
func (imdb *InMemoryDB) Top(count int) (entries []store.ScoreEntry, err error) {
	entries, err = imdb.Scan()
	if err != nil {
		return nil, err
	}

	return store.TopEntries(entries, count), nil
}

// Worst returns the count worst scores, ranked
func (imdb *InMemoryDB) Worst(count int) (entries []store.ScoreEntry, err error) {
	entries, err = imdb.Scan()
	if err != nil {
		return nil, err
	}

	return store.WorstEntries(entries, count), nil
}

// ResetAll wipes the scoreboard, both persisted and in memory
func (imdb *InMemoryDB) ResetAll() (err error) {
	imdb.mutex.Lock()
	defer imdb.mutex.Unlock()

	if err = imdb.persistentStorer.ResetAll(); err != nil {
		return err
	}

	imdb.scores = make(map[string]store.ScoreEntry)

	return nil
}

// Close closes the underlying storer
func (imdb *InMemoryDB) Close() (err error) {
	return imdb.persistentStorer.Close()
}
