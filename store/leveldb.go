package store

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	leveldberrors "github.com/syndtr/goleveldb/leveldb/errors"
)

// LevelDB holds a scoreboard name and its leveldb instance
type LevelDB struct {
	Name     string
	database *leveldb.DB
}

// scoreRecord is the stored value, keyed by user id
type scoreRecord struct {
	Points      int    `json:"points"`
	DisplayName string `json:"displayName"`
}

// NewLevelDB instantiates and opens a new LevelDB instance backed by a leveldb database. If the
// leveldb database doesn't exist, one is created
func NewLevelDB(name string, storagePath string) (ldb *LevelDB, err error) {
	// Expand '~' as the full home directory path if appropriate
	path, err := homedir.Expand(storagePath)
	if err != nil {
		return nil, err
	}

	fullPath := filepath.Join(path, name)
	db, err := leveldb.OpenFile(fullPath, nil)

	if _, ok := err.(*leveldberrors.ErrCorrupted); ok {
		return nil, errors.Wrap(err, fmt.Sprintf("leveldb corrupted. Consider deleting [%s] and restarting if you don't mind losing data", fullPath))
	} else if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("failed to open file with path [%s]", fullPath))
	}

	return &LevelDB{name, db}, nil
}

// Close closes the LevelDB
func (ldb *LevelDB) Close() (err error) {
	return ldb.database.Close()
}

// GetScore returns a user's current score, 0 when the user has never been
// scored
func (ldb *LevelDB) GetScore(userID string) (points int, err error) {
	record, err := ldb.getRecord(userID)
	if err != nil {
		return 0, err
	}

	return record.Points, nil
}

// UpdateScore applies a delta to a user's score, creating the entry when
// absent, and refreshes the stored display name
func (ldb *LevelDB) UpdateScore(userID string, delta int, displayName string) (newTotal int, err error) {
	record, err := ldb.getRecord(userID)
	if err != nil {
		return 0, err
	}

	record.Points = record.Points + delta
	record.DisplayName = displayName

	value, err := json.Marshal(record)
	if err != nil {
		return 0, errors.Wrap(err, fmt.Sprintf("failed to encode score for [%s]", userID))
	}

	if err = ldb.database.Put([]byte(userID), value, nil); err != nil {
		return 0, errors.Wrap(err, fmt.Sprintf("failed to write score for [%s]", userID))
	}

	return record.Points, nil
}

// Scan returns the complete scoreboard
func (ldb *LevelDB) Scan() (entries []ScoreEntry, err error) {
	entries = make([]ScoreEntry, 0)
	iter := ldb.database.NewIterator(nil, nil)
	for iter.Next() {
		var record scoreRecord
		if err = json.Unmarshal(iter.Value(), &record); err != nil {
			iter.Release()
			return nil, errors.Wrap(err, fmt.Sprintf("failed to decode score for [%s]", string(iter.Key())))
		}

		entries = append(entries, ScoreEntry{UserID: string(iter.Key()), DisplayName: record.DisplayName, Points: record.Points})
	}

	iter.Release()
	if err = iter.Error(); err != nil {
		return nil, err
	}

	return entries, nil
}

// Top returns the count best scores, ranked
func (ldb *LevelDB) Top(count int) (entries []ScoreEntry, err error) {
	entries, err = ldb.Scan()
	if err != nil {
		return nil, err
	}

	return TopEntries(entries, count), nil
}

// Worst returns the count worst scores, ranked
func (ldb *LevelDB) Worst(count int) (entries []ScoreEntry, err error) {
	entries, err = ldb.Scan()
	if err != nil {
		return nil, err
	}

	return WorstEntries(entries, count), nil
}

// ResetAll wipes the scoreboard
func (ldb *LevelDB) ResetAll() (err error) {
	batch := new(leveldb.Batch)

	iter := ldb.database.NewIterator(nil, nil)
	for iter.Next() {
		batch.Delete(append([]byte(nil), iter.Key()...))
	}

	iter.Release()
	if err = iter.Error(); err != nil {
		return err
	}

	return ldb.database.Write(batch, nil)
}

// getRecord reads a user's stored record, returning the zero record when the
// user has never been scored
func (ldb *LevelDB) getRecord(userID string) (record scoreRecord, err error) {
	value, err := ldb.database.Get([]byte(userID), nil)
	if err == leveldberrors.ErrNotFound {
		return record, nil
	} else if err != nil {
		return record, errors.Wrap(err, fmt.Sprintf("failed to read score for [%s]", userID))
	}

	if err = json.Unmarshal(value, &record); err != nil {
		return record, errors.Wrap(err, fmt.Sprintf("failed to decode score for [%s]", userID))
	}

	return record, nil
}
