package datastoredb

import (
	"context"

	"cloud.google.com/go/datastore"
	"github.com/spottedbot/spotted/store"
	"google.golang.org/api/option"
)

// DatastoreDB implements the spotted ScoreStorer interface on google cloud
// datastore. It maps the given name to the datastore entity Kind to isolate
// scoreboards sharing a project
type DatastoreDB struct {
	*datastore.Client
	kind string
}

// scoreEntity represents a scoreboard entry mapped to a datastore key
type scoreEntity struct {
	Points      int    `datastore:",noindex"`
	DisplayName string `datastore:",noindex"`
}

// NewDatastoreDB returns a new instance of DatastoreDB for the given name (which maps to the datastore entity "Kind" and can
// be thought of as the namespace). This function also requires a gcloudProjectID as well as at least one option to provide gcloud client credentials
func NewDatastoreDB(name string, gcloudProjectID string, gcloudClientOpts ...option.ClientOption) (dsdb *DatastoreDB, err error) {
	ctx := context.Background()
	client, err := datastore.NewClient(ctx, gcloudProjectID, gcloudClientOpts...)
	if err != nil {
		return nil, err
	}

	dsdb = new(DatastoreDB)
	dsdb.Client = client
	dsdb.kind = name

	if err = dsdb.testDB(); err != nil {
		dsdb.Close()
		return nil, err
	}

	return dsdb, nil
}

// testDB makes a lightweight call to the datastore to validate connectivity and credentials
func (dsdb *DatastoreDB) testDB() (err error) {
	_, err = dsdb.GetScore("testConnectivity")

	return err
}

// GetScore returns a user's current score, 0 when the user has never been
// scored
func (dsdb *DatastoreDB) GetScore(userID string) (points int, err error) {
	e, err := dsdb.getEntity(userID)
	if err != nil {
		return 0, err
	}

	return e.Points, nil
}

// UpdateScore applies a delta to a user's score inside a datastore
// transaction, creating the entry when absent, and refreshes the stored
// display name
func (dsdb *DatastoreDB) UpdateScore(userID string, delta int, displayName string) (newTotal int, err error) {
	ctx := context.Background()
	k := datastore.NameKey(dsdb.kind, userID, nil)

	var e scoreEntity
	_, err = dsdb.RunInTransaction(ctx, func(tx *datastore.Transaction) (terr error) {
		if terr = tx.Get(k, &e); terr != nil && terr != datastore.ErrNoSuchEntity {
			return terr
		}

		e.Points = e.Points + delta
		e.DisplayName = displayName

		_, terr = tx.Put(k, &e)
		return terr
	})

	if err != nil {
		return 0, err
	}

	return e.Points, nil
}

// Scan returns the complete scoreboard
func (dsdb *DatastoreDB) Scan() (entries []store.ScoreEntry, err error) {
	ctx := context.Background()

	var vals []*scoreEntity
	keys, err := dsdb.GetAll(ctx, datastore.NewQuery(dsdb.kind), &vals)
	if err != nil {
		return nil, err
	}

	entries = make([]store.ScoreEntry, 0, len(keys))
	for i, key := range keys {
		entries = append(entries, store.ScoreEntry{UserID: key.Name, DisplayName: vals[i].DisplayName, Points: vals[i].Points})
	}

	return entries, nil
}

// Top returns the count best scores, ranked
func (dsdb *DatastoreDB) Top(count int) (entries []store.ScoreEntry, err error) {
	entries, err = dsdb.Scan()
	if err != nil {
		return nil, err
	}

	return store.TopEntries(entries, count), nil
}

// Worst returns the count worst scores, ranked
func (dsdb *DatastoreDB) Worst(count int) (entries []store.ScoreEntry, err error) {
	entries, err = dsdb.Scan()
	if err != nil {
		return nil, err
	}

	return store.WorstEntries(entries, count), nil
}

// ResetAll wipes the scoreboard
func (dsdb *DatastoreDB) ResetAll() (err error) {
	ctx := context.Background()

	keys, err := dsdb.GetAll(ctx, datastore.NewQuery(dsdb.kind).KeysOnly(), nil)
	if err != nil {
		return err
	}

	return dsdb.DeleteMulti(ctx, keys)
}

// Close closes the underlying datastore client
func (dsdb *DatastoreDB) Close() (err error) {
	return dsdb.Client.Close()
}

// getEntity reads a user's stored entity, returning the zero entity when the
// user has never been scored
func (dsdb *DatastoreDB) getEntity(userID string) (e scoreEntity, err error) {
	ctx := context.Background()
	k := datastore.NameKey(dsdb.kind, userID, nil)

	if err = dsdb.Get(ctx, k, &e); err != nil && err != datastore.ErrNoSuchEntity {
		return e, err
	}

	return e, nil
}
