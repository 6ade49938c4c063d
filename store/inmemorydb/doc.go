/*
Package inmemorydb provides an implementation of github.com/spottedbot/spotted/store's ScoreStorer interface
as an in-memory data store relying on a wrapping ScoreStorer for actual persistence.

The main use-case for the inmemorydb is to shield the real ScoreStorer implementation from receiving too many calls
as the http read side and the digest rescan the scoreboard freely. Of course, using this also allows the instance
to offer lower latency at the expense of increased memory usage.

Scoreboards are small (one entry per player) so this is generally a good idea to use.

Example code:

	import (
		"github.com/spottedbot/spotted/store/datastoredb"
		"github.com/spottedbot/spotted/store/inmemorydb"
		"google.golang.org/api/option"
	)

	func main() {
		// Create your persistent storer first
		persistentStorer, err := datastoredb.NewDatastoreDB("spotted", "myproject", option.WithCredentialsFile(*gcloudCredentialsFile))
		if err != nil {
			log.Fatalf("Opening scoreboard db failed: %s", err.Error())
		}
		defer persistentStorer.Close()

		// Create the inmemorydb
		scoreStorer, err := inmemorydb.New(persistentStorer)
		if err != nil {
			log.Fatalf("Error creating in-memory db wrapper: %s", err.Error())
		}

		// Run your instance on top of the storer
		...
	}
*/
package inmemorydb
