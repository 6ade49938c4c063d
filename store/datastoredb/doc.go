/*
Package datastoredb provides an implementation of github.com/spottedbot/spotted/store's ScoreStorer interface
backed by the Google Cloud Datastore.


Requirements for the Google Cloud Datastore integration:
  - A valid project id with datastore mode enabled
  - Google Cloud Credentials (typically in the form of a json file with credentials from https://console.cloud.google.com/apis/credentials/serviceaccountkey)

Example code:

	import (
		"github.com/spottedbot/spotted/store/datastoredb"
		"google.golang.org/api/option"
	)

	func main() {
		// The first argument is going to be this instance's namespace and maps to the datastore entity Kind.
		// The second argument is the gcloud project id which is what you'll have created with your gcloud service account
		// The third argument are client options which are most useful for providing credentials either in the form of a pre-parsed json file or
		// most commonly, the path to a json credentials file
		scoreStorer, err := datastoredb.NewDatastoreDB("spotted", "myproject", option.WithCredentialsFile(*gcloudCredentialsFile))
		if err != nil {
			log.Fatalf("Opening scoreboard db failed: %s", err.Error())
		}
		defer scoreStorer.Close()

		// Run your instance on top of the storer
		...
	}
*/
package datastoredb
