/*
Package spotted implements the engine behind the "spot the person in a photo"
slack game.

Users post a photo and @mention the people they caught in it. The poster gains
a point per person spotted and every spotted person loses one on a shared
leaderboard.

Slack can deliver the same logical spot more than once: as a message event, as
a separate file_shared event, and again through history refetches. It may also
attach files to a message after the message event itself has been delivered.
The engine therefore runs every inbound event through a Classifier that
normalizes it into a Spot, claims the spot's dedup key on a bounded Ledger
exactly once, and only then lets the Reconciler apply score deltas against the
persistent store.

Example code:

	package main

	import (
		"log"

		"github.com/spottedbot/spotted"
		"github.com/spottedbot/spotted/config"
		"github.com/spottedbot/spotted/store"
	)

	func main() {
		v := config.NewViperWithDefaults()
		v.Set(config.TokenKey, "xoxb-...")

		storer, err := store.NewLevelDB("scores", "~/.spotted")
		if err != nil {
			log.Fatal(err)
		}
		defer storer.Close()

		bot, err := spotted.New("spotted", v, storer)
		if err != nil {
			log.Fatal(err)
		}

		if err := bot.Run(); err != nil {
			log.Fatal(err)
		}
	}
*/
package spotted
