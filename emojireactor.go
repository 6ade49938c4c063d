package spotted

import (
	"github.com/nlopes/slack"
)

// EmojiReactor is implemented by any value that has the AddReaction method.
// The main purpose is a slight decoupling of the slack.Client in order for
// the engine's spot acknowledgements to be testable without a live client
type EmojiReactor interface {
	// AddReaction adds an emoji reaction to a ItemRef using the emoji associated
	// with the given name (i.e. name should be camera_with_flash rather than :camera_with_flash:)
	AddReaction(name string, item slack.ItemRef) error
}
