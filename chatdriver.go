package spotted

import (
	"github.com/nlopes/slack"
)

// historyFetcher is implemented by any value that can fetch a channel's
// conversation history.
//
// slack.Client implements this interface
type historyFetcher interface {
	GetConversationHistory(params *slack.GetConversationHistoryParameters) (*slack.GetConversationHistoryResponse, error)
}

// fileInfoFinder is implemented by any value that can look up slack file
// metadata (mimetype and shares).
//
// slack.Client implements this interface
type fileInfoFinder interface {
	GetFileInfo(fileID string, count int, page int) (*slack.File, []slack.Comment, *slack.Paging, error)
}

// EventSource combines the lookups the classifier needs to resolve events
// that don't carry their full context (delayed attachments, file_shared
// events without text, adjacency windows). It is implemented by slack.Client
// and kept small so classifier tests don't need a live connection
type EventSource interface {
	historyFetcher
	fileInfoFinder
}

// MessageSender is implemented by any value that has the PostMessage method.
// The main purpose is a slight decoupling of the slack.Client in order for
// the engine's acknowledgements and the digest to be testable without slack
type MessageSender interface {
	// PostMessage sends a message to the channel. See https://godoc.org/github.com/nlopes/slack#Client.PostMessage for more details
	PostMessage(channelID string, options ...slack.MsgOption) (respChannel string, respTimestamp string, err error)
}
