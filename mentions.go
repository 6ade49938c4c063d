package spotted

import (
	"regexp"
)

// mentionTokenRegex matches slack's inline mention token (<@U12345678> with an
// optional |label part). The captured identifier still needs to pass the
// user id shape validation before it's considered a mention
var mentionTokenRegex = regexp.MustCompile("<@([A-Za-z0-9]+)(?:\\|[^>]*)?>")

// userIDRegex is the shape of a valid slack user identifier: a 'U' (or 'W' for
// enterprise grid) prefix followed by uppercase alphanumerics
var userIDRegex = regexp.MustCompile("\\A[UW][A-Z0-9]{2,11}\\z")

// ExtractMentions returns the user ids mentioned in a message text, in order
// of first appearance and without duplicates. Tokens whose identifier doesn't
// have the shape of a slack user id are dropped
func ExtractMentions(text string) (mentions []string) {
	mentions = make([]string, 0)

	seen := make(map[string]bool)
	for _, match := range mentionTokenRegex.FindAllStringSubmatch(text, -1) {
		id := match[1]
		if !isValidUserID(id) || seen[id] {
			continue
		}

		seen[id] = true
		mentions = append(mentions, id)
	}

	return mentions
}

// isValidUserID returns true if the identifier has the shape of a slack user id
func isValidUserID(id string) bool {
	return userIDRegex.MatchString(id)
}
