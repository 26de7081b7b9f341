package domain

import "strings"

// StorePath addresses a collection in the conversation store. Segments
// alternate collection/document, so a valid path has odd length.
type StorePath []string

func (p StorePath) String() string {
	return strings.Join(p, "/")
}

// MessagesPath is the mirror of the (owner, partner) conversation as seen by
// owner: messages/{owner}/{partner}.
func MessagesPath(owner, partner UserID) StorePath {
	return StorePath{"messages", string(owner), string(partner)}
}

// RecentMessagesPath is owner's recency feed: recent_messages/{owner}/messages.
func RecentMessagesPath(owner UserID) StorePath {
	return StorePath{"recent_messages", string(owner), "messages"}
}
