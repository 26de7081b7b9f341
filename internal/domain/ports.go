package domain

import "context"

type ChangeKind string

const (
	ChangeAdded    ChangeKind = "added"
	ChangeModified ChangeKind = "modified"
	ChangeRemoved  ChangeKind = "removed"
)

// ChangeEvent is one notification from a store subscription. When Err is set
// the stream itself failed; it is the final event before the channel closes.
type ChangeEvent struct {
	Kind   ChangeKind
	ID     string
	Fields Fields
	Err    error
}

// Subscription is a live change stream over one collection. Events are
// delivered in the store's order on a single channel; Close cancels the
// stream and eventually closes the channel.
type Subscription interface {
	Events() <-chan ChangeEvent
	Close()
}

// ConversationStore is the remote, path-addressed document collection the
// core writes to and observes. Writes only ever create documents in this
// domain; updates and deletes do not happen.
type ConversationStore interface {
	Write(ctx context.Context, path StorePath, fields Fields) (string, error)

	// Subscribe replays the documents already at path, ordered ascending by
	// the orderBy field, as Added events, then delivers live changes.
	Subscribe(ctx context.Context, path StorePath, orderBy string) (Subscription, error)
}

// IdentityProvider resolves the signed-in user. The second return is false
// when nobody is signed in.
type IdentityProvider interface {
	CurrentUserID() (UserID, bool)
}

// UserDirectory reads profile snapshots from the users collection.
type UserDirectory interface {
	GetUser(ctx context.Context, uid UserID) (*ChatUser, error)
}
