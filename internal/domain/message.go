package domain

// ChatMessage is one message inside a conversation mirror. The id is assigned
// by the store on write; messages are never mutated after that.
type ChatMessage struct {
	ID        MessageID
	FromID    UserID
	ToID      UserID
	Text      string
	Timestamp Timestamp
}

// RecentMessage summarizes the latest activity with one conversation partner.
// It lives in the owner's recency feed: FromID is the owner, ToID the partner.
type RecentMessage struct {
	ID              MessageID
	FromID          UserID
	ToID            UserID
	Text            string
	Timestamp       Timestamp
	Email           string
	ProfileImageURL string
}

// PartnerID is the conversation partner this summary stands for. Within one
// owner's recency index at most one summary exists per partner.
func (r *RecentMessage) PartnerID() UserID {
	return r.ToID
}

// ChatUser is a read-only identity/profile snapshot. The identity subsystem
// owns its lifecycle; the core never writes one.
type ChatUser struct {
	UID             UserID
	Email           string
	ProfileImageURL string
}
