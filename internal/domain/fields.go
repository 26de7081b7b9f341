package domain

import (
	"fmt"
	"time"
)

// Field names as stored in the conversation store documents.
const (
	FieldFromID          = "fromId"
	FieldToID            = "toId"
	FieldText            = "text"
	FieldTimestamp       = "timestamp"
	FieldEmail           = "email"
	FieldProfileImageURL = "profileImageUrl"
)

// Fields is the raw field map of a store document.
type Fields map[string]any

// MessageFields builds the record written to both conversation mirrors.
func MessageFields(from, to UserID, text string, ts Timestamp) Fields {
	return Fields{
		FieldFromID:    string(from),
		FieldToID:      string(to),
		FieldText:      text,
		FieldTimestamp: ts,
	}
}

// RecentMessageFields builds the record written to the owner's recency feed.
// The partner's profile snapshot rides along so the index can render without
// a second lookup.
func RecentMessageFields(owner UserID, partner ChatUser, text string, ts Timestamp) Fields {
	return Fields{
		FieldFromID:          string(owner),
		FieldToID:            string(partner.UID),
		FieldText:            text,
		FieldTimestamp:       ts,
		FieldEmail:           partner.Email,
		FieldProfileImageURL: partner.ProfileImageURL,
	}
}

// MessageFromFields decodes a conversation message. Missing fields default to
// zero values; a feed renders whatever the document carries.
func MessageFromFields(id string, f Fields) ChatMessage {
	return ChatMessage{
		ID:        MessageID(id),
		FromID:    UserID(stringField(f, FieldFromID)),
		ToID:      UserID(stringField(f, FieldToID)),
		Text:      stringField(f, FieldText),
		Timestamp: timeField(f, FieldTimestamp),
	}
}

// RecentMessageFromFields decodes a recency summary. Unlike messages these
// are rejected when the core fields are absent, so a malformed document never
// enters the index.
func RecentMessageFromFields(id string, f Fields) (*RecentMessage, error) {
	for _, k := range []string{FieldFromID, FieldToID, FieldText, FieldTimestamp} {
		if _, ok := f[k]; !ok {
			return nil, &DecodeError{DocID: id, Err: fmt.Errorf("missing field %q", k)}
		}
	}
	ts, ok := f[FieldTimestamp].(time.Time)
	if !ok {
		return nil, &DecodeError{DocID: id, Err: fmt.Errorf("field %q is not a timestamp", FieldTimestamp)}
	}
	return &RecentMessage{
		ID:              MessageID(id),
		FromID:          UserID(stringField(f, FieldFromID)),
		ToID:            UserID(stringField(f, FieldToID)),
		Text:            stringField(f, FieldText),
		Timestamp:       ts,
		Email:           stringField(f, FieldEmail),
		ProfileImageURL: stringField(f, FieldProfileImageURL),
	}, nil
}

// PartnerID pulls the raw toId out of a recency payload. It works even on
// payloads that fail full decoding, so a malformed replacement can still
// evict the stale summary it supersedes.
func (f Fields) PartnerID() string {
	return stringField(f, FieldToID)
}

func stringField(f Fields, key string) string {
	s, _ := f[key].(string)
	return s
}

func timeField(f Fields, key string) time.Time {
	t, _ := f[key].(time.Time)
	return t
}
