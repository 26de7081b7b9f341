package domain

import "time"

type UserID string
type MessageID string

type Timestamp = time.Time

// WriteSide identifies which half of a mirrored write an error refers to.
type WriteSide string

const (
	WriteSideSender    WriteSide = "sender"
	WriteSideRecipient WriteSide = "recipient"
)
