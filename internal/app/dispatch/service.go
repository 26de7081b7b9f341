// Package dispatch sends messages. Every logical send is two independent
// store writes: one copy filed under the sender's view of the conversation,
// one under the recipient's. The writes are not transactional; a failed side
// is reported, never rolled back.
package dispatch

import (
	"context"
	"time"

	"github.com/PabloGalante/mirror-chat/internal/app/refresh"
	"github.com/PabloGalante/mirror-chat/internal/domain"
	"github.com/PabloGalante/mirror-chat/internal/observability"
)

type Service struct {
	store    domain.ConversationStore
	identity domain.IdentityProvider
	signal   *refresh.Signal
	now      func() time.Time
}

func NewService(
	store domain.ConversationStore,
	identity domain.IdentityProvider,
	signal *refresh.Signal,
) *Service {
	return &Service{
		store:    store,
		identity: identity,
		signal:   signal,
		now:      time.Now,
	}
}

type SendInput struct {
	// Partner is the profile snapshot of the other party. The recency record
	// carries its email and avatar.
	Partner domain.ChatUser
	Text    string
}

type SendOutput struct {
	SenderDocID    string
	RecipientDocID string
	SentAt         domain.Timestamp
}

// Send writes the message into both conversation mirrors and, once the
// sender-side copy is in, files the recency record and bumps the refresh
// signal. The timestamp is captured here, on send, not assigned by the store.
//
// An empty text and a signed-out identity are both no-ops.
func (s *Service) Send(ctx context.Context, in SendInput) (*SendOutput, error) {
	selfID, ok := s.identity.CurrentUserID()
	if !ok {
		return nil, domain.ErrNotAuthenticated
	}
	if in.Text == "" {
		return &SendOutput{}, nil
	}

	log := observability.LoggerFromContext(ctx).With(
		"from_id", selfID,
		"to_id", in.Partner.UID,
	)

	ts := s.now()
	fields := domain.MessageFields(selfID, in.Partner.UID, in.Text, ts)

	out := &SendOutput{SentAt: ts}

	senderID, senderErr := s.store.Write(ctx, domain.MessagesPath(selfID, in.Partner.UID), fields)
	if senderErr != nil {
		log.Error("failed to save outgoing message", "error", senderErr)
	} else {
		out.SenderDocID = senderID
		s.persistRecentMessage(ctx, selfID, in, ts)
		// The local feed is about to grow; let the view scroll.
		s.signal.Bump()
	}

	// The recipient's mirror is written regardless of how the sender side
	// went; the two halves succeed or fail independently.
	recipientID, recipientErr := s.store.Write(ctx, domain.MessagesPath(in.Partner.UID, selfID), fields)
	if recipientErr != nil {
		log.Error("failed to save recipient copy", "error", recipientErr)
	} else {
		out.RecipientDocID = recipientID
	}

	if senderErr != nil {
		return out, &domain.WriteError{Side: domain.WriteSideSender, Err: senderErr}
	}
	if recipientErr != nil {
		return out, &domain.WriteError{Side: domain.WriteSideRecipient, Err: recipientErr}
	}

	log.Info("message sent", "sender_doc", out.SenderDocID, "recipient_doc", out.RecipientDocID)
	return out, nil
}

// persistRecentMessage replaces the owner's recency record for this partner.
// A failure here degrades the recency index, not the send itself.
func (s *Service) persistRecentMessage(ctx context.Context, selfID domain.UserID, in SendInput, ts time.Time) {
	fields := domain.RecentMessageFields(selfID, in.Partner, in.Text, ts)

	if _, err := s.store.Write(ctx, domain.RecentMessagesPath(selfID), fields); err != nil {
		observability.LoggerFromContext(ctx).Error("failed to save recent message",
			"owner_id", selfID,
			"partner_id", in.Partner.UID,
			"error", err,
		)
	}
}
