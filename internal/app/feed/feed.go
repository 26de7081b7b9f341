// Package feed maintains the ordered message sequence of one open
// conversation, driven by the store's change stream.
package feed

import (
	"context"
	"sync"

	"github.com/PabloGalante/mirror-chat/internal/domain"
	"github.com/PabloGalante/mirror-chat/internal/observability"
)

// Feed is the append-only view of a single conversation. One consumer
// goroutine owns all mutation, so the sequence stays ordered as long as the
// store delivers events in timestamp order; the feed does not re-sort.
type Feed struct {
	owner   domain.UserID
	partner domain.UserID
	sub     domain.Subscription

	mu       sync.Mutex
	messages []domain.ChatMessage
	seen     map[domain.MessageID]struct{}
	status   string
	closed   bool
}

// Open subscribes to the owner's mirror of the conversation with partner.
// The store replays the full history first, so reopening a conversation
// rebuilds the same sequence from scratch.
//
// Returns domain.ErrNotAuthenticated, without subscribing, when nobody is
// signed in.
func Open(
	ctx context.Context,
	store domain.ConversationStore,
	identity domain.IdentityProvider,
	partner domain.UserID,
) (*Feed, error) {
	owner, ok := identity.CurrentUserID()
	if !ok {
		return nil, domain.ErrNotAuthenticated
	}

	sub, err := store.Subscribe(ctx, domain.MessagesPath(owner, partner), domain.FieldTimestamp)
	if err != nil {
		return nil, err
	}

	f := &Feed{
		owner:   owner,
		partner: partner,
		sub:     sub,
		seen:    make(map[domain.MessageID]struct{}),
	}

	go f.consume(observability.WithConversation(ctx, string(owner), string(partner)))

	return f, nil
}

func (f *Feed) consume(ctx context.Context) {
	log := observability.LoggerFromContext(ctx)

	for ev := range f.sub.Events() {
		if ev.Err != nil {
			f.mu.Lock()
			f.status = "failed to listen for messages: " + ev.Err.Error()
			f.mu.Unlock()
			log.Error("message subscription failed", "error", ev.Err)
			return
		}

		// Messages are immutable; only Added extends the sequence.
		if ev.Kind != domain.ChangeAdded {
			continue
		}

		msg := domain.MessageFromFields(ev.ID, ev.Fields)

		f.mu.Lock()
		if f.closed {
			f.mu.Unlock()
			return
		}
		if _, dup := f.seen[msg.ID]; !dup {
			f.seen[msg.ID] = struct{}{}
			f.messages = append(f.messages, msg)
		}
		f.mu.Unlock()
	}
}

// Messages returns a snapshot of the current sequence.
func (f *Feed) Messages() []domain.ChatMessage {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]domain.ChatMessage, len(f.messages))
	copy(out, f.messages)
	return out
}

// Status reports the last stream failure, empty when healthy.
func (f *Feed) Status() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// Close cancels the subscription. No event mutates the feed afterwards.
func (f *Feed) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()

	f.sub.Close()
}
