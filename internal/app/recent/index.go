// Package recent maintains the per-user MRU list of conversation summaries.
package recent

import (
	"context"
	"sync"

	"github.com/PabloGalante/mirror-chat/internal/domain"
	"github.com/PabloGalante/mirror-chat/internal/observability"
)

// Index is a pure projection of the owner's recency feed: it never writes.
// Per partner at most one summary is kept, and the partner with the newest
// activity sits at the front.
type Index struct {
	owner domain.UserID
	sub   domain.Subscription

	mu      sync.Mutex
	entries []*domain.RecentMessage
	status  string
	dropped int
	closed  bool
}

// Open subscribes to the owner's recency feed. Returns
// domain.ErrNotAuthenticated, without subscribing, when nobody is signed in.
func Open(
	ctx context.Context,
	store domain.ConversationStore,
	identity domain.IdentityProvider,
) (*Index, error) {
	owner, ok := identity.CurrentUserID()
	if !ok {
		return nil, domain.ErrNotAuthenticated
	}

	sub, err := store.Subscribe(ctx, domain.RecentMessagesPath(owner), domain.FieldTimestamp)
	if err != nil {
		return nil, err
	}

	idx := &Index{owner: owner, sub: sub}
	go idx.consume()

	return idx, nil
}

// consume applies every event the same way regardless of kind: drop the
// partner's old summary, then put the new one at the front. Removal before
// insertion is what keeps a partner from ever appearing twice.
func (idx *Index) consume() {
	log := observability.WithFields("owner_id", idx.owner)

	for ev := range idx.sub.Events() {
		if ev.Err != nil {
			idx.mu.Lock()
			idx.status = "failed to listen for recent messages: " + ev.Err.Error()
			idx.mu.Unlock()
			log.Error("recency subscription failed", "error", ev.Err)
			return
		}

		partner := domain.UserID(ev.Fields.PartnerID())

		summary, decodeErr := domain.RecentMessageFromFields(ev.ID, ev.Fields)

		idx.mu.Lock()
		if idx.closed {
			idx.mu.Unlock()
			return
		}
		if partner != "" {
			idx.removeLocked(partner)
		}
		if decodeErr != nil {
			// The stale summary is already out; the malformed replacement
			// stays out too, and the gap is visible through Status.
			idx.dropped++
			idx.status = "dropped undecodable recent message: " + decodeErr.Error()
			idx.mu.Unlock()
			log.Error("failed to decode recent message", "doc_id", ev.ID, "error", decodeErr)
			continue
		}
		idx.entries = append([]*domain.RecentMessage{summary}, idx.entries...)
		idx.mu.Unlock()
	}
}

// removeLocked splices out the summary for partner, if any. Linear scan;
// contact lists are small.
func (idx *Index) removeLocked(partner domain.UserID) {
	for i, e := range idx.entries {
		if e.PartnerID() == partner {
			idx.entries = append(idx.entries[:i], idx.entries[i+1:]...)
			return
		}
	}
}

// Entries returns a snapshot of the index, most recent partner first.
func (idx *Index) Entries() []*domain.RecentMessage {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	out := make([]*domain.RecentMessage, len(idx.entries))
	copy(out, idx.entries)
	return out
}

// Status reports the last stream or decode failure, empty when healthy.
func (idx *Index) Status() string {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.status
}

// Dropped counts events whose summary payload could not be decoded.
func (idx *Index) Dropped() int {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.dropped
}

// Close cancels the subscription. No event mutates the index afterwards.
func (idx *Index) Close() {
	idx.mu.Lock()
	idx.closed = true
	idx.mu.Unlock()

	idx.sub.Close()
}
