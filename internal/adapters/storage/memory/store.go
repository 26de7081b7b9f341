// Package memory is the local backend: a map of collections plus a small
// change-stream fanout. It backs local dev and the tests, mirroring the
// replay-then-live contract of the Firestore adapter.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/mirror-chat/internal/domain"
)

type document struct {
	id     string
	fields domain.Fields
}

type Store struct {
	mu    sync.Mutex
	docs  map[string][]*document // keyed by path
	subs  map[string][]*subscription
	users map[domain.UserID]*domain.ChatUser
}

func NewStore() *Store {
	return &Store{
		docs:  make(map[string][]*document),
		subs:  make(map[string][]*subscription),
		users: make(map[domain.UserID]*domain.ChatUser),
	}
}

// ─────────────────────────────────────────
// ConversationStore implementation
// ─────────────────────────────────────────

func (s *Store) Write(ctx context.Context, path domain.StorePath, fields domain.Fields) (string, error) {
	doc := &document{id: uuid.NewString(), fields: fields}
	key := path.String()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs[key] = append(s.docs[key], doc)

	live := s.subs[key][:0]
	for _, sub := range s.subs[key] {
		if sub.enqueue(domain.ChangeEvent{Kind: domain.ChangeAdded, ID: doc.id, Fields: doc.fields}) {
			live = append(live, sub)
		}
	}
	s.subs[key] = live

	return doc.id, nil
}

// Subscribe replays the documents already at path, sorted ascending by the
// orderBy field, then delivers writes as they happen.
func (s *Store) Subscribe(ctx context.Context, path domain.StorePath, orderBy string) (domain.Subscription, error) {
	sub := newSubscription()
	key := path.String()

	s.mu.Lock()
	defer s.mu.Unlock()

	replay := make([]*document, len(s.docs[key]))
	copy(replay, s.docs[key])
	sort.SliceStable(replay, func(i, j int) bool {
		ti, _ := replay[i].fields[orderBy].(time.Time)
		tj, _ := replay[j].fields[orderBy].(time.Time)
		return ti.Before(tj)
	})
	for _, doc := range replay {
		sub.enqueue(domain.ChangeEvent{Kind: domain.ChangeAdded, ID: doc.id, Fields: doc.fields})
	}

	s.subs[key] = append(s.subs[key], sub)

	return sub, nil
}

// ─────────────────────────────────────────
// UserDirectory implementation
// ─────────────────────────────────────────

// AddUser seeds a profile snapshot. Profiles are owned by the identity
// subsystem in production; this stands in for it locally.
func (s *Store) AddUser(u *domain.ChatUser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.UID] = u
}

func (s *Store) GetUser(ctx context.Context, uid domain.UserID) (*domain.ChatUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[uid]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// ─────────────────────────────────────────
// Change subscription
// ─────────────────────────────────────────

// subscription decouples writers from the consumer with an internal queue:
// Write never blocks on a slow consumer, and the pump goroutine is the single
// point that feeds the channel.
type subscription struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []domain.ChangeEvent
	closed bool
	done   chan struct{}

	events chan domain.ChangeEvent
}

func newSubscription() *subscription {
	sub := &subscription{
		events: make(chan domain.ChangeEvent),
		done:   make(chan struct{}),
	}
	sub.cond = sync.NewCond(&sub.mu)
	go sub.pump()
	return sub
}

func (sub *subscription) Events() <-chan domain.ChangeEvent {
	return sub.events
}

// Close drops anything still queued; nothing is delivered after it returns
// beyond the single event the pump may already be handing over.
func (sub *subscription) Close() {
	sub.mu.Lock()
	if sub.closed {
		sub.mu.Unlock()
		return
	}
	sub.closed = true
	sub.queue = nil
	close(sub.done)
	sub.mu.Unlock()
	sub.cond.Signal()
}

// enqueue reports whether the subscription is still open.
func (sub *subscription) enqueue(ev domain.ChangeEvent) bool {
	sub.mu.Lock()
	defer sub.mu.Unlock()

	if sub.closed {
		return false
	}
	sub.queue = append(sub.queue, ev)
	sub.cond.Signal()
	return true
}

func (sub *subscription) pump() {
	for {
		sub.mu.Lock()
		for len(sub.queue) == 0 && !sub.closed {
			sub.cond.Wait()
		}
		if sub.closed {
			sub.mu.Unlock()
			close(sub.events)
			return
		}
		ev := sub.queue[0]
		sub.queue = sub.queue[1:]
		sub.mu.Unlock()

		select {
		case sub.events <- ev:
		case <-sub.done:
			close(sub.events)
			return
		}
	}
}
