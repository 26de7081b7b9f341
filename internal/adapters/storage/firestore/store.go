package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/PabloGalante/mirror-chat/internal/domain"
)

type Store struct {
	client *firestore.Client
}

// NewStore creates a Firestore store.
// Uses the project passed (MIRROR_GCP_PROJECT).
func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client}, nil
}

// ─────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────

// collectionRef resolves a domain path (collection/doc/collection/...) to a
// Firestore collection reference. Valid paths have odd length.
func (s *Store) collectionRef(path domain.StorePath) (*firestore.CollectionRef, error) {
	if len(path) == 0 || len(path)%2 == 0 {
		return nil, fmt.Errorf("invalid store path %q", path.String())
	}

	col := s.client.Collection(path[0])
	for i := 1; i+1 < len(path); i += 2 {
		col = col.Doc(path[i]).Collection(path[i+1])
	}
	return col, nil
}

func (s *Store) usersCol() *firestore.CollectionRef {
	return s.client.Collection("users")
}

// ─────────────────────────────────────────
// Firestore Types
// ─────────────────────────────────────────

type userDoc struct {
	UID             string `firestore:"uid"`
	Email           string `firestore:"email"`
	ProfileImageURL string `firestore:"profileImageUrl"`
}

// ─────────────────────────────────────────
// ConversationStore implementation
// ─────────────────────────────────────────

func (s *Store) Write(ctx context.Context, path domain.StorePath, fields domain.Fields) (string, error) {
	col, err := s.collectionRef(path)
	if err != nil {
		return "", err
	}

	doc := col.NewDoc()
	if _, err := doc.Create(ctx, map[string]any(fields)); err != nil {
		return "", fmt.Errorf("firestore write %s: %w", path.String(), err)
	}
	return doc.ID, nil
}

func (s *Store) Subscribe(ctx context.Context, path domain.StorePath, orderBy string) (domain.Subscription, error) {
	col, err := s.collectionRef(path)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)

	sub := &subscription{
		snaps:  col.OrderBy(orderBy, firestore.Asc).Snapshots(ctx),
		events: make(chan domain.ChangeEvent, 16),
		ctx:    ctx,
		cancel: cancel,
	}
	go sub.pump()

	return sub, nil
}

// ─────────────────────────────────────────
// UserDirectory implementation
// ─────────────────────────────────────────

func (s *Store) GetUser(ctx context.Context, uid domain.UserID) (*domain.ChatUser, error) {
	snap, err := s.usersCol().Doc(string(uid)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("firestore GetUser: %w", err)
	}

	var doc userDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore GetUser decode: %w", err)
	}

	return &domain.ChatUser{
		UID:             uid,
		Email:           doc.Email,
		ProfileImageURL: doc.ProfileImageURL,
	}, nil
}

// ─────────────────────────────────────────
// Change subscription
// ─────────────────────────────────────────

type subscription struct {
	snaps  *firestore.QuerySnapshotIterator
	events chan domain.ChangeEvent
	ctx    context.Context
	cancel context.CancelFunc
}

func (sub *subscription) Events() <-chan domain.ChangeEvent {
	return sub.events
}

func (sub *subscription) Close() {
	sub.cancel()
}

// pump forwards snapshot changes onto the event channel until the iterator
// ends. Cancellation through Close surfaces here as codes.Canceled and closes
// the channel without an error event.
func (sub *subscription) pump() {
	defer close(sub.events)
	defer sub.snaps.Stop()

	for {
		snap, err := sub.snaps.Next()
		if err != nil {
			if err == iterator.Done || status.Code(err) == codes.Canceled {
				return
			}
			sub.deliver(domain.ChangeEvent{Err: fmt.Errorf("firestore subscription: %w", err)})
			return
		}

		for _, change := range snap.Changes {
			sub.deliver(domain.ChangeEvent{
				Kind:   changeKind(change.Kind),
				ID:     change.Doc.Ref.ID,
				Fields: change.Doc.Data(),
			})
		}
	}
}

func (sub *subscription) deliver(ev domain.ChangeEvent) {
	select {
	case sub.events <- ev:
	case <-sub.ctx.Done():
	}
}

func changeKind(k firestore.DocumentChangeKind) domain.ChangeKind {
	switch k {
	case firestore.DocumentAdded:
		return domain.ChangeAdded
	case firestore.DocumentModified:
		return domain.ChangeModified
	default:
		return domain.ChangeRemoved
	}
}
