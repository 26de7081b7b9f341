package recent_test

import (
	"context"
	"errors"
	"testing"
	"time"

	memstore "github.com/PabloGalante/mirror-chat/internal/adapters/storage/memory"
	"github.com/PabloGalante/mirror-chat/internal/app/recent"
	"github.com/PabloGalante/mirror-chat/internal/domain"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

type fakeIdentity struct {
	uid domain.UserID
}

func (f *fakeIdentity) CurrentUserID() (domain.UserID, bool) {
	return f.uid, f.uid != ""
}

func writeRecent(t *testing.T, store *memstore.Store, owner string, partner domain.ChatUser, text string, ts time.Time) {
	t.Helper()
	fields := domain.RecentMessageFields(domain.UserID(owner), partner, text, ts)
	if _, err := store.Write(context.Background(), domain.RecentMessagesPath(domain.UserID(owner)), fields); err != nil {
		t.Fatalf("recency write failed: %v", err)
	}
}

var (
	alice = domain.ChatUser{UID: "alice", Email: "alice@example.com"}
	bob   = domain.ChatUser{UID: "bob", Email: "bob@example.com"}
)

func TestIndexKeepsOneSummaryPerPartner(t *testing.T) {
	store := memstore.NewStore()
	t0 := time.Now()

	writeRecent(t, store, "u1", alice, "hello alice", t0)
	writeRecent(t, store, "u1", bob, "hello bob", t0.Add(time.Second))
	writeRecent(t, store, "u1", alice, "alice again", t0.Add(2*time.Second))

	idx, err := recent.Open(context.Background(), store, &fakeIdentity{uid: "u1"})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer idx.Close()

	waitFor(t, "index to settle", func() bool {
		entries := idx.Entries()
		return len(entries) == 2 && entries[0].Text == "alice again"
	})

	entries := idx.Entries()
	if entries[0].PartnerID() != "alice" || entries[1].PartnerID() != "bob" {
		t.Fatalf("unexpected MRU order: %s, %s", entries[0].PartnerID(), entries[1].PartnerID())
	}

	// Alice moves back to the front on new activity, still as a single entry.
	writeRecent(t, store, "u1", bob, "bob again", t0.Add(3*time.Second))
	writeRecent(t, store, "u1", alice, "latest", t0.Add(4*time.Second))

	waitFor(t, "alice back at front", func() bool {
		entries := idx.Entries()
		return len(entries) == 2 && entries[0].PartnerID() == "alice" && entries[0].Text == "latest"
	})
}

func TestIndexDropsUndecodableSummary(t *testing.T) {
	ctx := context.Background()
	store := memstore.NewStore()
	t0 := time.Now()

	writeRecent(t, store, "u1", alice, "hello alice", t0)

	idx, err := recent.Open(ctx, store, &fakeIdentity{uid: "u1"})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer idx.Close()

	waitFor(t, "initial entry", func() bool { return len(idx.Entries()) == 1 })

	// Same partner, but the payload is missing its text field: the stale
	// summary is evicted and nothing replaces it.
	malformed := domain.Fields{
		domain.FieldFromID:    "u1",
		domain.FieldToID:      "alice",
		domain.FieldTimestamp: t0.Add(time.Second),
	}
	if _, err := store.Write(ctx, domain.RecentMessagesPath("u1"), malformed); err != nil {
		t.Fatalf("malformed write failed: %v", err)
	}

	waitFor(t, "drop to register", func() bool { return idx.Dropped() == 1 })
	if n := len(idx.Entries()); n != 0 {
		t.Fatalf("expected empty index after drop, got %d entries", n)
	}
	if idx.Status() == "" {
		t.Fatal("expected degraded status after drop")
	}
}

type scriptedSub struct {
	ch chan domain.ChangeEvent
}

func (s *scriptedSub) Events() <-chan domain.ChangeEvent { return s.ch }
func (s *scriptedSub) Close()                            {}

type scriptedStore struct {
	sub domain.Subscription
}

func (s *scriptedStore) Write(ctx context.Context, path domain.StorePath, fields domain.Fields) (string, error) {
	return "", errors.New("scriptedStore does not write")
}

func (s *scriptedStore) Subscribe(ctx context.Context, path domain.StorePath, orderBy string) (domain.Subscription, error) {
	return s.sub, nil
}

// Every change kind runs the same remove-then-insert step; a Modified event
// moves its partner to the front just like an Added one.
func TestIndexTreatsAllKindsAlike(t *testing.T) {
	sub := &scriptedSub{ch: make(chan domain.ChangeEvent, 4)}
	store := &scriptedStore{sub: sub}

	idx, err := recent.Open(context.Background(), store, &fakeIdentity{uid: "u1"})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer idx.Close()

	t0 := time.Now()
	sub.ch <- domain.ChangeEvent{
		Kind: domain.ChangeAdded, ID: "r1",
		Fields: domain.RecentMessageFields("u1", alice, "hello", t0),
	}
	sub.ch <- domain.ChangeEvent{
		Kind: domain.ChangeAdded, ID: "r2",
		Fields: domain.RecentMessageFields("u1", bob, "hey", t0.Add(time.Second)),
	}
	sub.ch <- domain.ChangeEvent{
		Kind: domain.ChangeModified, ID: "r3",
		Fields: domain.RecentMessageFields("u1", alice, "edited", t0.Add(2*time.Second)),
	}

	waitFor(t, "modified event to reorder", func() bool {
		entries := idx.Entries()
		return len(entries) == 2 && entries[0].Text == "edited"
	})
	if entries := idx.Entries(); entries[0].PartnerID() != "alice" || entries[1].PartnerID() != "bob" {
		t.Fatalf("unexpected order: %s, %s", entries[0].PartnerID(), entries[1].PartnerID())
	}
}

func TestIndexNotAuthenticated(t *testing.T) {
	store := memstore.NewStore()

	_, err := recent.Open(context.Background(), store, &fakeIdentity{})
	if !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestIndexCloseStopsUpdates(t *testing.T) {
	store := memstore.NewStore()

	idx, err := recent.Open(context.Background(), store, &fakeIdentity{uid: "u1"})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	idx.Close()

	writeRecent(t, store, "u1", alice, "late", time.Now())

	time.Sleep(100 * time.Millisecond)
	if n := len(idx.Entries()); n != 0 {
		t.Fatalf("closed index grew to %d entries", n)
	}
}
