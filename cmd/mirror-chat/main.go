package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	identityadapter "github.com/PabloGalante/mirror-chat/internal/adapters/identity"
	firestorestore "github.com/PabloGalante/mirror-chat/internal/adapters/storage/firestore"
	memstore "github.com/PabloGalante/mirror-chat/internal/adapters/storage/memory"
	"github.com/PabloGalante/mirror-chat/internal/app/dispatch"
	"github.com/PabloGalante/mirror-chat/internal/app/feed"
	"github.com/PabloGalante/mirror-chat/internal/app/recent"
	"github.com/PabloGalante/mirror-chat/internal/app/refresh"
	"github.com/PabloGalante/mirror-chat/internal/config"
	"github.com/PabloGalante/mirror-chat/internal/domain"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	// Storage: Firestore or Memory
	var store domain.ConversationStore
	var users domain.UserDirectory

	switch cfg.StorageBackend {
	case "firestore":
		log.Printf("[STORE] Using Firestore storage (project=%s)", cfg.GCPProjectID)
		fsStore, err := firestorestore.NewStore(ctx, cfg.GCPProjectID)
		if err != nil {
			log.Fatalf("error initializing Firestore store: %v", err)
		}

		// 1 store, implements 2 interfaces
		store = fsStore
		users = fsStore

	default:
		log.Println("[STORE] Using in-memory storage")
		mem := memstore.NewStore()
		mem.AddUser(&domain.ChatUser{UID: domain.UserID(cfg.SelfUID)})
		mem.AddUser(&domain.ChatUser{
			UID:             domain.UserID(cfg.PartnerUID),
			Email:           cfg.PartnerEmail,
			ProfileImageURL: cfg.PartnerAvatar,
		})
		store = mem
		users = mem
	}

	ident := identityadapter.NewStatic(cfg.SelfUID)
	signal := refresh.NewSignal()
	dispatcher := dispatch.NewService(store, ident, signal)

	if self, err := users.GetUser(ctx, domain.UserID(cfg.SelfUID)); err == nil {
		log.Printf("signed in as %s (%s)", self.UID, self.Email)
	}

	partner := domain.ChatUser{
		UID:             domain.UserID(cfg.PartnerUID),
		Email:           cfg.PartnerEmail,
		ProfileImageURL: cfg.PartnerAvatar,
	}
	if cfg.PartnerUID == "" {
		log.Fatal("MIRROR_PARTNER_UID must be set")
	}
	if known, err := users.GetUser(ctx, partner.UID); err == nil {
		partner = *known
	}

	idx, err := recent.Open(ctx, store, ident)
	if err != nil {
		log.Fatalf("error opening recency index: %v", err)
	}
	defer idx.Close()

	conv, err := feed.Open(ctx, store, ident, partner.UID)
	if err != nil {
		log.Fatalf("error opening conversation: %v", err)
	}
	defer conv.Close()

	go printLoop(conv, signal)

	fmt.Printf("chatting with %s — type a message, /recent, /refresh or /quit\n", partner.UID)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()

		switch line {
		case "/quit":
			return
		case "/refresh":
			signal.Bump()
			continue
		case "/recent":
			for i, e := range idx.Entries() {
				fmt.Printf("%2d. %s: %s (%s)\n", i+1, e.PartnerID(), e.Text, e.Timestamp.Format(time.Kitchen))
			}
			continue
		}

		if _, err := dispatcher.Send(ctx, dispatch.SendInput{Partner: partner, Text: line}); err != nil {
			var we *domain.WriteError
			switch {
			case errors.Is(err, domain.ErrNotAuthenticated):
				fmt.Println("! not signed in, message not sent")
			case errors.As(err, &we):
				fmt.Printf("! %v\n", we)
			default:
				fmt.Printf("! send failed: %v\n", err)
			}
		}
		// On success the input buffer is gone and the feed printer takes over.
	}
}

// printLoop tails the feed, printing anything new whenever the refresh
// signal moves or new messages land.
func printLoop(conv *feed.Feed, signal *refresh.Signal) {
	var printed int
	var lastSeen int64

	for range time.Tick(200 * time.Millisecond) {
		if v := signal.Value(); v == lastSeen && len(conv.Messages()) == printed {
			continue
		} else {
			lastSeen = v
		}

		msgs := conv.Messages()
		for ; printed < len(msgs); printed++ {
			m := msgs[printed]
			fmt.Printf("[%s] %s: %s\n", m.Timestamp.Format(time.Kitchen), m.FromID, m.Text)
		}

		if s := conv.Status(); s != "" {
			fmt.Println("!", s)
		}
	}
}
