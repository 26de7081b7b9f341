// Package identity provides the IdentityProvider used outside of a real auth
// stack: a fixed uid handed in by config. Signing out clears it, which flips
// every core operation into its no-op path.
package identity

import (
	"sync"

	"github.com/PabloGalante/mirror-chat/internal/domain"
)

type Static struct {
	mu  sync.RWMutex
	uid domain.UserID
}

// NewStatic creates a provider signed in as uid. An empty uid means signed out.
func NewStatic(uid string) *Static {
	return &Static{uid: domain.UserID(uid)}
}

func (s *Static) CurrentUserID() (domain.UserID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.uid == "" {
		return "", false
	}
	return s.uid, true
}

func (s *Static) SignOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uid = ""
}
