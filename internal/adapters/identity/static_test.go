package identity_test

import (
	"testing"

	"github.com/PabloGalante/mirror-chat/internal/adapters/identity"
)

func TestStaticIdentity(t *testing.T) {
	signedIn := identity.NewStatic("u1")
	if uid, ok := signedIn.CurrentUserID(); !ok || uid != "u1" {
		t.Fatalf("expected u1 signed in, got %q %v", uid, ok)
	}

	signedIn.SignOut()
	if _, ok := signedIn.CurrentUserID(); ok {
		t.Fatal("expected signed out after SignOut")
	}

	if _, ok := identity.NewStatic("").CurrentUserID(); ok {
		t.Fatal("empty uid must mean signed out")
	}
}
