package clientsession

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	pkgauth "github.com/cropcareapp/cropcare-backend/pkg/auth"
	"github.com/cropcareapp/cropcare-backend/pkg/config"
	"github.com/cropcareapp/cropcare-backend/pkg/enums"
	"github.com/google/uuid"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret-test-secret-test-key",
		Issuer:            "cropcare",
		ExpirationMinutes: 24 * 60,
	}
}

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return store
}

func mintToken(t *testing.T, issuedAt time.Time) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(testJWTConfig(), issuedAt, pkgauth.AccessTokenPayload{
		UserID:   uuid.New(),
		Username: "amara",
		Role:     enums.RoleUser,
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	return token
}

func TestCurrentWithoutLoginIsAnonymous(t *testing.T) {
	authority := NewAuthority(newTestStore(t), testJWTConfig())

	session, err := authority.Current(context.Background())
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if session.State != Anonymous {
		t.Fatal("fresh store should be anonymous")
	}
	if session.Remaining(time.Now()) != 0 {
		t.Fatal("anonymous session has no remaining lifetime")
	}
}

func TestSaveLoginThenCurrentIsAuthenticated(t *testing.T) {
	authority := NewAuthority(newTestStore(t), testJWTConfig())
	issuedAt := time.Now().Add(-time.Hour)
	token := mintToken(t, issuedAt)

	if err := authority.SaveLogin(context.Background(), token, "amara", issuedAt.UnixMilli()); err != nil {
		t.Fatalf("save login: %v", err)
	}

	session, err := authority.Current(context.Background())
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if session.State != Authenticated {
		t.Fatal("an hour-old 24h token should still authenticate")
	}
	if session.Username != "amara" || session.Role != enums.RoleUser {
		t.Fatalf("identity mismatch: %+v", session)
	}
	if session.LoginTime.UnixMilli() != issuedAt.UnixMilli() {
		t.Fatalf("login time = %v", session.LoginTime)
	}

	remaining := session.Remaining(time.Now())
	if remaining <= 22*time.Hour || remaining > 23*time.Hour {
		t.Fatalf("remaining = %v, want roughly 23h", remaining)
	}
}

func TestExpiredTokenBecomesAnonymousAndClearsState(t *testing.T) {
	store := newTestStore(t)
	authority := NewAuthority(store, testJWTConfig())
	issuedAt := time.Now().Add(-25 * time.Hour)
	token := mintToken(t, issuedAt)

	if err := authority.SaveLogin(context.Background(), token, "amara", issuedAt.UnixMilli()); err != nil {
		t.Fatalf("save login: %v", err)
	}

	session, err := authority.Current(context.Background())
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if session.State != Anonymous {
		t.Fatal("a 25h-old 24h token must not authenticate")
	}

	for _, key := range []string{keyToken, keyLoginTime, keyUsername} {
		if v, _ := store.Get(context.Background(), key); v != "" {
			t.Fatalf("key %q should be wiped, still holds %q", key, v)
		}
	}
}

func TestTamperedTokenIsAnonymous(t *testing.T) {
	authority := NewAuthority(newTestStore(t), testJWTConfig())
	token := mintToken(t, time.Now())

	if err := authority.SaveLogin(context.Background(), token+"x", "amara", time.Now().UnixMilli()); err != nil {
		t.Fatalf("save login: %v", err)
	}

	session, err := authority.Current(context.Background())
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if session.State != Anonymous {
		t.Fatal("tampered token must not authenticate")
	}
}

func TestLogoutClearsEverything(t *testing.T) {
	store := newTestStore(t)
	authority := NewAuthority(store, testJWTConfig())
	token := mintToken(t, time.Now())

	if err := authority.SaveLogin(context.Background(), token, "amara", time.Now().UnixMilli()); err != nil {
		t.Fatalf("save login: %v", err)
	}
	if err := authority.Logout(context.Background()); err != nil {
		t.Fatalf("logout: %v", err)
	}

	session, err := authority.Current(context.Background())
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if session.State != Anonymous {
		t.Fatal("logout should leave the client anonymous")
	}
}

func TestStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "k", "v1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set(ctx, "k", "v2"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if v, err := store.Get(ctx, "k"); err != nil || v != "v2" {
		t.Fatalf("get = %q, %v", v, err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if v, _ := store.Get(ctx, "k"); v != "" {
		t.Fatalf("value survived clear: %q", v)
	}
}
