package clientsession

import (
	"context"
	"fmt"
	"strconv"
	"time"

	pkgauth "github.com/cropcareapp/cropcare-backend/pkg/auth"
	"github.com/cropcareapp/cropcare-backend/pkg/config"
	"github.com/cropcareapp/cropcare-backend/pkg/enums"
)

// Stored keys. The trio is written and cleared together so the local state
// never holds a token without its companions.
const (
	keyToken     = "token"
	keyLoginTime = "login_time"
	keyUsername  = "username"
)

// State tells whether the stored token still vouches for a user.
type State int

const (
	Anonymous State = iota
	Authenticated
)

// Session is the authority's answer for the current moment. Everything in
// it is recomputed from the persisted token; LoginTime is kept only for
// display.
type Session struct {
	State     State
	Username  string
	Role      enums.Role
	Token     string
	LoginTime time.Time
	ExpiresAt time.Time
}

// Remaining reports how much session lifetime is left at the given instant.
func (s Session) Remaining(now time.Time) time.Duration {
	if s.State != Authenticated {
		return 0
	}
	left := s.ExpiresAt.Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

// Authority owns the client's view of the login session. The stored token
// is the single source of truth; username and login time ride along for
// presentation but never decide authentication.
type Authority struct {
	store  Store
	jwtCfg config.JWTConfig
	now    func() time.Time
}

// NewAuthority builds a session authority over the given store.
func NewAuthority(store Store, jwtCfg config.JWTConfig) *Authority {
	return &Authority{store: store, jwtCfg: jwtCfg, now: time.Now}
}

// SaveLogin persists a fresh login. loginTime is Unix milliseconds as
// returned by the login endpoint.
func (a *Authority) SaveLogin(ctx context.Context, token, username string, loginTime int64) error {
	if token == "" {
		return fmt.Errorf("token is required")
	}
	if err := a.store.Set(ctx, keyToken, token); err != nil {
		return err
	}
	if err := a.store.Set(ctx, keyUsername, username); err != nil {
		return err
	}
	return a.store.Set(ctx, keyLoginTime, strconv.FormatInt(loginTime, 10))
}

// Current recomputes the session from the stored token. An absent,
// malformed, or expired token yields an anonymous session and wipes the
// stored state so stale remnants cannot linger.
func (a *Authority) Current(ctx context.Context) (*Session, error) {
	token, err := a.store.Get(ctx, keyToken)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return &Session{State: Anonymous}, nil
	}

	claims, err := pkgauth.ParseAccessToken(a.jwtCfg, token)
	if err != nil {
		// Expired or tampered token: treat as logged out.
		if clearErr := a.Logout(ctx); clearErr != nil {
			return nil, clearErr
		}
		return &Session{State: Anonymous}, nil
	}

	session := &Session{
		State:     Authenticated,
		Username:  claims.Username,
		Role:      claims.Role,
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
	}

	if raw, err := a.store.Get(ctx, keyLoginTime); err == nil && raw != "" {
		if ms, parseErr := strconv.ParseInt(raw, 10, 64); parseErr == nil {
			session.LoginTime = time.UnixMilli(ms)
		}
	}

	return session, nil
}

// Logout removes the persisted trio in one sweep.
func (a *Authority) Logout(ctx context.Context) error {
	return a.store.Delete(ctx, keyToken, keyLoginTime, keyUsername)
}
