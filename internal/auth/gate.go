package auth

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/sessions"

	"kakeibo/internal/ledger"
	"kakeibo/internal/log"
)

const (
	SessionName = "kakeibo_session"

	keyLoggedIn    = "logged_in"
	keyAccountID   = "user_id"
	keyGuestLedger = "guest_transactions"
)

// NewSessionStore returns a session store that keeps session values in files
// under dir. Only the signed session id travels in the cookie, so the guest
// ledger is not bound by the browser's cookie size.
func NewSessionStore(dir string, secret []byte, maxAge time.Duration, secure bool) (*sessions.FilesystemStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	store := sessions.NewFilesystemStore(dir, secret)
	store.MaxLength(0)
	store.MaxAge(int(maxAge.Seconds()))
	store.Options.HttpOnly = true
	store.Options.Secure = secure
	store.Options.SameSite = http.SameSiteLaxMode
	return store, nil
}

// Gate resolves per-request identity and performs login and logout.
type Gate struct {
	store  sessions.Store
	auth   Authenticator
	logger *log.Logger
}

func NewGate(store sessions.Store, authenticator Authenticator, logger *log.Logger) *Gate {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Gate{store: store, auth: authenticator, logger: logger.WithComponent(log.ComponentAuth)}
}

// Session loads the caller's session. A cookie that fails verification is
// replaced by a fresh, unauthenticated session.
func (g *Gate) Session(r *http.Request) *Session {
	s, err := g.store.Get(r, SessionName)
	if err != nil {
		g.logger.WarnContext(r.Context(), "Discarding unreadable session cookie", log.FieldError, err)
		s = sessions.NewSession(g.store, SessionName)
		s.IsNew = true
	}
	return &Session{s: s, logger: g.logger}
}

// Login authenticates password and marks the session as logged in. Any guest
// ledger held by the session is dropped, not merged.
func (g *Gate) Login(w http.ResponseWriter, r *http.Request, password string) error {
	accountID, err := g.auth.Authenticate(r.Context(), password)
	if err != nil {
		g.logger.WarnContext(r.Context(), "Login rejected", log.FieldOperation, log.OpLogin)
		return err
	}

	s := g.Session(r)
	dropped := s.dropGuestLedger(r.Context())
	s.s.Values[keyLoggedIn] = true
	s.s.Values[keyAccountID] = accountID
	if err := s.Save(w, r); err != nil {
		return err
	}

	g.logger.InfoContext(r.Context(), "Login succeeded",
		log.FieldOperation, log.OpLogin,
		log.FieldEntries, dropped)
	return nil
}

// Logout clears the logged-in flag and the guest ledger.
func (g *Gate) Logout(w http.ResponseWriter, r *http.Request) error {
	s := g.Session(r)
	dropped := s.dropGuestLedger(r.Context())
	delete(s.s.Values, keyLoggedIn)
	delete(s.s.Values, keyAccountID)
	if err := s.Save(w, r); err != nil {
		return err
	}

	g.logger.InfoContext(r.Context(), "Logged out",
		log.FieldOperation, log.OpLogout,
		log.FieldEntries, dropped)
	return nil
}

// Session is one request's view of the browser session.
type Session struct {
	s      *sessions.Session
	logger *log.Logger
}

func (s *Session) Authenticated() bool {
	v, _ := s.s.Values[keyLoggedIn].(bool)
	return v
}

func (s *Session) AccountID() string {
	v, _ := s.s.Values[keyAccountID].(string)
	return v
}

// GuestLedger decodes the guest entries held by the session. A corrupt payload
// yields an empty ledger together with the decode error.
func (s *Session) GuestLedger() (*ledger.GuestLedger, error) {
	payload, _ := s.s.Values[keyGuestLedger].(string)
	g, err := ledger.DecodeGuestLedger(payload)
	if err != nil {
		return ledger.NewGuestLedger(nil), err
	}
	return g, nil
}

// SetGuestLedger stores g in the session. It is not written to the client until Save.
func (s *Session) SetGuestLedger(g *ledger.GuestLedger) error {
	payload, err := g.Encode()
	if err != nil {
		return err
	}
	s.s.Values[keyGuestLedger] = payload
	return nil
}

func (s *Session) Save(w http.ResponseWriter, r *http.Request) error {
	if err := s.s.Save(r, w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *Session) dropGuestLedger(ctx context.Context) int {
	if _, ok := s.s.Values[keyGuestLedger]; !ok {
		return 0
	}
	n := 0
	if g, err := s.GuestLedger(); err == nil {
		n = g.Len()
	}
	delete(s.s.Values, keyGuestLedger)
	if n > 0 {
		s.logger.WarnContext(ctx, "Guest entries discarded", log.FieldEntries, n)
	}
	return n
}
