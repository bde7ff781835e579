package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"kakeibo/internal/core"
)

func TestPasswordAuthenticatorPlain(t *testing.T) {
	a, err := NewPasswordAuthenticator("1", "open-sesame", "")
	require.NoError(t, err)

	id, err := a.Authenticate(context.Background(), "open-sesame")
	require.NoError(t, err)
	assert.Equal(t, "1", id)

	_, err = a.Authenticate(context.Background(), "wrong")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)

	_, err = a.Authenticate(context.Background(), "")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestPasswordAuthenticatorHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	a, err := NewPasswordAuthenticator("1", "ignored", string(hash))
	require.NoError(t, err)

	_, err = a.Authenticate(context.Background(), "ignored")
	assert.ErrorIs(t, err, ErrAuthenticationFailed, "hash takes precedence over plaintext")

	id, err := a.Authenticate(context.Background(), "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "1", id)
}

func TestNewPasswordAuthenticatorErrors(t *testing.T) {
	_, err := NewPasswordAuthenticator("", "x", "")
	assert.Error(t, err)

	_, err = NewPasswordAuthenticator("1", "", "")
	assert.Error(t, err)

	_, err = NewPasswordAuthenticator("1", "", "not-a-bcrypt-hash")
	assert.Error(t, err)
}

func newTestGate(t *testing.T) *Gate {
	t.Helper()
	a, err := NewPasswordAuthenticator("1", "pw", "")
	require.NoError(t, err)
	store, err := NewSessionStore(t.TempDir(), []byte("0123456789abcdef0123456789abcdef"), time.Hour, false)
	require.NoError(t, err)
	return NewGate(store, a, nil)
}

// withCookies copies the cookies set on rec onto a new request.
func withCookies(req *http.Request, rec *httptest.ResponseRecorder) *http.Request {
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestGateFreshSessionIsGuest(t *testing.T) {
	g := newTestGate(t)
	s := g.Session(httptest.NewRequest(http.MethodGet, "/", nil))

	assert.False(t, s.Authenticated())
	assert.Empty(t, s.AccountID())

	gl, err := s.GuestLedger()
	require.NoError(t, err)
	assert.Equal(t, 0, gl.Len())
}

func TestGateGuestLedgerRoundTrip(t *testing.T) {
	g := newTestGate(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodPost, "/add", nil)
	rec := httptest.NewRecorder()
	s := g.Session(req)
	gl, _ := s.GuestLedger()
	_, err := gl.Record(ctx, core.Entry{Type: core.Expense, Category: "food", Amount: decimal.RequireFromString("12.50")})
	require.NoError(t, err)
	require.NoError(t, s.SetGuestLedger(gl))
	require.NoError(t, s.Save(rec, req))

	next := g.Session(withCookies(httptest.NewRequest(http.MethodGet, "/", nil), rec))
	restored, err := next.GuestLedger()
	require.NoError(t, err)
	total, _ := restored.Sum(ctx, core.Expense)
	assert.True(t, total.Equal(decimal.RequireFromString("12.50")))
}

func TestGateLoginDiscardsGuestLedger(t *testing.T) {
	g := newTestGate(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodPost, "/add", nil)
	rec := httptest.NewRecorder()
	s := g.Session(req)
	gl, _ := s.GuestLedger()
	_, _ = gl.Record(ctx, core.Entry{Type: core.Income, Category: "gift", Amount: decimal.NewFromInt(100)})
	require.NoError(t, s.SetGuestLedger(gl))
	require.NoError(t, s.Save(rec, req))

	loginRec := httptest.NewRecorder()
	loginReq := withCookies(httptest.NewRequest(http.MethodPost, "/login", nil), rec)
	require.NoError(t, g.Login(loginRec, loginReq, "pw"))

	after := g.Session(withCookies(httptest.NewRequest(http.MethodGet, "/", nil), loginRec))
	assert.True(t, after.Authenticated())
	assert.Equal(t, "1", after.AccountID())
	restored, err := after.GuestLedger()
	require.NoError(t, err)
	assert.Equal(t, 0, restored.Len())
}

func TestGateLoginWrongPasswordLeavesSession(t *testing.T) {
	g := newTestGate(t)
	rec := httptest.NewRecorder()
	err := g.Login(rec, httptest.NewRequest(http.MethodPost, "/login", nil), "nope")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	assert.Empty(t, rec.Result().Cookies())
}

func TestGateLogout(t *testing.T) {
	g := newTestGate(t)
	loginRec := httptest.NewRecorder()
	require.NoError(t, g.Login(loginRec, httptest.NewRequest(http.MethodPost, "/login", nil), "pw"))

	logoutRec := httptest.NewRecorder()
	require.NoError(t, g.Logout(logoutRec, withCookies(httptest.NewRequest(http.MethodGet, "/logout", nil), loginRec)))

	after := g.Session(withCookies(httptest.NewRequest(http.MethodGet, "/", nil), logoutRec))
	assert.False(t, after.Authenticated())
}

func TestGateTamperedCookieIsGuest(t *testing.T) {
	g := newTestGate(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionName, Value: "forged"})

	s := g.Session(req)
	assert.False(t, s.Authenticated())
}
