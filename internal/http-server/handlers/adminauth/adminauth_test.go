package adminauth

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"restaurant-web/internal/session"
	"restaurant-web/internal/views"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testEnv(t *testing.T) (*session.Manager, http.HandlerFunc) {
	t.Helper()

	renderer, err := views.New()
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte("letmein"), bcrypt.MinCost)
	require.NoError(t, err)

	sessions := session.NewManager("secret", time.Hour)
	return sessions, New(discardLogger(), sessions, string(hash), renderer)
}

func postPassword(password string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/admin_login", strings.NewReader("password="+password))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func responseSession(t *testing.T, m *session.Manager, w *httptest.ResponseRecorder) *session.Session {
	t.Helper()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, cookie := range w.Result().Cookies() {
		r.AddCookie(cookie)
	}

	return m.Load(r)
}

func TestAdminLoginCorrectPassword(t *testing.T) {
	sessions, handler := testEnv(t)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, postPassword("letmein"))

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin", w.Header().Get("Location"))
	assert.True(t, responseSession(t, sessions, w).IsAdmin)
}

func TestAdminLoginWrongPassword(t *testing.T) {
	sessions, handler := testEnv(t)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, postPassword("441106"))

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin_login", w.Header().Get("Location"))

	got := responseSession(t, sessions, w)
	assert.False(t, got.IsAdmin)

	flashes := got.PopFlashes()
	require.Len(t, flashes, 1)
	assert.Equal(t, "Incorrect admin password.", flashes[0].Message)
}

func TestAdminLoginGetRendersForm(t *testing.T) {
	_, handler := testEnv(t)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin_login", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Admin login")
}

func TestAdminLogoutKeepsUserSession(t *testing.T) {
	sessions := session.NewManager("secret", time.Hour)
	handler := Logout(discardLogger(), sessions)

	saved := httptest.NewRecorder()
	require.NoError(t, sessions.Save(saved, &session.Session{
		UserID:       "user-1",
		AccessToken:  "access",
		RefreshToken: "refresh",
		IsAdmin:      true,
	}))

	r := httptest.NewRequest(http.MethodGet, "/admin_logout", nil)
	for _, cookie := range saved.Result().Cookies() {
		r.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	got := responseSession(t, sessions, w)
	assert.False(t, got.IsAdmin)
	assert.True(t, got.LoggedIn())
}
