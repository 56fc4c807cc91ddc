package login

import (
	"context"
	"errors"
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
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAuth struct {
	mock.Mock
}

func (m *MockAuth) SignInWithOTP(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

type MockPending struct {
	mock.Mock
}

func (m *MockPending) SavePending(ctx context.Context, token, email string) error {
	args := m.Called(ctx, token, email)
	return args.Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRenderer(t *testing.T) *views.Renderer {
	t.Helper()

	renderer, err := views.New()
	require.NoError(t, err)
	return renderer
}

func postForm(target, form string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func TestLoginGetRendersForm(t *testing.T) {
	sessions := session.NewManager("secret", time.Hour)
	handler := New(discardLogger(), sessions, &MockAuth{}, &MockPending{}, newRenderer(t))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "one-time login code")
}

func TestLoginSendsOTPAndRedirectsToVerify(t *testing.T) {
	sessions := session.NewManager("secret", time.Hour)

	auth := &MockAuth{}
	auth.On("SignInWithOTP", mock.Anything, "me@example.com").Return(nil)

	var savedToken string
	pending := &MockPending{}
	pending.On("SavePending", mock.Anything, mock.Anything, "me@example.com").
		Run(func(args mock.Arguments) { savedToken = args.String(1) }).
		Return(nil)

	handler := New(discardLogger(), sessions, auth, pending, newRenderer(t))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, postForm("/login", "email=me%40example.com"))

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.NotEmpty(t, savedToken)
	assert.Equal(t, "/verify?token="+savedToken, w.Header().Get("Location"))
	// the email must not appear anywhere the browser can see
	assert.NotContains(t, w.Header().Get("Location"), "example.com")

	auth.AssertExpectations(t)
	pending.AssertExpectations(t)
}

func TestLoginFlashesSendFailure(t *testing.T) {
	sessions := session.NewManager("secret", time.Hour)

	auth := &MockAuth{}
	auth.On("SignInWithOTP", mock.Anything, "me@example.com").
		Return(errors.New("rate limit exceeded"))

	handler := New(discardLogger(), sessions, auth, &MockPending{}, newRenderer(t))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, postForm("/login", "email=me%40example.com"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Error sending OTP")
}

func TestLoginRejectsInvalidEmail(t *testing.T) {
	sessions := session.NewManager("secret", time.Hour)
	auth := &MockAuth{}

	handler := New(discardLogger(), sessions, auth, &MockPending{}, newRenderer(t))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, postForm("/login", "email=not-an-email"))

	assert.Equal(t, http.StatusOK, w.Code)
	auth.AssertNotCalled(t, "SignInWithOTP", mock.Anything, mock.Anything)
}

func TestLoginRedirectsLoggedInUsers(t *testing.T) {
	sessions := session.NewManager("secret", time.Hour)
	handler := New(discardLogger(), sessions, &MockAuth{}, &MockPending{}, newRenderer(t))

	saved := httptest.NewRecorder()
	require.NoError(t, sessions.Save(saved, &session.Session{UserID: "user-1"}))

	r := httptest.NewRequest(http.MethodGet, "/login", nil)
	for _, cookie := range saved.Result().Cookies() {
		r.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))
}
