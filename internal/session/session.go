// Package session keeps all per-visitor state in a signed client-side
// cookie: the end-user identity with its backend token pair, the admin
// panel flag, and pending pop-once flash messages.
package session

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const cookieName = "session"

type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

type Session struct {
	UserID       string
	Email        string
	AccessToken  string
	RefreshToken string
	IsAdmin      bool
	flashes      []Flash
}

// LoggedIn reports whether a user identity is present. Token validity is
// the session guard's concern, not ours.
func (s *Session) LoggedIn() bool {
	return s.UserID != ""
}

// Clear drops the user identity and token pair. The admin flag and any
// queued flashes survive, they have independent lifecycles.
func (s *Session) Clear() {
	s.UserID = ""
	s.Email = ""
	s.AccessToken = ""
	s.RefreshToken = ""
}

func (s *Session) Flash(category, message string) {
	s.flashes = append(s.flashes, Flash{Category: category, Message: message})
}

// PopFlashes returns queued flashes and empties the queue. The caller
// must save the session afterwards or the messages reappear.
func (s *Session) PopFlashes() []Flash {
	flashes := s.flashes
	s.flashes = nil
	return flashes
}

type sessionClaims struct {
	UserID       string  `json:"uid,omitempty"`
	Email        string  `json:"email,omitempty"`
	AccessToken  string  `json:"at,omitempty"`
	RefreshToken string  `json:"rt,omitempty"`
	IsAdmin      bool    `json:"adm,omitempty"`
	Flashes      []Flash `json:"fls,omitempty"`
	jwt.RegisteredClaims
}

// Manager signs and verifies the session cookie.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl}
}

// Load parses the session cookie. A missing, expired or tampered cookie
// yields an empty session rather than an error.
func (m *Manager) Load(r *http.Request) *Session {
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return &Session{}
	}

	var claims sessionClaims
	token, err := jwt.ParseWithClaims(
		cookie.Value,
		&claims,
		func(*jwt.Token) (interface{}, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !token.Valid {
		return &Session{}
	}

	return &Session{
		UserID:       claims.UserID,
		Email:        claims.Email,
		AccessToken:  claims.AccessToken,
		RefreshToken: claims.RefreshToken,
		IsAdmin:      claims.IsAdmin,
		flashes:      claims.Flashes,
	}
}

// Save signs the session and sets the cookie on the response.
func (m *Manager) Save(w http.ResponseWriter, s *Session) error {
	now := time.Now()
	claims := sessionClaims{
		UserID:       s.UserID,
		Email:        s.Email,
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		IsAdmin:      s.IsAdmin,
		Flashes:      s.flashes,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return nil
}

// Redirect saves the session and then redirects, the common tail of
// almost every handler.
func (m *Manager) Redirect(w http.ResponseWriter, r *http.Request, s *Session, url string) {
	_ = m.Save(w, s)
	http.Redirect(w, r, url, http.StatusSeeOther)
}
