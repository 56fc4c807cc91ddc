// Package backend is the client for the managed data service that owns
// all application tables and the email-OTP auth flow. Two handles exist:
// one built with the restricted key (row-level security applies), one
// with the privileged service key for the admin panel.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type Client struct {
	baseURL string
	apiKey  string
	// bearer token sent with table calls; defaults to the api key,
	// replaced by the user's access token on request-scoped copies
	token string
	http  *http.Client
}

func New(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		token:   apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// WithToken returns a copy of the client that authenticates table calls
// as the owner of the given access token. The receiver is never mutated,
// so one process-wide handle can serve concurrent requests safely.
func (c *Client) WithToken(accessToken string) *Client {
	clone := *c
	clone.token = accessToken
	return &clone
}

// Error is the single failure shape for every backend call. The app does
// not distinguish error subtypes; call sites convert it to a flash
// message and redirect.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend: %s (status %d)", e.Message, e.Status)
}

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// SignInWithOTP asks the auth service to email a one-time code.
func (c *Client) SignInWithOTP(ctx context.Context, email string) error {
	const op = "backend.SignInWithOTP"

	body := map[string]string{"email": email}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/v1/otp", body, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// VerifyOTP exchanges an emailed code for a session. A 2xx response that
// carries no token pair still counts as a failure.
func (c *Client) VerifyOTP(ctx context.Context, email, code string) (Session, error) {
	const op = "backend.VerifyOTP"

	body := map[string]string{
		"type":  "email",
		"email": email,
		"token": code,
	}

	var sess Session
	if err := c.doJSON(ctx, http.MethodPost, "/auth/v1/verify", body, &sess); err != nil {
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}

	if sess.AccessToken == "" || sess.RefreshToken == "" {
		return Session{}, fmt.Errorf("%s: %w", op, &Error{
			Status:  http.StatusUnauthorized,
			Message: "verification response is missing a session",
		})
	}

	return sess, nil
}

// RefreshSession validates a stored refresh token and returns a fresh,
// possibly rotated, token pair. The session guard runs this on every
// protected request.
func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (Session, error) {
	const op = "backend.RefreshSession"

	body := map[string]string{"refresh_token": refreshToken}

	var sess Session
	err := c.doJSON(ctx, http.MethodPost, "/auth/v1/token?grant_type=refresh_token", body, &sess)
	if err != nil {
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}

	if sess.AccessToken == "" || sess.RefreshToken == "" {
		return Session{}, fmt.Errorf("%s: %w", op, &Error{
			Status:  http.StatusUnauthorized,
			Message: "refresh response is missing a session",
		})
	}

	return sess, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, dest any) error {
	req, err := c.newTableRequest(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}

	return c.execute(req, dest)
}

// newTableRequest builds an authenticated request carrying the handle's
// current bearer token, so row-level security sees the right identity on
// request-scoped copies.
func (c *Client) newTableRequest(ctx context.Context, method, endpoint string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

func (c *Client) execute(req *http.Request, dest any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Status: 0, Message: err.Error()}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Status: resp.StatusCode, Message: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Status: resp.StatusCode, Message: remoteMessage(data)}
	}

	if dest != nil && len(data) > 0 {
		if err := json.Unmarshal(data, dest); err != nil {
			return &Error{Status: resp.StatusCode, Message: err.Error()}
		}
	}

	return nil
}

func readError(resp *http.Response) *Error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Status: resp.StatusCode, Message: err.Error()}
	}

	return &Error{Status: resp.StatusCode, Message: remoteMessage(data)}
}

// remoteMessage digs the human-readable text out of an error body. The
// auth and table APIs use different field names.
func remoteMessage(data []byte) string {
	var payload struct {
		Message   string `json:"message"`
		Msg       string `json:"msg"`
		ErrorDesc string `json:"error_description"`
	}

	if err := json.Unmarshal(data, &payload); err == nil {
		switch {
		case payload.Message != "":
			return payload.Message
		case payload.Msg != "":
			return payload.Msg
		case payload.ErrorDesc != "":
			return payload.ErrorDesc
		}
	}

	if len(data) > 0 {
		return string(data)
	}

	return "request failed"
}
