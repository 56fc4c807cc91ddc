package placeorder

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"restaurant-web/internal/clients/backend"
	"restaurant-web/internal/http-server/middleware/authguard"
	"restaurant-web/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend serves just enough of the remote API for the order flow:
// the refresh grant, the menu price lookup and the order insert.
type fakeBackend struct {
	prices        map[int64]float64
	insertedOrder map[string]any
	insertCalls   int
}

func (f *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/auth/v1/token", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(backend.Session{
			AccessToken:  "access",
			RefreshToken: "refresh",
			User:         backend.User{ID: "user-1", Email: "me@example.com"},
		})
	})

	mux.HandleFunc("/rest/v1/menu", func(w http.ResponseWriter, r *http.Request) {
		type row struct {
			ID    int64   `json:"id"`
			Price float64 `json:"price"`
		}
		rows := []row{}
		for id, price := range f.prices {
			rows = append(rows, row{ID: id, Price: price})
		}
		_ = json.NewEncoder(w).Encode(rows)
	})

	mux.HandleFunc("/rest/v1/orders", func(w http.ResponseWriter, r *http.Request) {
		f.insertCalls++
		_ = json.NewDecoder(r.Body).Decode(&f.insertedOrder)
		w.WriteHeader(http.StatusCreated)
	})

	return mux
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func placeOrder(t *testing.T, fake *fakeBackend, itemsJSON string) *httptest.ResponseRecorder {
	t.Helper()

	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	sessions := session.NewManager("secret", time.Hour)
	client := backend.New(srv.URL, "anon", time.Second)

	handler := authguard.RequireUser(discardLogger(), sessions, client)(
		New(discardLogger(), sessions),
	)

	form := url.Values{}
	if itemsJSON != "-" {
		form.Set("items", itemsJSON)
	}

	r := httptest.NewRequest(http.MethodPost, "/order", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	saved := httptest.NewRecorder()
	require.NoError(t, sessions.Save(saved, &session.Session{
		UserID:       "user-1",
		Email:        "me@example.com",
		AccessToken:  "access",
		RefreshToken: "refresh",
	}))
	for _, cookie := range saved.Result().Cookies() {
		r.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	return w
}

func TestPlaceOrderComputesTotalFromMenuPrices(t *testing.T) {
	fake := &fakeBackend{prices: map[int64]float64{1: 5.00, 2: 3.25}}

	w := placeOrder(t, fake, `[{"item_id":1,"quantity":2},{"item_id":2,"quantity":1}]`)

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))

	require.Equal(t, 1, fake.insertCalls)
	assert.Equal(t, "user-1", fake.insertedOrder["user_id"])
	assert.InDelta(t, 13.25, fake.insertedOrder["total_price"].(float64), 1e-9)
}

func TestPlaceOrderIgnoresClientSuppliedPrices(t *testing.T) {
	fake := &fakeBackend{prices: map[int64]float64{1: 5.00}}

	// a tampered payload claiming a price of 0.01 changes nothing
	w := placeOrder(t, fake, `[{"item_id":1,"quantity":2,"price":0.01}]`)

	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, 1, fake.insertCalls)
	assert.InDelta(t, 10.00, fake.insertedOrder["total_price"].(float64), 1e-9)
}

func TestPlaceOrderMissingCart(t *testing.T) {
	fake := &fakeBackend{prices: map[int64]float64{1: 5.00}}

	w := placeOrder(t, fake, "-")

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/menu", w.Header().Get("Location"))
	assert.Zero(t, fake.insertCalls)
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	fake := &fakeBackend{prices: map[int64]float64{1: 5.00}}

	w := placeOrder(t, fake, "[]")

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/menu", w.Header().Get("Location"))
	assert.Zero(t, fake.insertCalls)
}

func TestPlaceOrderRejectsUnknownItem(t *testing.T) {
	fake := &fakeBackend{prices: map[int64]float64{1: 5.00}}

	w := placeOrder(t, fake, `[{"item_id":99,"quantity":3}]`)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/menu", w.Header().Get("Location"))
	assert.Zero(t, fake.insertCalls, "no order row may be written for an unknown item")
}

func TestPlaceOrderRejectsNonPositiveQuantity(t *testing.T) {
	fake := &fakeBackend{prices: map[int64]float64{1: 5.00}}

	w := placeOrder(t, fake, `[{"item_id":1,"quantity":0}]`)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/menu", w.Header().Get("Location"))
	assert.Zero(t, fake.insertCalls)
}

func TestPlaceOrderMalformedPayload(t *testing.T) {
	fake := &fakeBackend{prices: map[int64]float64{1: 5.00}}

	w := placeOrder(t, fake, `{"item_id":1`)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/menu", w.Header().Get("Location"))
	assert.Zero(t, fake.insertCalls)
}
