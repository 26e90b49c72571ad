package handlers_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"finance/src/api/handlers"
	"finance/src/config"
	"finance/src/schemas"
	"finance/src/services"
	"finance/src/sessions"
	"finance/src/utils"
	"finance/src/utils/render"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHandler(t *testing.T) *handlers.Handler {
	renderer, err := render.NewRenderer()
	require.NoError(t, err)
	manager := sessions.NewManager(sessions.NewMemoryStore(), config.SessionsConfig{TTL: time.Hour, CookieName: "session"})
	return handlers.NewHandler(nil, nil, manager, renderer, 0)
}

func TestHandleErrors(t *testing.T) {
	h := newHandler(t)

	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"invalid input", services.NewError(services.ErrInvalidInput, "must provide symbol"), http.StatusBadRequest, "must provide symbol"},
		{"unknown symbol", services.NewError(services.ErrUnknownSymbol, "symbol X does not exist"), http.StatusBadRequest, "symbol X does not exist"},
		{"insufficient funds", services.NewError(services.ErrInsufficientFunds, "not enough cash"), http.StatusBadRequest, "not enough cash"},
		{"insufficient shares", services.NewError(services.ErrInsufficientShares, "too many"), http.StatusBadRequest, "too many"},
		{"duplicate username", services.NewError(services.ErrDuplicateUsername, "taken"), http.StatusBadRequest, "taken"},
		{"invalid credentials", services.NewError(services.ErrInvalidCredentials, "invalid username and/or password"), http.StatusForbidden, "invalid username and/or password"},
		{"validation error", &schemas.ValidationError{Field: "shares", Message: "bad shares"}, http.StatusBadRequest, "bad shares"},
		{"timeout", fmt.Errorf("lookup: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, "request timed out"},
		{"http error", utils.ServiceUnavailable("quotes unavailable"), http.StatusServiceUnavailable, "quotes unavailable"},
		{"anything else", errors.New("connection reset"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.HandleErrors(rec, httptest.NewRequest(http.MethodPost, "/buy", nil), tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.message)
			assert.NotContains(t, rec.Body.String(), "connection reset")
		})
	}
}

func TestHandleErrorsRedirectsUnauthenticated(t *testing.T) {
	h := newHandler(t)
	rec := httptest.NewRecorder()
	h.HandleErrors(rec, httptest.NewRequest(http.MethodGet, "/", nil), services.NewError(services.ErrUnauthenticated, "unknown user"))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestRequireLogin(t *testing.T) {
	h := newHandler(t)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	h.RequireLogin(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusFound, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(sessions.WithSession(req.Context(), &sessions.Session{UserID: 1}))
	rec = httptest.NewRecorder()
	h.RequireLogin(next).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestHealthcheck(t *testing.T) {
	rec := httptest.NewRecorder()
	handlers.Healthcheck(rec, httptest.NewRequest(http.MethodGet, "/alive", nil))
	assert.Equal(t, "Im alive!", rec.Body.String())
}
