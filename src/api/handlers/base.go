package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"finance/src/schemas"
	"finance/src/services"
	"finance/src/sessions"
	"finance/src/utils"
	"finance/src/utils/render"
)

const defaultRequestTimeout = 10 * time.Second

type Handler struct {
	Ledger         services.LedgerServiceI
	Auth           services.AuthServiceI
	Sessions       *sessions.Manager
	Renderer       *render.Renderer
	RequestTimeout time.Duration
}

func NewHandler(ledger services.LedgerServiceI, auth services.AuthServiceI, manager *sessions.Manager, renderer *render.Renderer, timeout time.Duration) *Handler {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Handler{
		Ledger:         ledger,
		Auth:           auth,
		Sessions:       manager,
		Renderer:       renderer,
		RequestTimeout: timeout,
	}
}

func (h *Handler) context(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.RequestTimeout)
}

// respond renders page with the flashes pending on the session.
func (h *Handler) respond(w http.ResponseWriter, r *http.Request, page string, title string, data interface{}, status int) {
	s, loggedIn := sessions.FromContext(r.Context())
	flashes, err := h.Sessions.PopFlashes(r.Context(), s)
	if err != nil {
		utils.LoggerFromContext(r.Context()).WithError(err).Warn("clearing flashes")
	}

	err = h.Renderer.Render(w, status, page, render.Page{
		Title:    title,
		LoggedIn: loggedIn,
		Flashes:  flashes,
		Data:     data,
	})
	if err != nil {
		utils.LoggerFromContext(r.Context()).WithError(err).Error("rendering page")
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// apology renders the error page.
func (h *Handler) apology(w http.ResponseWriter, r *http.Request, message string, status int) {
	h.respond(w, r, "apology", "Apology", map[string]interface{}{
		"Code":    status,
		"Message": message,
	}, status)
}

// redirectWithFlash queues message on the session and redirects to target.
func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, s *sessions.Session, message, target string) {
	if err := h.Sessions.AddFlash(r.Context(), s, message); err != nil {
		utils.LoggerFromContext(r.Context()).WithError(err).Warn("saving flash")
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func (h *Handler) HandleErrors(w http.ResponseWriter, r *http.Request, err error) {
	var svcErr *services.Error
	var validationErr *schemas.ValidationError
	var httpErr *utils.HTTPError

	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		http.Redirect(w, r, "/login", http.StatusFound)
	case errors.Is(err, context.DeadlineExceeded):
		h.apology(w, r, "request timed out", http.StatusGatewayTimeout)
	case errors.Is(err, services.ErrInvalidCredentials):
		h.apology(w, r, err.Error(), http.StatusForbidden)
	case errors.As(err, &svcErr):
		h.apology(w, r, svcErr.Message, http.StatusBadRequest)
	case errors.As(err, &validationErr):
		h.apology(w, r, validationErr.Message, http.StatusBadRequest)
	case errors.As(err, &httpErr):
		h.apology(w, r, httpErr.Message, httpErr.Code)
	default:
		utils.LoggerFromContext(r.Context()).WithError(err).Error("unhandled error")
		h.apology(w, r, "internal server error", http.StatusInternalServerError)
	}
}

// RequireLogin redirects requests without a session to the login page.
func (h *Handler) RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := sessions.FromContext(r.Context()); !ok {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// currentSession must only be called behind RequireLogin.
func currentSession(r *http.Request) *sessions.Session {
	s, _ := sessions.FromContext(r.Context())
	return s
}
