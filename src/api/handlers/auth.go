package handlers

import (
	"errors"
	"net/http"

	"finance/src/schemas"
	"finance/src/services"
	"finance/src/sessions"
)

func (h *Handler) GetLogin(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "login", "Log In", nil, http.StatusOK)
}

// PostLogin forgets any current session before checking credentials. Missing
// fields are answered with 403 like bad credentials.
func (h *Handler) PostLogin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	r, err := h.logout(w, r)
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}

	user, err := h.Auth.Login(ctx, schemas.ParseLoginForm(r))
	if errors.Is(err, services.ErrInvalidInput) {
		h.apology(w, r, err.Error(), http.StatusForbidden)
		return
	}
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}

	if _, err := h.Sessions.Start(ctx, w, user.ID); err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) GetLogout(w http.ResponseWriter, r *http.Request) {
	if _, err := h.logout(w, r); err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) GetRegister(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "register", "Register", nil, http.StatusOK)
}

// PostRegister creates the account and logs the new user in.
func (h *Handler) PostRegister(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	user, err := h.Auth.Register(ctx, schemas.ParseRegisterForm(r))
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}

	r, err = h.logout(w, r)
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	s, err := h.Sessions.Start(ctx, w, user.ID)
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	h.redirectWithFlash(w, r, s, "Registered!", "/")
}

// logout drops the request's session and returns the request without it so
// the rest of the handler renders logged out.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) (*http.Request, error) {
	s, ok := sessions.FromContext(r.Context())
	if !ok {
		return r, nil
	}
	if err := h.Sessions.Destroy(r.Context(), w, s); err != nil {
		return r, err
	}
	return r.WithContext(sessions.WithSession(r.Context(), nil)), nil
}
