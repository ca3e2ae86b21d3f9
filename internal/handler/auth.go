package handler

import (
	"log/slog"
	"net"
	"net/http"

	"github.com/msomdec/rightnow/internal/domain"
	"github.com/msomdec/rightnow/internal/service"
	"github.com/msomdec/rightnow/internal/state"
)

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	auth         *state.Auth
	tokens       TokenValidator
	limiter      *service.AttemptLimiter
	cookieSecure bool
}

// NewAuthHandler creates a new AuthHandler. limiter may be nil to disable
// login throttling.
func NewAuthHandler(auth *state.Auth, tokens TokenValidator, limiter *service.AttemptLimiter, cookieSecure bool) *AuthHandler {
	return &AuthHandler{auth: auth, tokens: tokens, limiter: limiter, cookieSecure: cookieSecure}
}

// HandleLogin processes a JSON login request.
// POST /api/auth/login
// Request:  {"email":"...","password":"..."}
// Response: {"user": {...}, "token": "..."}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if h.limiter != nil && !h.limiter.Allow(clientIP(r)) {
		slog.Warn("login rate limited", "ip", clientIP(r))
		writeError(w, http.StatusTooManyRequests, "Too many login attempts. Please wait and try again.")
		return
	}

	var creds domain.Credentials
	if err := readJSON(w, r, &creds); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	session, err := h.auth.Login(r.Context(), creds)
	if err != nil {
		writeStoreError(w, "login user", err)
		return
	}
	h.writeSession(w, http.StatusOK, session)
}

// HandleDevLogin signs in the developer account.
// POST /api/auth/dev-login
func (h *AuthHandler) HandleDevLogin(w http.ResponseWriter, r *http.Request) {
	session, err := h.auth.DevLogin(r.Context())
	if err != nil {
		writeStoreError(w, "dev login", err)
		return
	}
	h.writeSession(w, http.StatusOK, session)
}

// HandleSignup registers and signs in a new account.
// POST /api/auth/signup
// Request:  {"name":"...","email":"...","password":"...","location":"..."}
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var in domain.Signup
	if err := readJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	session, err := h.auth.Signup(r.Context(), in)
	if err != nil {
		writeStoreError(w, "signup user", err)
		return
	}
	h.writeSession(w, http.StatusCreated, session)
}

// HandleLogout clears the auth cookie and, when the request carries the
// current session, ends it. It always succeeds.
// POST /api/auth/logout
// Response: 204 No Content
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if _, err := authenticateRequest(r, h.tokens, h.auth); err == nil {
		h.auth.Logout(r.Context())
	}
	h.setCookie(w, "", -1)
	w.WriteHeader(http.StatusNoContent)
}

// HandleMe returns the currently authenticated user.
// GET /api/auth/me
// Response: {"user": {...}} or 401
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user": toUserDTO(user),
	})
}

// HandleUpdateMe patches the current user's profile.
// PATCH /api/auth/me
// Request: any of {"name","email","avatarUrl","locationText","age"}
func (h *AuthHandler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	var patch domain.ProfilePatch
	if err := readJSON(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	user, err := h.auth.UpdateProfile(r.Context(), patch)
	if err != nil {
		writeStoreError(w, "update profile", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user": toUserDTO(user),
	})
}

func (h *AuthHandler) writeSession(w http.ResponseWriter, status int, session *domain.Session) {
	h.setCookie(w, session.Token, int(service.SessionTTL.Seconds()))
	writeJSON(w, status, map[string]any{
		"user":  toUserDTO(session.User),
		"token": session.Token,
	})
}

func (h *AuthHandler) setCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

// clientIP keys the login limiter. Forwarded headers are ignored since
// they are client-controlled.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
