package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"guardpost.dev/internal/audit"
	"guardpost.dev/internal/auth"
	"guardpost.dev/internal/obs"
)

type signUpRequest struct {
	Username  string   `json:"username"`
	Password  string   `json:"password"`
	RoleNames []string `json:"roleNames"`
}

type logInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// credentialFailureMessage is deliberately identical for unknown usernames,
// wrong passwords and disabled accounts so the response cannot be used to
// enumerate usernames.
const credentialFailureMessage = "invalid username or password"

func (a *API) handleSignUp(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req signUpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		writeError(w, r, http.StatusBadRequest, "username and password are required")
		return
	}
	if len(req.RoleNames) > auth.MaxRequestedRoles {
		writeError(w, r, http.StatusBadRequest, "at most 3 roles may be requested")
		return
	}

	resp, err := a.auth.Register(r.Context(), req.Username, req.Password, req.RoleNames)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidInput), errors.Is(err, auth.ErrUnknownRole):
			obs.ObserveRegistration("denied")
			writeError(w, r, http.StatusBadRequest, err.Error())
		default:
			obs.ObserveRegistration("error")
			writeError(w, r, http.StatusInternalServerError, "registration failed")
		}
		return
	}

	obs.ObserveRegistration("ok")
	_ = audit.LogEvent(r.Context(), "auth.user.registered", map[string]any{
		"username": resp.Username,
	})
	writeJSON(w, http.StatusCreated, resp)
}

func (a *API) handleLogIn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req logInRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		writeError(w, r, http.StatusBadRequest, "username and password are required")
		return
	}

	resp, err := a.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if credentialFailure(err) {
			obs.ObserveLogin("denied")
			writeError(w, r, http.StatusUnauthorized, credentialFailureMessage)
			return
		}
		obs.ObserveLogin("error")
		writeError(w, r, http.StatusInternalServerError, "login failed")
		return
	}

	obs.ObserveLogin("ok")
	_ = audit.LogEvent(r.Context(), "auth.user.login", map[string]any{
		"username": resp.Username,
	})
	writeJSON(w, http.StatusOK, resp)
}

// credentialFailure groups every authentication outcome that must look the
// same to the caller.
func credentialFailure(err error) bool {
	return errors.Is(err, auth.ErrNotFound) ||
		errors.Is(err, auth.ErrInvalidCredentials) ||
		errors.Is(err, auth.ErrInvalidInput) ||
		errors.Is(err, auth.ErrAccountDisabled) ||
		errors.Is(err, auth.ErrAccountLocked) ||
		errors.Is(err, auth.ErrAccountExpired) ||
		errors.Is(err, auth.ErrCredentialsExpired)
}

// --- Protected demo resources ---

func (a *API) handleAuthGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	principal, _ := auth.PrincipalFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Hello Get",
		"username": principal.Username,
	})
}

func (a *API) handleAuthPost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	principal, _ := auth.PrincipalFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Hello Post",
		"username": principal.Username,
	})
}
