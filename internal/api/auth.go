package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/medboxlab/medbox-core/internal/auth"
)

// loginRequest is the body of POST /auth/login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse is returned on successful authentication.
type loginResponse struct {
	Token string     `json:"token"`
	User  *auth.User `json:"user"`
}

// handleLogin authenticates a user and issues an access token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeBadRequest(w, "username and password are required")
		return
	}

	user, token, err := s.auth.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeUnauthorized(w, "invalid credentials")
			return
		}
		s.logger.Error("login failed", "username", req.Username, "error", err)
		writeInternalError(w, "authentication failed")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: user})
}

// handleMe returns the identity carried by the caller's access token.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeUnauthorized(w, "no authenticated identity")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":       claims.Subject,
		"username": claims.Username,
		"role":     claims.Role,
	})
}

// createUserRequest is the body of POST /users.
type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// minPasswordLength is the minimum accepted password length for new accounts.
const minPasswordLength = 8

// handleCreateUser registers a new account. Admin only.
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if len(req.Password) < minPasswordLength {
		writeBadRequest(w, "password must be at least 8 characters")
		return
	}
	role := auth.Role(req.Role)
	if req.Role == "" {
		role = auth.RoleUser
	}

	user, err := s.auth.CreateUser(r.Context(), req.Username, req.Password, role)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUsernameExists):
			writeError(w, http.StatusConflict, ErrCodeConflict, "username already exists")
		case errors.Is(err, auth.ErrInvalidUsername):
			writeBadRequest(w, "invalid username")
		default:
			writeBadRequest(w, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, user)
}
