package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/meshvault/meshvault-server/internal/logger"
	"github.com/meshvault/meshvault-server/internal/model"
)

// AccountService covers the account flows the auth handlers need.
type AccountService interface {
	Register(ctx context.Context, username, email, password string) (model.Account, error)
	Authenticate(ctx context.Context, login, password string) (model.Account, error)
}

type Auth struct {
	accounts AccountService
	tokens   model.TokenManager
	logger   *logger.Logger
}

func NewAuth(accounts AccountService, tokens model.TokenManager, logger *logger.Logger) *Auth {
	return &Auth{
		accounts: accounts,
		tokens:   tokens,
		logger:   logger,
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// accountJSON is the client-facing account shape; the credential hash
// never leaves the service boundary.
type accountJSON struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func toAccountJSON(a model.Account) accountJSON {
	return accountJSON{ID: a.ID, Username: a.Username, Email: a.Email}
}

// Register handles POST /api/auth/register.
func (h *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	account, err := h.accounts.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAccountJSON(account))
}

// Login handles POST /api/auth/login. The login field is tried as a
// username first, then as an email.
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	account, err := h.accounts.Authenticate(r.Context(), req.Login, req.Password)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	token, err := h.tokens.GenerateSessionToken(account.ID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token":   token,
		"account": toAccountJSON(account),
	})
}
