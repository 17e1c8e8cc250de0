package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/meshvault/meshvault-server/internal/model"
)

type ctxKey string

const principalKey ctxKey = "principal"

// PrincipalResolver rehydrates the signed-in account for a request; a nil
// account with a nil error means the session is stale.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, accountID string) (*model.Account, error)
}

// AuthDeps carries what the auth middleware needs to establish a principal.
type AuthDeps struct {
	Tokens   model.TokenManager
	Resolver PrincipalResolver
}

// OptionalAuth attaches the principal to the request context when a valid
// bearer token is presented, and passes the request through anonymously
// otherwise. Invalid and stale tokens degrade to anonymous.
func OptionalAuth(deps AuthDeps, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := extractBearer(r.Header.Get("Authorization"))
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}

		accountID, err := deps.Tokens.ParseSessionToken(raw)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		principal, err := deps.Resolver.ResolvePrincipal(r.Context(), accountID)
		if err != nil || principal == nil {
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), *principal)))
	})
}

// RequireAuth rejects requests without a valid, resolvable principal.
func RequireAuth(deps AuthDeps, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := extractBearer(r.Header.Get("Authorization"))
		if raw == "" {
			unauthorized(w)
			return
		}

		accountID, err := deps.Tokens.ParseSessionToken(raw)
		if err != nil {
			unauthorized(w)
			return
		}

		principal, err := deps.Resolver.ResolvePrincipal(r.Context(), accountID)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if principal == nil {
			unauthorized(w)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), *principal)))
	})
}

func unauthorized(w http.ResponseWriter) {
	writeJSONError(w, http.StatusUnauthorized, "authentication required")
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// WithPrincipal attaches an authenticated account to the context.
func WithPrincipal(ctx context.Context, account model.Account) context.Context {
	return context.WithValue(ctx, principalKey, account)
}

// PrincipalFromCtx returns the authenticated account attached to the
// request, if any.
func PrincipalFromCtx(ctx context.Context) (model.Account, bool) {
	account, ok := ctx.Value(principalKey).(model.Account)
	return account, ok
}

func extractBearer(h string) string {
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
