package http

import (
	"net/http"

	"github.com/meshvault/meshvault-server/internal/api/http/handler"
	"github.com/meshvault/meshvault-server/internal/api/http/middleware"
	"github.com/meshvault/meshvault-server/internal/logger"
	"github.com/meshvault/meshvault-server/internal/model"
)

// RouterDeps carries everything the router wires into handlers.
type RouterDeps struct {
	Accounts      handler.AccountService
	Assets        handler.AssetService
	Principals    middleware.PrincipalResolver
	Tokens        model.TokenManager
	DB            handler.Pinger
	MaxUploadSize int64
	Logger        *logger.Logger
}

// NewRouter builds the HTTP handler tree for the JSON API.
func NewRouter(deps RouterDeps) http.Handler {
	authHandler := handler.NewAuth(deps.Accounts, deps.Tokens, deps.Logger)
	assetHandler := handler.NewAsset(deps.Assets, deps.MaxUploadSize, deps.Logger)
	healthHandler := handler.NewHealth(deps.DB, deps.Logger)

	authDeps := middleware.AuthDeps{Tokens: deps.Tokens, Resolver: deps.Principals}
	optional := func(h http.HandlerFunc) http.Handler { return middleware.OptionalAuth(authDeps, h) }
	required := func(h http.HandlerFunc) http.Handler { return middleware.RequireAuth(authDeps, h) }

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", healthHandler.Check)

	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	mux.Handle("GET /api/models", optional(assetHandler.List))
	mux.Handle("GET /api/model/{id}", optional(assetHandler.Get))
	mux.Handle("GET /api/download/{id}", optional(assetHandler.Download))
	mux.Handle("GET /api/view/{id}", optional(assetHandler.View))
	mux.Handle("PUT /api/model/{id}", required(assetHandler.Update))
	mux.Handle("DELETE /api/model/{id}", required(assetHandler.Delete))
	mux.HandleFunc("GET /api/stats", assetHandler.Stats)
	mux.Handle("GET /api/user/models", required(assetHandler.ListMine))
	mux.Handle("POST /api/upload", required(assetHandler.Upload))

	return middleware.Logging(deps.Logger, mux)
}
