package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	api "github.com/meshvault/meshvault-server/internal/api/http"
	"github.com/meshvault/meshvault-server/internal/auth/password"
	"github.com/meshvault/meshvault-server/internal/config"
	"github.com/meshvault/meshvault-server/internal/logger"
	mongorepo "github.com/meshvault/meshvault-server/internal/repository/mongo"
	"github.com/meshvault/meshvault-server/internal/service"
	storage "github.com/meshvault/meshvault-server/internal/storage/minio"
	"github.com/meshvault/meshvault-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	_ = godotenv.Load()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	db, err := mongorepo.NewConnection(ctx, cfg.Database.URI, cfg.Database.Name)
	if err != nil {
		logger.Fatal("failed to initialize metadata store", "error", err)
	}
	defer db.Close(context.Background())

	accountRepo := mongorepo.NewAccountRepository(db)
	assetRepo := mongorepo.NewAssetRepository(db)
	tokenManager := token.NewJWT(cfg.JWT.Secret)

	minioClient, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		Secure: cfg.Storage.UseSSL,
	})
	if err != nil {
		logger.Fatal("failed to create minio client", "error", err)
	}
	storageClient, err := storage.NewClient(ctx, minioClient, cfg.Storage.Bucket)
	if err != nil {
		logger.Fatal("failed to initialize storage client", "error", err)
	}

	accountService := service.NewAccount(accountRepo, password.NewDefault(), logger)
	assetService := service.NewAsset(assetRepo, accountRepo, storageClient, cfg.Upload.MaxSize, logger)

	router := api.NewRouter(api.RouterDeps{
		Accounts:      accountService,
		Assets:        assetService,
		Principals:    accountService,
		Tokens:        tokenManager,
		DB:            db,
		MaxUploadSize: cfg.Upload.MaxSize,
		Logger:        logger,
	})

	httpServer := api.NewServer(router, fmt.Sprintf(":%s", cfg.HTTP.Port))

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s *api.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address())
		if err := s.Start(); err != nil {
			logger.Error("failed to start server", "error", err)
		}
	}(httpServer)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", httpServer.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
