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

	httpcontext "github.com/passkeeper/passkeeper-server/internal/api/http/context"
	"github.com/passkeeper/passkeeper-server/internal/api/http/router"
	httpserver "github.com/passkeeper/passkeeper-server/internal/api/http/server"
	"github.com/passkeeper/passkeeper-server/internal/config"
	"github.com/passkeeper/passkeeper-server/internal/crypto"
	"github.com/passkeeper/passkeeper-server/internal/logger"
	"github.com/passkeeper/passkeeper-server/internal/model"
	"github.com/passkeeper/passkeeper-server/internal/repository/postgres"
	"github.com/passkeeper/passkeeper-server/internal/server"
	"github.com/passkeeper/passkeeper-server/internal/service"
	storage "github.com/passkeeper/passkeeper-server/internal/storage/minio"
	"github.com/passkeeper/passkeeper-server/internal/token"
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

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)
	refreshTokenRepo := postgres.NewRefreshTokenRepository(db)
	credentialRepo := postgres.NewCredentialRepository(db)

	cipherKey, err := cfg.Cipher.Key()
	if err != nil {
		logger.Fatal("invalid cipher key", "error", err)
	}
	secretCipher, err := crypto.NewSecretCipher(cipherKey)
	if err != nil {
		logger.Fatal("failed to create secret cipher", "error", err)
	}

	hasher := crypto.NewPasswordHasher(crypto.Argon2Params{
		Time:        cfg.Argon2.Time,
		MemoryKiB:   cfg.Argon2.MemKiB,
		Parallelism: cfg.Argon2.Parallelism,
	})

	tokenManager := token.NewJWT(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience)
	ctxMgr := httpcontext.NewManager()

	minioClient, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		Secure: cfg.Storage.UseSSL,
	})
	if err != nil {
		logger.Fatal("failed to create minio client", "error", err)
	}
	attachmentStore, err := storage.NewAttachmentStore(ctx, minioClient, cfg.Storage.Bucket)
	if err != nil {
		logger.Fatal("failed to initialize attachment store", "error", err)
	}

	sessionService := service.NewSession(refreshTokenRepo, userRepo, logger)
	authService := service.NewAuth(userRepo, hasher, tokenManager, sessionService, logger)
	vaultService := service.NewVault(credentialRepo, userRepo, secretCipher, attachmentStore, logger)

	engine := router.New(authService, vaultService, tokenManager, ctxMgr, cfg.HTTP.CORSOrigins, logger).Register()
	apiServer := httpserver.NewHTTPServer(engine, fmt.Sprintf(":%s", cfg.HTTP.Port))

	var sl model.SecurityLayer
	if cfg.HTTP.EnableHTTPS {
		sl = server.NewTLSListener(cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address())
		if err := s.Start(sl); err != nil {
			logger.Error("failed to start server", "error", err)
		}
	}(apiServer)

	wg.Add(1)
	go func() {
		defer wg.Done()
		runSessionCleanup(ctx, sessionService, logger)
	}()

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", apiServer.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

// runSessionCleanup periodically removes expired refresh sessions.
// Validity checks never depend on it; it only keeps the table small.
func runSessionCleanup(ctx context.Context, sessions *service.Session, logger *logger.Logger) {
	const interval = time.Hour

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := sessions.CleanupExpired(ctx)
			if err != nil {
				logger.Error("failed to clean up expired sessions", "error", err)
				continue
			}
			if removed > 0 {
				logger.Info("expired sessions removed", "count", removed)
			}
		}
	}
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
