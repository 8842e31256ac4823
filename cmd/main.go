package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/oksasatya/user-account-api/config"
	"github.com/oksasatya/user-account-api/internal/container"
	"github.com/oksasatya/user-account-api/internal/infrastructure/mongodb"
	"github.com/oksasatya/user-account-api/internal/infrastructure/storage"
	"github.com/oksasatya/user-account-api/internal/interface/middleware"
	"github.com/oksasatya/user-account-api/internal/router"
	"github.com/oksasatya/user-account-api/pkg/helpers"
	"github.com/oksasatya/user-account-api/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	// MongoDB client, constructed once and passed by reference
	client, err := mongodb.NewClient(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatalf("failed to connect to mongodb: %v", err)
	}
	defer func() { _ = client.Disconnect(ctx) }()

	usersRepo := mongodb.NewUserRepository(client.Database(cfg.MongoDatabase), cfg.UsersCollection)
	if err := usersRepo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("failed to ensure indexes: %v", err)
	}

	// Redis backs the rate limiter only; without an address the limiter is a no-op
	if cfg.RedisAddr != "" {
		container.SetRedis(helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB))
	}

	avatars, err := newAvatarStore(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to init avatar storage: %v", err)
	}

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetMongo(client)
	container.SetUserRepo(usersRepo)
	container.SetAvatarStore(avatars)

	// Gin engine and global middleware
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RealIP())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(cors.New(corsConfig(cfg)))
	if cfg.HTTPLogEnabled || cfg.Env == "development" {
		r.Use(gin.Logger())
	}

	// Uploaded avatars are served unauthenticated straight from disk
	if cfg.AvatarBackend == "local" {
		r.Static(storage.PublicPrefix, cfg.UploadDir)
	}

	reg := router.NewRegistry(r)
	router.InitModules(reg)
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Fatalf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}

func newAvatarStore(ctx context.Context, cfg *config.Config) (storage.AvatarStore, error) {
	switch cfg.AvatarBackend {
	case "gcs":
		gcsClient, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			return nil, err
		}
		return storage.NewGCSStore(gcsClient, cfg.GCSBucket), nil
	case "minio":
		st, err := storage.NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			return nil, err
		}
		if err := st.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return st, nil
	default:
		return storage.NewLocalStore(cfg.UploadDir)
	}
}

func corsConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if origins := cfg.CORSOrigins(); len(origins) > 0 {
		corsCfg.AllowOrigins = origins
		corsCfg.AllowCredentials = true
	} else {
		corsCfg.AllowAllOrigins = true
	}
	return corsCfg
}
