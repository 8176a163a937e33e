package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/safar/safar-go/internal/config"
	"github.com/safar/safar-go/internal/handler"
	"github.com/safar/safar-go/internal/middleware"
	"github.com/safar/safar-go/internal/repository"
	"github.com/safar/safar-go/internal/repository/memstore"
	"github.com/safar/safar-go/internal/repository/mongostore"
	"github.com/safar/safar-go/internal/service"
	"github.com/safar/safar-go/internal/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	users, stories, closer, err := openStores(ctx, cfg)
	cancel()
	if err != nil {
		slog.Error("store initialization failed", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer closer.Close()

	blobs, uploadDir, err := openMedia(context.Background(), cfg)
	if err != nil {
		slog.Error("media initialization failed", "driver", cfg.MediaDriver, "error", err)
		os.Exit(1)
	}

	if _, err := os.Stat(filepath.Join(cfg.AssetsDir, "placeholder.jpeg")); err != nil {
		slog.Warn("placeholder image missing", "assets_dir", cfg.AssetsDir, "error", err)
	}

	metrics, err := middleware.NewMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		slog.Error("metrics registration failed", "error", err)
		os.Exit(1)
	}

	mediaService := service.NewMediaService(blobs)
	router := handler.NewRouter(handler.RouterConfig{
		Auth:           service.NewAuthService(users, cfg.JWTSecret),
		Stories:        service.NewStoryService(stories, mediaService, cfg.PlaceholderURL(), logger),
		Media:          mediaService,
		Logger:         logger,
		Metrics:        metrics,
		MetricsHandler: promhttp.Handler(),
		UploadDir:      uploadDir,
		AssetsDir:      cfg.AssetsDir,
		CORSOrigins:    cfg.CORSOrigins,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.StoreDriver, "media", cfg.MediaDriver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// openStores connects the configured backend and returns the user and story
// stores plus a closer releasing the connection at shutdown.
func openStores(ctx context.Context, cfg config.Config) (service.UserStore, service.StoryStore, io.Closer, error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		client, err := mongostore.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, nil, err
		}
		db := client.Database(cfg.MongoDatabase)
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			client.Disconnect(context.Background())
			return nil, nil, nil, err
		}
		closer := closerFunc(func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return client.Disconnect(ctx)
		})
		return mongostore.NewUserRepository(db), mongostore.NewStoryRepository(db), closer, nil

	case config.StoreMySQL:
		db, err := repository.NewDB(cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := repository.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		return repository.NewUserRepository(db), repository.NewStoryRepository(db), db, nil

	case config.StoreMemory:
		slog.Warn("using in-memory store, data is lost on restart")
		store := memstore.New()
		return store.Users(), store.Stories(), closerFunc(func() error { return nil }), nil
	}
	return nil, nil, nil, errors.New("unknown store driver " + cfg.StoreDriver)
}

// openMedia returns the configured blob store and, for local disk, the
// directory to serve at /uploads/.
func openMedia(ctx context.Context, cfg config.Config) (storage.BlobStore, string, error) {
	if cfg.MediaDriver == config.MediaS3 {
		store, err := storage.NewS3Store(ctx, cfg.S3)
		return store, "", err
	}

	store, err := storage.NewDiskStore(cfg.UploadDir, cfg.PublicBaseURL+"/uploads")
	if err != nil {
		return nil, "", err
	}
	return store, store.Root(), nil
}
