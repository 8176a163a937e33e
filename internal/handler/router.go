package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/safar/safar-go/internal/middleware"
	"github.com/safar/safar-go/internal/service"
)

// RouterConfig carries everything NewRouter wires together.
type RouterConfig struct {
	Auth    *service.AuthService
	Stories *service.StoryService
	Media   *service.MediaService
	Logger  *slog.Logger

	// Metrics instruments every route when set; MetricsHandler serves /metrics.
	Metrics        *middleware.Metrics
	MetricsHandler http.Handler

	// UploadDir is served at /uploads/ when uploads are kept on local disk.
	UploadDir string
	// AssetsDir holds the placeholder image and is served at /assets/.
	AssetsDir string

	CORSOrigins    []string
	MaxUploadBytes int64
}

// NewRouter builds the HTTP handler of the API.
func NewRouter(cfg RouterConfig) http.Handler {
	authHandler := NewAuthHandler(cfg.Auth, cfg.Logger)
	storyHandler := NewStoryHandler(cfg.Stories, cfg.Logger)
	mediaHandler := NewMediaHandler(cfg.Media, cfg.Logger, cfg.MaxUploadBytes)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(chimw.Recoverer)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Handler)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.UploadDir != "" {
		r.Handle("/uploads/*", staticFiles("/uploads/", cfg.UploadDir))
	}
	if cfg.AssetsDir != "" {
		r.Handle("/assets/*", staticFiles("/assets/", cfg.AssetsDir))
	}

	r.Post("/create-account", authHandler.HandleRegister)
	r.Post("/login", authHandler.HandleLogin)

	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(cfg.Auth))

		r.Get("/get-user", authHandler.HandleGetUser)

		r.Post("/add-travel-story", storyHandler.HandleAddStory)
		r.Get("/get-all-stories", storyHandler.HandleListStories)
		r.Put("/edit-story/{id}", storyHandler.HandleEditStory)
		r.Delete("/delete-story/{id}", storyHandler.HandleDeleteStory)
		r.Put("/update-is-favorite/{id}", storyHandler.HandleSetFavorite)
		r.Get("/search", storyHandler.HandleSearch)
		r.Get("/travel-stories/filter", storyHandler.HandleFilterByDate)

		r.Post("/image-upload", mediaHandler.HandleUpload)
		r.Delete("/delete-image", mediaHandler.HandleDelete)
	})

	return r
}

// staticFiles serves dir under prefix without directory listings.
func staticFiles(prefix, dir string) http.Handler {
	fs := http.StripPrefix(prefix, http.FileServer(http.Dir(dir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		fs.ServeHTTP(w, r)
	})
}
