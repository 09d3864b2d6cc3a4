package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-news-app/internal/auth"
	"go-news-app/internal/cache"
	"go-news-app/internal/config"
	"go-news-app/internal/data"
	"go-news-app/internal/handler"
	"go-news-app/internal/logger"
	"go-news-app/internal/media"
	"go-news-app/internal/middleware"
	"go-news-app/internal/service"
	"go-news-app/internal/viewcount"

	"github.com/alexedwards/scs/mysqlstore"
	"github.com/alexedwards/scs/v2"
)

func main() {
	// --- Configuration Loading ---
	cfg, err := config.LoadConfig()
	if err != nil {
		// Use fmt.Printf here because the logger is not yet initialized.
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// --- Logger Initialization ---
	log := logger.New(cfg.Log)

	// --- Pre-flight Checks ---
	if cfg.Session.SecretKey == "" || cfg.Session.SecretKey == "CHANGE_ME_IN_PRODUCTION_SECRET!!" {
		log.Fatal(errors.New("session secret key not set"), "Please set a secure NEWS_SESSION_SECRET_KEY environment variable.")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database Initialization and Migration ---
	log.Info("Applying database migrations...")
	if err := data.ApplyMigrations(cfg.DB.DSN, "migrations"); err != nil {
		log.Fatal(err, "Failed to apply migrations")
	}
	log.Info("Migrations applied successfully.")

	log.Info("Connecting to the database...")
	db, err := data.NewDB(cfg.DB.DSN)
	if err != nil {
		log.Fatal(err, "Failed to connect to database")
	}
	defer db.Close()
	log.Info("Database connection successful.")

	// --- Session Management Setup ---
	sessionManager := scs.New()
	sessionManager.Store = mysqlstore.New(db.DB)
	sessionManager.Lifetime = time.Duration(cfg.Session.Lifetime) * time.Hour
	sessionManager.Cookie.Persist = true
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode
	sessionManager.Cookie.Secure = cfg.Server.TLS.Enabled

	// --- Authentication and Authorization Setup ---
	log.Info("Initializing authentication and authorization...")
	authenticator, err := auth.NewAuthenticator(ctx, &cfg.OIDC)
	if err != nil {
		log.Fatal(err, "Failed to initialize authenticator")
	}
	enforcer, err := auth.NewEnforcer("mysql", cfg.DB.DSN, "auth_model.conf")
	if err != nil {
		log.Fatal(err, "Failed to initialize enforcer")
	}
	auth.SeedDefaultPolicies(enforcer, log)
	auth.GrantEditors(enforcer, cfg.Auth.Editors, log)
	log.Info("Auth components initialized and policies seeded.")

	// --- Cache Initialization ---
	log.Info("Initializing SQLite cache...")
	contentCache, err := cache.New(cfg.Cache)
	if err != nil {
		log.Fatal(err, "Failed to initialize cache")
	}
	defer contentCache.Close()
	go purgeCache(ctx, contentCache, log)
	log.Info("Cache initialized.")

	// --- Media Storage ---
	backend, err := newMediaBackend(ctx, cfg.Media)
	if err != nil {
		log.Fatal(err, "Failed to initialize media storage")
	}
	mediaManager := media.NewManager(backend, cfg.Media.Subdir)
	log.With(map[string]interface{}{"driver": cfg.Media.Driver}).Info("Media storage initialized.")

	// --- Dependency Injection and Handler Initialization ---
	// Initialize the application layers, injecting dependencies from top to bottom.
	articleRepository := data.NewSQLArticleRepository(db)
	tagRepository := data.NewTagRepository(db)
	articleTagRepository := data.NewArticleTagRepository(db)
	categoryRepository := data.NewCategoryRepository(db)

	tracker := viewcount.NewTracker(articleRepository, cfg.Views)
	articleService := service.NewArticleService(articleRepository, mediaManager, tracker, contentCache, log,
		service.ArticleOptions{MediaRequired: cfg.Media.Required})
	tagService := service.NewTagService(tagRepository, articleTagRepository, log)
	categoryService := service.NewCategoryService(categoryRepository)

	handlers := handler.Handlers{
		Article: handler.NewArticleHandler(articleService, tagService, tracker, cfg.Media.MaxUploadMB, log),
		Catalog: handler.NewCatalogHandler(tagService, categoryService),
		Media:   handler.NewMediaHandler(mediaManager),
		Seo:     handler.NewSeoHandler(articleService, cfg.Server.BaseURL),
		Auth:    handler.NewAuthHandler(authenticator, sessionManager, enforcer, log),
	}

	authzMiddleware := middleware.Authorizer(enforcer, sessionManager, log)
	errorMiddleware := middleware.Error(log)

	// --- Router Setup ---
	// The router is the central hub that directs incoming requests to the correct handlers.
	router := handler.NewRouter(handlers, authzMiddleware, errorMiddleware, sessionManager)

	// --- Server Initialization and Graceful Shutdown ---
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if cfg.Server.TLS.Enabled {
			log.Info(fmt.Sprintf("Starting HTTPS server on %s", server.Addr))
			if err := server.ListenAndServeTLS(cfg.Server.TLS.CertFile, cfg.Server.TLS.KeyFile); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal(err, "Could not start HTTPS server")
			}
		} else {
			log.Info(fmt.Sprintf("Starting HTTP server on %s", server.Addr))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal(err, "Could not start HTTP server")
			}
		}
	}()
	<-ctx.Done()
	log.Warn("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal(err, "Server forced to shutdown")
	}
	log.Info("Server exiting")
}

// newMediaBackend picks the storage backend named by cfg.Driver.
func newMediaBackend(ctx context.Context, cfg config.MediaConfig) (media.Backend, error) {
	switch cfg.Driver {
	case "", "local":
		return media.NewLocalBackend(cfg.Root)
	case "s3":
		return media.NewS3Backend(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown media driver %q", cfg.Driver)
	}
}

// purgeCache drops expired rendered bodies until ctx is cancelled.
func purgeCache(ctx context.Context, c *cache.Cache, log logger.Logger) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := c.PurgeExpired(ctx)
			if err != nil {
				log.Error(err, "Failed to purge expired cache entries")
				continue
			}
			if n > 0 {
				log.With(map[string]interface{}{"removed": n}).Info("Expired cache entries purged")
			}
		}
	}
}
