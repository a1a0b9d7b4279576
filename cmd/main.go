package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/sessions"
	"golang.org/x/oauth2"

	"github.com/s/courseCatalog/internal/auth"
	"github.com/s/courseCatalog/internal/cache"
	"github.com/s/courseCatalog/internal/config"
	"github.com/s/courseCatalog/internal/database"
	"github.com/s/courseCatalog/internal/handlers"
	"github.com/s/courseCatalog/internal/logger"
	"github.com/s/courseCatalog/internal/server"
)

func main() {
	cfg := config.Load()

	host, _ := os.Hostname()
	lg := logger.New(log.New(os.Stdout, "", log.LstdFlags), logger.Options{
		Env:          cfg.Env,
		Host:         host,
		RollbarToken: cfg.RollbarToken,
	})
	defer logger.Flush()

	// ---------------------------
	// 1. Database
	// ---------------------------
	db, err := database.Connect(database.Options{
		Dialect:      cfg.Database.Dialect,
		DSN:          cfg.Database.URL,
		Driver:       cfg.Database.Driver,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		Attempts:     cfg.Database.Attempts,
		Debug:        cfg.Database.Debug,
	})
	if err != nil {
		log.Fatal("database connection failed: ", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		log.Fatal("migration failed: ", err)
	}
	if cfg.Seed {
		if err := database.Seed(db); err != nil {
			lg.Warn("seed failed", err)
		}
	}

	// ---------------------------
	// 2. Sessions and Google OAuth
	// ---------------------------
	store := sessions.NewCookieStore([]byte(cfg.Session.Key))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cfg.Session.MaxAge,
		HttpOnly: true,
		Secure:   cfg.Session.Secure,
		SameSite: http.SameSiteLaxMode,
	}

	var oauthConfig *oauth2.Config
	if cfg.GoogleEnabled() {
		oauthConfig = auth.InitGoogleOAuthConfig(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURL)
	} else {
		lg.Warn("GOOGLE_* variables are not set, Google login is disabled")
	}

	// ---------------------------
	// 3. Handlers and routes
	// ---------------------------
	var pages *cache.PageCache
	opts := handlers.Options{
		Store:       store,
		OAuth:       oauthConfig,
		Log:         lg,
		AdminEmails: cfg.AdminEmails,
		SessionAge:  cfg.Session.MaxAge,
		Secure:      cfg.Session.Secure,
	}
	if cfg.CacheTTL > 0 {
		pages = cache.NewPageCache(cfg.CacheTTL)
		opts.Cache = pages
	}
	h := handlers.NewHandler(db, opts)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.NewRouter(h, pages, cfg.CORSOrigins),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// ---------------------------
	// 4. Run until SIGINT/SIGTERM
	// ---------------------------
	go func() {
		lg.Info("server listening", map[string]interface{}{"addr": srv.Addr, "env": cfg.Env})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed: ", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		lg.Error("graceful shutdown failed", err)
	}
	lg.Info("server stopped")
}
