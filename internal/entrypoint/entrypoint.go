package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bookwyrms/hoard/internal/config"
	"github.com/bookwyrms/hoard/internal/database"
	http_controllers "github.com/bookwyrms/hoard/internal/http"
	"github.com/bookwyrms/hoard/internal/library"
	"github.com/bookwyrms/hoard/internal/metadata"
	"github.com/bookwyrms/hoard/internal/search"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Bookwyrm's Hoard v%s", version)

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	index := search.NewIndex()
	store := database.NewStore(db, index)

	count, err := store.RebuildIndex()
	if err != nil {
		log.Fatalf("Failed to rebuild search index: %v", err)
	}
	log.Printf("Indexed %d books", count)

	var lookup metadata.Lookup
	if cfg.Lookup.Enabled {
		lookup = metadata.DefaultChain(cfg.Lookup.GoogleBooksAPIKey)
	} else {
		log.Printf("External metadata lookup disabled; books are added from manual fields only")
	}

	service := library.NewService(store, index, lookup)

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Service:  service,
		Database: db,
		Version:  version,
	})

	Serve(router, cfg, nil)
}
