package http

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bookwyrms/hoard/internal/library"
)

// RouterConfig contains all dependencies and configuration needed to create
// the HTTP router.
type RouterConfig struct {
	Service  *library.Service
	Database *gorm.DB
	Version  string
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	health := NewHealthController(cfg.Database, cfg.Version)
	books := NewBooksController(cfg.Service)
	shelves := NewShelvesController(cfg.Service)

	// Health endpoints
	router.GET("/api/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Books API endpoints
	router.GET("/api/books", books.SearchBooks)
	router.POST("/api/books", books.AddBook)
	router.GET("/api/books/:isbn", books.GetBook)
	router.DELETE("/api/books/:isbn", books.DeleteBook)
	router.POST("/api/books/:isbn/checkout", books.CheckoutBook)
	router.POST("/api/books/:isbn/checkin", books.CheckinBook)
	router.GET("/api/books/:isbn/location", books.LocateBook)
	router.PUT("/api/books/:isbn/location", books.RelocateBook)

	// Shelves API endpoints
	router.GET("/api/shelves", shelves.ListShelves)
	router.POST("/api/shelves", shelves.CreateShelf)
	router.GET("/api/shelves/:location/:name", shelves.GetShelf)
	router.PUT("/api/shelves/:location/:name", shelves.UpdateShelf)
	router.DELETE("/api/shelves/:location/:name", shelves.DeleteShelf)
	router.GET("/api/shelves/:location/:name/books", shelves.BooksOnShelf)

	// Admin endpoints
	router.POST("/api/admin/reindex", books.Reindex)

	return router
}
