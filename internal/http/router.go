package http

import (
	"github.com/gin-gonic/gin"

	"github.com/shelfwise/shelfwise/internal/auth"
	"github.com/shelfwise/shelfwise/internal/database"
	"github.com/shelfwise/shelfwise/internal/database/catalog"
	"github.com/shelfwise/shelfwise/internal/database/reservations"
	"github.com/shelfwise/shelfwise/internal/services"
)

// RouterConfig carries all router dependencies, improving testability and
// keeping NewRouter's signature stable as the surface grows.
type RouterConfig struct {
	Database       *database.Database
	Catalog        *catalog.Repository
	Ledger         *reservations.Repository
	Coordinator    *services.Coordinator
	AuthService    *auth.Service
	AuthMiddleware *auth.Middleware
	SessionManager *auth.SessionManager
	Scheduler      ScanScheduler
	CSRFSecret     []byte
	SecureCookies  bool
	Version        string
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.Use(auth.SecurityHeadersMiddleware())

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies, cfg.AuthService))
	}

	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	}

	health := NewHealthController(cfg.Database, cfg.Version)
	authController := NewAuthController(cfg.AuthService, cfg.SessionManager)
	booksController := NewBooksController(cfg.Catalog)
	reservationsController := NewReservationsController(cfg.Coordinator, cfg.Ledger)
	tasksController := NewTasksController(cfg.Scheduler)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Auth endpoints
	router.POST("/api/auth/register", authController.Register)
	router.POST("/api/auth/login", authController.Login)
	router.POST("/api/auth/logout", authController.Logout)
	router.GET("/api/auth/csrf", authController.CSRFToken)

	// Catalog endpoints - reads for everyone, writes for librarians
	router.GET("/api/books", booksController.ListBooks)
	router.GET("/api/books/search", booksController.SearchBooks)
	router.GET("/api/books/:id", booksController.GetBook)
	router.POST("/api/books", auth.RequireLibrarian(), booksController.CreateBook)
	router.PATCH("/api/books/:id", auth.RequireLibrarian(), booksController.UpdateBook)
	router.DELETE("/api/books/:id", auth.RequireLibrarian(), booksController.DeleteBook)

	// Reservation lifecycle
	router.GET("/api/reservations", reservationsController.ListReservations)
	router.POST("/api/books/:id/reserve", reservationsController.ReserveBook)
	router.POST("/api/reservations/:id/approve", auth.RequireLibrarian(), reservationsController.ApproveReservation)
	router.POST("/api/reservations/:id/reject", auth.RequireLibrarian(), reservationsController.RejectReservation)
	router.POST("/api/reservations/:id/return", auth.RequireLibrarian(), reservationsController.ReturnBook)
	router.DELETE("/api/reservations/:id", reservationsController.CancelReservation)

	// Background work - librarians can inspect and trigger the overdue scan
	router.GET("/api/tasks/overdue-scan", auth.RequireLibrarian(), tasksController.Status)
	router.POST("/api/tasks/overdue-scan/run", auth.RequireLibrarian(), tasksController.Run)

	return router
}
