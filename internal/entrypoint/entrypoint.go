package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shelfwise/shelfwise/internal/auth"
	"github.com/shelfwise/shelfwise/internal/config"
	"github.com/shelfwise/shelfwise/internal/database"
	"github.com/shelfwise/shelfwise/internal/database/catalog"
	"github.com/shelfwise/shelfwise/internal/database/reservations"
	http_controllers "github.com/shelfwise/shelfwise/internal/http"
	"github.com/shelfwise/shelfwise/internal/scheduler"
	"github.com/shelfwise/shelfwise/internal/services"
	"github.com/shelfwise/shelfwise/internal/tasks"
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
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Shelfwise v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	catalogRepo := catalog.NewRepository(db.DB)
	ledgerRepo := reservations.NewRepository(db.DB)

	loanPeriod := time.Duration(cfg.Loans.PeriodDays) * 24 * time.Hour
	coordinator := services.NewCoordinator(catalogRepo, ledgerRepo, loanPeriod)

	// Secrets are generated when not configured; the generated values do
	// not survive a restart.
	if cfg.Auth.SessionSecret == "" {
		secret, err := auth.GenerateSecret()
		if err != nil {
			log.Fatalf("Failed to generate session secret: %v", err)
		}
		cfg.Auth.SessionSecret = secret
		log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
	}
	if cfg.Auth.TokenSecret == "" {
		secret, err := auth.GenerateSecret()
		if err != nil {
			log.Fatalf("Failed to generate token secret: %v", err)
		}
		cfg.Auth.TokenSecret = secret
		log.Printf("Generated token secret (set AUTH_TOKEN_SECRET to persist)")
	}

	authService := auth.NewService(db.DB, cfg.Auth)

	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatalf("Failed to get SQL DB for sessions: %v", err)
	}
	sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to initialize session manager: %v", err)
	}

	authMiddleware := auth.NewMiddleware(authService, sessionManager)

	csrfSecret, err := hex.DecodeString(cfg.Auth.SessionSecret)
	if err != nil {
		// Not hex, use as raw bytes
		csrfSecret = []byte(cfg.Auth.SessionSecret)
	}

	hasLibrarians, _ := authService.HasLibrarians()
	if !hasLibrarians {
		log.Printf("No librarian accounts found. Run 'shelfwise seed' to create one.")
	}

	// Initialize task queue and overdue scheduler if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	var overdueScheduler *scheduler.OverdueScheduler
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, cfg.Tasks, ledgerRepo)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		if cfg.Overdue.Enabled {
			overdueScheduler = scheduler.NewOverdueScheduler(taskClient, cfg.Overdue.Schedule)
			if err := overdueScheduler.Start(); err != nil {
				log.Fatalf("Failed to start overdue scheduler: %v", err)
			}
		}
	}

	routerCfg := http_controllers.RouterConfig{
		Database:       db,
		Catalog:        catalogRepo,
		Ledger:         ledgerRepo,
		Coordinator:    coordinator,
		AuthService:    authService,
		AuthMiddleware: authMiddleware,
		SessionManager: sessionManager,
		CSRFSecret:     csrfSecret,
		SecureCookies:  cfg.Auth.SecureCookies,
		Version:        version,
	}
	// Assign only when non-nil so the interface field stays nil when the
	// scheduler is disabled.
	if overdueScheduler != nil {
		routerCfg.Scheduler = overdueScheduler
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if overdueScheduler != nil {
			overdueScheduler.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
