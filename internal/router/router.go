package router

import (
	"time"

	"github.com/La-Clique-qui-Recycle/Recyclic-sub002/internal/config"
	"github.com/La-Clique-qui-Recycle/Recyclic-sub002/internal/handler"
	"github.com/La-Clique-qui-Recycle/Recyclic-sub002/internal/infra"
	"github.com/La-Clique-qui-Recycle/Recyclic-sub002/internal/middleware"
	"github.com/La-Clique-qui-Recycle/Recyclic-sub002/internal/report"
	"github.com/La-Clique-qui-Recycle/Recyclic-sub002/internal/repository"
	"github.com/La-Clique-qui-Recycle/Recyclic-sub002/internal/service"
	"github.com/La-Clique-qui-Recycle/Recyclic-sub002/internal/syncer"
	"github.com/La-Clique-qui-Recycle/Recyclic-sub002/internal/token"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, cb *infra.CircuitBreaker,
	reports *report.Generator, tokens *token.Issuer, syncSvc *syncer.Service) *gin.Engine {

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	sessionRepo := repository.NewSessionRepository(db)
	receptionRepo := repository.NewReceptionRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	sessionSvc := service.NewSessionService(db, sessionRepo, reports, tokens, cfg.DownloadTokenTTL())
	receptionSvc := service.NewReceptionService(db, receptionRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	sessionsH := handler.NewSessionsHandler(sessionSvc)
	receptionH := handler.NewReceptionHandler(receptionSvc)
	reportsH := handler.NewReportsHandler(reports.Dir(), tokens)
	syncH := handler.NewSyncHandler(syncSvc, reports.Dir(), cfg.SyncRemotePrefix)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, cb))

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: cashier, supervisor, admin — declared per-endpoint
		sessions := v1.Group("/sessions", middleware.RequireRole("cashier", "supervisor", "admin"))
		{
			sessions.POST("/open", sessionsH.Open)
			sessions.POST("/:id/close", sessionsH.Close)
			sessions.GET("/:id", sessionsH.Get)
			sessions.POST("/:id/activity", sessionsH.Activity)
			sessions.GET("/:id/report", sessionsH.ReportAccess)
		}

		stations := v1.Group("/stations", middleware.RequireRole("cashier", "supervisor", "admin"))
		{
			stations.POST("/open", receptionH.OpenStation)
			stations.POST("/:id/close", receptionH.CloseStation)
			stations.GET("/:id", receptionH.GetStation)
			stations.POST("/:id/tickets", receptionH.OpenTicket)
		}

		tickets := v1.Group("/tickets", middleware.RequireRole("cashier", "supervisor", "admin"))
		{
			tickets.POST("/:id/close", receptionH.CloseTicket)
			tickets.GET("/:id", receptionH.GetTicket)
			tickets.POST("/:id/lines", receptionH.AddLine)
		}

		lines := v1.Group("/lines", middleware.RequireRole("cashier", "supervisor", "admin"))
		{
			lines.PUT("/:id", receptionH.UpdateLine)
			lines.DELETE("/:id", receptionH.DeleteLine)
		}

		// Report downloads: the JWT gate resolves who is calling; the signed
		// token proves possession of a grant for this exact artifact.
		v1.GET("/reports/:filename", reportsH.Download)

		// On-demand mirror — supervisors and admins only
		v1.POST("/sync/run", middleware.RequireRole("supervisor", "admin"), syncH.Run)
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
