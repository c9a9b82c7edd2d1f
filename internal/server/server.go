// Package server assembles repositories, services and handlers into the HTTP router.
package server

import (
	"log/slog"
	"net/http"

	_ "backoffice/api/swagger" // swagger docs
	"backoffice/internal/auth"
	"backoffice/internal/config"
	"backoffice/internal/handler"
	"backoffice/internal/metrics"
	"backoffice/internal/middleware"
	"backoffice/internal/repository"
	"backoffice/internal/service"
	"backoffice/internal/websocket"
	"backoffice/pkg/response"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"gorm.io/gorm"
)

// ViewFallback is where admin views send roles that may not open them.
const ViewFallback = "/dashboard"

// Server is the wired application. Hub must be started with Run before
// WebSocket clients connect.
type Server struct {
	Engine *gin.Engine
	Hub    *websocket.Hub
	Users  service.UserService
}

// New builds the dependency graph (Repository -> Service -> Handler) on db.
func New(db *gorm.DB, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	tokens := auth.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.TTL)
	hub := websocket.NewHub(logger, cfg.HTTP.AllowedOrigins)

	txManager := repository.NewTransactionManager(db)
	clientRepo := repository.NewClientRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	auditService := service.NewAuditService(auditRepo, logger)
	userService := service.NewUserService(userRepo, tokens, auditService, logger)
	clientService := service.NewClientService(clientRepo, groupRepo, txManager, auditService, hub, logger)
	groupService := service.NewGroupService(groupRepo, clientRepo, txManager, auditService, hub, logger)
	importService := service.NewImportService(clientRepo, groupRepo, auditService, hub, logger)
	dashboardService := service.NewDashboardService(clientRepo, groupRepo)

	loginLimit, err := loginLimiter(cfg.Login.Rate, logger)
	if err != nil {
		return nil, err
	}

	cookie := middleware.CookieOptions{Secure: cfg.IsRelease()}
	authHandler := handler.NewAuthHandler(userService, tokens, cookie, loginLimit, logger)
	clientHandler := handler.NewClientHandler(clientService, importService, logger)
	groupHandler := handler.NewGroupHandler(groupService, logger)
	userHandler := handler.NewUserHandler(userService, ViewFallback, logger)
	auditHandler := handler.NewAuditHandler(auditService, ViewFallback, logger)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, logger)

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), metrics.Middleware())
	router.Use(cors.New(corsConfig(cfg.HTTP.AllowedOrigins)))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", metrics.Handler())
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	router.GET("/ws", hub.Handler(tokens, userService))

	public := router.Group("")
	authed := router.Group("", middleware.Authenticate(tokens, userService))

	authHandler.RegisterRoutes(public, authed)
	clientHandler.RegisterRoutes(authed)
	groupHandler.RegisterRoutes(authed)
	userHandler.RegisterRoutes(authed)
	auditHandler.RegisterRoutes(authed)
	dashboardHandler.RegisterRoutes(authed)

	return &Server{Engine: router, Hub: hub, Users: userService}, nil
}

func corsConfig(origins []string) cors.Config {
	corsConfig := cors.DefaultConfig()
	if len(origins) > 0 {
		corsConfig.AllowOrigins = origins
	} else {
		corsConfig.AllowOriginFunc = func(string) bool { return true }
	}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	return corsConfig
}

// loginLimiter throttles login attempts per client IP, e.g. rate "10-M".
func loginLimiter(rate string, logger *slog.Logger) (gin.HandlerFunc, error) {
	r, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, errors.Wrapf(err, "parse login rate %q", rate)
	}
	instance := limiter.New(memory.NewStore(), r)

	return mgin.NewMiddleware(instance,
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			response.Fail(c, http.StatusTooManyRequests, "too many login attempts, try again later")
		}),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			logger.ErrorContext(c.Request.Context(), "login limiter failed", "error", err)
			response.Fail(c, http.StatusInternalServerError, "internal server error")
		}),
	), nil
}
