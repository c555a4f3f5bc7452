package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"inkpress/api/internal/config"
	"inkpress/api/internal/jobs"
	"inkpress/api/internal/middleware"
	"inkpress/api/internal/models"
	"inkpress/api/internal/payments"
	"inkpress/api/internal/payments/paystack"
	"inkpress/api/internal/payments/sandbox"
	"inkpress/api/internal/repository"
	"inkpress/api/internal/service"
	"inkpress/api/internal/storage"
)

type HandlerSet struct {
	log               zerolog.Logger
	cfg               *config.AppConfig
	authService       *service.AuthService
	manuscriptService *service.ManuscriptService
	orchestrator      *payments.Orchestrator
	rates             payments.RateTable
	db                *pgxpool.Pool
	cache             *redis.Client
	users             *repository.UserRepository
	sessions          *repository.SessionRepository
	manuscripts       *repository.ManuscriptRepository
	transactions      *repository.TransactionRepository
}

func NewHandlerSet(log zerolog.Logger, db *pgxpool.Pool, cache *redis.Client, store *storage.ObjectStore, cfg *config.AppConfig) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	manuscriptRepo := repository.NewManuscriptRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)

	auth := service.NewAuthService(userRepo, sessionRepo, cfg, log)
	manuscripts := service.NewManuscriptService(manuscriptRepo, store, cfg, log)

	publisher := jobs.NewPublisher(cache, cfg.Redis.Stream)
	orchestrator := payments.NewOrchestrator(
		buildGateways(cfg, log),
		transactionRepo,
		publisher,
		cfg.Payments.Minimums,
		cfg.Payments.DefaultCountry,
		cfg.Payments.MobileMoneyProvider,
		cfg.Payments.GatewayTimeout,
		log,
	)

	return HandlerSet{
		log:               log,
		cfg:               cfg,
		authService:       auth,
		manuscriptService: manuscripts,
		orchestrator:      orchestrator,
		rates:             payments.RateTable(cfg.Payments.Rates),
		db:                db,
		cache:             cache,
		users:             userRepo,
		sessions:          sessionRepo,
		manuscripts:       manuscriptRepo,
		transactions:      transactionRepo,
	}
}

// buildGateways wires every channel to the configured provider. The sandbox
// provider keeps development environments working without Paystack keys.
func buildGateways(cfg *config.AppConfig, log zerolog.Logger) map[payments.Channel]payments.Gateway {
	var gateway payments.Gateway
	switch cfg.Payments.Provider {
	case "paystack":
		gateway = paystack.New(cfg.Paystack.BaseURL, cfg.Paystack.SecretKey, cfg.Paystack.PollInterval, log)
	default:
		gateway = sandbox.New()
	}

	return map[payments.Channel]payments.Gateway{
		payments.ChannelCard:        gateway,
		payments.ChannelMobileMoney: gateway,
	}
}

func (h HandlerSet) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")
	{
		auth := v1.Group("/auth")
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.Refresh)
		auth.POST("/logout", h.Logout)

		protected := v1.Group("/auth")
		protected.Use(middleware.Auth(h.cfg, h.users, h.sessions))
		protected.GET("/me", h.Me)
		protected.GET("/sessions", h.ListSessions)
		protected.DELETE("/sessions/:deviceId", h.RevokeSession)
	}

	nav := v1.Group("/navigation")
	nav.Use(middleware.Auth(h.cfg, h.users, h.sessions))
	nav.GET("/home", h.NavigationHome)

	manuscripts := v1.Group("/manuscripts")
	manuscripts.Use(middleware.Auth(h.cfg, h.users, h.sessions))
	manuscripts.GET("", h.ListManuscripts)
	manuscripts.GET("/:id", h.GetManuscript)
	manuscripts.GET("/:id/progress", h.ManuscriptProgress)

	writer := v1.Group("/manuscripts")
	writer.Use(
		middleware.Auth(h.cfg, h.users, h.sessions),
		middleware.RequireRoles(models.UserRoleWriter),
	)
	writer.POST("", h.CreateManuscript)
	writer.POST("/:id/document", h.UploadDocument)
	writer.POST("/:id/chapters", h.AddChapter)

	editor := v1.Group("/manuscripts")
	editor.Use(
		middleware.Auth(h.cfg, h.users, h.sessions),
		middleware.RequireRoles(models.UserRoleEditor),
	)
	editor.PATCH("/:id/chapters/:chapterId/status", h.ReviewChapter)

	pay := v1.Group("/payments")
	pay.Use(middleware.Auth(h.cfg, h.users, h.sessions))
	pay.GET("", h.ListPayments)
	pay.GET("/rates", h.ConvertRates)
	pay.GET("/:reference", h.GetPayment)

	paySubmit := v1.Group("/payments")
	paySubmit.Use(
		middleware.Auth(h.cfg, h.users, h.sessions),
		middleware.Signature(h.cfg, h.cache),
	)
	paySubmit.POST("", h.SubmitPayment)

	publisher := v1.Group("/publisher")
	publisher.Use(
		middleware.Auth(h.cfg, h.users, h.sessions),
		middleware.RequireRoles(models.UserRolePublisher),
	)
	publisher.GET("/transactions", h.PublisherTransactions)
	publisher.GET("/users", h.ListUsersByRole)
	publisher.POST("/manuscripts/:id/publish", h.PublishManuscript)
	publisher.POST("/manuscripts/:id/editor", h.AssignEditor)
}

// currentUser pulls the authenticated user the Auth middleware stashed.
func currentUser(c *gin.Context) (models.User, bool) {
	userVal, exists := c.Get("current_user")
	if !exists {
		return models.User{}, false
	}
	user, ok := userVal.(models.User)
	return user, ok
}
