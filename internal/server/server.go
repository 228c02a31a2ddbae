package server

import (
	"context"
	"net/http"
	"time"

	"matchpay/internal/auth"
	"matchpay/internal/config"
	"matchpay/internal/notify"
	"matchpay/internal/premium"
	"matchpay/internal/settlement"
	"matchpay/internal/user"
	"matchpay/internal/wallet"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *sqlx.DB
	config *config.Config
}

func New(db *sqlx.DB, cfg *config.Config, engine *settlement.Engine) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())

	userHandler := user.NewHandler(db, cfg.JWTSecret)
	walletHandler := wallet.NewHandler(db, cfg.OperatorUserID)
	premiumHandler := premium.NewHandler(db)
	notifyHandler := notify.NewHandler(db)
	paymentHandler := settlement.NewHandler(engine)

	public := router.Group("/auth")
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
	}

	// Gateway callbacks are unauthenticated by nature; the IPN endpoint is
	// rate-limited and protected by signature verification instead.
	callbacks := router.Group("/payments/vnpay")
	callbacks.Use(RateLimitMiddleware(10, 20))
	{
		callbacks.GET("/return", paymentHandler.Return)
		callbacks.GET("/ipn", paymentHandler.IPN)
		callbacks.POST("/ipn", paymentHandler.IPN)
	}

	authMiddleware := auth.Middleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)
		protected.POST("/payments/link", paymentHandler.CreateLink)
		protected.GET("/wallet", walletHandler.GetBalance)
		protected.GET("/wallet/transactions", walletHandler.ListTransactions)
		protected.GET("/premium/subscriptions", premiumHandler.ListSubscriptions)
		protected.GET("/notifications", notifyHandler.List)
	}

	admin := router.Group("/admin")
	admin.Use(authMiddleware, auth.RequireRole("admin"))
	{
		admin.GET("/wallet", walletHandler.GetOperatingWallet)
	}

	router.GET("/premium/packages", premiumHandler.ListPackages)
	router.GET("/health", Health)
	router.GET("/metrics", Metrics())

	return &Server{
		router: router,
		db:     db,
		config: cfg,
	}
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:         ":" + port,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
