package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smilemovies/account-service/internal/config"
	"github.com/smilemovies/account-service/internal/handler"
	"github.com/smilemovies/account-service/internal/repository"
	"github.com/smilemovies/account-service/internal/service"
	"github.com/smilemovies/account-service/internal/utils"
	"github.com/smilemovies/account-service/pkg/observability"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	infra  Infrastructure
	config *config.Config
	router *gin.Engine
	server *http.Server
}

func NewApp(infra Infrastructure, cfg *config.Config) *App {
	repos := repository.NewRepositories(infra.Postgres())

	sessions := utils.NewSessionManager(cfg.Session.Secret, cfg.Session.Expiry.Duration)
	tokens := service.NewTokenService(repos.Token, cfg.Token.ActivationTTL.Duration)
	devices := service.NewDeviceRegistry(
		repos.Device,
		repos.Tx,
		tokens,
		infra.Mailer(),
		cfg.Mail.ClientURL,
		infra.Logger(),
	)

	accounts := service.NewAccountService(
		repos.Account,
		repos.Tx,
		tokens,
		devices,
		sessions,
		infra.Mailer(),
		cfg.Security.BCryptCost,
		cfg.Mail.ClientURL,
		infra.Logger(),
	)

	rateLimiter := service.NewRateLimiter(infra.Redis())
	healthChecker := NewHealthChecker(infra)

	accountHandler := handler.NewAccountHandler(accounts, rateLimiter, cfg.Session, cfg.Security.ResendCooldown, infra.Logger())
	deviceHandler := handler.NewDeviceHandler(accounts)
	adminHandler := handler.NewAdminHandler(accounts)

	router := gin.Default()
	router.Use(otelgin.Middleware("account-service"))
	router.Use(handler.LoggerMiddleware(infra.Logger()))
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))

	setupRoutes(router, cfg, sessions, accountHandler, deviceHandler, adminHandler, rateLimiter, healthChecker, infra.MetricsHandler())

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return &App{
		infra:  infra,
		config: cfg,
		router: router,
		server: srv,
	}
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	sessions *utils.SessionManager,
	accountHandler *handler.AccountHandler,
	deviceHandler *handler.DeviceHandler,
	adminHandler *handler.AdminHandler,
	rateLimiter *service.RateLimiter,
	healthChecker *HealthChecker,
	metricsHandler http.Handler,
) {
	router.GET("/metrics", observability.PrometheusHandler(metricsHandler))
	router.GET("/health", healthChecker.Handler)

	limited := handler.RateLimitMiddleware(rateLimiter, cfg.Security.RateLimitRequests, cfg.Security.RateLimitWindow.Duration, handler.IPBasedKey)
	authenticated := handler.Authenticate(sessions, cfg.Session.CookieName)
	adminOnly := handler.RequireAdmin(sessions)

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", limited, accountHandler.Register)
			auth.POST("/login", limited, accountHandler.Login)
			auth.POST("/logout", accountHandler.Logout)
			auth.GET("/verify/:token", authenticated, accountHandler.VerifyEmail)
			auth.POST("/verify/resend", authenticated, accountHandler.ResendVerification)
			auth.POST("/forgot-password", limited, accountHandler.ForgotPassword)
			auth.POST("/forgot-password/resend", limited, accountHandler.ResendReset)
			auth.POST("/reset-password/:email/:token", limited, accountHandler.ResetPassword)
			auth.POST("/change-password", authenticated, accountHandler.ChangePassword)
		}

		me := api.Group("/me", authenticated)
		{
			me.GET("", accountHandler.GetMe)
			me.PATCH("", accountHandler.UpdateMe)
			me.DELETE("", accountHandler.DeleteMe)

			me.GET("/devices", deviceHandler.List)
			me.POST("/devices", deviceHandler.Add)
			me.DELETE("/devices/:deviceId", deviceHandler.Remove)
			me.POST("/devices/:deviceId/last-login", deviceHandler.TouchLogin)
			me.POST("/devices/:deviceId/request-activation", deviceHandler.RequestActivation)
		}

		// Activation links land here from the mail client, outside any session
		api.GET("/devices/activate", deviceHandler.Activate)

		admin := api.Group("/admin", authenticated, adminOnly)
		{
			admin.GET("/accounts", adminHandler.List)
			admin.GET("/accounts/:id", adminHandler.Get)
			admin.GET("/accounts/email/:email", adminHandler.GetByEmail)
			admin.PATCH("/accounts/:id/status", adminHandler.UpdateStatus)
			admin.DELETE("/accounts/:id", adminHandler.Delete)
		}
	}
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		a.infra.Logger().Info("Application starting",
			zap.String("host", a.config.Server.Host),
			zap.String("port", a.config.Server.Port),
		)

		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.infra.Logger().Error("Server error", zap.Error(err))
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case err := <-errChan:
		a.infra.Logger().Error("Application failed to start", zap.Error(err))
		serverErr = err
	case <-ctx.Done():
		a.infra.Logger().Info("Application stopped by context")
	}

	if err := a.Shutdown(); err != nil {
		a.infra.Logger().Error("Shutdown error", zap.Error(err))
		if serverErr != nil {
			return errors.Join(serverErr, err)
		}
		return err
	}

	return serverErr
}

func (a *App) Shutdown() error {
	a.infra.Logger().Info("Application shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	errs := make(chan error, 2)

	go func() {
		errs <- a.server.Shutdown(ctx)
	}()

	go func() {
		errs <- a.infra.Shutdown(ctx)
	}()

	err := errors.Join(<-errs, <-errs)
	if err != nil {
		a.infra.Logger().Error("Shutdown failed", zap.Error(err))
		return err
	}

	a.infra.Logger().Info("Application exited successfully")
	return nil
}
