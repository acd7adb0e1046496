package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/rabotim/marketplace/internal/config"
	"github.com/rabotim/marketplace/internal/delivery/http/v1"
)

func MustListenAndServeHTTP() {
	cfg := config.Global()
	if cfg.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	httpCfg := cfg.HTTP

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	registerRoutes(router)

	server := &http.Server{
		Addr:    net.JoinHostPort(httpCfg.Host, httpCfg.Port),
		Handler: router,
	}

	go func() {
		globalLogger.Info().
			Str("host", httpCfg.Host).
			Str("port", httpCfg.Port).
			Msg("setting up http server")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			globalLogger.Error().
				Err(err).
				Msg("failed to listen and serve http")
			panic(err)
		}
	}()

	// Wait for the interrupt signal to gracefully
	// shut down the server with a timeout of 5 seconds.
	quit := make(chan os.Signal, 1)
	// kill (no params) by default sends syscall.SIGTERM
	// kill -2 is syscall.SIGINT
	// kill -9 is syscall.SIGKILL but can't be caught, so don't need to add it
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	globalLogger.Info().
		Msg("shutting down http server")

	ctx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
	defer cancel()

	err := server.Shutdown(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to shutdown http server")
		panic(err)
	}
	globalLogger.Info().Msg("shut down http server")
}

func registerRoutes(router gin.IRouter) {
	jwtCfg := config.Global().JWT
	v1Handler := v1.New(
		globalLogger,
		globalTaskService,
		globalAlertService,
		globalNotifyService,
		jwtCfg.Issuer,
		jwtCfg.SigningKey,
	)
	router = router.Group("/api/v1")

	router.GET("/categories", v1Handler.HandleGetCategories)
	router.GET("/cities", v1Handler.HandleGetCities)

	tasksRouter := router.Group("/tasks")
	tasksRouter.GET("", v1Handler.HandleSearchTasks)
	tasksRouter.GET("/:id", v1Handler.HandleGetTask)
	tasksRouter.POST("", v1Handler.HandleAuthMiddleware, v1Handler.HandleCreateTask)
	tasksRouter.PATCH("/:id/status", v1Handler.HandleAuthMiddleware, v1Handler.HandleSetTaskStatus)
	tasksRouter.POST("/:id/apply", v1Handler.HandleAuthMiddleware, v1Handler.HandleApplyToTask)

	alertsRouter := router.Group("/alerts", v1Handler.HandleAuthMiddleware)
	alertsRouter.POST("", v1Handler.HandleCreateAlert)
	alertsRouter.GET("", v1Handler.HandleListAlerts)
	alertsRouter.PUT("/:id", v1Handler.HandleUpdateAlert)
	alertsRouter.DELETE("/:id", v1Handler.HandleDeleteAlert)

	router.GET("/notifications", v1Handler.HandleAuthMiddleware, v1Handler.HandleListNotifications)
}
