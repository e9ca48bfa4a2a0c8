package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/lqnhat/chatcore/internal/config"
	pkgmdw "github.com/lqnhat/chatcore/internal/server/middleware"
	"github.com/lqnhat/chatcore/internal/server/ws"
)

func StartServer(
	lc fx.Lifecycle,
	sd fx.Shutdowner,
	conf *config.Config,
	log *zap.SugaredLogger,
	health Controller,
	users UserController,
	chat ChatController,
	wsHandler *ws.Handler,
) {
	e := echo.New()
	e.HideBanner = true
	e.Validator = pkgmdw.NewValidator()
	e.HTTPErrorHandler = errorHandler()

	logConfig := pkgmdw.LogRequestConfig{
		Logger: log.Named("http"),
		Enabled: func(c echo.Context) bool {
			uri := c.Request().RequestURI
			return uri != "/health" && uri != "/metrics"
		},
	}

	e.Use(pkgmdw.Metrics())
	e.Use(pkgmdw.RequestID())
	e.Use(pkgmdw.LogRequest(logConfig))
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			log.Errorw("PANIC RECOVER", "error", err, "stack", string(stack))
			return nil
		},
	}))

	e.GET("/health", health.Health)
	e.GET("/ws", wsHandler.Serve)

	api := e.Group("/api/v1")
	api.POST("/users/sync", users.SyncUser)
	api.GET("/users", users.SearchUsers)
	api.GET("/users/by-external-id/:externalID", users.GetUserByExternalID)
	api.POST("/presence/heartbeat", users.Heartbeat)
	api.GET("/presence/online", users.ListOnline)

	api.POST("/conversations/direct", chat.CreateDirectConversation)
	api.POST("/conversations/group", chat.CreateGroupConversation)
	api.GET("/conversations", chat.ListConversations)
	api.GET("/conversations/sidebar", chat.ListSidebar)
	api.GET("/conversations/:id", chat.GetConversation)
	api.POST("/conversations/:id/read", chat.MarkRead)
	api.POST("/conversations/:id/typing", chat.SignalTyping)
	api.GET("/conversations/:id/typing", chat.ListTyping)
	api.POST("/conversations/:id/messages", chat.SendMessage)
	api.GET("/conversations/:id/messages", chat.ListMessages)

	api.DELETE("/messages/:id", chat.DeleteMessage)
	api.POST("/messages/:id/reactions", chat.ToggleReaction)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Infow("starting HTTP server", "addr", conf.Server.Addr)
				if err := e.Start(conf.Server.Addr); !errors.Is(err, http.ErrServerClosed) {
					log.Errorw("HTTP server stopped", "error", err)
					sd.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return e.Shutdown(ctx)
		},
	})
}
