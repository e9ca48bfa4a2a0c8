package ws

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler upgrades HTTP requests into hub subscriptions.
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	log      *zap.SugaredLogger
}

func NewHandler(hub *Hub, log *zap.SugaredLogger) *Handler {
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin checks belong to the auth proxy in front of this
			// service.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		log: log.Named("ws"),
	}
}

func (h *Handler) Serve(c echo.Context) error {
	userID := c.QueryParam("user_id")
	if _, err := primitive.ObjectIDFromHex(userID); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user_id")
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := newClient(h.hub, userID, conn)
	h.hub.Register(client)
	h.log.Debugw("client connected", "user_id", userID)

	go client.writePump()
	client.readPump()

	h.log.Debugw("client disconnected", "user_id", userID)
	return nil
}
