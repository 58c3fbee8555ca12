package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"issueboard/internal/board"
	"issueboard/internal/notify"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// NotificationHandler streams a view's notifications over a websocket.
type NotificationHandler struct {
	views    *board.Registry
	upgrader websocket.Upgrader
	log      *slog.Logger
}

func NewNotificationHandler(views *board.Registry, allowedOrigins []string, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{
		views: views,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if origin == allowed {
						return true
					}
				}
				return false
			},
		},
		log: logger,
	}
}

// Stream
// @Summary  Notification stream of a view
// @Description Upgrades to a websocket. The first message is the visible notification, if any; then every shown/dismissed event follows. Pass the token as access_token.
// @Tags     Views
// @Param    id           path  string true "View ID"
// @Param    access_token query string true "Access token"
// @Success  101
// @Failure  400,401,404 {object} ErrorResponse
// @Router   /views/{id}/notifications [get]
func (h *NotificationHandler) Stream(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "Invalid view ID format")
	if !ok {
		return
	}
	s, err := h.views.Get(id, claims.Subject)
	if err != nil {
		respondError(c, err, "")
		return
	}

	// subscribe first so nothing shown during the handshake is lost
	events, unsubscribe := s.Notifier.Subscribe()
	defer unsubscribe()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "view_id", id, "error", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		h.log.Warn("failed to set initial read deadline", "view_id", id, "error", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	if current, ok := s.Notifier.Current(); ok {
		if err := writeEvent(conn, notify.Event{Type: notify.EventShown, Notification: current}); err != nil {
			h.log.Warn("failed to send current notification", "view_id", id, "error", err)
			return
		}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					h.log.Warn("websocket read failed", "view_id", id, "error", err)
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	// All writes happen on this goroutine; gorilla connections allow one writer.
	for {
		select {
		case <-done:
			return
		case ev, ok := <-events:
			if !ok {
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "view closed"))
				return
			}
			if err := writeEvent(conn, ev); err != nil {
				h.log.Warn("failed to send notification", "view_id", id, "error", err)
				return
			}
		case <-ticker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.log.Debug("ping failed", "view_id", id, "error", err)
				return
			}
		}
	}
}

func writeEvent(conn *websocket.Conn, ev notify.Event) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(ev)
}
