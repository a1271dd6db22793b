package api

import (
	"net/http"
	"time"

	"guildgems/internal/service"
	"guildgems/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type notifyRoutes struct {
	n *service.Notifier
}

// NewNotifyRoutes exposes the per-user event stream. Clients get reward,
// quest, and trade events pushed as they settle.
func NewNotifyRoutes(handler *gin.RouterGroup, n *service.Notifier) {
	r := &notifyRoutes{n: n}
	handler.GET("/ws/:user_id", r.Stream)
}

func (r *notifyRoutes) Stream(c *gin.Context) {
	log := logger.Logger()
	userID := c.Param("user_id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("websocket upgrade failed", zap.String("user_id", userID), zap.Error(err))
		return
	}
	defer conn.Close()

	events, cancel := r.n.Subscribe(userID)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case event, ok := <-events:
			if !ok {
				return
			}

			payload, err := json.Marshal(event)
			if err != nil {
				log.Error("failed to marshal event", zap.Error(err))
				continue
			}

			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		}
	}
}
