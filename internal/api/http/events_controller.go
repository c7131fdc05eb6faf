package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/immxrtalbeast/roomrent/internal/domain"
	"github.com/immxrtalbeast/roomrent/internal/events"
	"github.com/immxrtalbeast/roomrent/lib/logger/sl"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

type Subscriber interface {
	Subscribe() (<-chan events.Event, func())
}

// EventsController streams committed transitions to connected clients.
type EventsController struct {
	broker   Subscriber
	log      *slog.Logger
	upgrader websocket.Upgrader
}

func NewEventsController(broker Subscriber, log *slog.Logger) *EventsController {
	if log == nil {
		log = slog.Default()
	}
	return &EventsController{
		broker: broker,
		log:    log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (c *EventsController) Stream(ctx *gin.Context) {
	var roomID uuid.UUID
	if raw := ctx.Query("room_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			badRequest(ctx, "invalid room_id", nil)
			return
		}
		roomID = id
	}
	actor := actorFrom(ctx)
	log := c.log.With(slog.String("op", "http.Events.Stream"), slog.String("actor_id", actor.ID.String()))

	conn, err := c.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		log.Warn("failed to upgrade connection", sl.Err(err))
		return
	}
	defer conn.Close()

	stream, cancel := c.broker.Subscribe()
	defer cancel()

	closed := make(chan struct{})
	go readUntilClosed(conn, closed)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	log.Debug("event stream opened")
	for {
		select {
		case <-closed:
			log.Debug("event stream closed by client")
			return
		case <-ctx.Request.Context().Done():
			return
		case event, ok := <-stream:
			if !ok {
				return
			}
			if !deliverable(event, actor, roomID) {
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(event); err != nil {
				log.Debug("event stream write failed", sl.Err(err))
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// deliverable decides whether an actor sees an event. Visibility changes are
// public; everything else goes to the parties named on the event.
func deliverable(event events.Event, actor domain.Actor, roomID uuid.UUID) bool {
	if roomID != uuid.Nil && event.RoomID != roomID {
		return false
	}
	return event.Type == events.PostVisibility || actor.IsAdmin() || event.Concerns(actor.ID)
}

// readUntilClosed drains client frames so pongs and close frames are handled.
func readUntilClosed(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
