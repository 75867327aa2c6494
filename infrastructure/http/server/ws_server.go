package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"chat-direct/auth"
	"chat-direct/contract"
	"chat-direct/domain/event"
	"chat-direct/sink"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSServer owns the real-time channel. Each accepted connection gets a fresh
// connection id and a dedicated sink registered in the presence registry;
// the delivery router pushes through that sink and this server's write loop
// moves events onto the socket.
type WSServer struct {
	presence   contract.IPresence
	log        *slog.Logger
	bufferSize int
}

func NewWSServer(log *slog.Logger, presence contract.IPresence, bufferSize int) *WSServer {
	return &WSServer{presence: presence, log: log, bufferSize: bufferSize}
}

// Handle upgrades GET /ws and blocks until the client disconnects.
// Unregistration is deferred so the presence entry is invalidated on every
// exit path, including transport failures; the guard inside Unregister keeps
// a newer connection's mapping intact if this one is stale.
func (s *WSServer) Handle(c *gin.Context) {
	userID := c.GetString(auth.UserIDKey)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("Websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	connID := uuid.NewString()
	connSink := sink.NewConnSink(s.bufferSize)
	s.presence.Register(userID, connID, connSink)
	defer s.presence.Unregister(connID)

	s.log.Info(fmt.Sprintf("Client %s connected (conn %s)", userID, connID))

	// The read loop only watches for disconnects and keeps the pong
	// deadline fresh; clients send messages over HTTP, not the socket.
	closed := make(chan struct{})
	go s.readLoop(conn, closed)

	s.writeLoop(conn, connSink, closed)
	s.log.Info(fmt.Sprintf("Client %s disconnected (conn %s)", userID, connID))
}

func (s *WSServer) readLoop(conn *websocket.Conn, closed chan<- struct{}) {
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

func (s *WSServer) writeLoop(conn *websocket.Conn, connSink *sink.ConnSink, closed <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case e := <-connSink.Events:
			newMsg, ok := e.(event.NewMessage)
			if !ok {
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(event.Envelope{
				Event: event.EventNewMessage,
				Data:  newMsg.Message,
			}); err != nil {
				s.log.Warn("Failed to push event to socket", "error", err)
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
