package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	view "github.com/Marco3041/linkedin-clone/internal/modules/view/service"
	"github.com/Marco3041/linkedin-clone/pkg/response"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

type ViewHandler struct {
	deps     view.Deps
	hub      *view.Hub
	upgrader websocket.Upgrader
}

func NewViewHandler(deps view.Deps, hub *view.Hub, checkOrigin func(r *http.Request) bool) *ViewHandler {
	return &ViewHandler{
		deps: deps,
		hub:  hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

// HandleWebSocket turns an authenticated request into a view session that
// lives as long as the connection.
func (h *ViewHandler) HandleWebSocket(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	me, err := h.deps.Auth.Me(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade websocket: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session := view.NewSession(ctx, h.deps, me)
	h.hub.Add(session)
	defer func() {
		h.hub.Remove(session)
		session.Close()
	}()
	log.Printf("🔗 view session %s opened for %s", session.ID, userID)

	clientClosed := make(chan struct{})
	go func() {
		defer close(clientClosed)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			var msg view.ClientMessage
			if err := conn.ReadJSON(&msg); err != nil {
				if malformed(err) {
					session.Reject(msg, err)
					continue
				}
				return
			}
			if err := session.Handle(ctx, msg); err != nil {
				session.Reject(msg, err)
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case frame := <-session.Frames():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(frame); err != nil {
				log.Printf("Failed to write frame to websocket: %v", err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-clientClosed:
			return
		case <-session.Done():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}

// malformed reports whether err came from decoding one bad client message,
// as opposed to a broken connection.
func malformed(err error) bool {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}
