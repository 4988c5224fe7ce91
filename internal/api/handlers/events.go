package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rafaeltorres/user-registry/internal/service"
	"github.com/rafaeltorres/user-registry/internal/ws"
)

// EventsHandler upgrades authenticated clients onto the user-event feed.
type EventsHandler struct {
	hub         *ws.Hub
	authService *service.AuthService
	upgrader    websocket.Upgrader
}

func NewEventsHandler(hub *ws.Hub, authService *service.AuthService) *EventsHandler {
	return &EventsHandler{
		hub:         hub,
		authService: authService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Handle authenticates via the token query parameter; browsers cannot set
// headers on websocket connects.
func (h *EventsHandler) Handle(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, http.StatusUnauthorized, "token query parameter is required")
		return
	}

	if _, err := h.authService.ValidateToken(token); err != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ERROR [handlers.EventsHandler] upgrade failed: %v", err)
		return
	}

	client := ws.NewClient(h.hub, conn)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
