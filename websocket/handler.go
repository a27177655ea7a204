package websocket

import (
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Handler gère les connexions WebSocket du fil des recettes
type Handler struct {
	hub       *Hub
	jwtSecret string
	upgrader  websocket.Upgrader
}

// NewHandler crée un nouveau handler WebSocket.
// checkOrigin décide si l'origine de la requête d'upgrade est acceptée.
func NewHandler(hub *Hub, jwtSecret string, checkOrigin func(origin string) bool) *Handler {
	return &Handler{
		hub:       hub,
		jwtSecret: jwtSecret,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				// Les clients hors navigateur n'envoient pas d'Origin
				return origin == "" || checkOrigin(origin)
			},
		},
	}
}

// ServeWS gère les requêtes WebSocket. L'authentification est facultative:
// le fil est public, le token sert seulement à ne pas renvoyer ses propres actions.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("❌ Erreur upgrade WebSocket: %v", err)
		return
	}

	client := &Client{
		hub:  h.hub,
		conn: conn,
		send: make(chan interface{}, 256),
		ID:   uuid.NewString(),
	}

	if !h.hub.register(client) {
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump(h.jwtSecret)
}
