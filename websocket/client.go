package websocket

import (
	"encoding/json"
	"log"
	"time"

	"monpetitchef-backend/utils"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// Temps maximum pour l'écriture d'un message
	writeWait = 10 * time.Second

	// Temps maximum pour la lecture d'un pong
	pongWait = 60 * time.Second

	// Intervalle des pings
	pingPeriod = (pongWait * 9) / 10

	// Taille maximale des messages
	maxMessageSize = 4096
)

// incomingMessage représente un message reçu d'un client
type incomingMessage struct {
	Type      string `json:"type"`
	RecetteID string `json:"recette_id"`
	Token     string `json:"token"`
}

// Client représente une connexion WebSocket client
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan interface{}
	ID     string
	UserID string // vide tant que le client ne s'est pas authentifié
}

// handleMessage traite un message reçu et retourne l'éventuelle réponse à envoyer
func (c *Client) handleMessage(raw []byte, jwtSecret string) map[string]interface{} {
	var msg incomingMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return map[string]interface{}{"type": "error", "message": "Message JSON invalide"}
	}

	switch msg.Type {
	case "authenticate":
		claims, err := utils.ValidateToken(msg.Token, jwtSecret)
		if err != nil {
			return map[string]interface{}{"type": "error", "message": "Token invalide ou expiré"}
		}
		c.hub.authenticate(c, claims.UserID)
		return map[string]interface{}{"type": "authenticated", "user_id": claims.UserID}

	case "join_recette":
		if !primitive.IsValidObjectID(msg.RecetteID) {
			return map[string]interface{}{"type": "error", "message": "recette_id invalide"}
		}
		c.hub.JoinRecette(c, msg.RecetteID)
		return map[string]interface{}{"type": "joined_recette", "recette_id": msg.RecetteID}

	case "leave_recette":
		c.hub.LeaveRecette(c, msg.RecetteID)
		return nil

	default:
		log.Printf("⚠️  Type de message inconnu: %s", msg.Type)
		return map[string]interface{}{"type": "error", "message": "Type de message inconnu"}
	}
}

// readPump pompe les messages de la connexion WebSocket vers le hub
func (c *Client) readPump(jwtSecret string) {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("❌ Erreur WebSocket: %v", err)
			}
			break
		}

		if reply := c.handleMessage(message, jwtSecret); reply != nil {
			c.reply(reply)
		}
	}
}

// reply envoie une réponse au client sans bloquer la lecture
func (c *Client) reply(payload interface{}) {
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()

	if !c.hub.clients[c] {
		return
	}
	select {
	case c.send <- payload:
	default:
	}
}

// writePump pompe les messages du hub vers la connexion WebSocket
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Le hub a fermé le canal
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				log.Printf("❌ Erreur écriture WebSocket: %v", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
