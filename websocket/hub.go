package websocket

import (
	"log"
	"sync"
)

// Événements diffusés aux clients d'une recette
const (
	EventNouveauCommentaire  = "nouveau_commentaire"
	EventCommentaireModifie  = "commentaire_modifie"
	EventCommentaireSupprime = "commentaire_supprime"
	EventNouvelleNote        = "nouvelle_note"
)

// Event est le message JSON envoyé aux clients
type Event struct {
	Type      string      `json:"type"`
	RecetteID string      `json:"recette_id"`
	Data      interface{} `json:"data,omitempty"`
}

// Message représente un message à diffuser dans une room de recette
type Message struct {
	RecetteID     string
	ExcludeUserID string // Ne pas envoyer à cet utilisateur (l'auteur de l'action)
	Payload       interface{}
}

// Hub gère les connexions WebSocket actives et les rooms par recette
type Hub struct {
	// Clients connectés
	clients map[*Client]bool

	// Rooms de recettes (recette_id -> clients)
	rooms map[string]map[*Client]bool

	mu sync.RWMutex

	unregister chan *Client
	broadcast  chan *Message
	done       chan struct{}
	closeOnce  sync.Once
}

// NewHub crée un nouveau hub WebSocket
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, 256),
		done:       make(chan struct{}),
	}
}

// register ajoute le client; false si le hub est arrêté
func (h *Hub) register(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	select {
	case <-h.done:
		return false
	default:
	}

	h.clients[client] = true
	log.Printf("🔌 Client connecté: %s (total: %d)", client.ID, len(h.clients))
	return true
}

// Run démarre la boucle principale du hub
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				h.removeLocked(client)
			}
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("👋 Client déconnecté: %s (total: %d)", client.ID, total)

		case message := <-h.broadcast:
			h.deliver(message)

		case <-h.done:
			return
		}
	}
}

func (h *Hub) deliver(message *Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[message.RecetteID]
	if !ok {
		return
	}

	for client := range members {
		if message.ExcludeUserID != "" && client.UserID == message.ExcludeUserID {
			continue
		}
		select {
		case client.send <- message.Payload:
		default:
			log.Printf("❌ Canal plein pour %s, déconnexion", client.ID)
			h.removeLocked(client)
		}
	}
}

// removeLocked retire le client de toutes les rooms; h.mu doit être verrouillé
func (h *Hub) removeLocked(client *Client) {
	delete(h.clients, client)
	close(client.send)

	for recetteID, members := range h.rooms {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, recetteID)
		}
	}
}

// JoinRecette ajoute un client à la room d'une recette
func (h *Hub) JoinRecette(client *Client, recetteID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.clients[client] {
		return
	}
	if h.rooms[recetteID] == nil {
		h.rooms[recetteID] = make(map[*Client]bool)
	}
	h.rooms[recetteID][client] = true
}

// LeaveRecette retire un client de la room d'une recette
func (h *Hub) LeaveRecette(client *Client, recetteID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if members, ok := h.rooms[recetteID]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, recetteID)
		}
	}
}

// authenticate associe l'utilisateur au client
func (h *Hub) authenticate(client *Client, userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	client.UserID = userID
}

// RoomSize retourne le nombre de clients qui suivent une recette
func (h *Hub) RoomSize(recetteID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[recetteID])
}

// BroadcastToRecette diffuse un événement aux clients qui suivent la recette
func (h *Hub) BroadcastToRecette(recetteID, eventType string, data interface{}, excludeUserID string) {
	message := &Message{
		RecetteID:     recetteID,
		ExcludeUserID: excludeUserID,
		Payload: Event{
			Type:      eventType,
			RecetteID: recetteID,
			Data:      data,
		},
	}

	select {
	case h.broadcast <- message:
	case <-h.done:
	default:
		log.Printf("⚠️  File de diffusion pleine, événement %s perdu pour la recette %s", eventType, recetteID)
	}
}

// Shutdown arrête le hub et ferme toutes les connexions
func (h *Hub) Shutdown() {
	h.closeOnce.Do(func() {
		log.Printf("🔄 Arrêt du hub WebSocket...")
		close(h.done)

		h.mu.Lock()
		for client := range h.clients {
			close(client.send)
			if client.conn != nil {
				client.conn.Close()
			}
		}
		h.clients = make(map[*Client]bool)
		h.rooms = make(map[string]map[*Client]bool)
		h.mu.Unlock()

		log.Printf("✅ Hub WebSocket arrêté")
	})
}
