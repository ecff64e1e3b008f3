// Package transport wires WorldSimulation to network clients: a
// gorilla/websocket connection per player for real-time input/state.
// The HTTP routes (health, metrics, websocket, fps) are registered in
// cmd/actionserver.
package transport

import (
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lab1702/actionserver/sim"
	"github.com/lab1702/actionserver/zone"
)

// Message types exchanged with a connected client.
const (
	MsgTypeJoin      = "join"
	MsgTypeInput     = "input"
	MsgTypeState     = "state"
	MsgTypeChat      = "chat"
	MsgTypeVictory   = "victory"
	MsgTypeGameOver  = "game_over"
	MsgTypeRestart   = "restart"
	MsgTypeError     = "error"
)

// ClientMessage is one inbound frame.
type ClientMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ServerMessage is one outbound frame.
type ServerMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type joinPayload struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Team     int32  `json:"team"`
}

type inputPayload struct {
	MoveDir    zone.Vec2  `json:"move_dir"`
	ShootDir   *zone.Vec2 `json:"shoot_dir,omitempty"`
	IsShooting bool       `json:"is_shooting"`
}

// isValidOrigin allows same-origin and localhost connections,
// rejecting everything else. A production deployment would extend
// the allow-list.
func isValidOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	originURL, err := url.Parse(origin)
	if err != nil {
		log.Printf("invalid origin URL: %s", origin)
		return false
	}
	if r.Host == originURL.Host {
		return true
	}
	if strings.HasPrefix(originURL.Host, "localhost:") ||
		strings.HasPrefix(originURL.Host, "127.0.0.1:") ||
		originURL.Host == "localhost" || originURL.Host == "127.0.0.1" {
		return true
	}
	log.Printf("rejected websocket connection from origin: %s", origin)
	return false
}

var upgrader = websocket.Upgrader{
	CheckOrigin:       isValidOrigin,
	EnableCompression: true,
}

// Hub bridges a single zone's WorldSimulation to its connected
// clients, broadcasting state at a fixed cadence. It does not send
// chat or phase events; the chat/victory/game_over/restart message
// types above are declared but unused.
type Hub struct {
	ws *sim.WorldSimulation

	mu      sync.Mutex
	clients map[*client]struct{}
}

// NewHub wires a Hub to a live simulation. Call Run in a goroutine to
// start the broadcast loop.
func NewHub(ws *sim.WorldSimulation) *Hub {
	return &Hub{ws: ws, clients: make(map[*client]struct{})}
}

type client struct {
	playerID string
	conn     *websocket.Conn
	send     chan ServerMessage
	hub      *Hub
}

// ServeWebSocket upgrades an HTTP request and starts the client's
// read/write pumps. The player isn't added to the simulation until a
// "join" message arrives.
func (h *Hub) ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}

	c := &client{
		conn: conn,
		send: make(chan ServerMessage, 256),
		hub:  h,
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go c.writePump()
	go c.readPump()
}

// Run broadcasts a state snapshot to every connected client every
// tick period. Stops when ctxDone is closed.
func (h *Hub) Run(ctxDone <-chan struct{}) {
	ticker := time.NewTicker(zone.NominalTickPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctxDone:
			return
		case <-ticker.C:
			state := h.ws.GetCurrentState()
			h.broadcast(ServerMessage{Type: MsgTypeState, Data: state})
		}
	}
}

func (h *Hub) broadcast(msg ServerMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			log.Printf("dropping slow client %s", c.playerID)
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	if c.playerID != "" {
		if err := h.ws.RemovePlayer(c.playerID); err != nil {
			log.Printf("remove player %s: %v", c.playerID, err)
		}
	}
}

func (c *client) readPump() {
	defer func() {
		c.hub.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket read error: %v", err)
			}
			return
		}
		c.handleMessage(msg)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *client) handleMessage(msg ClientMessage) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("panic handling %s from %s: %v", msg.Type, c.playerID, r)
		}
	}()

	switch msg.Type {
	case MsgTypeJoin:
		var p joinPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			c.sendError("malformed join payload")
			return
		}
		if err := c.hub.ws.AddPlayer(p.PlayerID, p.Name, p.Team); err != nil {
			c.sendError(err.Error())
			return
		}
		c.playerID = p.PlayerID
	case MsgTypeInput:
		if c.playerID == "" {
			c.sendError("input before join")
			return
		}
		var p inputPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			c.sendError("malformed input payload")
			return
		}
		if p.ShootDir != nil {
			c.hub.ws.UpdatePlayerInputWithAim(c.playerID, p.MoveDir, *p.ShootDir, p.IsShooting)
		} else {
			c.hub.ws.UpdatePlayerInput(c.playerID, p.MoveDir, p.IsShooting)
		}
	default:
		c.sendError("unknown message type: " + msg.Type)
	}
}

func (c *client) sendError(text string) {
	select {
	case c.send <- ServerMessage{Type: MsgTypeError, Data: text}:
	default:
	}
}
