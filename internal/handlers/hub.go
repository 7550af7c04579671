// internal/handlers/hub.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/rams/internal/game"
	"github.com/jason-s-yu/rams/internal/middleware"
)

const (
	// sendBuffer is how many updates a subscriber may lag behind before it is dropped.
	sendBuffer   = 64
	writeTimeout = 5 * time.Second
)

// Message is what subscribers receive: a full snapshot labelled with the event that produced it.
type Message struct {
	Type        string      `json:"type"`
	GameID      uuid.UUID   `json:"game_id"`
	ActionIndex int         `json:"action_index"`
	Event       *game.Event `json:"event,omitempty"`
	State       *game.View  `json:"state,omitempty"`
	Message     string      `json:"message,omitempty"`
}

// Message types.
const (
	MessageSnapshot = "snapshot"
	MessageUpdate   = "update"
	MessagePong     = "pong"
	MessageError    = "error"
)

// outbound is a queued frame. actions is the action count of the state it carries, zero for
// replies that carry no state.
type outbound struct {
	data    []byte
	actions int
}

type subscriber struct {
	conn   *websocket.Conn
	send   chan outbound
	done   chan struct{}
	cancel context.CancelFunc
	once   sync.Once
}

// stop ends both loops of the subscriber. Safe to call more than once.
func (s *subscriber) stop() {
	s.once.Do(func() {
		close(s.done)
		s.cancel()
	})
}

// Hub fans committed updates out to every websocket subscribed to the game. It implements
// game.Publisher.
type Hub struct {
	mu    sync.Mutex
	games map[uuid.UUID]map[*subscriber]struct{}
	log   logrus.FieldLogger
}

func NewHub(logger logrus.FieldLogger) *Hub {
	return &Hub{
		games: make(map[uuid.UUID]map[*subscriber]struct{}),
		log:   logger,
	}
}

// Publish queues the update for every subscriber of the game. It never blocks on a socket.
func (h *Hub) Publish(_ context.Context, u game.Update) error {
	ev, view := u.Event, u.State
	data, err := json.Marshal(Message{
		Type:        MessageUpdate,
		GameID:      u.GameID,
		ActionIndex: u.ActionIndex,
		Event:       &ev,
		State:       &view,
	})
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.games[u.GameID] {
		select {
		case sub.send <- outbound{data: data, actions: u.State.Game.ActionCount}:
		default:
			h.log.WithField("game", u.GameID).Warn("dropping slow websocket subscriber")
			h.removeLocked(u.GameID, sub)
			sub.stop()
			go sub.conn.Close(SlowConsumerError, "too far behind")
		}
	}
	return nil
}

// Subscribers is the number of open feeds for a game.
func (h *Hub) Subscribers(id uuid.UUID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.games[id])
}

func (h *Hub) add(id uuid.UUID, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.games[id]
	if !ok {
		subs = make(map[*subscriber]struct{})
		h.games[id] = subs
	}
	subs[sub] = struct{}{}
}

func (h *Hub) remove(id uuid.UUID, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(id, sub)
}

func (h *Hub) removeLocked(id uuid.UUID, sub *subscriber) {
	subs := h.games[id]
	delete(subs, sub)
	if len(subs) == 0 {
		delete(h.games, id)
	}
}

// Close disconnects every subscriber, used on shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, subs := range h.games {
		for sub := range subs {
			sub.stop()
			go sub.conn.Close(websocket.StatusGoingAway, "server shutting down")
		}
		delete(h.games, id)
	}
}

// Handler upgrades GET /games/{id}/ws. The client gets the current snapshot first, then one
// message per event committed after it.
func (h *Hub) Handler(svc *game.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := gameID(r)
		if err != nil {
			writeError(w, h.log, err)
			return
		}
		if _, err := svc.Get(r.Context(), id); err != nil {
			writeError(w, h.log, err)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"game"},
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			h.log.WithError(err).WithField("game", id).Warn("websocket accept error")
			return
		}
		defer c.Close(websocket.StatusInternalError, "internal server error during handler exit")

		if c.Subprotocol() != "game" {
			c.Close(BadSubprotocolError, "client must use the 'game' subprotocol")
			return
		}
		middleware.LogWebSocketConnect(h.log, r.RemoteAddr, r.URL.Path)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		sub := &subscriber{conn: c, send: make(chan outbound, sendBuffer), done: make(chan struct{}), cancel: cancel}
		h.add(id, sub)
		defer h.remove(id, sub)

		// read the snapshot only once subscribed so no commit falls between the two
		view, err := svc.Get(ctx, id)
		if err != nil {
			h.log.WithError(err).WithField("game", id).Error("load snapshot")
			return
		}
		snapshot, err := json.Marshal(Message{Type: MessageSnapshot, GameID: id, ActionIndex: view.Game.ActionCount, State: &view})
		if err != nil {
			h.log.WithError(err).Error("marshal snapshot")
			return
		}

		go h.writeLoop(ctx, sub, snapshot, view.Game.ActionCount)

		err = h.readLoop(ctx, sub, id)
		middleware.LogWebSocketDisconnect(h.log, r.RemoteAddr, r.URL.Path, err)
		sub.stop()
	}
}

// writeLoop sends the snapshot, then every queued frame newer than it. Updates queued while
// the snapshot was being read are already part of it and are skipped.
func (h *Hub) writeLoop(ctx context.Context, sub *subscriber, snapshot []byte, since int) {
	write := func(data []byte) bool {
		writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
		defer cancel()
		if err := sub.conn.Write(writeCtx, websocket.MessageText, data); err != nil {
			sub.stop()
			return false
		}
		return true
	}

	if !write(snapshot) {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.done:
			return
		case out := <-sub.send:
			if out.actions > 0 && out.actions <= since {
				continue
			}
			if !write(out.data) {
				return
			}
		}
	}
}

// readLoop answers pings until the client goes away. The feed is read only; actions go through
// the REST routes. A normal closure returns nil.
func (h *Hub) readLoop(ctx context.Context, sub *subscriber, id uuid.UUID) error {
	for {
		msgType, data, err := sub.conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if msgType != websocket.MessageText {
			continue
		}

		var msg struct {
			Type string `json:"type"`
		}
		reply := Message{Type: MessagePong, GameID: id}
		if err := json.Unmarshal(data, &msg); err != nil {
			reply = Message{Type: MessageError, GameID: id, Message: "invalid JSON format"}
		} else if msg.Type != "ping" {
			reply = Message{Type: MessageError, GameID: id, Message: "unknown message type: " + msg.Type}
		}
		out, _ := json.Marshal(reply)
		select {
		case sub.send <- outbound{data: out}:
		case <-sub.done:
			return nil
		}
	}
}
