// SPDX-License-Identifier: EPL-2.0

package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ik5/audclean/pipeline"
	"github.com/sirupsen/logrus"
)

// Message types sent on the status stream.
const (
	MsgStatus         = "status"
	MsgTrigger        = "trigger"
	MsgArtifact       = "artifact"
	MsgArtifactHidden = "artifact_hidden"
)

const writeWait = 5 * time.Second

type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type triggerState struct {
	Enabled bool `json:"enabled"`
}

// Hub is the pipeline Display for browser clients. It keeps the last
// status, trigger state and artifact so that late joiners catch up.
type Hub struct {
	log      logrus.FieldLogger
	upgrader websocket.Upgrader

	mu       sync.Mutex
	clients  map[*websocket.Conn]struct{}
	status   *pipeline.Status
	trigger  bool
	artifact *pipeline.Link
}

func NewHub(log logrus.FieldLogger) *Hub {
	return &Hub{
		log:     log,
		clients: make(map[*websocket.Conn]struct{}),
		trigger: true,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (h *Hub) SetStatus(s pipeline.Status) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.status = &s
	h.broadcastLocked(Message{Type: MsgStatus, Data: s})
}

func (h *Hub) SetTriggerEnabled(on bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.trigger = on
	h.broadcastLocked(Message{Type: MsgTrigger, Data: triggerState{Enabled: on}})
}

func (h *Hub) ShowArtifact(l pipeline.Link) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.artifact = &l
	h.broadcastLocked(Message{Type: MsgArtifact, Data: l})
}

func (h *Hub) HideArtifact() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.artifact = nil
	h.broadcastLocked(Message{Type: MsgArtifactHidden, Data: nil})
}

// Snapshot returns the state a new client is sent.
func (h *Hub) Snapshot() []Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snapshotLocked()
}

func (h *Hub) snapshotLocked() []Message {
	var out []Message
	if h.status != nil {
		out = append(out, Message{Type: MsgStatus, Data: *h.status})
	}
	out = append(out, Message{Type: MsgTrigger, Data: triggerState{Enabled: h.trigger}})
	if h.artifact != nil {
		out = append(out, Message{Type: MsgArtifact, Data: *h.artifact})
	}
	return out
}

func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and streams messages until the client goes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade")
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	for _, m := range h.snapshotLocked() {
		if err := writeJSON(conn, m); err != nil {
			delete(h.clients, conn)
			h.mu.Unlock()
			return
		}
	}
	count := len(h.clients)
	h.mu.Unlock()
	h.log.WithField("clients", count).Debug("websocket client connected")

	// the stream is one way; reading only notices the close
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	delete(h.clients, conn)
	count = len(h.clients)
	h.mu.Unlock()
	h.log.WithField("clients", count).Debug("websocket client disconnected")
}

func (h *Hub) broadcastLocked(m Message) {
	for conn := range h.clients {
		if err := writeJSON(conn, m); err != nil {
			h.log.WithError(err).Debug("dropping websocket client")
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

func writeJSON(conn *websocket.Conn, m Message) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, data)
}
