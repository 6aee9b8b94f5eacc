package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"sendview/pkg/models"
	"sendview/pkg/selectors"
	"sendview/pkg/watcher"

	"github.com/gorilla/websocket"
)

const maxSnapshotBytes = 4 << 20

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type wsMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

type Server struct {
	watcher *watcher.Watcher
	book    selectors.AddressBook
	clients map[*websocket.Conn]bool
	mu      sync.Mutex
	mux     *http.ServeMux
}

func NewServer(w *watcher.Watcher, book selectors.AddressBook) *Server {
	s := &Server{
		watcher: w,
		book:    book,
		clients: make(map[*websocket.Conn]bool),
		mux:     http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/view", s.handleView)
	s.mux.HandleFunc("/api/state", s.handleState)
	s.mux.HandleFunc("/ws", s.handleWS)
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) Start(port int) error {
	go s.listenToWatcher()

	slog.Info("API server listening", slog.Int("port", port))
	return http.ListenAndServe(fmt.Sprintf(":%d", port), s.mux)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// viewStatus maps a view failure to an HTTP status.
func viewStatus(err error) int {
	switch {
	case errors.Is(err, watcher.ErrNoState):
		return http.StatusServiceUnavailable
	case errors.Is(err, models.ErrInvalidSnapshot):
		return http.StatusBadRequest
	default:
		return http.StatusUnprocessableEntity
	}
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		view, err := s.watcher.View()
		if err != nil {
			writeError(w, viewStatus(err), err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	case http.MethodPost:
		state, err := models.DecodeState(http.MaxBytesReader(w, r.Body, maxSnapshotBytes))
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		view, err := selectors.BuildSendView(state, selectors.Deps{AddressBook: s.book})
		if err != nil {
			writeError(w, viewStatus(err), err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed", r.Method))
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		w.Header().Set("Allow", "PUT")
		writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed", r.Method))
		return
	}
	state, err := models.DecodeState(http.MaxBytesReader(w, r.Body, maxSnapshotBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.watcher.SetState(state); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	slog.Info("snapshot replaced", slog.String("network", state.MetaMask.Network), slog.String("remote", r.RemoteAddr))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Debug("websocket upgrade failed", slog.Any("error", err))
		return
	}
	defer func() { _ = conn.Close() }()

	s.mu.Lock()
	s.clients[conn] = true
	initial := wsMessage{Type: "initial"}
	if view, err := s.watcher.View(); err == nil {
		initial.Data = view
	} else {
		initial.Type = string(watcher.EventStatusUpdated)
		initial.Data = err.Error()
	}
	_ = conn.WriteJSON(initial)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (s *Server) listenToWatcher() {
	sub := s.watcher.Subscribe()
	defer s.watcher.Unsubscribe(sub)

	for event := range sub {
		switch event.Type {
		case watcher.EventViewUpdated, watcher.EventStatusUpdated:
			s.broadcast(wsMessage{Type: string(event.Type), Data: event.Data})
		}
	}
}

func (s *Server) broadcast(msg wsMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for client := range s.clients {
		if err := client.WriteJSON(msg); err != nil {
			_ = client.Close()
			delete(s.clients, client)
		}
	}
}
