// Package debugapi serves the read-only HTTP/WebSocket observability
// surface: port table, CAM, bridge identity, counters, and a live stream
// of STP/forwarding events. It never mutates bridge state; every handler
// reads from the same snapshot accessors the BPDU timer task already uses.
package debugapi

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/kaelnet/vswitchd/pkg/bridge"
	"github.com/kaelnet/vswitchd/pkg/events"
)

// Server exposes a Bridge's state over HTTP.
type Server struct {
	bridge *bridge.Bridge
	bus    *events.Bus
	log    *logrus.Entry
	http   *http.Server
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// New builds a Server bound to addr. Call Serve to start it; an empty addr
// means the debug API is disabled and the caller should not call Serve.
func New(addr string, br *bridge.Bridge, bus *events.Bus, log *logrus.Entry) *Server {
	s := &Server{bridge: br, bus: bus, log: log}

	r := mux.NewRouter()
	r.HandleFunc("/ports", s.handlePorts).Methods(http.MethodGet)
	r.HandleFunc("/cam", s.handleCAM).Methods(http.MethodGet)
	r.HandleFunc("/bridge", s.handleBridge).Methods(http.MethodGet)
	r.HandleFunc("/metrics", s.handleMetrics).Methods(http.MethodGet)
	r.HandleFunc("/events", s.handleEvents)

	s.http = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	return s
}

// Serve blocks, serving the debug API until the listener fails or Close is
// called.
func (s *Server) Serve() error {
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Close shuts the HTTP server down.
func (s *Server) Close() error {
	return s.http.Close()
}

type portView struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	VLAN  int    `json:"vlan,omitempty"`
	State string `json:"stp_state"`
}

func (s *Server) handlePorts(w http.ResponseWriter, r *http.Request) {
	table := s.bridge.Ports()
	out := make([]portView, len(table))
	for i, p := range table {
		out[i] = portView{Index: i, Name: p.Name, Kind: p.Kind.String(), VLAN: p.VLAN, State: p.State.String()}
	}
	writeJSON(w, out)
}

type camView struct {
	MAC  string `json:"mac"`
	Port int    `json:"port"`
}

func (s *Server) handleCAM(w http.ResponseWriter, r *http.Request) {
	entries := s.bridge.CAM().Snapshot()
	out := make([]camView, len(entries))
	for i, e := range entries {
		out[i] = camView{MAC: macString(e.MAC), Port: e.Port}
	}
	writeJSON(w, out)
}

type bridgeView struct {
	OwnBID       int64  `json:"own_bid"`
	RootBID      int64  `json:"root_bid"`
	RootPathCost uint32 `json:"root_path_cost"`
}

func (s *Server) handleBridge(w http.ResponseWriter, r *http.Request) {
	id := s.bridge.Identity()
	writeJSON(w, bridgeView{OwnBID: id.OwnBID, RootBID: id.RootBID, RootPathCost: id.RootPathCost})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.bridge.Metrics().Snapshot())
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.bus == nil {
		http.Error(w, "events not enabled", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ch, unsubscribe := s.bus.Subscribe(64)
	defer unsubscribe()

	var writeMu sync.Mutex
	for ev := range ch {
		writeMu.Lock()
		err := conn.WriteJSON(ev)
		writeMu.Unlock()
		if err != nil {
			return
		}
	}
}

func macString(m [6]byte) string {
	const hex = "0123456789abcdef"
	b := make([]byte, 0, 17)
	for i, v := range m {
		if i > 0 {
			b = append(b, ':')
		}
		b = append(b, hex[v>>4], hex[v&0xf])
	}
	return string(b)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
