// Package server streams baked ocean frames to browser clients over websocket.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Faultbox/oceanbake/internal/engine/scene"
)

// ErrNothingBaked is returned when the object has no keyframes to stream.
var ErrNothingBaked = errors.New("object has no baked frames")

// Config holds server settings.
type Config struct {
	Addr          string
	FrameInterval time.Duration
	TimeStep      float64
}

// MeshMessage describes the static topology, sent once per connection.
type MeshMessage struct {
	Type       string       `json:"type"`
	Name       string       `json:"name"`
	Resolution int          `json:"resolution"`
	Vertices   [][3]float64 `json:"vertices"`
	Indices    []uint32     `json:"indices"`
	FirstFrame int          `json:"firstFrame"`
	LastFrame  int          `json:"lastFrame"`
}

// FrameMessage carries the heights of one frame.
type FrameMessage struct {
	Type    string    `json:"type"`
	Frame   int       `json:"frame"`
	Time    float64   `json:"time"`
	Heights []float64 `json:"heights"`
}

// ControlMessage is sent by clients to pause playback or jump to a frame.
type ControlMessage struct {
	Type   string `json:"type"` // "pause" or "seek"
	Paused bool   `json:"paused"`
	Frame  int    `json:"frame"`
}

// Server plays the baked frames of one object in a loop.
type Server struct {
	cfg      Config
	obj      *scene.Object
	first    int
	last     int
	log      *zap.Logger
	upgrader websocket.Upgrader

	clientsMu sync.Mutex
	clients   map[*websocket.Conn]struct{}
}

// New creates a server for a baked object.
func New(cfg Config, obj *scene.Object, log *zap.Logger) (*Server, error) {
	first, last, ok := obj.Curves.FrameRange()
	if !ok {
		return nil, ErrNothingBaked
	}
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = 100 * time.Millisecond
	}
	return &Server{
		cfg:   cfg,
		obj:   obj,
		first: first,
		last:  last,
		log:   log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // local preview tool
			},
		},
		clients: make(map[*websocket.Conn]struct{}),
	}, nil
}

// Handler returns the HTTP routes: GET / for a summary, /ws for the stream.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleInfo)
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{Addr: s.cfg.Addr, Handler: s.Handler()}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("preview server listening", zap.String("addr", s.cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.closeClients()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

// ClientCount returns the number of connected websocket clients.
func (s *Server) ClientCount() int {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	return len(s.clients)
}

func (s *Server) closeClients() {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	for conn := range s.clients {
		conn.Close()
	}
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"name":       s.obj.Name,
		"vertices":   s.obj.Mesh.VertexCount(),
		"resolution": s.obj.Mesh.Resolution,
		"firstFrame": s.first,
		"lastFrame":  s.last,
	})
}

func (s *Server) meshMessage() MeshMessage {
	verts := make([][3]float64, len(s.obj.Mesh.Vertices))
	for i, v := range s.obj.Mesh.Vertices {
		verts[i] = [3]float64{v.X, v.Y, 0}
	}
	return MeshMessage{
		Type:       "mesh",
		Name:       s.obj.Name,
		Resolution: s.obj.Mesh.Resolution,
		Vertices:   verts,
		Indices:    s.obj.Mesh.Indices,
		FirstFrame: s.first,
		LastFrame:  s.last,
	}
}

func (s *Server) frameMessage(frame int) (FrameMessage, bool) {
	positions, ok := s.obj.Curves.Sample(frame)
	if !ok {
		return FrameMessage{}, false
	}
	heights := make([]float64, len(positions))
	for i, p := range positions {
		heights[i] = p.Z
	}
	return FrameMessage{
		Type:    "frame",
		Frame:   frame,
		Time:    float64(frame) * s.cfg.TimeStep,
		Heights: heights,
	}, true
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	s.clientsMu.Lock()
	s.clients[conn] = struct{}{}
	s.clientsMu.Unlock()
	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, conn)
		s.clientsMu.Unlock()
	}()

	log := s.log.With(zap.String("remote", r.RemoteAddr))
	log.Info("client connected")

	if err := conn.WriteJSON(s.meshMessage()); err != nil {
		log.Warn("sending mesh failed", zap.Error(err))
		return
	}

	controls := make(chan ControlMessage, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var msg ControlMessage
			if err := conn.ReadJSON(&msg); err != nil {
				log.Debug("client read ended", zap.Error(err))
				return
			}
			select {
			case controls <- msg:
			default:
				log.Warn("dropping control message", zap.String("type", msg.Type))
			}
		}
	}()

	s.play(conn, controls, done, log)
	log.Info("client disconnected")
}

// play writes frames from the playback loop. Only this goroutine writes to conn.
func (s *Server) play(conn *websocket.Conn, controls <-chan ControlMessage, done <-chan struct{}, log *zap.Logger) {
	ticker := time.NewTicker(s.cfg.FrameInterval)
	defer ticker.Stop()

	frame := s.first
	paused := false
	send := func() bool {
		msg, ok := s.frameMessage(frame)
		if !ok {
			log.Warn("frame missing from curves", zap.Int("frame", frame))
			return true
		}
		if err := conn.WriteJSON(msg); err != nil {
			log.Debug("write failed", zap.Error(err))
			return false
		}
		return true
	}

	if !send() {
		return
	}
	for {
		select {
		case <-done:
			return
		case msg := <-controls:
			switch msg.Type {
			case "pause":
				paused = msg.Paused
			case "seek":
				if msg.Frame >= s.first && msg.Frame <= s.last {
					frame = msg.Frame
					if !send() {
						return
					}
				}
			}
		case <-ticker.C:
			if paused {
				continue
			}
			frame++
			if frame > s.last {
				frame = s.first
			}
			if !send() {
				return
			}
		}
	}
}
