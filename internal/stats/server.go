// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package stats

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/gviegas/hybrid/internal/bitvec"
	"github.com/gviegas/hybrid/log"
)

var logger = log.New("stats")

// Hello is the first message sent to every client.
type Hello struct {
	Client int    `json:"client"`
	Title  string `json:"title"`
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(time.Second))
	return c.conn.WriteJSON(v)
}

// Server broadcasts tracer reports to websocket clients.
// Clients connect to the /ws endpoint.
type Server struct {
	tracer   *Tracer
	title    string
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[int]*client
	slots   bitvec.V[uint32]
}

// NewServer creates a new server that reports the spans
// of t. title identifies the session to clients.
func NewServer(t *Tracer, title string) *Server {
	return &Server{
		tracer: t,
		title:  title,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[int]*client),
	}
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWS)
	return mux
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warningf("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	c := &client{conn: conn}
	s.mu.Lock()
	id := s.slots.Alloc()
	s.clients[id] = c
	s.mu.Unlock()
	defer s.remove(id)
	logger.Infof("client %d connected from %s", id, r.RemoteAddr)

	if err := c.send(Hello{Client: id, Title: s.title}); err != nil {
		logger.Warningf("client %d: %v", id, err)
		return
	}
	// Clients do not send anything meaningful; reading
	// detects disconnection.
	for {
		if _, _, err := conn.NextReader(); err != nil {
			logger.Infof("client %d disconnected", id)
			return
		}
	}
}

func (s *Server) remove(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[id]; ok {
		delete(s.clients, id)
		s.slots.Unset(id)
	}
}

// Clients returns the number of connected clients.
func (s *Server) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Broadcast sends v as JSON to every client.
// Clients that fail to receive it are disconnected.
func (s *Server) Broadcast(v any) {
	var failed []int
	s.mu.RLock()
	for id, c := range s.clients {
		if err := c.send(v); err != nil {
			logger.Warningf("client %d: %v", id, err)
			c.conn.Close()
			failed = append(failed, id)
		}
	}
	s.mu.RUnlock()
	for _, id := range failed {
		s.remove(id)
	}
}

// Serve listens on addr and broadcasts a tracer report
// every interval until ctx is done.
func (s *Server) Serve(ctx context.Context, addr string, interval time.Duration) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", addr)
	}
	return s.serve(ctx, ln, interval)
}

func (s *Server) serve(ctx context.Context, ln net.Listener, interval time.Duration) error {
	srv := &http.Server{Handler: s.Handler()}
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	logger.Noticef("streaming stats on ws://%s/ws", ln.Addr())

	tick := time.NewTicker(interval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			shut, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			srv.Shutdown(shut)
			s.closeAll()
			return nil
		case err := <-errc:
			return errors.Wrap(err, "stats server")
		case <-tick.C:
			if s.Clients() > 0 {
				s.Broadcast(s.tracer.Report())
			}
		}
	}
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.clients {
		c.conn.Close()
		delete(s.clients, id)
	}
	s.slots.Clear()
}
