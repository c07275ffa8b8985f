// Package monitor serves a small HTTP view of past and running modem
// sessions.  Observability only; nothing in here feeds back into a session.
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/softmodem/gofsk/pkg/fsk/session"
)

type sessionRecord struct {
	ID    int           `json:"id"`
	Stats session.Stats `json:"stats"`
}

type Server struct {
	mu       sync.RWMutex
	sessions []sessionRecord
	nextID   int
	started  time.Time
	srv      *http.Server
}

func NewServer(port int) *Server {
	return &Server{
		srv:     &http.Server{Addr: fmt.Sprintf(":%d", port)},
		started: time.Now(),
	}
}

// Record remembers one finished session for the session list.
func (s *Server) Record(st session.Stats) {
	s.mu.Lock()
	s.sessions = append(s.sessions, sessionRecord{ID: s.nextID, Stats: st})
	s.nextID++
	s.mu.Unlock()
}

func (s *Server) handler() http.Handler {
	handler := httprouter.New()

	handler.GET("/", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		s.mu.RLock()
		defer s.mu.RUnlock()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"uptime":   time.Since(s.started).String(),
			"sessions": s.sessions,
		})
	})

	handler.GET("/sessions/:id", func(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
		id, err := strconv.Atoi(params.ByName("id"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		s.mu.RLock()
		defer s.mu.RUnlock()

		for _, rec := range s.sessions {
			if rec.ID == id {
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(rec)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	})

	return handler
}

func (s *Server) Run(ctx context.Context) error {
	s.srv.Handler = s.handler()

	go func() {
		<-ctx.Done()
		s.srv.Shutdown(context.Background())
	}()

	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
