package server

import (
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/runnerr0/histview/internal/artifact"
)

// session is one uploaded artifact and the Engine bound to it. mu
// serializes calls into engine.
type session struct {
	id       string
	filename string
	dir      string
	created  time.Time

	mu     sync.Mutex
	engine *artifact.Engine
}

// close releases the Engine and removes the upload directory.
func (s *session) close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.engine.Close()
	if rmErr := os.RemoveAll(s.dir); err == nil {
		err = rmErr
	}
	return err
}

// registry tracks live sessions in upload order, evicting the oldest once
// more than max are held.
type registry struct {
	mu     sync.Mutex
	max    int
	byID   map[string]*session
	order  []string
	logger *slog.Logger
}

func newRegistry(max int, logger *slog.Logger) *registry {
	if max < 1 {
		max = 1
	}
	return &registry{
		max:    max,
		byID:   make(map[string]*session),
		logger: logger,
	}
}

// add registers s as the most recent session.
func (r *registry) add(s *session) {
	r.mu.Lock()
	r.byID[s.id] = s
	r.order = append(r.order, s.id)

	var evicted []*session
	for len(r.order) > r.max {
		oldest := r.order[0]
		r.order = r.order[1:]
		evicted = append(evicted, r.byID[oldest])
		delete(r.byID, oldest)
	}
	r.mu.Unlock()

	for _, old := range evicted {
		if err := old.close(); err != nil {
			r.logger.Warn("closing evicted session", "session", old.id, "error", err)
		}
		r.logger.Info("session evicted", "session", old.id, "filename", old.filename, "age", time.Since(old.created).Round(time.Second))
	}
}

// get returns the session with the given id, or the most recent one when
// id is empty.
func (r *registry) get(id string) (*session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id == "" {
		if len(r.order) == 0 {
			return nil, false
		}
		id = r.order[len(r.order)-1]
	}
	s, ok := r.byID[id]
	return s, ok
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

// closeAll closes every session and empties the registry.
func (r *registry) closeAll() {
	r.mu.Lock()
	sessions := make([]*session, 0, len(r.order))
	for _, id := range r.order {
		sessions = append(sessions, r.byID[id])
	}
	r.byID = make(map[string]*session)
	r.order = nil
	r.mu.Unlock()

	for _, s := range sessions {
		if err := s.close(); err != nil {
			r.logger.Warn("closing session", "session", s.id, "error", err)
		}
	}
}
