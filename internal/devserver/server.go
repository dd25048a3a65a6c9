// Package devserver is an in-memory implementation of the carbuyer REST API
// for local runs and end-to-end tests of the client.
package devserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/carbuyer/internal/logging"
)

type Server struct {
	cfg    *Config
	store  *Store
	log    logging.Logger
	secret []byte

	mu     sync.Mutex
	delays map[string]time.Duration

	handler http.Handler
}

func NewServer(cfg *Config, log logging.Logger) *Server {
	if log == nil {
		log = logging.Nop()
	}
	s := &Server{
		cfg:    cfg,
		store:  NewStore(cfg.InboxDomain, cfg.SMSNumber),
		log:    log.With("module", "devserver"),
		secret: []byte(cfg.Secret),
		delays: make(map[string]time.Duration),
	}
	s.handler = NewRouter(s)
	return s
}

func (s *Server) Store() *Store { return s.store }

// Handler serves the API; mount it on httptest.NewServer in tests.
func (s *Server) Handler() http.Handler { return s.handler }

// SetDelay makes every request to path wait d before it is handled. A zero
// d removes the delay.
func (s *Server) SetDelay(path string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d <= 0 {
		delete(s.delays, path)
		return
	}
	s.delays[path] = d
}

func (s *Server) delayFor(path string) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.delays[path]
}

// Run listens on the configured address until ctx is done, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}

	srv := &http.Server{Handler: s.handler, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		s.log.Info(ctx, "Stopping dev server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.Info(ctx, "Starting dev server", "address", listen.Addr().String())
	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
