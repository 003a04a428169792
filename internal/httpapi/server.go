// Package httpapi is the thin REST/WebSocket adapter over the store and
// trigger engine: boost/stream listings, trigger/settings/numerology CRUD,
// an outgoing-boost endpoint, and a /ws relay of the process-wide event bus.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/Podcastindex-org/helipad-sub000/internal/eventbus"
	"github.com/Podcastindex-org/helipad-sub000/internal/lnclient"
	"github.com/Podcastindex-org/helipad-sub000/internal/outboost"
	"github.com/Podcastindex-org/helipad-sub000/internal/store"
	"github.com/Podcastindex-org/helipad-sub000/internal/triggers"
	"github.com/Podcastindex-org/helipad-sub000/pkg/logger"
	"go.uber.org/zap"
)

// Config is the adapter's own configuration, populated via copier from the
// root HelipadConfig the way cmd/api/main.go populates database.Config.
type Config struct {
	ListenAddr string
}

// Server wires the store, trigger engine, event bus, and an outgoing
// lnclient.Client behind an http.Server.
type Server struct {
	cfg      Config
	store    *store.Store
	engine   *triggers.Engine
	bus      *eventbus.Bus
	client   lnclient.Client
	resolver *outboost.Resolver

	httpServer *http.Server
}

// New builds a Server. client may be nil if outgoing boosts are not
// configured; the POST /boost handler then always fails with 503.
func New(cfg Config, st *store.Store, engine *triggers.Engine, bus *eventbus.Bus, client lnclient.Client) *Server {
	s := &Server{
		cfg:      cfg,
		store:    st,
		engine:   engine,
		bus:      bus,
		client:   client,
		resolver: outboost.NewResolver(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /boosts", s.handleListBoosts)
	mux.HandleFunc("GET /streams", s.handleListStreams)
	mux.HandleFunc("GET /triggers", s.handleListTriggers)
	mux.HandleFunc("POST /triggers", s.handleSaveTrigger)
	mux.HandleFunc("DELETE /triggers/{id}", s.handleDeleteTrigger)
	mux.HandleFunc("POST /triggers/{id}/test", s.handleTestTrigger)
	mux.HandleFunc("GET /settings", s.handleGetSettings)
	mux.HandleFunc("POST /settings", s.handleSaveSettings)
	mux.HandleFunc("GET /numerology", s.handleListNumerology)
	mux.HandleFunc("POST /numerology", s.handleSaveNumerology)
	mux.HandleFunc("DELETE /numerology/{id}", s.handleDeleteNumerology)
	mux.HandleFunc("POST /boost", s.handleSendBoost)
	mux.HandleFunc("GET /ws", s.handleWebSocket)

	s.httpServer = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Run starts serving and blocks until ctx is cancelled, then shuts the
// server down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("httpapi: listening", zap.String("addr", s.cfg.ListenAddr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
