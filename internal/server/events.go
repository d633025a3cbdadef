package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/franbe7/XLBALL/internal/config"
	"github.com/franbe7/XLBALL/internal/constants"
	"github.com/franbe7/XLBALL/internal/domain"
	"github.com/franbe7/XLBALL/internal/middleware"
	"github.com/franbe7/XLBALL/internal/service"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

const maxEventBytes = 1 << 20

// Dispatcher runs one host event and reports whether chat should be delivered.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev domain.Event) (bool, error)
}

type EventServer struct {
	dispatcher Dispatcher
	cfg        *config.Config
	logger     zerolog.Logger
}

type eventResponse struct {
	Deliver bool `json:"deliver"`
}

func NewEventServer(room *service.Room, cfg *config.Config, logger zerolog.Logger) *EventServer {
	return newEventServer(room, cfg, logger)
}

func newEventServer(d Dispatcher, cfg *config.Config, logger zerolog.Logger) *EventServer {
	return &EventServer{
		dispatcher: d,
		cfg:        cfg,
		logger:     logger.With().Str("component", "ingress").Logger(),
	}
}

func (s *EventServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /events", s.handleEvent)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	c := cors.New(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})

	return middleware.RequestID(s.logger)(c.Handler(mux))
}

func (s *EventServer) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%s", s.cfg.ServerPort),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

func (s *EventServer) handleEvent(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	var ev domain.Event
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEventBytes))
	if err := dec.Decode(&ev); err != nil {
		logger.Warn().Err(err).Msg("malformed event")
		writeError(w, r, http.StatusBadRequest, "malformed event")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), constants.RequestTimeout)
	defer cancel()

	deliver, err := s.dispatcher.Dispatch(ctx, ev)
	switch {
	case errors.Is(err, domain.ErrInvalidEvent):
		logger.Warn().Err(err).Str("type", string(ev.Type)).Msg("rejected event")
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		logger.Error().Err(err).Str("type", string(ev.Type)).Msg("failed to dispatch event")
		writeError(w, r, http.StatusServiceUnavailable, "room unavailable")
		return
	}

	logger.Debug().Str("type", string(ev.Type)).Bool("deliver", deliver).Msg("event handled")
	writeJSON(w, http.StatusOK, eventResponse{Deliver: deliver})
}

func (s *EventServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, map[string]string{
		"error":     msg,
		"requestId": middleware.GetRequestID(r.Context()),
	})
}
