// Package api exposes the story engine over HTTP. Handlers are thin
// plumbing: decode, call the engine, encode the envelope.
package api

import (
	"context"
	"net/http"

	"github.com/oleandergames/tradecraft/internal/platform/metrics"
	"github.com/oleandergames/tradecraft/internal/story/domain"
	"github.com/oleandergames/tradecraft/internal/story/engine"
)

// StoryEngine is the engine surface the handlers consume.
type StoryEngine interface {
	ResolveState(ctx context.Context, playerID, storyID string) (engine.CurrentNodeSummary, error)
	ApplyChoice(ctx context.Context, playerID, storyID string, input engine.ApplyChoiceInput) (engine.TransitionResult, error)
	StartStory(ctx context.Context, playerID string, input engine.StartStoryInput) (engine.TransitionResult, error)
	Missions(ctx context.Context, playerID, storyID string) (engine.MissionList, error)
	ExchangeCurrency(ctx context.Context, playerID, storyID string, from, to domain.Currency, amount int) (int, error)
}

// Server routes HTTP requests to the engine.
type Server struct {
	engine StoryEngine
	mux    *http.ServeMux
}

// NewServer builds the HTTP surface over an engine.
func NewServer(storyEngine StoryEngine) *Server {
	s := &Server{
		engine: storyEngine,
		mux:    http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.Handle("GET /metrics", metrics.Handler())
	s.mux.HandleFunc("POST /v1/stories", s.handleStartStory)
	s.mux.HandleFunc("GET /v1/state", s.handleResolveState)
	s.mux.HandleFunc("POST /v1/choices", s.handleApplyChoice)
	s.mux.HandleFunc("GET /v1/missions", s.handleMissions)
	s.mux.HandleFunc("POST /v1/exchange", s.handleExchange)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"success"}`))
}
