// Package engine coordinates the story core: state resolution, choice
// transitions, missions, and currency exchange. It owns no state of its
// own; everything durable lives behind the storage interfaces.
package engine

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/oleandergames/tradecraft/internal/platform/timeouts"
	"github.com/oleandergames/tradecraft/internal/story/consistency"
	"github.com/oleandergames/tradecraft/internal/story/digest"
	"github.com/oleandergames/tradecraft/internal/story/domain"
	"github.com/oleandergames/tradecraft/internal/story/generate"
	"github.com/oleandergames/tradecraft/internal/story/storage"
)

// Engine wires the story components together.
type Engine struct {
	store     storage.Store
	synth     *digest.Synthesizer
	enforcer  *consistency.Enforcer
	generator generate.Generator
	tracer    trace.Tracer

	now   func() time.Time
	newID func() (string, error)
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock injects a clock, used by tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator injects an id generator, used by tests.
func WithIDGenerator(gen func() (string, error)) Option {
	return func(e *Engine) { e.newID = gen }
}

// New builds an Engine over a store and a generation provider.
func New(store storage.Store, generator generate.Generator, opts ...Option) *Engine {
	e := &Engine{
		store:     store,
		synth:     digest.NewSynthesizer(store),
		enforcer:  consistency.NewEnforcer(store),
		generator: generator,
		tracer:    otel.Tracer("tradecraft/engine"),
		now:       time.Now,
		newID:     domain.NewID,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CurrentNodeSummary is what a client needs to render a decision point.
type CurrentNodeSummary struct {
	Node     domain.StoryNode
	Choices  []domain.Choice
	Balances map[domain.Currency]int
	Missions MissionSets
}

// MissionSets groups a player's mission ids by status.
type MissionSets struct {
	Active    []string
	Completed []string
	Failed    []string
}

// TransitionResult is the outcome of one applied choice or story start.
type TransitionResult struct {
	Node     domain.StoryNode
	Choices  []domain.Choice
	Progress domain.PlayerProgress
	Replayed bool
}

// commit writes a transition under the storage commit deadline so a
// wedged database cannot hold a player's request open indefinitely.
func (e *Engine) commit(ctx context.Context, commit storage.TransitionCommit) error {
	ctx, cancel := context.WithTimeout(ctx, timeouts.StorageCommit)
	defer cancel()
	return e.store.CommitTransition(ctx, commit)
}

func missionSets(progress domain.PlayerProgress) MissionSets {
	return MissionSets{
		Active:    progress.ActiveMissions,
		Completed: progress.CompletedMissions,
		Failed:    progress.FailedMissions,
	}
}
