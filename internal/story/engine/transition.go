package engine

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/oleandergames/tradecraft/internal/platform/errors"
	"github.com/oleandergames/tradecraft/internal/platform/metrics"
	"github.com/oleandergames/tradecraft/internal/story/domain"
	"github.com/oleandergames/tradecraft/internal/story/economy"
	"github.com/oleandergames/tradecraft/internal/story/generate"
	"github.com/oleandergames/tradecraft/internal/story/storage"
)

// ApplyChoiceInput selects the action to apply: an existing choice by
// id, or free text for an improvised action. Free-text actions carry no
// cost and become a synthetic choice under the current node.
type ApplyChoiceInput struct {
	ChoiceID string
	FreeText string
}

// ApplyChoice turns a player's selected action into durable state. The
// steps run in order, each a hard precondition for the next: choice
// validation (replays short-circuit to the commit), funds check, digest
// plus generation, consistency enforcement, atomic commit.
func (e *Engine) ApplyChoice(ctx context.Context, playerID, storyID string, input ApplyChoiceInput) (TransitionResult, error) {
	ctx, span := e.tracer.Start(ctx, "engine.ApplyChoice")
	defer span.End()

	result, err := e.applyChoice(ctx, playerID, storyID, input)
	metrics.Transitions.WithLabelValues(transitionOutcome(result, err)).Inc()
	return result, err
}

func transitionOutcome(result TransitionResult, err error) string {
	if err == nil {
		if result.Replayed {
			return metrics.OutcomeReplayed
		}
		return metrics.OutcomeCommitted
	}
	switch errors.CodeOf(err) {
	case errors.CodeInsufficientFunds:
		return metrics.OutcomeInsufficient
	case errors.CodeConcurrentModification, errors.CodeChoiceAlreadyResolved:
		return metrics.OutcomeConflicted
	case errors.CodeGenerationFailed:
		return metrics.OutcomeFailed
	default:
		if errors.CodeOf(err).Retryable() {
			return metrics.OutcomeRejected
		}
		return metrics.OutcomeFailed
	}
}

func (e *Engine) applyChoice(ctx context.Context, playerID, storyID string, input ApplyChoiceInput) (TransitionResult, error) {
	progress, err := e.store.GetProgress(ctx, playerID, storyID)
	if err != nil {
		return TransitionResult{}, err
	}
	// The commit guard compares against the pointer as stored, not the
	// node we resolve to. Capture it before anything mutates progress so
	// a recovered stale pointer can still win the compare-and-swap.
	expected := progress.CurrentNodeID
	current, err := e.resolveNode(ctx, progress)
	if err != nil {
		return TransitionResult{}, err
	}

	// Step 1: validate the action against the current node.
	choice, synthetic, err := e.resolveChoice(ctx, current, input)
	if err != nil {
		return TransitionResult{}, err
	}
	if choice.Resolved() {
		return e.replayTransition(ctx, progress, expected, choice)
	}

	// Step 2: fail fast on funds before any external call.
	if err := economy.ValidateCost(&progress, choice.Cost); err != nil {
		return TransitionResult{}, err
	}

	// Step 3: synthesize context and generate the continuation.
	story, err := e.store.GetStory(ctx, storyID)
	if err != nil {
		return TransitionResult{}, err
	}
	contextDigest, err := e.synth.Synthesize(ctx, current.ID)
	if err != nil {
		return TransitionResult{}, err
	}
	segment, err := e.generator.Generate(ctx, generate.Request{
		ContextDigest: contextDigest.Text,
		ChoiceText:    choice.Text,
		Protagonist:   story.Protagonist,
		Parameters:    story.Parameters,
		ActiveMission: e.firstActiveMission(ctx, progress),
		Characters:    e.knownCharacters(ctx),
	})
	if err != nil {
		return TransitionResult{}, err
	}

	// Step 4: enforce role and mission invariants before commit.
	if err := e.enforcer.Validate(ctx, &progress, segmentMetadata(segment, choice)); err != nil {
		return TransitionResult{}, err
	}

	// Step 5: build and commit the transition atomically.
	return e.commitTransition(ctx, story, progress, expected, current, choice, synthetic, segment)
}

// resolveChoice maps the input to a Choice under the current node. Free
// text produces an unresolved synthetic choice the commit will persist.
func (e *Engine) resolveChoice(ctx context.Context, current domain.StoryNode, input ApplyChoiceInput) (domain.Choice, bool, error) {
	if id := strings.TrimSpace(input.ChoiceID); id != "" {
		choice, err := e.store.GetChoice(ctx, current.ID, id)
		if err != nil {
			return domain.Choice{}, false, err
		}
		return choice, false, nil
	}

	text := strings.TrimSpace(input.FreeText)
	if text == "" {
		return domain.Choice{}, false, errors.New(errors.CodeChoiceNotFound, "no choice id or free text provided")
	}
	choiceID, err := e.newID()
	if err != nil {
		return domain.Choice{}, false, fmt.Errorf("generate choice id: %w", err)
	}
	return domain.Choice{
		ID:           choiceID,
		SourceNodeID: current.ID,
		Text:         text,
		Kind:         domain.ChoiceDirect,
		CreatedAt:    e.now().UTC(),
	}, true, nil
}

// replayTransition moves the player along an already-resolved edge. No
// generation happens; the cost still applies and funds are still
// checked so balances can never go negative.
func (e *Engine) replayTransition(ctx context.Context, progress domain.PlayerProgress, expected string, choice domain.Choice) (TransitionResult, error) {
	if err := economy.Deduct(&progress, choice.Cost); err != nil {
		return TransitionResult{}, err
	}

	destination, err := e.store.GetNode(ctx, choice.DestinationNodeID)
	if err != nil {
		return TransitionResult{}, err
	}

	// The cast met on the original branch counts as met for the
	// replaying player too.
	for _, interaction := range destination.Metadata.Interactions {
		progress.RecordEncounter(interaction.CharacterID)
	}

	progress.MoveTo(choice.ID, destination.ID, e.now())
	commit := storage.TransitionCommit{
		Progress:       progress,
		ExpectedNodeID: expected,
	}
	if err := e.commit(ctx, commit); err != nil {
		return TransitionResult{}, err
	}

	choices, err := e.store.GetChoices(ctx, destination.ID)
	if err != nil {
		return TransitionResult{}, err
	}
	return TransitionResult{Node: destination, Choices: choices, Progress: progress, Replayed: true}, nil
}

func segmentMetadata(segment generate.Segment, choice domain.Choice) domain.BranchMetadata {
	record := choice.Record()
	return domain.BranchMetadata{
		SourceChoice:  &record,
		Choices:       segment.Choices,
		Interactions:  segment.Interactions,
		MissionDeltas: segment.MissionDeltas,
	}
}

func (e *Engine) commitTransition(ctx context.Context, story domain.Story, progress domain.PlayerProgress, expected string, current domain.StoryNode, choice domain.Choice, synthetic bool, segment generate.Segment) (TransitionResult, error) {
	now := e.now().UTC()

	node, err := domain.CreateNode(domain.CreateNodeInput{
		StoryID:       story.ID,
		ParentID:      current.ID,
		NarrativeText: segment.NarrativeText,
		IsEndpoint:    segment.IsEndpoint,
		GeneratedByAI: true,
		Metadata:      segmentMetadata(segment, choice),
	}, e.now, e.newID)
	if err != nil {
		if stderrors.Is(err, domain.ErrEmptyNarrativeText) {
			return TransitionResult{}, errors.Wrap(errors.CodeNodeEmptyText, "generated segment carries no narrative text", err)
		}
		return TransitionResult{}, err
	}

	if err := economy.Deduct(&progress, choice.Cost); err != nil {
		return TransitionResult{}, err
	}
	progress.MoveTo(choice.ID, node.ID, now)
	for _, interaction := range segment.Interactions {
		progress.RecordEncounter(interaction.CharacterID)
	}

	newMissions, updatedMissions, err := e.applyMissionDeltas(ctx, &progress, story, segment, now)
	if err != nil {
		return TransitionResult{}, err
	}

	offered := make([]domain.Choice, 0, len(segment.Choices))
	for i, record := range segment.Choices {
		next, err := domain.ChoiceFromRecord(node.ID, record, i, now)
		if err != nil {
			continue
		}
		offered = append(offered, next)
	}

	commit := storage.TransitionCommit{
		NewNode:         &node,
		NewChoices:      offered,
		Progress:        progress,
		ExpectedNodeID:  expected,
		NewMissions:     newMissions,
		UpdatedMissions: updatedMissions,
	}
	if synthetic {
		// Free-text actions persist their synthetic choice alongside
		// the node, already resolved toward it.
		choice.DestinationNodeID = node.ID
		commit.NewChoices = append([]domain.Choice{choice}, offered...)
	} else {
		resolved := choice
		resolved.DestinationNodeID = node.ID
		commit.ResolveChoice = &resolved
	}

	if err := e.commit(ctx, commit); err != nil {
		return TransitionResult{}, err
	}
	return TransitionResult{Node: node, Choices: offered, Progress: progress}, nil
}
