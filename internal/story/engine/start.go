package engine

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/oleandergames/tradecraft/internal/platform/errors"
	"github.com/oleandergames/tradecraft/internal/story/domain"
	"github.com/oleandergames/tradecraft/internal/story/generate"
	"github.com/oleandergames/tradecraft/internal/story/storage"
)

// StartStoryInput describes a new story for a player.
type StartStoryInput struct {
	Title       string
	Protagonist domain.Protagonist
	Parameters  domain.StoryParameters
	// Mission seeds the opening objective. Blank objective means no
	// opening mission.
	MissionObjective string
	MissionGiverID   string
}

// StartStory creates a story, its root node, fresh player progress, and
// the opening mission. It is the degenerate transition that produces
// only a root: generation runs with no ancestor context and the commit
// path is the same one ApplyChoice uses.
func (e *Engine) StartStory(ctx context.Context, playerID string, input StartStoryInput) (TransitionResult, error) {
	ctx, span := e.tracer.Start(ctx, "engine.StartStory")
	defer span.End()

	story, err := domain.CreateStory(domain.CreateStoryInput{
		Title:       input.Title,
		Protagonist: input.Protagonist,
		Parameters:  input.Parameters,
	}, e.now, e.newID)
	if err != nil {
		return TransitionResult{}, err
	}

	segment, err := e.generator.Generate(ctx, generate.Request{
		Protagonist: story.Protagonist,
		Parameters:  story.Parameters,
		Opening:     true,
	})
	if err != nil {
		return TransitionResult{}, err
	}

	now := e.now().UTC()
	root, err := domain.CreateNode(domain.CreateNodeInput{
		StoryID:       story.ID,
		NarrativeText: segment.NarrativeText,
		GeneratedByAI: true,
		Metadata: domain.BranchMetadata{
			Choices:      segment.Choices,
			Interactions: segment.Interactions,
			Protagonist:  story.Protagonist,
			Parameters:   story.Parameters,
		},
	}, e.now, e.newID)
	if err != nil {
		if stderrors.Is(err, domain.ErrEmptyNarrativeText) {
			return TransitionResult{}, errors.Wrap(errors.CodeNodeEmptyText, "opening segment carries no narrative text", err)
		}
		return TransitionResult{}, err
	}

	offered := make([]domain.Choice, 0, len(segment.Choices))
	for i, record := range segment.Choices {
		choice, err := domain.ChoiceFromRecord(root.ID, record, i, now)
		if err != nil {
			continue
		}
		offered = append(offered, choice)
	}

	if err := e.store.CreateStory(ctx, story, root, offered); err != nil {
		return TransitionResult{}, err
	}
	story.RootNodeID = root.ID

	progress, err := domain.NewPlayerProgress(playerID, story.ID, root.ID, e.now)
	if err != nil {
		return TransitionResult{}, err
	}

	var missions []domain.Mission
	if input.MissionObjective != "" {
		mission, err := domain.CreateMission(domain.CreateMissionInput{
			PlayerID:       progress.PlayerID,
			StoryID:        story.ID,
			Title:          input.MissionObjective,
			Objective:      input.MissionObjective,
			GiverID:        input.MissionGiverID,
			RewardCurrency: domain.CurrencyDiamond,
			RewardAmount:   100,
		}, func() time.Time { return now }, e.newID)
		if err != nil {
			if stderrors.Is(err, domain.ErrEmptyObjective) {
				return TransitionResult{}, errors.WithMetadata(errors.CodeMissionEmptyObjective, "opening mission has a blank objective", map[string]string{"player_id": progress.PlayerID})
			}
			return TransitionResult{}, err
		}
		if err := progress.TrackMission(mission.ID, mission.Status); err != nil {
			return TransitionResult{}, err
		}
		missions = append(missions, mission)
	}

	if err := e.store.CreateProgress(ctx, progress); err != nil {
		return TransitionResult{}, err
	}
	if len(missions) > 0 {
		// The opening mission rides the same commit machinery as a
		// regular transition, guarded by the root pointer.
		if err := e.commit(ctx, storage.TransitionCommit{
			Progress:       progress,
			ExpectedNodeID: root.ID,
			NewMissions:    missions,
		}); err != nil {
			return TransitionResult{}, err
		}
	}

	return TransitionResult{Node: root, Choices: offered, Progress: progress}, nil
}
