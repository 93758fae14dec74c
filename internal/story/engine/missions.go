package engine

import (
	"context"
	stderrors "errors"
	"log"
	"time"

	"github.com/oleandergames/tradecraft/internal/platform/errors"
	"github.com/oleandergames/tradecraft/internal/story/domain"
	"github.com/oleandergames/tradecraft/internal/story/economy"
	"github.com/oleandergames/tradecraft/internal/story/generate"
)

// MissionList groups a player's missions by status.
type MissionList struct {
	Active    []domain.Mission
	Completed []domain.Mission
	Failed    []domain.Mission
}

// Missions lists a player's missions for one story, grouped by status.
func (e *Engine) Missions(ctx context.Context, playerID, storyID string) (MissionList, error) {
	if _, err := e.store.GetProgress(ctx, playerID, storyID); err != nil {
		return MissionList{}, err
	}
	missions, err := e.store.ListMissions(ctx, playerID, storyID)
	if err != nil {
		return MissionList{}, err
	}

	var list MissionList
	for _, mission := range missions {
		switch mission.Status {
		case domain.MissionCompleted:
			list.Completed = append(list.Completed, mission)
		case domain.MissionFailed:
			list.Failed = append(list.Failed, mission)
		default:
			list.Active = append(list.Active, mission)
		}
	}
	return list, nil
}

// ExchangeCurrency converts between two currencies at the fixed rate
// table and persists the new balances. Returns the converted amount.
func (e *Engine) ExchangeCurrency(ctx context.Context, playerID, storyID string, from, to domain.Currency, amount int) (int, error) {
	progress, err := e.store.GetProgress(ctx, playerID, storyID)
	if err != nil {
		return 0, err
	}
	// Snapshot the balances as read so the store can reject the write
	// if another exchange landed in between.
	expected := make(map[domain.Currency]int, len(progress.Balances))
	for currency, balance := range progress.Balances {
		expected[currency] = balance
	}
	converted, err := economy.Exchange(&progress, from, to, amount)
	if err != nil {
		return 0, err
	}
	if err := e.store.UpdateBalances(ctx, playerID, storyID, progress.Balances, expected); err != nil {
		return 0, err
	}
	return converted, nil
}

// applyMissionDeltas folds a segment's mission deltas into the player's
// missions. Known missions are updated; a delta for an unknown mission
// creates one (the mission-giver path). Completion pays the reward into
// balances inside the same commit.
func (e *Engine) applyMissionDeltas(ctx context.Context, progress *domain.PlayerProgress, story domain.Story, segment generate.Segment, now time.Time) ([]domain.Mission, []domain.Mission, error) {
	var created, updated []domain.Mission

	for _, delta := range segment.MissionDeltas {
		mission, err := e.store.GetMission(ctx, delta.MissionID)
		switch {
		case err == nil && mission.PlayerID == progress.PlayerID:
			if applyErr := mission.Apply(delta, now); applyErr != nil {
				code := errors.CodeMissionStatusFinal
				if stderrors.Is(applyErr, domain.ErrProgressRegressed) {
					code = errors.CodeMissionInvalidProgress
				}
				return nil, nil, errors.Wrap(code,
					"mission "+mission.ID+" rejected delta", applyErr)
			}
			if mission.Status == domain.MissionCompleted {
				economy.Credit(progress, mission.RewardCurrency, mission.RewardAmount)
			}
			if trackErr := progress.TrackMission(mission.ID, mission.Status); trackErr != nil {
				return nil, nil, trackErr
			}
			updated = append(updated, mission)

		case errors.CodeOf(err) == errors.CodeMissionNotFound:
			// The enforcer already rejected terminal deltas for
			// unknown missions; what reaches here is an assignment.
			mission, createErr := e.newMissionFromDelta(progress, story, segment, delta, now)
			if createErr != nil {
				log.Printf("skip mission delta %s: %v", delta.MissionID, createErr)
				continue
			}
			if trackErr := progress.TrackMission(mission.ID, mission.Status); trackErr != nil {
				return nil, nil, trackErr
			}
			created = append(created, mission)

		case err != nil:
			return nil, nil, err
		}
	}
	return created, updated, nil
}

func (e *Engine) newMissionFromDelta(progress *domain.PlayerProgress, story domain.Story, segment generate.Segment, delta domain.MissionDelta, now time.Time) (domain.Mission, error) {
	objective := delta.Note
	if objective == "" {
		objective = "Pursue the lead from the latest encounter"
	}
	giverID := ""
	for _, interaction := range segment.Interactions {
		if interaction.Role == domain.RoleMissionGiver {
			giverID = interaction.CharacterID
			break
		}
	}

	mission, err := domain.CreateMission(domain.CreateMissionInput{
		PlayerID:       progress.PlayerID,
		StoryID:        story.ID,
		Title:          objective,
		Objective:      objective,
		GiverID:        giverID,
		RewardCurrency: domain.CurrencyDiamond,
		RewardAmount:   50,
	}, func() time.Time { return now }, e.newID)
	if err != nil {
		return domain.Mission{}, err
	}
	if delta.MissionID != "" {
		mission.ID = delta.MissionID
	}
	if delta.Status == domain.DeltaProgressed {
		if err := mission.AdvanceProgress(delta.ProgressDelta, delta.Note, now); err != nil {
			return domain.Mission{}, err
		}
	}
	return mission, nil
}

// firstActiveMission fetches the player's first active mission for
// prompt context. Failures degrade to no mission context.
func (e *Engine) firstActiveMission(ctx context.Context, progress domain.PlayerProgress) *domain.Mission {
	if len(progress.ActiveMissions) == 0 {
		return nil
	}
	mission, err := e.store.GetMission(ctx, progress.ActiveMissions[0])
	if err != nil {
		return nil
	}
	return &mission
}

// knownCharacters lists seeded characters for prompt context. Failures
// degrade to an empty cast.
func (e *Engine) knownCharacters(ctx context.Context) []domain.Character {
	characters, err := e.store.ListCharacters(ctx)
	if err != nil {
		return nil
	}
	return characters
}
