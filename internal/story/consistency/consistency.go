// Package consistency validates candidate branch metadata against the
// role and mission invariants of a player's story before commit.
package consistency

import (
	"context"

	"github.com/oleandergames/tradecraft/internal/platform/errors"
	"github.com/oleandergames/tradecraft/internal/story/domain"
)

// CharacterSource resolves character reference data for role checks.
type CharacterSource interface {
	GetCharacter(ctx context.Context, characterID string) (domain.Character, error)
}

// Enforcer checks candidate node metadata before it reaches storage.
// Violations are reported, never corrected.
type Enforcer struct {
	characters CharacterSource
}

// NewEnforcer creates an Enforcer backed by a character repository.
func NewEnforcer(characters CharacterSource) *Enforcer {
	return &Enforcer{characters: characters}
}

// Validate checks the candidate metadata against the player's current
// state. A nil return means the metadata may be committed.
func (e *Enforcer) Validate(ctx context.Context, progress *domain.PlayerProgress, meta domain.BranchMetadata) error {
	if err := e.validateInteractions(ctx, progress, meta); err != nil {
		return err
	}
	return validateMissionDeltas(progress, meta.MissionDeltas)
}

func (e *Enforcer) validateInteractions(ctx context.Context, progress *domain.PlayerProgress, meta domain.BranchMetadata) error {
	for _, interaction := range meta.Interactions {
		role := interaction.Role
		if (role == "" || role == domain.RoleUndetermined) && interaction.CharacterID != "" && e.characters != nil {
			character, err := e.characters.GetCharacter(ctx, interaction.CharacterID)
			if err == nil {
				role = character.Role
			}
		}

		switch role {
		case domain.RoleVillain:
			if !interaction.Opposition {
				return errors.WithMetadata(errors.CodeConsistencyVillainNoOpposition,
					"villain interaction lacks opposition",
					map[string]string{"character_id": interaction.CharacterID, "character": interaction.CharacterName})
			}
		case domain.RoleMissionGiver:
			firstEncounter := true
			for _, id := range progress.EncounteredCharacters {
				if id == interaction.CharacterID {
					firstEncounter = false
					break
				}
			}
			if firstEncounter && len(meta.MissionDeltas) == 0 {
				return errors.WithMetadata(errors.CodeConsistencyGiverNoMission,
					"mission giver appeared without a mission delta",
					map[string]string{"character_id": interaction.CharacterID, "character": interaction.CharacterName})
			}
		}
	}
	return nil
}

func validateMissionDeltas(progress *domain.PlayerProgress, deltas []domain.MissionDelta) error {
	completed := make(map[string]bool)
	failed := make(map[string]bool)

	for _, delta := range deltas {
		switch delta.Status {
		case domain.DeltaCompleted:
			completed[delta.MissionID] = true
		case domain.DeltaFailed:
			failed[delta.MissionID] = true
		}
	}
	for missionID := range completed {
		if failed[missionID] {
			return errors.WithMetadata(errors.CodeConsistencyMissionBothTerminal,
				"mission marked both completed and failed",
				map[string]string{"mission_id": missionID})
		}
	}

	for _, delta := range deltas {
		switch delta.Status {
		case domain.DeltaCompleted, domain.DeltaFailed:
			if delta.MissionID != "" && !progress.HasActiveMission(delta.MissionID) {
				return errors.WithMetadata(errors.CodeConsistencyMissionUnknown,
					"terminal delta for a mission not in the active set",
					map[string]string{"mission_id": delta.MissionID, "status": string(delta.Status)})
			}
		case domain.DeltaProgressed:
			if delta.ProgressDelta < 0 {
				return errors.WithMetadata(errors.CodeConsistencyProgressRegressed,
					"negative progress delta on an active mission",
					map[string]string{"mission_id": delta.MissionID})
			}
		}
	}
	return nil
}
