package sqlite

import (
	"context"
	"fmt"

	"github.com/oleandergames/tradecraft/internal/platform/errors"
	"github.com/oleandergames/tradecraft/internal/story/storage"
)

// CommitTransition applies a choice transition as one transaction:
// node insert, choice resolution, mission changes, and the progress
// update. The progress write is conditional on the stored
// current_node_id still matching ExpectedNodeID; zero rows affected
// means another transition moved the player first, and everything
// rolls back with ConcurrentModification.
func (s *Store) CommitTransition(ctx context.Context, commit storage.TransitionCommit) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	progress := commit.Progress
	if progress.PlayerID == "" || progress.StoryID == "" {
		return fmt.Errorf("transition progress is incomplete")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if commit.NewNode != nil {
		if err := insertNode(ctx, tx, *commit.NewNode); err != nil {
			return err
		}
		if err := insertChoices(ctx, tx, commit.NewChoices); err != nil {
			return err
		}
	}

	if commit.ResolveChoice != nil {
		choice := *commit.ResolveChoice
		// A resolved destination is immutable: only the unresolved row
		// may gain one.
		result, err := tx.ExecContext(ctx, `
UPDATE choices SET destination_node_id = ?
WHERE source_node_id = ? AND id = ? AND destination_node_id = ''`,
			choice.DestinationNodeID, choice.SourceNodeID, choice.ID)
		if err != nil {
			return fmt.Errorf("resolve choice: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("resolve choice rows: %w", err)
		}
		if affected == 0 {
			return errors.WithMetadata(errors.CodeChoiceAlreadyResolved,
				"choice "+choice.ID+" was resolved by another transition",
				map[string]string{"choice_id": choice.ID})
		}
	}

	for _, mission := range commit.NewMissions {
		if err := insertMission(ctx, tx, mission); err != nil {
			return err
		}
	}
	for _, mission := range commit.UpdatedMissions {
		if err := updateMission(ctx, tx, mission); err != nil {
			return err
		}
	}

	result, err := tx.ExecContext(ctx, `
UPDATE player_progress SET
    current_node_id = ?, balances = ?, choice_history = ?,
    active_missions = ?, completed_missions = ?, failed_missions = ?,
    encountered_characters = ?, node_count = ?, last_active = ?
WHERE player_id = ? AND story_id = ? AND current_node_id = ?`,
		progress.CurrentNodeID, encodeJSON(progress.Balances), encodeJSON(progress.ChoiceHistory),
		encodeJSON(progress.ActiveMissions), encodeJSON(progress.CompletedMissions),
		encodeJSON(progress.FailedMissions), encodeJSON(progress.EncounteredCharacters),
		progress.NodeCount, toMillis(progress.LastActive),
		progress.PlayerID, progress.StoryID, commit.ExpectedNodeID)
	if err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update progress rows: %w", err)
	}
	if affected == 0 {
		return errors.WithMetadata(errors.CodeConcurrentModification,
			"player "+progress.PlayerID+" moved past node "+commit.ExpectedNodeID,
			map[string]string{"player_id": progress.PlayerID, "expected_node_id": commit.ExpectedNodeID})
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transition: %w", err)
	}
	return nil
}
