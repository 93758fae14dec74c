package sqlite

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/oleandergames/tradecraft/internal/platform/errors"
	"github.com/oleandergames/tradecraft/internal/story/domain"
)

// CreateProgress inserts fresh progress for a player and story.
func (s *Store) CreateProgress(ctx context.Context, progress domain.PlayerProgress) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(progress.PlayerID) == "" {
		return fmt.Errorf("player id is required")
	}
	if _, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO player_progress (
    player_id, story_id, current_node_id, balances, choice_history,
    active_missions, completed_missions, failed_missions,
    encountered_characters, node_count, created_at, last_active
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		progress.PlayerID, progress.StoryID, progress.CurrentNodeID,
		encodeJSON(progress.Balances), encodeJSON(progress.ChoiceHistory),
		encodeJSON(progress.ActiveMissions), encodeJSON(progress.CompletedMissions),
		encodeJSON(progress.FailedMissions), encodeJSON(progress.EncounteredCharacters),
		progress.NodeCount, toMillis(progress.CreatedAt), toMillis(progress.LastActive)); err != nil {
		return fmt.Errorf("insert progress: %w", err)
	}
	return nil
}

const progressColumns = `player_id, story_id, current_node_id, balances, choice_history,
active_missions, completed_missions, failed_missions,
encountered_characters, node_count, created_at, last_active`

func scanProgress(row interface{ Scan(...any) error }) (domain.PlayerProgress, error) {
	var progress domain.PlayerProgress
	var balances, history, active, completed, failed, encountered string
	var createdAt, lastActive int64
	if err := row.Scan(&progress.PlayerID, &progress.StoryID, &progress.CurrentNodeID,
		&balances, &history, &active, &completed, &failed, &encountered,
		&progress.NodeCount, &createdAt, &lastActive); err != nil {
		return domain.PlayerProgress{}, err
	}
	decodeJSON(balances, &progress.Balances)
	decodeJSON(history, &progress.ChoiceHistory)
	decodeJSON(active, &progress.ActiveMissions)
	decodeJSON(completed, &progress.CompletedMissions)
	decodeJSON(failed, &progress.FailedMissions)
	decodeJSON(encountered, &progress.EncounteredCharacters)
	progress.CreatedAt = fromMillis(createdAt)
	progress.LastActive = fromMillis(lastActive)
	return progress, nil
}

// GetProgress returns the progress for a player and story.
func (s *Store) GetProgress(ctx context.Context, playerID, storyID string) (domain.PlayerProgress, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT "+progressColumns+" FROM player_progress WHERE player_id = ? AND story_id = ?",
		playerID, storyID)
	progress, err := scanProgress(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return domain.PlayerProgress{}, errors.WithMetadata(errors.CodePlayerNotFound,
			"no progress for player "+playerID+" in story "+storyID,
			map[string]string{"player_id": playerID, "story_id": storyID})
	}
	if err != nil {
		return domain.PlayerProgress{}, fmt.Errorf("get progress: %w", err)
	}
	return progress, nil
}

// UpdateBalances replaces balances outside a transition, used by
// currency exchange. The UPDATE is guarded on the balances column as it
// was read; encodeJSON sorts map keys, so equal balances always encode
// to the same text.
func (s *Store) UpdateBalances(ctx context.Context, playerID, storyID string, balances, expected map[domain.Currency]int) error {
	result, err := s.sqlDB.ExecContext(ctx,
		"UPDATE player_progress SET balances = ? WHERE player_id = ? AND story_id = ? AND balances = ?",
		encodeJSON(balances), playerID, storyID, encodeJSON(expected))
	if err != nil {
		return fmt.Errorf("update balances: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update balances rows: %w", err)
	}
	if affected == 1 {
		return nil
	}

	var exists int
	err = s.sqlDB.QueryRowContext(ctx,
		"SELECT 1 FROM player_progress WHERE player_id = ? AND story_id = ?",
		playerID, storyID).Scan(&exists)
	if stderrors.Is(err, sql.ErrNoRows) {
		return errors.WithMetadata(errors.CodePlayerNotFound,
			"no progress for player "+playerID+" in story "+storyID,
			map[string]string{"player_id": playerID, "story_id": storyID})
	}
	if err != nil {
		return fmt.Errorf("update balances check: %w", err)
	}
	return errors.WithMetadata(errors.CodeConcurrentModification,
		"balances for player "+playerID+" changed since read",
		map[string]string{"player_id": playerID, "story_id": storyID})
}
