package sqlite

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	"github.com/oleandergames/tradecraft/internal/platform/errors"
	"github.com/oleandergames/tradecraft/internal/story/domain"
)

const missionColumns = `id, player_id, story_id, title, description, objective,
giver_id, target_id, status, difficulty, progress,
reward_currency, reward_amount, deadline, progress_updates, created_at, completed_at`

func scanMission(row interface{ Scan(...any) error }) (domain.Mission, error) {
	var mission domain.Mission
	var status, rewardCurrency, updates string
	var deadline, createdAt, completedAt int64
	if err := row.Scan(&mission.ID, &mission.PlayerID, &mission.StoryID,
		&mission.Title, &mission.Description, &mission.Objective,
		&mission.GiverID, &mission.TargetID, &status, &mission.Difficulty,
		&mission.Progress, &rewardCurrency, &mission.RewardAmount,
		&deadline, &updates, &createdAt, &completedAt); err != nil {
		return domain.Mission{}, err
	}
	mission.Status = domain.MissionStatus(status)
	mission.RewardCurrency = domain.Currency(rewardCurrency)
	decodeJSON(updates, &mission.ProgressUpdates)
	mission.Deadline = fromMillis(deadline)
	mission.CreatedAt = fromMillis(createdAt)
	mission.CompletedAt = fromMillis(completedAt)
	return mission, nil
}

// GetMission returns one mission by id.
func (s *Store) GetMission(ctx context.Context, missionID string) (domain.Mission, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT "+missionColumns+" FROM missions WHERE id = ?", missionID)
	mission, err := scanMission(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return domain.Mission{}, errors.WithMetadata(errors.CodeMissionNotFound,
			"mission "+missionID+" not found", map[string]string{"mission_id": missionID})
	}
	if err != nil {
		return domain.Mission{}, fmt.Errorf("get mission: %w", err)
	}
	return mission, nil
}

// ListMissions returns all missions for a player and story, newest
// first.
func (s *Store) ListMissions(ctx context.Context, playerID, storyID string) ([]domain.Mission, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		"SELECT "+missionColumns+" FROM missions WHERE player_id = ? AND story_id = ? ORDER BY created_at DESC, id DESC",
		playerID, storyID)
	if err != nil {
		return nil, fmt.Errorf("list missions: %w", err)
	}
	defer rows.Close()

	var missions []domain.Mission
	for rows.Next() {
		mission, err := scanMission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan mission: %w", err)
		}
		missions = append(missions, mission)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate missions: %w", err)
	}
	return missions, nil
}

func insertMission(ctx context.Context, tx *sql.Tx, mission domain.Mission) error {
	if _, err := tx.ExecContext(ctx, `
INSERT INTO missions (`+missionColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		mission.ID, mission.PlayerID, mission.StoryID,
		mission.Title, mission.Description, mission.Objective,
		mission.GiverID, mission.TargetID, string(mission.Status), mission.Difficulty,
		mission.Progress, string(mission.RewardCurrency), mission.RewardAmount,
		toMillis(mission.Deadline), encodeJSON(mission.ProgressUpdates),
		toMillis(mission.CreatedAt), toMillis(mission.CompletedAt)); err != nil {
		return fmt.Errorf("insert mission: %w", err)
	}
	return nil
}

func updateMission(ctx context.Context, tx *sql.Tx, mission domain.Mission) error {
	result, err := tx.ExecContext(ctx, `
UPDATE missions SET status = ?, progress = ?, progress_updates = ?, completed_at = ?
WHERE id = ?`,
		string(mission.Status), mission.Progress,
		encodeJSON(mission.ProgressUpdates), toMillis(mission.CompletedAt),
		mission.ID)
	if err != nil {
		return fmt.Errorf("update mission: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update mission rows: %w", err)
	}
	if affected == 0 {
		return errors.WithMetadata(errors.CodeMissionNotFound,
			"mission "+mission.ID+" not found", map[string]string{"mission_id": mission.ID})
	}
	return nil
}

// PutCharacter inserts or replaces a character.
func (s *Store) PutCharacter(ctx context.Context, character domain.Character) error {
	if _, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO characters (id, name, role, traits, backstory, plot_lines)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    name = excluded.name, role = excluded.role, traits = excluded.traits,
    backstory = excluded.backstory, plot_lines = excluded.plot_lines`,
		character.ID, character.Name, string(character.Role),
		encodeJSON(character.Traits), character.Backstory,
		encodeJSON(character.PlotLines)); err != nil {
		return fmt.Errorf("put character: %w", err)
	}
	return nil
}

// GetCharacter returns a character by id.
func (s *Store) GetCharacter(ctx context.Context, characterID string) (domain.Character, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT id, name, role, traits, backstory, plot_lines FROM characters WHERE id = ?", characterID)

	var character domain.Character
	var role, traits, plotLines string
	err := row.Scan(&character.ID, &character.Name, &role, &traits, &character.Backstory, &plotLines)
	if stderrors.Is(err, sql.ErrNoRows) {
		return domain.Character{}, errors.WithMetadata(errors.CodeCharacterNotFound,
			"character "+characterID+" not found", map[string]string{"character_id": characterID})
	}
	if err != nil {
		return domain.Character{}, fmt.Errorf("get character: %w", err)
	}
	character.Role = domain.ParseRole(role)
	decodeJSON(traits, &character.Traits)
	decodeJSON(plotLines, &character.PlotLines)
	return character, nil
}

// ListCharacters returns all seeded characters ordered by name.
func (s *Store) ListCharacters(ctx context.Context) ([]domain.Character, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		"SELECT id, name, role, traits, backstory, plot_lines FROM characters ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list characters: %w", err)
	}
	defer rows.Close()

	var characters []domain.Character
	for rows.Next() {
		var character domain.Character
		var role, traits, plotLines string
		if err := rows.Scan(&character.ID, &character.Name, &role, &traits,
			&character.Backstory, &plotLines); err != nil {
			return nil, fmt.Errorf("scan character: %w", err)
		}
		character.Role = domain.ParseRole(role)
		decodeJSON(traits, &character.Traits)
		decodeJSON(plotLines, &character.PlotLines)
		characters = append(characters, character)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate characters: %w", err)
	}
	return characters, nil
}
