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

// CreateStory persists a story, its root node, and the root's offered
// choices in one transaction.
func (s *Store) CreateStory(ctx context.Context, story domain.Story, root domain.StoryNode, choices []domain.Choice) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(story.ID) == "" {
		return fmt.Errorf("story id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO stories (id, title, root_node_id, protagonist, parameters, created_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		story.ID, story.Title, root.ID,
		encodeJSON(story.Protagonist), encodeJSON(story.Parameters),
		toMillis(story.CreatedAt)); err != nil {
		return fmt.Errorf("insert story: %w", err)
	}

	if err := insertNode(ctx, tx, root); err != nil {
		return err
	}
	if err := insertChoices(ctx, tx, choices); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit story: %w", err)
	}
	return nil
}

// GetStory returns a story by id.
func (s *Store) GetStory(ctx context.Context, storyID string) (domain.Story, error) {
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, title, root_node_id, protagonist, parameters, created_at
FROM stories WHERE id = ?`, storyID)

	var story domain.Story
	var protagonist, parameters string
	var createdAt int64
	err := row.Scan(&story.ID, &story.Title, &story.RootNodeID, &protagonist, &parameters, &createdAt)
	if stderrors.Is(err, sql.ErrNoRows) {
		return domain.Story{}, errors.WithMetadata(errors.CodeStoryNotFound,
			"story "+storyID+" not found", map[string]string{"story_id": storyID})
	}
	if err != nil {
		return domain.Story{}, fmt.Errorf("get story: %w", err)
	}
	decodeJSON(protagonist, &story.Protagonist)
	decodeJSON(parameters, &story.Parameters)
	story.CreatedAt = fromMillis(createdAt)
	return story, nil
}

const nodeColumns = "id, story_id, parent_id, narrative_text, is_endpoint, generated_by_ai, metadata, created_at"

func scanNode(row interface{ Scan(...any) error }) (domain.StoryNode, error) {
	var node domain.StoryNode
	var metadata string
	var createdAt int64
	if err := row.Scan(&node.ID, &node.StoryID, &node.ParentID, &node.NarrativeText,
		&node.IsEndpoint, &node.GeneratedByAI, &metadata, &createdAt); err != nil {
		return domain.StoryNode{}, err
	}
	decodeJSON(metadata, &node.Metadata)
	node.CreatedAt = fromMillis(createdAt)
	return node, nil
}

// GetNode returns a node by id.
func (s *Store) GetNode(ctx context.Context, nodeID string) (domain.StoryNode, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT "+nodeColumns+" FROM story_nodes WHERE id = ?", nodeID)
	node, err := scanNode(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return domain.StoryNode{}, errors.WithMetadata(errors.CodeNodeNotFound,
			"node "+nodeID+" not found", map[string]string{"node_id": nodeID})
	}
	if err != nil {
		return domain.StoryNode{}, fmt.Errorf("get node: %w", err)
	}
	return node, nil
}

// GetRootNode returns the story's root node.
func (s *Store) GetRootNode(ctx context.Context, storyID string) (domain.StoryNode, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT "+nodeColumns+" FROM story_nodes WHERE story_id = ? AND parent_id = ''", storyID)
	node, err := scanNode(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return domain.StoryNode{}, errors.WithMetadata(errors.CodeStoryNotFound,
			"story "+storyID+" has no root node", map[string]string{"story_id": storyID})
	}
	if err != nil {
		return domain.StoryNode{}, fmt.Errorf("get root node: %w", err)
	}
	return node, nil
}

// LatestNodeOnPath returns the newest node reached by the player's
// choice history, by created_at descending then id descending.
func (s *Store) LatestNodeOnPath(ctx context.Context, playerID, storyID string) (domain.StoryNode, error) {
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT `+nodeColumns+` FROM story_nodes
WHERE story_id = ? AND id IN (
    SELECT json_extract(value, '$.to_node_id')
    FROM json_each((SELECT choice_history FROM player_progress WHERE player_id = ? AND story_id = ?))
)
ORDER BY created_at DESC, id DESC
LIMIT 1`, storyID, playerID, storyID)
	node, err := scanNode(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return domain.StoryNode{}, errors.WithMetadata(errors.CodeNodeNotFound,
			"no visited nodes for player "+playerID, map[string]string{"story_id": storyID})
	}
	if err != nil {
		return domain.StoryNode{}, fmt.Errorf("latest node on path: %w", err)
	}
	return node, nil
}

const choiceColumns = "id, source_node_id, text, consequence, kind, cost, character_id, destination_node_id, position, created_at"

func scanChoice(row interface{ Scan(...any) error }) (domain.Choice, error) {
	var choice domain.Choice
	var kind, cost string
	var createdAt int64
	if err := row.Scan(&choice.ID, &choice.SourceNodeID, &choice.Text, &choice.Consequence,
		&kind, &cost, &choice.CharacterID, &choice.DestinationNodeID,
		&choice.Position, &createdAt); err != nil {
		return domain.Choice{}, err
	}
	choice.Kind = domain.ParseChoiceKind(kind)
	decodeJSON(cost, &choice.Cost)
	choice.CreatedAt = fromMillis(createdAt)
	return choice, nil
}

// GetChoices lists a node's outgoing choices in insertion order.
func (s *Store) GetChoices(ctx context.Context, nodeID string) ([]domain.Choice, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		"SELECT "+choiceColumns+" FROM choices WHERE source_node_id = ? ORDER BY position", nodeID)
	if err != nil {
		return nil, fmt.Errorf("list choices: %w", err)
	}
	defer rows.Close()

	var choices []domain.Choice
	for rows.Next() {
		choice, err := scanChoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan choice: %w", err)
		}
		choices = append(choices, choice)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate choices: %w", err)
	}
	return choices, nil
}

// GetChoice returns one choice by source node and choice id.
func (s *Store) GetChoice(ctx context.Context, nodeID, choiceID string) (domain.Choice, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT "+choiceColumns+" FROM choices WHERE source_node_id = ? AND id = ?", nodeID, choiceID)
	choice, err := scanChoice(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return domain.Choice{}, errors.WithMetadata(errors.CodeChoiceNotFound,
			"choice "+choiceID+" not found under node "+nodeID,
			map[string]string{"choice_id": choiceID, "node_id": nodeID})
	}
	if err != nil {
		return domain.Choice{}, fmt.Errorf("get choice: %w", err)
	}
	return choice, nil
}

func insertNode(ctx context.Context, tx *sql.Tx, node domain.StoryNode) error {
	if node.ParentID != "" {
		var parentStory string
		err := tx.QueryRowContext(ctx,
			"SELECT story_id FROM story_nodes WHERE id = ?", node.ParentID).Scan(&parentStory)
		if stderrors.Is(err, sql.ErrNoRows) {
			return errors.WithMetadata(errors.CodeNodeParentMissing,
				"parent node "+node.ParentID+" does not exist",
				map[string]string{"node_id": node.ID, "parent_id": node.ParentID})
		}
		if err != nil {
			return fmt.Errorf("check parent node: %w", err)
		}
		if parentStory != node.StoryID {
			return errors.WithMetadata(errors.CodeNodeWrongStory,
				"parent node "+node.ParentID+" belongs to story "+parentStory,
				map[string]string{"node_id": node.ID, "parent_id": node.ParentID, "story_id": node.StoryID})
		}
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO story_nodes (id, story_id, parent_id, narrative_text, is_endpoint, generated_by_ai, metadata, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		node.ID, node.StoryID, node.ParentID, node.NarrativeText,
		node.IsEndpoint, node.GeneratedByAI, encodeJSON(node.Metadata),
		toMillis(node.CreatedAt)); err != nil {
		return fmt.Errorf("insert node: %w", err)
	}
	return nil
}

// insertChoices assigns positions inside the transaction so concurrent
// appends under the same parent serialize instead of colliding.
func insertChoices(ctx context.Context, tx *sql.Tx, choices []domain.Choice) error {
	for _, choice := range choices {
		if strings.TrimSpace(choice.Text) == "" {
			return errors.WithMetadata(errors.CodeChoiceEmptyText,
				"choice "+choice.ID+" has no text",
				map[string]string{"choice_id": choice.ID, "node_id": choice.SourceNodeID})
		}
		var next int
		if err := tx.QueryRowContext(ctx,
			"SELECT COALESCE(MAX(position), -1) + 1 FROM choices WHERE source_node_id = ?",
			choice.SourceNodeID).Scan(&next); err != nil {
			return fmt.Errorf("next choice position: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO choices (id, source_node_id, text, consequence, kind, cost, character_id, destination_node_id, position, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			choice.ID, choice.SourceNodeID, choice.Text, choice.Consequence,
			string(choice.Kind), encodeJSON(choice.Cost), choice.CharacterID,
			choice.DestinationNodeID, next, toMillis(choice.CreatedAt)); err != nil {
			return fmt.Errorf("insert choice: %w", err)
		}
	}
	return nil
}
