// Package storage declares the persistence contracts for the story
// engine. Implementations live in subpackages; the engine depends only
// on these interfaces.
package storage

import (
	"context"

	"github.com/oleandergames/tradecraft/internal/story/domain"
)

// GraphStore is the append-only story tree. Nodes are never mutated or
// deleted; choices gain a destination exactly once.
type GraphStore interface {
	// CreateStory persists a story record alongside its root node and
	// the root's offered choices in one transaction.
	CreateStory(ctx context.Context, story domain.Story, root domain.StoryNode, choices []domain.Choice) error
	// GetStory returns a story by id.
	GetStory(ctx context.Context, storyID string) (domain.Story, error)
	// GetNode returns a node by id.
	GetNode(ctx context.Context, nodeID string) (domain.StoryNode, error)
	// GetRootNode returns the story's root node.
	GetRootNode(ctx context.Context, storyID string) (domain.StoryNode, error)
	// LatestNodeOnPath returns the most recently created node among
	// those the player's choice history reaches, newest first by
	// created_at then id.
	LatestNodeOnPath(ctx context.Context, playerID, storyID string) (domain.StoryNode, error)
	// GetChoices lists a node's outgoing choices in insertion order.
	GetChoices(ctx context.Context, nodeID string) ([]domain.Choice, error)
	// GetChoice returns one choice by source node and choice id.
	GetChoice(ctx context.Context, nodeID, choiceID string) (domain.Choice, error)
}

// ProgressStore persists player progress records.
type ProgressStore interface {
	// CreateProgress inserts fresh progress for a player and story.
	CreateProgress(ctx context.Context, progress domain.PlayerProgress) error
	// GetProgress returns the progress for a player and story.
	GetProgress(ctx context.Context, playerID, storyID string) (domain.PlayerProgress, error)
	// UpdateBalances replaces balances outside a transition, used by
	// currency exchange. The write lands only if the stored balances
	// still equal expected; otherwise it fails with
	// CONCURRENT_MODIFICATION and the caller re-reads and retries.
	UpdateBalances(ctx context.Context, playerID, storyID string, balances, expected map[domain.Currency]int) error
}

// MissionStore persists missions and shared character reference data.
type MissionStore interface {
	// GetMission returns one mission by id.
	GetMission(ctx context.Context, missionID string) (domain.Mission, error)
	// ListMissions returns all missions for a player and story.
	ListMissions(ctx context.Context, playerID, storyID string) ([]domain.Mission, error)
	// PutCharacter inserts or replaces a character.
	PutCharacter(ctx context.Context, character domain.Character) error
	// GetCharacter returns a character by id.
	GetCharacter(ctx context.Context, characterID string) (domain.Character, error)
	// ListCharacters returns all seeded characters.
	ListCharacters(ctx context.Context) ([]domain.Character, error)
}

// TransitionCommit is the atomic unit a choice transition writes: at
// most one new node, choice resolution, updated progress, and mission
// changes. All fields are applied or none are.
type TransitionCommit struct {
	// NewNode is the node to insert, nil on a replay of a resolved
	// choice.
	NewNode *domain.StoryNode
	// NewChoices are the offered choices of NewNode.
	NewChoices []domain.Choice
	// ResolveChoice links the taken choice to its destination. Nil for
	// replays and story starts.
	ResolveChoice *domain.Choice
	// Progress is the full updated progress record.
	Progress domain.PlayerProgress
	// ExpectedNodeID guards the progress update: the write applies
	// only while the stored current_node_id still equals it. A
	// mismatch means another transition won and the commit rolls back
	// with ConcurrentModification.
	ExpectedNodeID string
	// NewMissions are missions created by this transition.
	NewMissions []domain.Mission
	// UpdatedMissions are existing missions whose state changed.
	UpdatedMissions []domain.Mission
}

// TransitionStore applies transition commits atomically.
type TransitionStore interface {
	CommitTransition(ctx context.Context, commit TransitionCommit) error
}

// Store is the full persistence surface the engine wires together.
type Store interface {
	GraphStore
	ProgressStore
	MissionStore
	TransitionStore
}
