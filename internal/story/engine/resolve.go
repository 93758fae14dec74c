package engine

import (
	"context"

	"github.com/oleandergames/tradecraft/internal/story/domain"
)

// ResolveState returns the authoritative current node for a player and
// story plus everything needed to render it. The fallback chain covers
// progress records whose pointer went stale: a valid current_node_id
// wins, then the newest node on the player's path, then the root.
func (e *Engine) ResolveState(ctx context.Context, playerID, storyID string) (CurrentNodeSummary, error) {
	ctx, span := e.tracer.Start(ctx, "engine.ResolveState")
	defer span.End()

	progress, err := e.store.GetProgress(ctx, playerID, storyID)
	if err != nil {
		return CurrentNodeSummary{}, err
	}

	node, err := e.resolveNode(ctx, progress)
	if err != nil {
		return CurrentNodeSummary{}, err
	}

	choices, err := e.store.GetChoices(ctx, node.ID)
	if err != nil {
		return CurrentNodeSummary{}, err
	}

	return CurrentNodeSummary{
		Node:     node,
		Choices:  choices,
		Balances: progress.Balances,
		Missions: missionSets(progress),
	}, nil
}

// resolveNode applies the priority order. It fails only when the story
// itself is unknown; any per-node inconsistency falls through to the
// next source.
func (e *Engine) resolveNode(ctx context.Context, progress domain.PlayerProgress) (domain.StoryNode, error) {
	if progress.CurrentNodeID != "" {
		node, err := e.store.GetNode(ctx, progress.CurrentNodeID)
		if err == nil && node.StoryID == progress.StoryID {
			return node, nil
		}
	}

	node, err := e.store.LatestNodeOnPath(ctx, progress.PlayerID, progress.StoryID)
	if err == nil {
		return node, nil
	}

	return e.store.GetRootNode(ctx, progress.StoryID)
}
