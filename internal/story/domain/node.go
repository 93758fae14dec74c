package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrEmptyStoryID indicates a node is missing its owning story.
	ErrEmptyStoryID = errors.New("story id is required")
	// ErrEmptyNarrativeText indicates a node is missing narrative text.
	ErrEmptyNarrativeText = errors.New("narrative text is required")
)

// StoryNode is a point in the shared narrative tree. Every node except
// the story root has exactly one parent within the same story. Nodes are
// created once and never mutated or deleted; branches that fall out of
// play remain addressable for players already on them.
type StoryNode struct {
	ID            string
	StoryID       string
	ParentID      string // empty for the root
	NarrativeText string
	IsEndpoint    bool
	GeneratedByAI bool
	Metadata      BranchMetadata
	CreatedAt     time.Time
}

// Root reports whether the node is its story's root.
func (n StoryNode) Root() bool {
	return n.ParentID == ""
}

// CreateNodeInput describes the data needed to create a story node.
type CreateNodeInput struct {
	StoryID       string
	ParentID      string
	NarrativeText string
	IsEndpoint    bool
	GeneratedByAI bool
	Metadata      BranchMetadata
}

// CreateNode builds a new immutable node with a generated ID and timestamp.
func CreateNode(input CreateNodeInput, now func() time.Time, idGenerator func() (string, error)) (StoryNode, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = NewID
	}

	normalized, err := NormalizeCreateNodeInput(input)
	if err != nil {
		return StoryNode{}, err
	}

	nodeID, err := idGenerator()
	if err != nil {
		return StoryNode{}, fmt.Errorf("generate node id: %w", err)
	}

	return StoryNode{
		ID:            nodeID,
		StoryID:       normalized.StoryID,
		ParentID:      normalized.ParentID,
		NarrativeText: normalized.NarrativeText,
		IsEndpoint:    normalized.IsEndpoint,
		GeneratedByAI: normalized.GeneratedByAI,
		Metadata:      normalized.Metadata,
		CreatedAt:     now().UTC(),
	}, nil
}

// NormalizeCreateNodeInput trims and validates node input.
func NormalizeCreateNodeInput(input CreateNodeInput) (CreateNodeInput, error) {
	input.StoryID = strings.TrimSpace(input.StoryID)
	if input.StoryID == "" {
		return CreateNodeInput{}, ErrEmptyStoryID
	}
	input.NarrativeText = strings.TrimSpace(input.NarrativeText)
	if input.NarrativeText == "" {
		return CreateNodeInput{}, ErrEmptyNarrativeText
	}
	input.ParentID = strings.TrimSpace(input.ParentID)
	return input, nil
}
