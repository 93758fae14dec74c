package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrEmptyTitle indicates a story is missing its title.
var ErrEmptyTitle = errors.New("story title is required")

// Story is the shared container for one narrative tree. The tree
// itself lives in StoryNode records; Story pins the root and the
// parameters every continuation is generated under.
type Story struct {
	ID          string
	Title       string
	RootNodeID  string
	Protagonist Protagonist
	Parameters  StoryParameters
	CreatedAt   time.Time
}

// CreateStoryInput describes a new story before its root node exists.
type CreateStoryInput struct {
	Title       string
	Protagonist Protagonist
	Parameters  StoryParameters
}

// CreateStory builds a story with a generated ID. The root node id is
// attached by the commit that creates the root.
func CreateStory(input CreateStoryInput, now func() time.Time, idGenerator func() (string, error)) (Story, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = NewID
	}

	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return Story{}, ErrEmptyTitle
	}

	storyID, err := idGenerator()
	if err != nil {
		return Story{}, fmt.Errorf("generate story id: %w", err)
	}

	return Story{
		ID:          storyID,
		Title:       input.Title,
		Protagonist: input.Protagonist,
		Parameters:  input.Parameters,
		CreatedAt:   now().UTC(),
	}, nil
}
