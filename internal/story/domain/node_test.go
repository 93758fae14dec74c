package domain

import (
	"errors"
	"testing"
	"time"
)

func TestCreateNode(t *testing.T) {
	now := func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }

	tests := []struct {
		name    string
		input   CreateNodeInput
		wantErr error
	}{
		{
			name: "root node",
			input: CreateNodeInput{
				StoryID:       "story-1",
				NarrativeText: "You arrive at the harbor under a grey sky.",
			},
		},
		{
			name: "child node",
			input: CreateNodeInput{
				StoryID:       "story-1",
				ParentID:      "node-1",
				NarrativeText: "The dockmaster waves you over.",
				GeneratedByAI: true,
			},
		},
		{
			name:    "missing story id",
			input:   CreateNodeInput{NarrativeText: "text"},
			wantErr: ErrEmptyStoryID,
		},
		{
			name:    "blank narrative text",
			input:   CreateNodeInput{StoryID: "story-1", NarrativeText: "   "},
			wantErr: ErrEmptyNarrativeText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := CreateNode(tt.input, now, nil)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("CreateNode() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateNode() error = %v", err)
			}
			if node.ID == "" {
				t.Fatal("CreateNode() returned empty id")
			}
			if node.StoryID != tt.input.StoryID {
				t.Errorf("StoryID = %q, want %q", node.StoryID, tt.input.StoryID)
			}
			if !node.CreatedAt.Equal(now()) {
				t.Errorf("CreatedAt = %v, want %v", node.CreatedAt, now())
			}
			if node.Root() != (tt.input.ParentID == "") {
				t.Errorf("Root() = %v for parent %q", node.Root(), tt.input.ParentID)
			}
		})
	}
}

func TestCreateNodeIDGeneratorError(t *testing.T) {
	failing := func() (string, error) { return "", errors.New("entropy exhausted") }
	_, err := CreateNode(CreateNodeInput{
		StoryID:       "story-1",
		NarrativeText: "text",
	}, nil, failing)
	if err == nil {
		t.Fatal("CreateNode() expected error from id generator")
	}
}

func TestNewIDFormat(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := NewID()
		if err != nil {
			t.Fatalf("NewID() error = %v", err)
		}
		if len(id) != 26 {
			t.Fatalf("NewID() length = %d, want 26", len(id))
		}
		if seen[id] {
			t.Fatalf("NewID() returned duplicate %q", id)
		}
		seen[id] = true
	}
}
