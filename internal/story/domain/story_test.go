package domain

import (
	"testing"
	"time"
)

func TestCreateStory(t *testing.T) {
	now := func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	gen := func() (string, error) { return "story-001", nil }

	tests := []struct {
		name    string
		input   CreateStoryInput
		wantErr error
	}{
		{
			name:  "valid",
			input: CreateStoryInput{Title: "Cold Wire"},
		},
		{
			name:  "title trimmed",
			input: CreateStoryInput{Title: "  Cold Wire  "},
		},
		{
			name:    "empty title",
			input:   CreateStoryInput{},
			wantErr: ErrEmptyTitle,
		},
		{
			name:    "whitespace title",
			input:   CreateStoryInput{Title: "   "},
			wantErr: ErrEmptyTitle,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			story, err := CreateStory(tt.input, now, gen)
			if tt.wantErr != nil {
				if err != tt.wantErr {
					t.Fatalf("CreateStory() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateStory() error = %v", err)
			}
			if story.ID != "story-001" {
				t.Errorf("ID = %q, want story-001", story.ID)
			}
			if story.Title != "Cold Wire" {
				t.Errorf("Title = %q, want Cold Wire", story.Title)
			}
			if story.RootNodeID != "" {
				t.Errorf("RootNodeID = %q, want empty before root commit", story.RootNodeID)
			}
			if !story.CreatedAt.Equal(now()) {
				t.Errorf("CreatedAt = %v, want %v", story.CreatedAt, now())
			}
		})
	}
}
