package seed

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/oleandergames/tradecraft/internal/story/domain"
	"github.com/oleandergames/tradecraft/internal/story/engine"
	"github.com/oleandergames/tradecraft/internal/story/generate"
	"github.com/oleandergames/tradecraft/internal/story/storage/sqlite"
)

func TestRun(t *testing.T) {
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "seed.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	cfg := DefaultConfig()
	result, err := Run(ctx, store, cfg)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.StoryID == "" || result.RootNodeID == "" {
		t.Fatalf("Run() result missing ids: %+v", result)
	}
	if result.Characters != len(Characters()) {
		t.Errorf("Characters = %d, want %d", result.Characters, len(Characters()))
	}

	characters, err := store.ListCharacters(ctx)
	if err != nil {
		t.Fatalf("ListCharacters() error = %v", err)
	}
	if len(characters) != len(Characters()) {
		t.Errorf("stored characters = %d, want %d", len(characters), len(Characters()))
	}
	handler, err := store.GetCharacter(ctx, "char-handler")
	if err != nil {
		t.Fatalf("GetCharacter() error = %v", err)
	}
	if handler.Role != domain.RoleMissionGiver {
		t.Errorf("handler role = %s, want %s", handler.Role, domain.RoleMissionGiver)
	}

	// The seeded world must be playable: resolve and take a choice.
	storyEngine := engine.New(store, generate.NewStatic())
	summary, err := storyEngine.ResolveState(ctx, cfg.PlayerID, result.StoryID)
	if err != nil {
		t.Fatalf("ResolveState() error = %v", err)
	}
	if summary.Node.ID != result.RootNodeID {
		t.Errorf("current node = %s, want root %s", summary.Node.ID, result.RootNodeID)
	}
	if len(summary.Choices) == 0 {
		t.Fatal("root node offers no choices")
	}
	if len(summary.Missions.Active) != 1 {
		t.Errorf("active missions = %d, want 1", len(summary.Missions.Active))
	}

	transition, err := storyEngine.ApplyChoice(ctx, cfg.PlayerID, result.StoryID, engine.ApplyChoiceInput{
		ChoiceID: summary.Choices[0].ID,
	})
	if err != nil {
		t.Fatalf("ApplyChoice() error = %v", err)
	}
	if transition.Node.ParentID != result.RootNodeID {
		t.Errorf("new node parent = %s, want %s", transition.Node.ParentID, result.RootNodeID)
	}
}

func TestRunIsRepeatableForCharacters(t *testing.T) {
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "seed.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	if _, err := Run(ctx, store, DefaultConfig()); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	cfg := DefaultConfig()
	cfg.PlayerID = "demo-player-2"
	if _, err := Run(ctx, store, cfg); err != nil {
		t.Fatalf("second Run() error = %v", err)
	}

	characters, err := store.ListCharacters(ctx)
	if err != nil {
		t.Fatalf("ListCharacters() error = %v", err)
	}
	if len(characters) != len(Characters()) {
		t.Errorf("characters after reseed = %d, want %d (upsert, not duplicate)", len(characters), len(Characters()))
	}
}
