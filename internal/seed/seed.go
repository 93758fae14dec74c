// Package seed populates a development database with a fixture cast and
// an opening story so the service is explorable without a generation
// provider.
package seed

import (
	"context"
	"fmt"
	"log"

	"github.com/oleandergames/tradecraft/internal/story/domain"
	"github.com/oleandergames/tradecraft/internal/story/engine"
	"github.com/oleandergames/tradecraft/internal/story/generate"
	"github.com/oleandergames/tradecraft/internal/story/storage"
)

// Config holds seed run parameters.
type Config struct {
	PlayerID string
	Title    string
	Verbose  bool
}

// DefaultConfig returns the fixture defaults.
func DefaultConfig() Config {
	return Config{
		PlayerID: "demo-player",
		Title:    "The Quiet Defector",
	}
}

// Result reports what a seed run created.
type Result struct {
	StoryID    string
	RootNodeID string
	Characters int
}

// Characters returns the fixture cast. The cast covers every role the
// consistency checks care about.
func Characters() []domain.Character {
	return []domain.Character{
		{
			ID:        "char-handler",
			Name:      "Ilse Brandt",
			Role:      domain.RoleMissionGiver,
			Traits:    []string{"patient", "exacting"},
			Backstory: "Station chief running assets out of a Vienna antiquarian bookshop.",
			PlotLines: []string{"Needs the defector's ledger before the embassy burn notice lands."},
		},
		{
			ID:        "char-karlov",
			Name:      "Dmitri Karlov",
			Role:      domain.RoleVillain,
			Traits:    []string{"methodical", "vindictive"},
			Backstory: "Counterintelligence officer who has burned three networks this year.",
			PlotLines: []string{"Suspects a leak inside his own directorate."},
		},
		{
			ID:        "char-ferro",
			Name:      "Lucia Ferro",
			Role:      domain.RoleNeutral,
			Traits:    []string{"mercenary", "reliable"},
			Backstory: "Freelance forger who sells to whoever pays in diamonds.",
		},
		{
			ID:     "char-stranger",
			Name:   "The Stranger",
			Role:   domain.RoleUndetermined,
			Traits: []string{"watchful"},
		},
	}
}

// Run seeds the cast and an opening story. Generation uses the
// deterministic built-in generator, so runs are reproducible and never
// touch a provider.
func Run(ctx context.Context, store storage.Store, cfg Config) (Result, error) {
	cast := Characters()
	for _, character := range cast {
		if err := store.PutCharacter(ctx, character); err != nil {
			return Result{}, fmt.Errorf("seed character %s: %w", character.ID, err)
		}
		if cfg.Verbose {
			log.Printf("seeded character %s (%s)", character.Name, character.Role)
		}
	}

	storyEngine := engine.New(store, generate.NewStatic())
	result, err := storyEngine.StartStory(ctx, cfg.PlayerID, engine.StartStoryInput{
		Title: cfg.Title,
		Protagonist: domain.Protagonist{
			Name:   "Alex Mercer",
			Gender: "nonbinary",
		},
		Parameters: domain.StoryParameters{
			Conflict:       "a defector's ledger everyone wants buried",
			Setting:        "Vienna, winter",
			NarrativeStyle: "le Carré",
			Mood:           "paranoid",
		},
		MissionObjective: "Make contact with the defector before Karlov does",
		MissionGiverID:   "char-handler",
	})
	if err != nil {
		return Result{}, fmt.Errorf("seed opening story: %w", err)
	}

	if cfg.Verbose {
		log.Printf("seeded story %s with root node %s", result.Node.StoryID, result.Node.ID)
	}
	return Result{
		StoryID:    result.Node.StoryID,
		RootNodeID: result.Node.ID,
		Characters: len(cast),
	}, nil
}
