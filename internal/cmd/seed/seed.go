// Package seed parses seed command flags and runs the database seeder.
package seed

import (
	"context"
	"flag"
	"log"

	entrypoint "github.com/oleandergames/tradecraft/internal/platform/cmd"
	"github.com/oleandergames/tradecraft/internal/seed"
	"github.com/oleandergames/tradecraft/internal/story/storage/sqlite"
)

// Config holds seed command configuration.
type Config struct {
	DBPath   string `env:"TRADECRAFT_DB_PATH" envDefault:"tradecraft.db"`
	PlayerID string `env:"TRADECRAFT_SEED_PLAYER" envDefault:"demo-player"`
	Title    string `env:"TRADECRAFT_SEED_TITLE" envDefault:"The Quiet Defector"`
	Verbose  bool
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "The SQLite database path")
	fs.StringVar(&cfg.PlayerID, "player", cfg.PlayerID, "Player id for the demo story")
	fs.StringVar(&cfg.Title, "title", cfg.Title, "Title for the demo story")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "verbose output")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run seeds the database with the fixture cast and an opening story.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceSeed, func(ctx context.Context) error {
		store, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		result, err := seed.Run(ctx, store, seed.Config{
			PlayerID: cfg.PlayerID,
			Title:    cfg.Title,
			Verbose:  cfg.Verbose,
		})
		if err != nil {
			return err
		}
		log.Printf("seeded %d characters and story %s (root %s) for player %s",
			result.Characters, result.StoryID, result.RootNodeID, cfg.PlayerID)
		return nil
	})
}
