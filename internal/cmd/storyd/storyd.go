// Package storyd parses story server flags and starts the HTTP service.
package storyd

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"

	"github.com/oleandergames/tradecraft/internal/api"
	entrypoint "github.com/oleandergames/tradecraft/internal/platform/cmd"
	"github.com/oleandergames/tradecraft/internal/platform/timeouts"
	"github.com/oleandergames/tradecraft/internal/story/engine"
	"github.com/oleandergames/tradecraft/internal/story/generate"
	"github.com/oleandergames/tradecraft/internal/story/storage/sqlite"
)

// Config holds story server configuration.
type Config struct {
	Addr            string `env:"TRADECRAFT_ADDR" envDefault:":8080"`
	DBPath          string `env:"TRADECRAFT_DB_PATH" envDefault:"tradecraft.db"`
	GenerationURL   string `env:"TRADECRAFT_GENERATION_URL"`
	GenerationKey   string `env:"TRADECRAFT_GENERATION_API_KEY"`
	GenerationModel string `env:"TRADECRAFT_GENERATION_MODEL" envDefault:"gpt-4o-mini"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The server listen address")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "The SQLite database path")
	fs.StringVar(&cfg.GenerationURL, "generation-url", cfg.GenerationURL, "Chat completions endpoint (empty uses the built-in generator)")
	fs.StringVar(&cfg.GenerationModel, "generation-model", cfg.GenerationModel, "Generation model name")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func newGenerator(cfg Config) (generate.Generator, error) {
	if cfg.GenerationURL == "" {
		log.Print("no generation endpoint configured, using the built-in generator")
		return generate.NewStatic(), nil
	}
	return generate.NewClient(generate.ClientConfig{
		CompletionsURL: cfg.GenerationURL,
		APIKey:         cfg.GenerationKey,
		Model:          cfg.GenerationModel,
	})
}

// Run starts the story HTTP service and blocks until ctx is canceled.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceStoryd, func(ctx context.Context) error {
		store, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		generator, err := newGenerator(cfg)
		if err != nil {
			return err
		}

		server := &http.Server{
			Addr:              cfg.Addr,
			Handler:           api.NewServer(engine.New(store, generator)),
			ReadHeaderTimeout: timeouts.ReadHeader,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Printf("listening on %s", cfg.Addr)
			errCh <- server.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		}
	})
}
