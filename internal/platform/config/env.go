package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ParseEnv fills a config struct from its env tags. The TRADECRAFT_*
// variables are the source of truth; command-line flags layer on top in
// each binary's ParseConfig.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
