package kit

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ParseEnv fills target, a pointer to a struct with `env` tags, from the
// process environment.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
