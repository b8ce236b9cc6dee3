package cli

import (
	"github.com/xxxsen/skinmgr/internal/config"
)

// LoadConfig resolves the configuration file respecting precedence rules,
// writing the defaults when no file exists yet.
func LoadConfig(explicit string) (*config.Config, string, error) {
	return config.LoadOrInit(explicit)
}
