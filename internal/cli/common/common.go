package common

import (
	"os"
	"path/filepath"

	"github.com/xxxsen/slimdeck/internal/config"
)

const (
	// ConfigFlag is the CLI flag name used to specify an explicit config path.
	ConfigFlag = "config"

	systemConfigPath = "/etc/slimdeck.json"
)

var defaultConfigNames = []string{
	"slimdeck.json",
	"slimdeck.yaml",
	"slimdeck.yml",
}

// SearchPaths lists the config locations in precedence order: the explicit
// path, the working directory, then the system path.
func SearchPaths(explicit string) []string {
	paths := make([]string, 0, len(defaultConfigNames)+2)
	if explicit != "" {
		paths = append(paths, explicit)
	}
	if wd, err := os.Getwd(); err == nil {
		for _, name := range defaultConfigNames {
			paths = append(paths, filepath.Join(wd, name))
		}
	}
	return append(paths, systemConfigPath)
}

// LoadConfig resolves the configuration file respecting precedence rules. An
// explicit path must exist; the others are optional.
func LoadConfig(explicit string) (*config.Config, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return nil, err
		}
	}
	return config.LoadFirst(SearchPaths(explicit)...)
}
