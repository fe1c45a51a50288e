package configuration

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/apx-project/semantic-drift-action/api/configuration"
	"github.com/apx-project/semantic-drift-action/pkg/labels"
	"gopkg.in/yaml.v3"
)

const ConfigFilename = "semantic-drift.yaml"

var ErrFileExists = fmt.Errorf("file %s exists, not overwriting (specify '--force' to overwrite)", ConfigFilename)

// DefaultConfig is the configuration written by GenerateConfig
func DefaultConfig() configuration.Config {
	return configuration.Config{
		RegistryRoot:         "registry",
		LocalPacksRoot:       "packs",
		ReportPath:           "drift-report.json",
		LabelPrefix:          labels.DefaultPrefix,
		ApplyLabels:          true,
		PostCommentWhenClean: false,
	}
}

func GenerateConfig(forceWrite bool) error {
	// check to see if the config file already exists
	_, err := os.Stat(ConfigFilename)
	if (err == nil) && !forceWrite {
		return ErrFileExists
	}

	return writeConfig(DefaultConfig())
}

// UpdateConfig rewrites the config file with every known setting present.
// Values already in the file are kept; missing ones get their defaults.
func UpdateConfig() error {
	cfg := DefaultConfig()

	content, err := os.ReadFile(ConfigFilename)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// nothing to merge, write the defaults
	case err != nil:
		return fmt.Errorf("error reading %s: %w", ConfigFilename, err)
	default:
		if err := yaml.Unmarshal(content, &cfg); err != nil {
			return fmt.Errorf("error parsing %s: %w", ConfigFilename, err)
		}
	}

	return writeConfig(cfg)
}

func writeConfig(cfg configuration.Config) error {
	cfgYaml, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshing config yaml: %w", err)
	}

	return os.WriteFile(ConfigFilename, cfgYaml, 0600)
}
