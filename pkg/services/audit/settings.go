package audit

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

const defaultStalenessDays = 90

// Settings contains the configurable thresholds for a coverage audit.
type Settings struct {
	// StalenessDays is the maximum age of the most recent backup before an
	// item is flagged stale. A backup exactly this old is already stale.
	StalenessDays int `mapstructure:"staleness_days"`
}

// DefaultSettings returns the default audit configuration.
func DefaultSettings() Settings {
	return Settings{StalenessDays: defaultStalenessDays}
}

// StalenessWindow converts the threshold into a duration.
func (s Settings) StalenessWindow() time.Duration {
	return time.Duration(s.StalenessDays) * 24 * time.Hour
}

// LoadSettings reads audit settings from the given file, falling back to
// defaults for keys the file does not set.
func LoadSettings(settingsPath string) (Settings, error) {
	v := viper.New()
	v.SetConfigFile(settingsPath)
	v.SetDefault("staleness_days", defaultStalenessDays)

	if err := v.ReadInConfig(); err != nil {
		return Settings{}, fmt.Errorf("failed to read settings file: %w", err)
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("failed to parse audit settings: %w", err)
	}
	return s, nil
}
