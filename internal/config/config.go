// Package config loads operational parameters from the environment and an
// optional yaml file of tunables. Everything is read once at process start.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const debugMode = "DEBUG"

// Config is the resolved runtime configuration.
type Config struct {
	DiscordToken string
	TargetUserID string
	ChannelID    string
	DebugMode    bool
	Timezone     *time.Location

	StatePath    string
	SnapshotPath string
	ArchivePath  string

	GoogleCredentialsFile string
	SpreadsheetID         string
	SheetName             string

	Tunables Tunables
}

// Tunables are the scheduling and queue constants, overridable through the
// optional yaml config file.
type Tunables struct {
	LoggingStartHour int    `yaml:"logging_start_hour"`
	LoggingEndHour   int    `yaml:"logging_end_hour"`
	PollMinuteStart  int    `yaml:"poll_minute_start"`
	PollMinuteEnd    int    `yaml:"poll_minute_end"`
	CleanupHour      int    `yaml:"cleanup_hour"`
	QueueCapacity    int    `yaml:"queue_capacity"`
	RetentionDays    int    `yaml:"retention_days"`
	FailuresDir      string `yaml:"failures_dir"`
}

func defaultTunables() Tunables {
	return Tunables{
		LoggingStartHour: 9,
		LoggingEndHour:   24,
		PollMinuteStart:  1,
		PollMinuteEnd:    15,
		CleanupHour:      3,
		QueueCapacity:    10000,
		RetentionDays:    7,
	}
}

// Retention returns the queue retention window.
func (t Tunables) Retention() time.Duration {
	return time.Duration(t.RetentionDays) * 24 * time.Hour
}

// Load reads the environment (and CONFIG_FILE, if set). Missing credentials
// or an unparseable target user id are fatal: the process must not register
// the listener with a broken identity.
func Load() (*Config, error) {
	token := os.Getenv("DISCORD_TOKEN")
	if token == "" {
		return nil, errors.New("DISCORD_TOKEN environment variable required")
	}

	target := os.Getenv("TARGET_USER_ID")
	if target == "" {
		return nil, errors.New("TARGET_USER_ID environment variable required")
	}
	if _, err := strconv.ParseUint(target, 10, 64); err != nil {
		return nil, fmt.Errorf("couldn't parse target user id %q: %w", target, err)
	}

	tzName := getenv("BOT_TIMEZONE", "CET")
	tz, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", tzName, err)
	}

	statePath := getenv("STATE_PATH", "data")

	cfg := &Config{
		DiscordToken: token,
		TargetUserID: target,
		ChannelID:    os.Getenv("DISCORD_CHANNEL_ID"),
		DebugMode:    os.Getenv("APP_MODE") == debugMode,
		Timezone:     tz,

		StatePath:    statePath,
		SnapshotPath: filepath.Join(statePath, "poll_queue.json"),
		ArchivePath:  filepath.Join(statePath, "reflections.db"),

		GoogleCredentialsFile: os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"),
		SpreadsheetID:         os.Getenv("GOOGLE_SPREADSHEET_ID"),
		SheetName:             getenv("GOOGLE_SHEET_NAME", "Sheet1"),

		Tunables: defaultTunables(),
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}
	if cfg.Tunables.FailuresDir == "" {
		cfg.Tunables.FailuresDir = filepath.Join(statePath, "failures")
	}

	return cfg, nil
}

// applyFile overlays tunables from a yaml file on top of the defaults.
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &c.Tunables); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
