// Package config loads service settings from defaults, an optional YAML file
// and environment overrides, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	rcron "github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPort             = 8080
	DefaultDriver           = DriverMemory
	DefaultSQLitePath       = "data/workforce.db"
	DefaultSweepSchedule    = "0 */5 * * * *"
	DefaultActivityCapacity = 1000
)

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Storage  StorageConfig  `yaml:"storage"`
	Log      LogConfig      `yaml:"log"`
	Sweep    SweepConfig    `yaml:"sweep"`
	Notify   NotifyConfig   `yaml:"notify"`
	Activity ActivityConfig `yaml:"activity"`
}

type HTTPConfig struct {
	Port int `yaml:"port"`
}

type StorageConfig struct {
	Driver     string `yaml:"driver"`
	DSN        string `yaml:"dsn"`
	SQLitePath string `yaml:"sqlitePath"`
}

type LogConfig struct {
	Debug bool `yaml:"debug"`
}

type SweepConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Schedule string `yaml:"schedule"`
}

type NotifyConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
	// Events lists the activity types forwarded to the notifier. Empty means all.
	Events []string `yaml:"events"`
}

type TelegramConfig struct {
	Enabled bool   `yaml:"enabled"`
	Token   string `yaml:"token"`
	ChatID  int64  `yaml:"chatId"`
}

type ActivityConfig struct {
	Capacity int `yaml:"capacity"`
}

func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{Port: DefaultPort},
		Storage: StorageConfig{
			Driver:     DefaultDriver,
			SQLitePath: DefaultSQLitePath,
		},
		Sweep: SweepConfig{
			Enabled:  true,
			Schedule: DefaultSweepSchedule,
		},
		Notify: NotifyConfig{
			Events: []string{"task.overdue", "task.cancelled"},
		},
		Activity: ActivityConfig{Capacity: DefaultActivityCapacity},
	}
}

// Load reads path (if non-empty) on top of the defaults, then applies
// environment overrides. A missing file at the WORKFORCE_CONFIG fallback is
// not an error; a missing explicit path is.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = os.Getenv("WORKFORCE_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case explicit || !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		cfg.HTTP.Port = p
	}
	if driver := os.Getenv("WORKFORCE_STORAGE_DRIVER"); driver != "" {
		cfg.Storage.Driver = driver
	}
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		cfg.Storage.DSN = dsn
		// a bare DATABASE_URL implies postgres unless a driver was chosen
		if os.Getenv("WORKFORCE_STORAGE_DRIVER") == "" && cfg.Storage.Driver == DriverMemory {
			cfg.Storage.Driver = DriverPostgres
		}
	}
	if p := os.Getenv("WORKFORCE_SQLITE_PATH"); p != "" {
		cfg.Storage.SQLitePath = p
	}
	if v := os.Getenv("WORKFORCE_DEBUG"); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			cfg.Log.Debug = parsed
		}
	}
	if v := os.Getenv("WORKFORCE_SWEEP_ENABLED"); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			cfg.Sweep.Enabled = parsed
		}
	}
	if v := os.Getenv("WORKFORCE_SWEEP_SCHEDULE"); v != "" {
		cfg.Sweep.Schedule = v
	}
	if token := os.Getenv("WORKFORCE_TELEGRAM_TOKEN"); token != "" {
		cfg.Notify.Telegram.Token = token
		cfg.Notify.Telegram.Enabled = true
	}
	if v := os.Getenv("WORKFORCE_TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("WORKFORCE_TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.Notify.Telegram.ChatID = id
	}
	if v := os.Getenv("WORKFORCE_NOTIFY_EVENTS"); v != "" {
		cfg.Notify.Events = splitList(v)
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate reports the first setting that cannot be used to start the service.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http port %d out of range", c.HTTP.Port)
	}
	switch c.Storage.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.Storage.SQLitePath == "" {
			return errors.New("sqlite storage requires sqlitePath")
		}
	case DriverPostgres:
		if c.Storage.DSN == "" {
			return errors.New("postgres storage requires dsn or DATABASE_URL")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Sweep.Enabled {
		if _, err := ParseSchedule(c.Sweep.Schedule); err != nil {
			return fmt.Errorf("sweep schedule: %w", err)
		}
	}
	if c.Notify.Telegram.Enabled {
		if c.Notify.Telegram.Token == "" {
			return errors.New("telegram notifier requires a token")
		}
		if c.Notify.Telegram.ChatID == 0 {
			return errors.New("telegram notifier requires chatId")
		}
	}
	if c.Activity.Capacity < 0 {
		return fmt.Errorf("activity capacity %d is negative", c.Activity.Capacity)
	}
	return nil
}

// ParseSchedule parses a six-field cron expression (seconds first).
func ParseSchedule(spec string) (rcron.Schedule, error) {
	parser := rcron.NewParser(rcron.Second | rcron.Minute | rcron.Hour | rcron.Dom | rcron.Month | rcron.Dow | rcron.Descriptor)
	return parser.Parse(spec)
}
