package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

type Config struct {
	Bot      BotConfig      `mapstructure:"bot"`
	Store    StoreConfig    `mapstructure:"store"`
	Roster   RosterConfig   `mapstructure:"roster"`
	Reminder ReminderConfig `mapstructure:"reminder"`
	Log      LogConfig      `mapstructure:"log"`
}

type BotConfig struct {
	Token       string        `mapstructure:"token"`
	PollTimeout time.Duration `mapstructure:"poll_timeout"`
}

// StoreConfig selects where the Users sheet lives.
type StoreConfig struct {
	Backend    string `mapstructure:"backend"` // sqlite | xlsx
	SQLitePath string `mapstructure:"sqlite_path"`
	XLSXPath   string `mapstructure:"xlsx_path"`
	UsersSheet string `mapstructure:"users_sheet"`
}

// RosterConfig points at the schedule workbook. Rows and columns are 1-based.
type RosterConfig struct {
	Path      string        `mapstructure:"path"`
	URL       string        `mapstructure:"url"`
	Sheet     string        `mapstructure:"sheet"`
	HeaderRow int           `mapstructure:"header_row"`
	StartRow  int           `mapstructure:"start_row"`
	NameCol   int           `mapstructure:"name_col"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type ReminderConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Spec     string `mapstructure:"spec"`
	Timezone string `mapstructure:"timezone"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

const (
	BackendSQLite = "sqlite"
	BackendXLSX   = "xlsx"
)

// Load reads defaults, then an optional config file, then the environment.
// An empty path searches ./config and . for config.{yaml,json}.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("bot.poll_timeout", "10s")

	v.SetDefault("store.backend", BackendSQLite)
	v.SetDefault("store.sqlite_path", "roster.db")
	v.SetDefault("store.xlsx_path", "users.xlsx")
	v.SetDefault("store.users_sheet", "Users")

	v.SetDefault("roster.path", "schedule.xlsx")
	v.SetDefault("roster.url", "")
	v.SetDefault("roster.sheet", "")
	v.SetDefault("roster.header_row", 1)
	v.SetDefault("roster.start_row", 3)
	v.SetDefault("roster.name_col", 2)
	v.SetDefault("roster.timeout", "15s")

	v.SetDefault("reminder.enabled", true)
	v.SetDefault("reminder.spec", "0 21 * * *")
	v.SetDefault("reminder.timezone", "Asia/Taipei")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("ROSTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// BOT_TOKEN is what the deployment scripts already export.
	if err := v.BindEnv("bot.token", "ROSTER_BOT_TOKEN", "BOT_TOKEN"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Bot.Token == "" {
		return fmt.Errorf("invalid config: bot.token (BOT_TOKEN) is empty")
	}
	switch c.Store.Backend {
	case BackendSQLite, BackendXLSX:
	default:
		return fmt.Errorf("invalid config: unknown store.backend %q", c.Store.Backend)
	}
	if c.Store.UsersSheet == "" {
		return fmt.Errorf("invalid config: store.users_sheet is empty")
	}
	if c.Roster.Path == "" && c.Roster.URL == "" {
		return fmt.Errorf("invalid config: roster.path or roster.url is required")
	}
	if c.Roster.HeaderRow < 1 || c.Roster.StartRow <= c.Roster.HeaderRow || c.Roster.NameCol < 1 {
		return fmt.Errorf("invalid config: roster rows/columns are 1-based and start_row must follow header_row")
	}
	if _, err := c.Reminder.Location(); err != nil {
		return fmt.Errorf("invalid config: reminder.timezone: %w", err)
	}
	return nil
}

func (r ReminderConfig) Location() (*time.Location, error) {
	if r.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(r.Timezone)
}
