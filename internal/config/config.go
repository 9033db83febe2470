package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPrefix        = "LOOKOUT"
	DefaultCheckInterval = "60s"
	DefaultSaveInterval  = "3600s"
	DefaultTimeout       = "10s"
	DefaultHistory       = 2000
	DefaultListen        = "0.0.0.0:8080"
	DefaultLogLevel      = "info"
)

// ErrNoObservers is returned when a config defines nothing to monitor
var ErrNoObservers = errors.New("no observers configured")

// Config represents the lookout configuration
type Config struct {
	Prefix        string            `yaml:"prefix" mapstructure:"prefix"`
	CheckInterval string            `yaml:"check_interval" mapstructure:"check_interval"`
	SaveInterval  string            `yaml:"save_interval" mapstructure:"save_interval"`
	Timeout       string            `yaml:"timeout" mapstructure:"timeout"`
	History       int               `yaml:"history" mapstructure:"history"`
	HistoryFile   string            `yaml:"history_file" mapstructure:"history_file"`
	Listen        string            `yaml:"listen" mapstructure:"listen"`
	LogLevel      string            `yaml:"log_level" mapstructure:"log_level"`
	Notify        bool              `yaml:"notify" mapstructure:"notify"`
	ArchiveDB     string            `yaml:"archive_db,omitempty" mapstructure:"archive_db"`
	Observers     []ObserverSpec    `yaml:"observers" mapstructure:"observers"`
	Settings      map[string]string `yaml:"settings,omitempty" mapstructure:"settings"`

	// path is the file the config was loaded from
	path string
}

// ObserverSpec describes one probe to register
type ObserverSpec struct {
	ID   string `yaml:"id" mapstructure:"id"`
	Name string `yaml:"name" mapstructure:"name"`
	Type string `yaml:"type" mapstructure:"type"` // web, router, redis, service, badness, loadavg
	Host string `yaml:"host,omitempty" mapstructure:"host"`
	Port int    `yaml:"port,omitempty" mapstructure:"port"`
	Path string `yaml:"path,omitempty" mapstructure:"path"`
}

// Setting is a single key/value pair of the flat configuration stream
type Setting struct {
	Key   string
	Value string
}

// GetConfigPath returns the path to the global config file
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "lookout", "config.yml"), nil
}

// Default returns the configuration written by InitConfig
func Default() *Config {
	return &Config{
		Prefix:        DefaultPrefix,
		CheckInterval: DefaultCheckInterval,
		SaveInterval:  DefaultSaveInterval,
		Timeout:       DefaultTimeout,
		History:       DefaultHistory,
		HistoryFile:   "history.txt",
		Listen:        DefaultListen,
		LogLevel:      DefaultLogLevel,
		Observers: []ObserverSpec{
			{ID: "WEB", Name: "Status page", Type: "web", Host: "0.0.0.0", Port: 8080},
			{ID: "REDIS", Name: "Redis", Type: "redis", Host: "127.0.0.1", Port: 6379},
			{ID: "LOAD", Name: "Load average", Type: "loadavg"},
		},
		Settings: map[string]string{},
	}
}

// InitConfig creates the config directory and file with default content
func InitConfig(force bool) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", configPath)
	}

	// Create the directory
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return SaveConfig(configPath, Default())
}

// Exists reports whether a config file is present at the global path
func Exists() bool {
	configPath, err := GetConfigPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(configPath)
	return err == nil
}

// SaveConfig writes cfg as YAML to path
func SaveConfig(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte("# Lookout configuration\n")
	if err := os.WriteFile(path, append(header, data...), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadConfig reads the config file at path, or the global config file when
// path is empty. LOOKOUT_* environment variables override file values.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = GetConfigPath()
		if err != nil {
			return nil, err
		}
	}

	// Settings keys contain dots (WEB.HOST), so nest on "::" instead
	v := viper.NewWithOptions(viper.KeyDelimiter("::"))
	def := Default()
	v.SetDefault("prefix", def.Prefix)
	v.SetDefault("check_interval", def.CheckInterval)
	v.SetDefault("save_interval", def.SaveInterval)
	v.SetDefault("timeout", def.Timeout)
	v.SetDefault("history", def.History)
	v.SetDefault("listen", def.Listen)
	v.SetDefault("log_level", def.LogLevel)

	v.SetEnvPrefix("LOOKOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer("::", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.path = path
	return &cfg, nil
}

// Path returns the file the config was loaded from, if any
func (c *Config) Path() string {
	return c.path
}

// HistoryPath returns the history file location. Relative paths live next
// to the config file.
func (c *Config) HistoryPath() string {
	return c.resolve(c.HistoryFile)
}

// ArchivePath returns the archive database location, or "" when disabled
func (c *Config) ArchivePath() string {
	return c.resolve(c.ArchiveDB)
}

func (c *Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.path == "" {
		return p
	}
	return filepath.Join(filepath.Dir(c.path), p)
}

// AddObserver adds an observer to the config
func (c *Config) AddObserver(spec ObserverSpec) error {
	if spec.ID == "" {
		return errors.New("observer id is required")
	}
	if c.FindObserver(spec.ID) != nil {
		return fmt.Errorf("observer with id '%s' already exists", spec.ID)
	}

	c.Observers = append(c.Observers, spec)
	return nil
}

// RemoveObserver removes an observer by id from the config
func (c *Config) RemoveObserver(id string) error {
	for i, o := range c.Observers {
		if strings.EqualFold(o.ID, id) {
			c.Observers = append(c.Observers[:i], c.Observers[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("observer '%s' not found", id)
}

// FindObserver returns the observer with the given id, or nil
func (c *Config) FindObserver(id string) *ObserverSpec {
	for i := range c.Observers {
		if strings.EqualFold(c.Observers[i].ID, id) {
			return &c.Observers[i]
		}
	}
	return nil
}

// Validate checks the durations and observer list
func (c *Config) Validate() error {
	for name, value := range map[string]string{
		"check_interval": c.CheckInterval,
		"save_interval":  c.SaveInterval,
		"timeout":        c.Timeout,
	} {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid %s duration: %w", name, err)
		}
		if d <= 0 {
			return fmt.Errorf("invalid %s duration: must be positive", name)
		}
	}

	if len(c.Observers) == 0 {
		return ErrNoObservers
	}

	seen := make(map[string]bool)
	for _, o := range c.Observers {
		if o.ID == "" {
			return fmt.Errorf("observer '%s' has no id", o.Name)
		}
		id := strings.ToUpper(o.ID)
		if seen[id] {
			return fmt.Errorf("observer with id '%s' already exists", o.ID)
		}
		seen[id] = true
	}

	return nil
}

// Durations returns the parsed check interval, save interval and timeout.
// Call Validate first.
func (c *Config) Durations() (check, save, timeout time.Duration) {
	check, _ = time.ParseDuration(c.CheckInterval)
	save, _ = time.ParseDuration(c.SaveInterval)
	timeout, _ = time.ParseDuration(c.Timeout)
	return check, save, timeout
}

// RegistryPrefix returns the configured prefix, or DefaultPrefix when blank
func (c *Config) RegistryPrefix() string {
	if strings.TrimSpace(c.Prefix) == "" {
		return DefaultPrefix
	}
	return c.Prefix
}

// Stream returns the flat configuration stream fed to the registry: the
// history cap first, then every entry of the settings map sorted by key.
// Keys are upper-cased and values have ${VAR} placeholders expanded.
func (c *Config) Stream() []Setting {
	var out []Setting

	if c.History != 0 {
		out = append(out, Setting{
			Key:   strings.ToUpper(c.RegistryPrefix()) + ".HISTORY",
			Value: strconv.Itoa(c.History),
		})
	}

	keys := make([]string, 0, len(c.Settings))
	for k := range c.Settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		out = append(out, Setting{
			Key:   strings.ToUpper(k),
			Value: ResolveEnv(c.Settings[k]),
		})
	}

	return out
}

// envPlaceholder matches ${VAR_NAME}
var envPlaceholder = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// ResolveEnv replaces environment variable placeholders with actual values
// Supports ${VAR_NAME} syntax only; a bare $ is left as written
func ResolveEnv(value string) string {
	return envPlaceholder.ReplaceAllStringFunc(value, func(m string) string {
		return os.Getenv(m[2 : len(m)-1])
	})
}
