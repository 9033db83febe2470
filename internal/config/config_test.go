package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestConfigOperations(t *testing.T) {
	// Setup temp home dir
	tmpHome := t.TempDir()
	t.Setenv("HOME", tmpHome)

	// Test InitConfig
	if err := InitConfig(false); err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}

	// Verify file exists
	configPath := filepath.Join(tmpHome, ".config", "lookout", "config.yml")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("Config file was not created")
	}
	if !Exists() {
		t.Error("Expected Exists to report the new config")
	}

	// A second init without force must refuse
	if err := InitConfig(false); err == nil {
		t.Error("Expected InitConfig to refuse overwriting")
	}

	// Test LoadConfig
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate, got %v", err)
	}
	if len(cfg.Observers) != 3 {
		t.Errorf("Expected 3 observers, got %d", len(cfg.Observers))
	}
	if cfg.History != DefaultHistory {
		t.Errorf("Expected history %d, got %d", DefaultHistory, cfg.History)
	}
	if cfg.HistoryPath() != filepath.Join(filepath.Dir(configPath), "history.txt") {
		t.Errorf("Expected history file next to config, got %s", cfg.HistoryPath())
	}
	if cfg.HistoryFile != "history.txt" {
		t.Errorf("Expected the stored history file to stay relative, got %s", cfg.HistoryFile)
	}
	if cfg.ArchivePath() != "" {
		t.Errorf("Expected archive disabled by default, got %s", cfg.ArchivePath())
	}
}

func TestObserverOperations(t *testing.T) {
	cfg := Default()

	if err := cfg.AddObserver(ObserverSpec{ID: "JOB", Type: "badness", Path: "/run/job"}); err != nil {
		t.Fatalf("AddObserver failed: %v", err)
	}
	if err := cfg.AddObserver(ObserverSpec{ID: "job", Type: "web"}); err == nil {
		t.Error("Expected duplicate id to be rejected")
	}
	if err := cfg.AddObserver(ObserverSpec{Type: "web"}); err == nil {
		t.Error("Expected missing id to be rejected")
	}

	found := cfg.FindObserver("Job")
	if found == nil || found.Path != "/run/job" {
		t.Fatalf("Expected to find JOB, got %v", found)
	}

	if err := cfg.RemoveObserver("JOB"); err != nil {
		t.Fatalf("RemoveObserver failed: %v", err)
	}
	if cfg.FindObserver("JOB") != nil {
		t.Error("Expected JOB to be removed")
	}
	if err := cfg.RemoveObserver("JOB"); err == nil {
		t.Error("Expected error removing a missing observer")
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	cfg := Default()
	cfg.Notify = true
	cfg.ArchiveDB = "archive.db"
	cfg.Settings["web.port"] = "8081"

	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.Path() != path {
		t.Errorf("Expected path %s, got %s", path, loaded.Path())
	}
	if !loaded.Notify {
		t.Error("Expected notify to survive the round trip")
	}
	if loaded.ArchivePath() != filepath.Join(filepath.Dir(path), "archive.db") {
		t.Errorf("Unexpected archive path %s", loaded.ArchivePath())
	}
	if loaded.Settings["web.port"] != "8081" {
		t.Errorf("Expected web.port setting, got %v", loaded.Settings)
	}
	if len(loaded.Observers) != len(cfg.Observers) {
		t.Errorf("Expected %d observers, got %d", len(cfg.Observers), len(loaded.Observers))
	}
}

func TestLoadConfigSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := `prefix: MON
check_interval: 5s
observers:
  - id: WEB
    name: Frontend
    type: web
    host: example.com
    port: 80
settings:
  WEB.HOST: ${LOOKOUT_TEST_HOST}
  web.port: "8081"
  mon.history: "50"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LOOKOUT_TEST_HOST", "backend.internal")
	t.Setenv("LOOKOUT_LISTEN", "127.0.0.1:9999")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.CheckInterval != "5s" {
		t.Errorf("Expected check interval 5s, got %s", cfg.CheckInterval)
	}
	if cfg.SaveInterval != DefaultSaveInterval {
		t.Errorf("Expected default save interval, got %s", cfg.SaveInterval)
	}
	if cfg.Listen != "127.0.0.1:9999" {
		t.Errorf("Expected env override for listen, got %s", cfg.Listen)
	}

	settings := cfg.Stream()
	want := []Setting{
		{Key: "MON.HISTORY", Value: "2000"},
		{Key: "MON.HISTORY", Value: "50"},
		{Key: "WEB.HOST", Value: "backend.internal"},
		{Key: "WEB.PORT", Value: "8081"},
	}
	if len(settings) != len(want) {
		t.Fatalf("Expected %d settings, got %d: %v", len(want), len(settings), settings)
	}
	for i := range want {
		if settings[i] != want[i] {
			t.Errorf("Setting %d: expected %v, got %v", i, want[i], settings[i])
		}
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Observers = nil
	if err := cfg.Validate(); !errors.Is(err, ErrNoObservers) {
		t.Errorf("Expected ErrNoObservers, got %v", err)
	}

	cfg = Default()
	cfg.CheckInterval = "soon"
	if err := cfg.Validate(); err == nil {
		t.Error("Expected invalid duration error")
	}

	cfg = Default()
	cfg.Observers = append(cfg.Observers, ObserverSpec{ID: "web", Type: "web"})
	if err := cfg.Validate(); err == nil {
		t.Error("Expected duplicate id error")
	}

	check, save, timeout := Default().Durations()
	if check.Seconds() != 60 || save.Seconds() != 3600 || timeout.Seconds() != 10 {
		t.Errorf("Unexpected default durations %s %s %s", check, save, timeout)
	}
}

func TestResolveEnv(t *testing.T) {
	t.Setenv("TEST_VAR", "world")

	val := ResolveEnv("hello ${TEST_VAR}")
	if val != "hello world" {
		t.Errorf("Expected 'hello world', got '%s'", val)
	}

	literal := ResolveEnv("/srv/$TEST_VAR/job-$1 ${}")
	if literal != "/srv/$TEST_VAR/job-$1 ${}" {
		t.Errorf("Expected bare $ to be left alone, got '%s'", literal)
	}
}

func TestRegistryPrefix(t *testing.T) {
	cfg := Default()
	cfg.Prefix = ""
	cfg.History = 12

	if got := cfg.RegistryPrefix(); got != DefaultPrefix {
		t.Errorf("Expected %s, got %s", DefaultPrefix, got)
	}

	stream := cfg.Stream()
	if len(stream) == 0 || stream[0].Key != DefaultPrefix+".HISTORY" {
		t.Fatalf("Expected %s.HISTORY first, got %v", DefaultPrefix, stream)
	}

	cfg.Prefix = "edge"
	if got := cfg.RegistryPrefix(); got != "edge" {
		t.Errorf("Expected edge, got %s", got)
	}
	if got := cfg.Stream()[0].Key; got != "EDGE.HISTORY" {
		t.Errorf("Expected EDGE.HISTORY, got %s", got)
	}
}
