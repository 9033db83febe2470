package cmd

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/juststeveking/lookout/internal/config"
	"github.com/juststeveking/lookout/internal/monitor"
	"github.com/juststeveking/lookout/internal/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeConfig(t *testing.T, cfg *config.Config) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, config.SaveConfig(path, cfg))
	return path
}

func loadConfigFixture(t *testing.T) *config.Config {
	t.Helper()

	dir := t.TempDir()
	loadPath := filepath.Join(dir, "loadavg")
	require.NoError(t, os.WriteFile(loadPath, []byte("0.75 0.50 0.25 1/100 42\n"), 0644))

	cfg := config.Default()
	cfg.LogLevel = "error"
	cfg.Observers = []config.ObserverSpec{
		{ID: "LOAD", Name: "Load", Type: "loadavg", Path: loadPath},
	}
	return cfg
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		configFile = ""
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestCheckCommand(t *testing.T) {
	path := writeConfig(t, loadConfigFixture(t))

	out, err := run(t, "check", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "LOAD")
	assert.Contains(t, out, "75 %")
}

func TestCheckCommandFailing(t *testing.T) {
	cfg := loadConfigFixture(t)
	cfg.Observers = append(cfg.Observers, config.ObserverSpec{ID: "JOB", Type: "badness"})
	path := writeConfig(t, cfg)

	out, err := run(t, "check", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 observers failing")
	assert.Contains(t, out, "down")
}

func TestCheckCommandNoObservers(t *testing.T) {
	cfg := config.Default()
	cfg.Observers = nil
	path := writeConfig(t, cfg)

	_, err := run(t, "check", "--config", path)
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrNoObservers)
}

func TestHistoryCommand(t *testing.T) {
	cfg := loadConfigFixture(t)
	path := writeConfig(t, cfg)

	loaded, err := config.LoadConfig(path)
	require.NoError(t, err)

	reg, err := newRegistry(loaded, zap.NewNop())
	require.NoError(t, err)
	reg.Update(context.Background())
	require.NoError(t, monitor.SaveHistory(reg, loaded.HistoryPath()))

	out, err := run(t, "history", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "LOAD")
	assert.Contains(t, out, "1 samples (1 with readings)")
}

func TestNewRegistryBlankPrefix(t *testing.T) {
	cfg := loadConfigFixture(t)
	cfg.Prefix = ""
	cfg.History = 7
	cfg.HistoryFile = ""

	reg, err := newRegistry(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 7, reg.MaxHistory())
}

func TestParseStatusFromServer(t *testing.T) {
	reg := monitor.NewRegistry("LOOKOUT", nil)
	reg.AddObserver(monitor.NewNetworkObserver(monitor.FlavorRedis, "REDIS", "Redis", "127.0.0.1", 1))
	reg.Update(context.Background())

	ts := httptest.NewServer(web.NewRouter(reg, nil))
	defer ts.Close()

	out, err := run(t, "status", "--remote", ts.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "REDIS")
	assert.Contains(t, out, "down")
	assert.Contains(t, out, "Updated ")
}

func TestParseStatus(t *testing.T) {
	snap, err := parseStatus([]byte(`{"status":true,"value":{"updated":"2026-03-01T12:00:00Z","observers":[
		{"id":"WEB","name":"Web","status":"running","value":7,"samples":3},
		{"id":"LOAD","name":"Load","unit":"%","status":"value","value":52,"samples":3}]}}`))
	require.NoError(t, err)
	require.Len(t, snap.Observers, 2)
	assert.Equal(t, monitor.StatusRunning, snap.Observers[0].Status)
	assert.Equal(t, int32(7), snap.Observers[0].Value)
	assert.Equal(t, "%", snap.Observers[1].Unit)
	assert.Equal(t, 2026, snap.Updated.Year())

	_, err = parseStatus([]byte(`{"status":false,"error":"boom"}`))
	assert.ErrorContains(t, err, "boom")

	_, err = parseStatus([]byte(`<html>`))
	assert.Error(t, err)
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "7 ms", formatValue(monitor.Entry{Status: monitor.StatusRunning, Value: 7}))
	assert.Equal(t, "52 %", formatValue(monitor.Entry{Status: monitor.StatusValue, Value: 52, Unit: "%"}))
	assert.Equal(t, "52", formatValue(monitor.Entry{Status: monitor.StatusValue, Value: 52}))
	assert.Equal(t, "-", formatValue(monitor.Entry{Status: monitor.StatusDown}))
}

func TestDescribeTarget(t *testing.T) {
	assert.Equal(t, "redis:6379", describeTarget(config.ObserverSpec{Host: "redis", Port: 6379}))
	assert.Equal(t, "/run/job", describeTarget(config.ObserverSpec{Path: "/run/job"}))
	assert.Equal(t, "", describeTarget(config.ObserverSpec{}))
}
