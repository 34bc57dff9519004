package main

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("ledsense", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func TestConfigDefaults(t *testing.T) {
	fs := newFlagSet()
	cfg, err := loadConfig(fs, []string{"clear"})
	require.NoError(t, err)

	assert.Equal(t, defaultConfig(), cfg)
	assert.Equal(t, []string{"clear"}, fs.Args())
}

func TestConfigPrecedence(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "ledsense.yaml")
	yaml := "pixels: 16\nbrightness: 40\nopc: yaml:7890\nstore: redis\ninterval: 250ms\nlinearize: false\n"
	require.NoError(t, os.WriteFile(fn, []byte(yaml), 0o600))

	t.Setenv("LEDSENSE_BRIGHTNESS", "60")
	t.Setenv("LEDSENSE_OPC", "env:7890")
	t.Setenv("LEDSENSE_MQTT_TOPIC", "env/topic")

	fs := newFlagSet()
	cfg, err := loadConfig(fs, []string{"-config", fn, "-opc", "flag:7890", "watch"})
	require.NoError(t, err)

	// File values beat the defaults
	assert.Equal(t, 16, cfg.Pixels)
	assert.Equal(t, "redis", cfg.Store)
	assert.Equal(t, 250*time.Millisecond, cfg.Interval)
	assert.False(t, cfg.Linearize)

	// The environment beats the file
	assert.Equal(t, 60.0, cfg.Brightness)
	assert.Equal(t, "env/topic", cfg.MQTTTopic)

	// Flags beat everything
	assert.Equal(t, "flag:7890", cfg.OPC)

	// Untouched settings keep their defaults
	assert.Equal(t, "default", cfg.Calibration)
	assert.Equal(t, []string{"watch"}, fs.Args())
}

func TestConfigErrors(t *testing.T) {
	_, err := loadConfig(newFlagSet(), []string{"-config", filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)

	fn := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(fn, []byte("pixles: 3\n"), 0o600))
	_, err = loadConfig(newFlagSet(), []string{"-config", fn})
	assert.Error(t, err)

	t.Setenv("LEDSENSE_PIXELS", "many")
	_, err = loadConfig(newFlagSet(), nil)
	assert.Error(t, err)

	_, err = loadConfig(newFlagSet(), []string{"-pixels", "-1"})
	assert.Error(t, err)

	_, err = loadConfig(newFlagSet(), []string{"-no-such-flag"})
	assert.Error(t, err)
}
