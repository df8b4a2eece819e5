package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gcode-inspect/pkg/errors"
	"gcode-inspect/pkg/gcode"
	"gcode-inspect/pkg/log"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gcode-inspect.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadEmptyPathGivesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesSomeKeys(t *testing.T) {
	path := writeConfig(t, `
analysis:
  rise_threshold: 1.5
  untooled_key: none
log:
  format: json
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 1.5, cfg.Analysis.RiseThreshold)
	assert.Equal(t, gcode.DefaultGroupTolerance, cfg.Analysis.GroupTolerance)
	assert.Equal(t, "none", cfg.Analysis.UntooledKey)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, ":8085", cfg.Server.Addr)
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConfigRead))
}

func TestLoadUnknownKey(t *testing.T) {
	_, err := Load(writeConfig(t, "analysis:\n  rise_treshold: 1\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConfigParse))
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		section string
		option  string
	}{
		{"zero threshold", "analysis:\n  rise_threshold: 0\n", "analysis", "rise_threshold"},
		{"negative tolerance", "analysis:\n  group_tolerance: -0.1\n", "analysis", "group_tolerance"},
		{"bad level", "log:\n  level: loud\n", "log", "level"},
		{"bad format", "log:\n  format: xml\n", "log", "format"},
		{"zero body", "server:\n  max_body_bytes: 0\n", "server", "max_body_bytes"},
		{"empty addr", "server:\n  addr: \"\"\n", "server", "addr"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.True(t, errors.IsConfig(err))

			var ce *ConfigError
			require.True(t, stderrors.As(err, &ce))
			assert.Equal(t, tt.section, ce.Section)
			assert.Equal(t, tt.option, ce.Option)
		})
	}
}

func TestAnalysisOptions(t *testing.T) {
	cfg := Default()
	cfg.Analysis.RiseThreshold = 2
	cfg.Analysis.UntooledKey = "pre"

	a := gcode.FromString("", cfg.AnalysisOptions()...)
	o := a.Options()
	assert.Equal(t, 2.0, o.RiseThreshold)
	assert.Equal(t, gcode.DefaultGroupTolerance, o.GroupTolerance)
	assert.Equal(t, "pre", o.UntooledKey)
}

func TestApplyLog(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "debug"

	l := log.New("t")
	cfg.ApplyLog(l)
	assert.Equal(t, log.DEBUG, l.GetLevel())
}

func TestStringRoundTrips(t *testing.T) {
	var cfg Config
	require.NoError(t, Parse([]byte(Default().String()), &cfg))
	assert.Equal(t, Default(), cfg)
}
