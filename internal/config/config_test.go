package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"brain2-conceptmap/internal/config"
	apperrors "brain2-conceptmap/internal/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile_Defaults(t *testing.T) {
	cfg, err := config.LoadFile("")
	require.NoError(t, err)

	assert.Equal(t, config.Development, cfg.Environment)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, config.SourceMemory, cfg.Notes.Source)
	assert.Equal(t, config.ProviderMock, cfg.LLM.Provider)

	layout := cfg.LayoutConfig()
	assert.Equal(t, 1200.0, layout.Width)
	assert.Equal(t, 40, layout.OverviewIterations)
	assert.Equal(t, 50, layout.ExpandedIterations)

	view := cfg.ViewSettings()
	assert.Equal(t, 0.4, view.MinZoom)
	assert.Equal(t, 2.0, view.MaxZoom)
}

func TestLoadFile_YAMLThenEnv(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", `
canvas:
  width: 1600
  height: 1000
layout:
  overview_iterations: 60
server:
  port: 9000
  read_timeout: 5s
`)
	t.Setenv("PORT", "9191")

	cfg, err := config.LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 1600.0, cfg.Canvas.Width)
	assert.Equal(t, 60, cfg.Layout.OverviewIterations)
	assert.Equal(t, 50, cfg.Layout.ExpandedIterations)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 9191, cfg.Server.Port, "environment overrides the file")
}

func TestLoad_UsesConfigFileEnv(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "canvas:\n  width: 800\n")
	t.Setenv("CONFIG_FILE", path)

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 800.0, cfg.Canvas.Width)
}

func TestLoadFile_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"zoom range inverted", "view:\n  min_zoom: 2\n  max_zoom: 1\n"},
		{"unknown field", "canvas:\n  depth: 3\n"},
		{"file source without path", "notes:\n  source: file\n"},
		{"dynamodb without table", "notes:\n  source: dynamodb\n  user_id: u1\n"},
		{"openai without key", "llm:\n  provider: openai\n"},
		{"unknown source", "notes:\n  source: postgres\n"},
		{"negative canvas", "canvas:\n  width: -5\n"},
		{"tracing without endpoint", "observability:\n  enable_tracing: true\n"},
	}
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "config.yaml", tt.yaml)
			_, err := config.LoadFile(path)
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
		})
	}
}

func TestLoadFile_MissingFile(t *testing.T) {
	_, err := config.LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeInternal, apperrors.TypeOf(err))
}

func TestValidate_ProductionRejectsMockProvider(t *testing.T) {
	cfg := config.Default()
	cfg.Environment = config.Production
	assert.True(t, apperrors.IsValidation(cfg.Validate()))

	cfg.LLM.Provider = config.ProviderOpenAI
	cfg.LLM.APIKey = "sk-test"
	assert.NoError(t, cfg.Validate())
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "canvas:\n  width: 1000\n")

	initial, err := config.LoadFile(path)
	require.NoError(t, err)

	w, err := config.NewWatcher(path, initial, zap.NewNop())
	require.NoError(t, err)
	defer w.Stop()

	changed := make(chan *config.Config, 1)
	w.OnChange(func(c *config.Config) { changed <- c })

	writeFile(t, dir, "config.yaml", "canvas:\n  width: 1400\n")

	select {
	case c := <-changed:
		assert.Equal(t, 1400.0, c.Canvas.Width)
		assert.Equal(t, 1400.0, w.Config().Canvas.Width)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not report the change")
	}
}

func TestWatcher_IgnoresInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "canvas:\n  width: 1000\n")
	initial, err := config.LoadFile(path)
	require.NoError(t, err)

	w, err := config.NewWatcher(path, initial, zap.NewNop())
	require.NoError(t, err)
	defer w.Stop()

	called := make(chan struct{}, 1)
	w.OnChange(func(*config.Config) { called <- struct{}{} })

	writeFile(t, dir, "config.yaml", "canvas:\n  width: -1\n")

	select {
	case <-called:
		t.Fatal("invalid configuration must not be published")
	case <-time.After(1500 * time.Millisecond):
	}
	assert.Equal(t, 1000.0, w.Config().Canvas.Width)
	w.Stop()
}

func TestAuth(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_PUBLIC_KEY", "")
	cfg, err := config.LoadFile("")
	require.NoError(t, err)
	assert.False(t, cfg.Auth.Enabled())

	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_AUDIENCE", "conceptmap, admin")
	cfg, err = config.LoadFile("")
	require.NoError(t, err)
	assert.True(t, cfg.Auth.Enabled())
	assert.Equal(t, "HS256", cfg.Auth.SigningMethod())
	assert.Equal(t, []string{"conceptmap", "admin"}, cfg.Auth.Audience)

	t.Setenv("JWT_PUBLIC_KEY", "-----BEGIN PUBLIC KEY-----")
	_, err = config.LoadFile("")
	assert.True(t, apperrors.IsValidation(err))
}
