package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettings_MissingFileUsesDefaults(t *testing.T) {
	settings, err := LoadSettings(filepath.Join(t.TempDir(), "absent.yaml"))

	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), settings)
}

func TestLoadSettings_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("grid_size: 25\ngrid_enabled: false\nplacement_policy: reject\n"), 0o644))

	settings, err := LoadSettings(path)

	require.NoError(t, err)
	assert.Equal(t, 25.0, settings.GridSize)
	assert.False(t, settings.GridEnabled)
	assert.Equal(t, "reject", settings.PlacementPolicy)
	assert.Equal(t, DefaultSettings().CornerClearance, settings.CornerClearance)
}

func TestLoadSettings_Invalid(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{name: "negative tolerance", content: "snap_tolerance: -1\n"},
		{name: "unknown policy", content: "placement_policy: shove\n"},
		{name: "malformed yaml", content: "grid_size: [\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "settings.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tc.content), 0o644))

			_, err := LoadSettings(path)
			assert.Error(t, err)
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")

	cfg := Load()

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.False(t, cfg.IsProduction())
}
