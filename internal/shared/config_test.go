package shared

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	require.Equal(t, "./higlint.db", c.Database.DSN)
	require.Equal(t, "./rulesets/hig.yaml", c.Audit.CorpusPath)
	require.Equal(t, []string{".swift"}, c.Audit.Extensions)
	require.Equal(t, "minor", c.Rules.SeverityThreshold)
	require.Equal(t, 12*time.Hour, c.Server.SessionDuration)
}

func TestLoadConfig_YAMLOverridesDefaults(t *testing.T) {
	p := filepath.Join(t.TempDir(), "higlint.yaml")
	y := `
audit:
  corpus_path: ./team-rules.yaml
  workers: 4
profile:
  category: media
  platforms: [ios, tvos]
rules:
  severity_threshold: important
logging:
  format: text
`
	require.NoError(t, os.WriteFile(p, []byte(y), 0o644))

	c, err := LoadConfig(p)
	require.NoError(t, err)

	require.Equal(t, "./team-rules.yaml", c.Audit.CorpusPath)
	require.Equal(t, 4, c.Audit.Workers)
	require.Equal(t, "media", c.Profile.Category)
	require.Equal(t, []string{"ios", "tvos"}, c.Profile.Platforms)
	require.Equal(t, "important", c.Rules.SeverityThreshold)
	require.Equal(t, "text", c.Logging.Format)

	// Untouched keys keep their defaults.
	require.Equal(t, "./higlint.db", c.Database.DSN)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("HIGLINT_DB_DSN", "/tmp/env.db")
	t.Setenv("HIGLINT_PROFILE", "game")
	t.Setenv("HIGLINT_PLATFORMS", "watchos,ios")

	c, err := LoadConfig("")
	require.NoError(t, err)

	require.Equal(t, "/tmp/env.db", c.Database.DSN)
	require.Equal(t, "game", c.Profile.Category)
	require.Equal(t, []string{"watchos", "ios"}, c.Profile.Platforms)
}
