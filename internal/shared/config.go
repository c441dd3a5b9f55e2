package shared

import (
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Database struct {
		Driver string `yaml:"driver"` // "sqlite" (default)
		DSN    string `yaml:"dsn"`    // "./higlint.db"
	} `yaml:"database"`

	Audit struct {
		CorpusPath  string        `yaml:"corpus_path"` // "./rulesets/hig.yaml"
		Extensions  []string      `yaml:"extensions"`  // [".swift"]
		Workers     int           `yaml:"workers"`     // 0 = GOMAXPROCS
		ReadTimeout time.Duration `yaml:"read_timeout"`
		NoCache     bool          `yaml:"no_cache"`
	} `yaml:"audit"`

	Profile struct {
		Category  string   `yaml:"category"`
		Platforms []string `yaml:"platforms"`
	} `yaml:"profile"`

	Rules struct {
		SeverityThreshold  string   `yaml:"severity_threshold"` // "minor" keeps everything
		Disabled           []string `yaml:"disabled"`
		TapTargetMinPoints float64  `yaml:"tap_target_min_points"`
	} `yaml:"rules"`

	Reporting struct {
		OutDir string `yaml:"out_dir"` // "./reports"
	} `yaml:"reporting"`

	Server struct {
		Addr            string        `yaml:"addr"` // ":8080"
		SessionDuration time.Duration `yaml:"session_duration"`
		AllowedOrigins  []string      `yaml:"allowed_origins"`
	} `yaml:"server"`

	Logging struct {
		Format string `yaml:"format"` // "json"|"text"
		Level  string `yaml:"level"`  // "info"|"debug"|"warn"|"error"
	} `yaml:"logging"`
}

func DefaultConfig() Config {
	var c Config
	c.Database.Driver = "sqlite"
	c.Database.DSN = "./higlint.db"
	c.Audit.CorpusPath = "./rulesets/hig.yaml"
	c.Audit.Extensions = []string{".swift"}
	c.Audit.ReadTimeout = 10 * time.Second
	c.Rules.SeverityThreshold = "minor"
	c.Reporting.OutDir = "./reports"
	c.Server.Addr = ":8080"
	c.Server.SessionDuration = 12 * time.Hour
	c.Logging.Format = "json"
	c.Logging.Level = "info"
	return c
}

func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	if path != "" {
		if b, err := os.ReadFile(path); err == nil {
			_ = yaml.Unmarshal(b, &c)
		}
	}
	// Env overrides (simple, explicit)
	if v := os.Getenv("HIGLINT_DB_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("HIGLINT_CORPUS"); v != "" {
		c.Audit.CorpusPath = v
	}
	if v := os.Getenv("HIGLINT_PROFILE"); v != "" {
		c.Profile.Category = v
	}
	if v := os.Getenv("HIGLINT_PLATFORMS"); v != "" {
		c.Profile.Platforms = strings.Split(v, ",")
	}
	if v := os.Getenv("HIGLINT_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("HIGLINT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("HIGLINT_OUT_DIR"); v != "" {
		c.Reporting.OutDir = v
	}
	return c, nil
}
