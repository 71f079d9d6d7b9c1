package cli

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Konsultn-Engineering/pitwall/connector"
)

const (
	maxWalkDepth = 25

	redacted = "****"
)

var configNames = []string{"pitwall.yaml", "pitwall.yml"}

// Config represents the pitwall configuration from pitwall.yaml.
type Config struct {
	// Provider names the registered connector provider: postgres or pq.
	Provider string         `mapstructure:"provider" json:"provider"`
	Database DatabaseConfig `mapstructure:"database" json:"database"`
	Exec     ExecConfig     `mapstructure:"exec" json:"exec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	URL            string            `mapstructure:"url" json:"url,omitempty"`
	Host           string            `mapstructure:"host" json:"host"`
	Port           int               `mapstructure:"port" json:"port"`
	Name           string            `mapstructure:"name" json:"name"`
	User           string            `mapstructure:"user" json:"user"`
	Password       string            `mapstructure:"password" json:"password,omitempty"`
	SSLMode        string            `mapstructure:"sslmode" json:"sslmode"`
	Params         map[string]string `mapstructure:"params" json:"params,omitempty"`
	MaxOpen        int               `mapstructure:"max_open" json:"max_open"`
	ConnectTimeout time.Duration     `mapstructure:"connect_timeout" json:"connect_timeout"`
	QueryTimeout   time.Duration     `mapstructure:"query_timeout" json:"query_timeout"`
	Retries        int               `mapstructure:"retries" json:"retries"`
	RetryDelay     time.Duration     `mapstructure:"retry_delay" json:"retry_delay"`
	TraceLevel     string            `mapstructure:"trace_level" json:"trace_level,omitempty"`
}

// ExecConfig holds defaults for the exec command.
type ExecConfig struct {
	AutoRollback   bool     `mapstructure:"auto_rollback" json:"auto_rollback"`
	LogQueries     bool     `mapstructure:"log_queries" json:"log_queries"`
	Trace          bool     `mapstructure:"trace" json:"trace"`
	SuppressErrors bool     `mapstructure:"suppress_errors" json:"suppress_errors"`
	IDFormat       string   `mapstructure:"id_format" json:"id_format"`
	Preamble       []string `mapstructure:"preamble" json:"preamble,omitempty"`
}

// LoadConfig discovers and loads configuration with precedence
// flags > env > config file > defaults. Flags are applied by the caller.
//
// Returns the loaded config, the path to the config file (empty if none
// found), and any error encountered.
func LoadConfig(explicitConfigPath string) (*Config, string, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("PITWALL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configPath, err := findConfigFile(explicitConfigPath)
	if err != nil {
		return nil, "", err
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, configPath, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, configPath, fmt.Errorf("unmarshaling config: %w", err)
	}

	switch cfg.Exec.IDFormat {
	case "uuid", "ulid":
	default:
		return nil, configPath, fmt.Errorf("invalid exec.id_format %q (want uuid or ulid)", cfg.Exec.IDFormat)
	}

	return &cfg, configPath, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("provider", "postgres")

	v.SetDefault("database.url", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.sslmode", "prefer")
	v.SetDefault("database.max_open", 4)
	v.SetDefault("database.connect_timeout", 10*time.Second)
	v.SetDefault("database.query_timeout", time.Duration(0))
	v.SetDefault("database.retries", 0)
	v.SetDefault("database.retry_delay", time.Second)
	v.SetDefault("database.trace_level", "")

	v.SetDefault("exec.auto_rollback", false)
	v.SetDefault("exec.log_queries", false)
	v.SetDefault("exec.trace", false)
	v.SetDefault("exec.suppress_errors", false)
	v.SetDefault("exec.id_format", "uuid")
	v.SetDefault("exec.preamble", []string{})
}

// findConfigFile finds the config file to use.
// If explicitPath is provided, it validates the file exists.
// Otherwise, it walks up from cwd looking for pitwall.yaml or pitwall.yml,
// stopping at a .git directory or after maxWalkDepth levels.
func findConfigFile(explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicitPath)
		}
		return explicitPath, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting cwd: %w", err)
	}

	dir := cwd
	for i := 0; i < maxWalkDepth; i++ {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}

		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			break
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", nil
}

// Connector translates the database section into a connector.Config.
func (c *Config) Connector() connector.Config {
	db := c.Database
	cfg := connector.Config{
		URL:            db.URL,
		Host:           db.Host,
		Port:           db.Port,
		Database:       db.Name,
		Username:       db.User,
		Password:       db.Password,
		SSLMode:        db.SSLMode,
		Params:         db.Params,
		Pool:           connector.PoolConfig{MaxOpen: db.MaxOpen},
		ConnectTimeout: db.ConnectTimeout,
		QueryTimeout:   db.QueryTimeout,
		TraceLevel:     db.TraceLevel,
	}
	if db.Retries > 0 {
		cfg.Retry = &connector.RetryConfig{
			MaxRetries: db.Retries,
			BaseDelay:  db.RetryDelay,
			MaxDelay:   30 * time.Second,
			Backoff:    2,
		}
	}
	return cfg
}

// Redacted returns a copy safe to print: the password and any password in
// the URL are masked.
func (c *Config) Redacted() *Config {
	out := *c
	if out.Database.Password != "" {
		out.Database.Password = redacted
	}
	if out.Database.URL != "" {
		if u, err := url.Parse(out.Database.URL); err == nil {
			out.Database.URL = u.Redacted()
		}
	}
	if c.Database.Params != nil {
		out.Database.Params = make(map[string]string, len(c.Database.Params))
		for k, v := range c.Database.Params {
			if strings.Contains(strings.ToLower(k), "password") {
				v = redacted
			}
			out.Database.Params[k] = v
		}
	}
	return &out
}

// ResolveString returns the first non-empty string from values. Used to
// implement precedence: flag > config > default.
func ResolveString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// ResolveBool reports whether any of values is true.
func ResolveBool(values ...bool) bool {
	for _, v := range values {
		if v {
			return true
		}
	}
	return false
}
