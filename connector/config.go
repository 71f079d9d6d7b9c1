package connector

import (
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/tracelog"
)

// Config represents database connection configuration.
type Config struct {
	// URL, when set, is used as the connection string and the discrete
	// fields below are ignored.
	URL            string            `json:"url,omitempty" yaml:"url,omitempty"`
	Host           string            `json:"host" yaml:"host"`
	Port           int               `json:"port" yaml:"port"`
	Database       string            `json:"database" yaml:"database"`
	Username       string            `json:"username" yaml:"username"`
	Password       string            `json:"password" yaml:"password"`
	SSLMode        string            `json:"ssl_mode" yaml:"ssl_mode"`
	Params         map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
	Pool           PoolConfig        `json:"pool" yaml:"pool"`
	ConnectTimeout time.Duration     `json:"connect_timeout" yaml:"connect_timeout"`
	QueryTimeout   time.Duration     `json:"query_timeout" yaml:"query_timeout"`
	Retry          *RetryConfig      `json:"retry,omitempty" yaml:"retry,omitempty"`

	// TraceLevel enables wire-level statement tracing on providers that
	// support it: trace, debug, info, warn, error or none.
	TraceLevel string `json:"trace_level,omitempty" yaml:"trace_level,omitempty"`
	// Logger receives wire-level traces. Not serialized.
	Logger tracelog.Logger `json:"-" yaml:"-"`
}

// PoolConfig defines connection pool settings.
type PoolConfig struct {
	MaxOpen         int           `json:"max_open" yaml:"max_open"`
	MaxIdle         int           `json:"max_idle" yaml:"max_idle"`
	MaxLifetime     time.Duration `json:"max_lifetime" yaml:"max_lifetime"`
	MaxIdleTime     time.Duration `json:"max_idle_time" yaml:"max_idle_time"`
	HealthCheckFreq time.Duration `json:"health_check_freq" yaml:"health_check_freq"`
}

// RetryConfig defines connection retry behavior. Backoff multiplies the
// delay after every failed attempt; values below 1 are treated as 2.
type RetryConfig struct {
	MaxRetries int           `json:"max_retries" yaml:"max_retries"`
	BaseDelay  time.Duration `json:"base_delay" yaml:"base_delay"`
	MaxDelay   time.Duration `json:"max_delay" yaml:"max_delay"`
	Backoff    float64       `json:"backoff" yaml:"backoff"`
}

// Validate checks the fields needed to reach a server.
func (c Config) Validate() error {
	if c.URL != "" {
		return nil
	}
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.Database == "" {
		return fmt.Errorf("database is required")
	}
	if c.Retry != nil && c.Retry.MaxRetries < 0 {
		return fmt.Errorf("invalid max_retries: %d", c.Retry.MaxRetries)
	}
	if _, err := c.TraceLogLevel(); err != nil {
		return err
	}
	return nil
}

// DSN renders the connection string for scheme, or returns URL verbatim.
func (c Config) DSN(scheme string) string {
	if c.URL != "" {
		return c.URL
	}
	b := NewDSNBuilder(scheme).
		Auth(c.Username, c.Password).
		Host(c.Host, c.Port).
		Database(c.Database).
		Param("sslmode", c.SSLMode)
	if c.ConnectTimeout > 0 {
		b.Param("connect_timeout", fmt.Sprint(int(c.ConnectTimeout.Seconds())))
	}
	return b.Params(c.Params).Build()
}

// TraceLogLevel parses TraceLevel. An empty level means tracing is off and
// yields tracelog.LogLevelNone.
func (c Config) TraceLogLevel() (tracelog.LogLevel, error) {
	if c.TraceLevel == "" {
		return tracelog.LogLevelNone, nil
	}
	level, err := tracelog.LogLevelFromString(strings.ToLower(c.TraceLevel))
	if err != nil {
		return tracelog.LogLevelNone, fmt.Errorf("invalid trace_level %q: %w", c.TraceLevel, err)
	}
	return level, nil
}
