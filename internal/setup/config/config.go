package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

var (
	ErrConfigFileNotFound    = errors.New("could not find config file in any config path")
	ErrConfigVersionMissing  = errors.New("config file is missing version field")
	ErrConfigVersionMismatch = errors.New("config file version mismatch")
)

// Current version of the config files.
const (
	CurrentCommonVersion = 1
	CurrentBotVersion    = 1
	CurrentWorkerVersion = 1
)

// Config represents the entire application configuration.
type Config struct {
	Common CommonConfig `koanf:"common"`
	Bot    BotConfig    `koanf:"bot"`
	Worker WorkerConfig `koanf:"worker"`
}

// CommonConfig contains configuration shared between the bot, the worker and the CLI.
type CommonConfig struct {
	// Version of the common config.
	Version      int                    `koanf:"version"`
	Debug        Debug                  `koanf:"debug"`
	PostgreSQL   PostgreSQL             `koanf:"postgresql"`
	Redis        Redis                  `koanf:"redis"`
	Cache        Cache                  `koanf:"cache"`
	Fetch        Fetch                  `koanf:"fetch"`
	Integrations map[string]Integration `koanf:"integrations"`
}

// BotConfig contains Discord bot specific configuration.
type BotConfig struct {
	// Version of the bot config.
	Version int `koanf:"version"`
	// Request timeout in milliseconds.
	RequestTimeout int `koanf:"request_timeout"`
	// Discord configuration.
	Discord Discord `koanf:"discord"`
}

// WorkerConfig contains worker specific configuration.
type WorkerConfig struct {
	// Version of the worker config.
	Version int `koanf:"version"`
	// Purge worker configuration.
	Purge Purge `koanf:"purge"`
}

// Debug contains debug-related configuration.
type Debug struct {
	// Log level (debug, info, warn, error).
	LogLevel string `koanf:"log_level"`
	// Maximum log sessions to keep.
	MaxLogsToKeep int `koanf:"max_logs_to_keep"`
	// Maximum lines per log file.
	MaxLogLines int `koanf:"max_log_lines"`
}

// PostgreSQL contains database connection configuration.
type PostgreSQL struct {
	// Database hostname.
	Host string `koanf:"host"`
	// Database port.
	Port int `koanf:"port"`
	// Database username.
	User string `koanf:"user"`
	// Database password.
	Password string `koanf:"password"`
	// Database name.
	DBName string `koanf:"db_name"`
	// Use TLS for the connection.
	SSL bool `koanf:"ssl"`
	// Maximum open connections.
	MaxOpenConns int `koanf:"max_open_conns"`
	// Maximum idle connections.
	MaxIdleConns int `koanf:"max_idle_conns"`
	// Connection lifetime in minutes.
	MaxLifetime int `koanf:"max_lifetime"`
	// Idle timeout in minutes.
	MaxIdleTime int `koanf:"max_idle_time"`
}

// Redis contains Redis connection configuration.
type Redis struct {
	// Redis hostname.
	Host string `koanf:"host"`
	// Redis port.
	Port int `koanf:"port"`
	// Redis username.
	Username string `koanf:"username"`
	// Redis password.
	Password string `koanf:"password"`
}

// Cache contains cache configuration.
type Cache struct {
	// Disable to run every lookup against the database.
	Enabled bool `koanf:"enabled"`
	// Lifetime of cached servers in seconds.
	ServerTTL int `koanf:"server_ttl"`
	// Lifetime of cached daily post counts in seconds.
	PostCountTTL int `koanf:"post_count_ttl"`
}

// ServerTTLDuration returns the server cache lifetime.
func (c Cache) ServerTTLDuration() time.Duration {
	return durationOr(c.ServerTTL, 2*time.Hour)
}

// PostCountTTLDuration returns the post count cache lifetime.
func (c Cache) PostCountTTLDuration() time.Duration {
	return durationOr(c.PostCountTTL, 2*time.Hour)
}

// Fetch contains configuration shared by integration clients.
type Fetch struct {
	// Request timeout in milliseconds.
	Timeout int `koanf:"timeout"`
	// Maximum media size in bytes.
	MaxMediaSize int `koanf:"max_media_size"`
	// Maximum retry attempts.
	MaxRetries uint64 `koanf:"max_retries"`
	// Initial retry delay in milliseconds.
	RetryDelay int `koanf:"retry_delay"`
	// Maximum retry delay in milliseconds.
	RetryMaxDelay int `koanf:"retry_max_delay"`
	// User agent sent with every request.
	UserAgent string `koanf:"user_agent"`
	// Circuit breaker guarding the integration APIs.
	CircuitBreaker CircuitBreaker `koanf:"circuit_breaker"`
}

// CircuitBreaker contains circuit breaker configuration.
type CircuitBreaker struct {
	// Maximum number of requests allowed to pass through when the circuit is half-open.
	MaxRequests uint32 `koanf:"max_requests"`
	// The cyclic period of the closed state for the circuit breaker to clear the internal counts.
	Interval int `koanf:"interval"`
	// The period of the open state after which the state of the circuit breaker becomes half-open.
	Timeout int `koanf:"timeout"`
}

// TimeoutDuration returns the per-request timeout.
func (f Fetch) TimeoutDuration() time.Duration {
	if f.Timeout <= 0 {
		return 10 * time.Second
	}
	return time.Duration(f.Timeout) * time.Millisecond
}

// RetryDelays returns the initial and maximum delay between retries.
func (f Fetch) RetryDelays() (time.Duration, time.Duration) {
	delay := time.Duration(f.RetryDelay) * time.Millisecond
	if f.RetryDelay <= 0 {
		delay = 500 * time.Millisecond
	}

	maxDelay := time.Duration(f.RetryMaxDelay) * time.Millisecond
	if f.RetryMaxDelay <= 0 {
		maxDelay = 5 * time.Second
	}

	return delay, max(delay, maxDelay)
}

// MediaLimit returns the maximum media size in bytes.
func (f Fetch) MediaLimit() int64 {
	if f.MaxMediaSize <= 0 {
		return 1 << 20
	}
	return int64(f.MaxMediaSize)
}

// Integration contains the configuration of a single integration client.
type Integration struct {
	// Enable the integration for this deployment.
	Enabled bool `koanf:"enabled"`
	// Default post format, empty for the built-in format.
	PostFormat string `koanf:"post_format"`
	// Override of the API base URL.
	BaseURL string `koanf:"base_url"`
}

// Discord contains Discord bot configuration.
type Discord struct {
	// Discord bot token for authentication.
	Token string `koanf:"token"`
	// User IDs allowed to run bot administration commands.
	AdminIDs []uint64 `koanf:"admin_ids"`
	// Maximum concurrent message handlers.
	MaxConcurrent int `koanf:"max_concurrent"`
}

// Purge contains the post purge worker configuration.
type Purge struct {
	// Cron schedule of purge runs.
	Schedule string `koanf:"schedule"`
	// Age of posts to delete, e.g. "30d".
	OlderThan string `koanf:"older_than"`
	// Number of posts deleted per batch.
	BatchSize int `koanf:"batch_size"`
	// Pause between batches in milliseconds.
	Sleep int `koanf:"sleep"`
}

// SleepDuration returns the pause between purge batches.
func (p Purge) SleepDuration() time.Duration {
	if p.Sleep < 0 {
		return 0
	}
	return time.Duration(p.Sleep) * time.Millisecond
}

// LoadConfig loads the configuration files from the default search paths.
// Returns the config along with the used config directory.
func LoadConfig() (*Config, string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return LoadConfigFrom(
		".embedder",
		homeDir+"/.embedder/config",
		"/etc/embedder/config",
		"/app/config",
		"config",
		".",
	)
}

// LoadConfigFrom loads each config file from the first of the given paths
// that contains it.
func LoadConfigFrom(configPaths ...string) (*Config, string, error) {
	k := koanf.New(".")

	var usedConfigPath string

	for _, configName := range []string{"common", "bot", "worker"} {
		configLoaded := false

		for _, path := range configPaths {
			configPath := fmt.Sprintf("%s/%s.toml", path, configName)
			section := koanf.New(".")
			if err := section.Load(file.Provider(configPath), toml.Parser()); err == nil {
				if err := k.MergeAt(section, configName); err != nil {
					return nil, "", fmt.Errorf("error merging %s.toml: %w", configName, err)
				}
				configLoaded = true

				if usedConfigPath == "" {
					usedConfigPath = path
				}

				break
			}
		}

		if !configLoaded {
			return nil, "", fmt.Errorf("%w: %s.toml", ErrConfigFileNotFound, configName)
		}
	}

	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, "", fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.checkVersions(); err != nil {
		return nil, "", err
	}

	return &config, usedConfigPath, nil
}

// checkVersions checks that every config file has the expected version.
func (c *Config) checkVersions() error {
	versions := []struct {
		name     string
		current  int
		expected int
	}{
		{"common", c.Common.Version, CurrentCommonVersion},
		{"bot", c.Bot.Version, CurrentBotVersion},
		{"worker", c.Worker.Version, CurrentWorkerVersion},
	}

	for _, v := range versions {
		if v.current == 0 {
			return fmt.Errorf("%w: %s.toml", ErrConfigVersionMissing, v.name)
		}

		if v.current != v.expected {
			return fmt.Errorf("%w: %s.toml (got: %d, expected: %d)",
				ErrConfigVersionMismatch, v.name, v.current, v.expected)
		}
	}

	return nil
}

// durationOr converts seconds to a duration, using fallback for unset values.
func durationOr(seconds int, fallback time.Duration) time.Duration {
	if seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

func durationMillisOr(millis int, fallback time.Duration) time.Duration {
	if millis <= 0 {
		return fallback
	}
	return time.Duration(millis) * time.Millisecond
}

// MaxRequestsOrDefault returns the half-open request allowance.
func (c CircuitBreaker) MaxRequestsOrDefault() uint32 {
	if c.MaxRequests == 0 {
		return 1
	}
	return c.MaxRequests
}

// IntervalDuration returns the period after which closed-state counts are cleared.
func (c CircuitBreaker) IntervalDuration() time.Duration {
	return durationMillisOr(c.Interval, time.Minute)
}

// TimeoutDuration returns how long the circuit stays open.
func (c CircuitBreaker) TimeoutDuration() time.Duration {
	return durationMillisOr(c.Timeout, 30*time.Second)
}
