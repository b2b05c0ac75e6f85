package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const envPrefix = "STOCKROOM_"

// Config is the complete stockroom configuration shared by the server and
// the client.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
	Client  ClientConfig  `yaml:"client"`
}

type ServerConfig struct {
	HTTPAddr        string        `yaml:"http_addr"`
	GRPCAddr        string        `yaml:"grpc_addr"` // empty disables gRPC
	RequestDelay    time.Duration `yaml:"request_delay"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	FilePath        string        `yaml:"file_path"`    // returned by /file-path
	ProjectPath     string        `yaml:"project_path"` // returned by /file-path?projectpath=true
}

type StorageConfig struct {
	Driver        string        `yaml:"driver"` // memory, mysql, redis
	SnapshotPath  string        `yaml:"snapshot_path"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	MySQLDSN      string        `yaml:"mysql_dsn"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	RedisKey      string        `yaml:"redis_key"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json, text
}

type ClientConfig struct {
	BaseURL       string        `yaml:"base_url"`
	ServerCommand []string      `yaml:"server_command"` // argv used to start the server
	ServerLog     string        `yaml:"server_log"`
	ProbeInterval time.Duration `yaml:"probe_interval"`
	ProbeAttempts int           `yaml:"probe_attempts"`
	ShutdownGrace time.Duration `yaml:"shutdown_grace"`
	Workers       int           `yaml:"workers"`
	QueueSize     int           `yaml:"queue_size"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPAddr:        "127.0.0.1:5000",
			GRPCAddr:        "127.0.0.1:50051",
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
			FilePath:        "/path/to/dcc/file",
			ProjectPath:     "/path/to/project/folder",
		},
		Storage: StorageConfig{
			Driver:        "memory",
			SnapshotPath:  "inventory.snapshot",
			FlushInterval: time.Second,
			RedisAddr:     "localhost:6379",
			RedisKey:      "inventory",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Client: ClientConfig{
			BaseURL:       "http://127.0.0.1:5000",
			ServerCommand: []string{"stockroom-server"},
			ServerLog:     "server_debug.log",
			ProbeInterval: time.Second,
			ProbeAttempts: 10,
			ShutdownGrace: 5 * time.Second,
			Workers:       4,
			QueueSize:     64,
		},
	}
}

// Load reads the YAML file at path over the defaults, applies STOCKROOM_*
// environment overrides and validates the result. An empty path skips the
// file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"HTTP_ADDR":      &c.Server.HTTPAddr,
		"GRPC_ADDR":      &c.Server.GRPCAddr,
		"STORAGE_DRIVER": &c.Storage.Driver,
		"SNAPSHOT_PATH":  &c.Storage.SnapshotPath,
		"MYSQL_DSN":      &c.Storage.MySQLDSN,
		"REDIS_ADDR":     &c.Storage.RedisAddr,
		"REDIS_PASSWORD": &c.Storage.RedisPassword,
		"REDIS_KEY":      &c.Storage.RedisKey,
		"LOG_LEVEL":      &c.Log.Level,
		"LOG_FORMAT":     &c.Log.Format,
		"BASE_URL":       &c.Client.BaseURL,
		"SERVER_LOG":     &c.Client.ServerLog,
	}
	for name, dst := range strs {
		if v, ok := lookup(envPrefix + name); ok {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"REQUEST_DELAY":  &c.Server.RequestDelay,
		"FLUSH_INTERVAL": &c.Storage.FlushInterval,
		"PROBE_INTERVAL": &c.Client.ProbeInterval,
	}
	for name, dst := range durations {
		if v, ok := lookup(envPrefix + name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", envPrefix, name, err)
			}
			*dst = d
		}
	}

	ints := map[string]*int{
		"PROBE_ATTEMPTS": &c.Client.ProbeAttempts,
		"WORKERS":        &c.Client.Workers,
		"REDIS_DB":       &c.Storage.RedisDB,
	}
	for name, dst := range ints {
		if v, ok := lookup(envPrefix + name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", envPrefix, name, err)
			}
			*dst = n
		}
	}

	if v, ok := lookup(envPrefix + "SERVER_COMMAND"); ok {
		c.Client.ServerCommand = strings.Fields(v)
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.HTTPAddr == "" {
		errs = append(errs, errors.New("server.http_addr is required"))
	}
	if c.Server.RequestDelay < 0 {
		errs = append(errs, errors.New("server.request_delay must not be negative"))
	}

	switch c.Storage.Driver {
	case "memory":
	case "mysql":
		if c.Storage.MySQLDSN == "" {
			errs = append(errs, errors.New("storage.mysql_dsn is required for the mysql driver"))
		}
	case "redis":
		if c.Storage.RedisAddr == "" {
			errs = append(errs, errors.New("storage.redis_addr is required for the redis driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q is not one of memory, mysql, redis", c.Storage.Driver))
	}

	if c.Client.BaseURL == "" {
		errs = append(errs, errors.New("client.base_url is required"))
	}
	if c.Client.ProbeInterval <= 0 {
		errs = append(errs, errors.New("client.probe_interval must be positive"))
	}
	if c.Client.ProbeAttempts < 1 {
		errs = append(errs, errors.New("client.probe_attempts must be at least 1"))
	}
	if c.Client.Workers < 1 {
		errs = append(errs, errors.New("client.workers must be at least 1"))
	}
	if c.Client.QueueSize < 1 {
		errs = append(errs, errors.New("client.queue_size must be at least 1"))
	}

	return errors.Join(errs...)
}
