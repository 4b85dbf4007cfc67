// Package config loads runtime settings from flags, environment, .env files
// and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "ASANA"

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

type Config struct {
	Environment string          `mapstructure:"environment"`
	Server      ServerConfig    `mapstructure:"server"`
	Database    DatabaseConfig  `mapstructure:"database"`
	JWT         JWTConfig       `mapstructure:"jwt"`
	Uploads     UploadsConfig   `mapstructure:"uploads"`
	Log         LogConfig       `mapstructure:"log"`
	Mongo       MongoConfig     `mapstructure:"mongo"`
	Cassandra   CassandraConfig `mapstructure:"cassandra"`
	Breaker     BreakerConfig   `mapstructure:"breaker"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigin      string        `mapstructure:"cors_origin"`
	StaticDir       string        `mapstructure:"static_dir"`
}

type DatabaseConfig struct {
	URL         string `mapstructure:"url"`
	MaxConns    int32  `mapstructure:"max_conns"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
}

type UploadsConfig struct {
	Dir     string `mapstructure:"dir"`
	MaxSize int64  `mapstructure:"max_size"`
}

// LogConfig controls the rotating log file. Sizes are in megabytes, age in days.
type LogConfig struct {
	File       string `mapstructure:"file"`
	Level      string `mapstructure:"level"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
	Stdout     bool   `mapstructure:"stdout"`
}

// MongoConfig configures the activity feed. An empty URI disables it.
type MongoConfig struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

// CassandraConfig configures the notification store. No hosts disables it.
type CassandraConfig struct {
	Hosts    []string `mapstructure:"hosts"`
	Keyspace string   `mapstructure:"keyspace"`
}

type BreakerConfig struct {
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxFailures uint32        `mapstructure:"max_failures"`
	CallTimeout time.Duration `mapstructure:"call_timeout"`
}

// SetDefaults registers every key so environment overrides are picked up by Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("environment", EnvDevelopment)

	v.SetDefault("server.port", 5000)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.cors_origin", "*")
	v.SetDefault("server.static_dir", "")

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry", 7*24*time.Hour)

	v.SetDefault("uploads.dir", "uploads")
	v.SetDefault("uploads.max_size", 10<<20)

	v.SetDefault("log.file", "logs/asana.log")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.max_size", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 28)
	v.SetDefault("log.compress", true)
	v.SetDefault("log.stdout", true)

	v.SetDefault("mongo.uri", "")
	v.SetDefault("mongo.database", "asana")
	v.SetDefault("mongo.collection", "project_activity")

	v.SetDefault("cassandra.hosts", []string{})
	v.SetDefault("cassandra.keyspace", "asana_notifications")

	v.SetDefault("breaker.timeout", 5*time.Second)
	v.SetDefault("breaker.max_failures", 3)
	v.SetDefault("breaker.call_timeout", 2*time.Second)
}

// BindEnv wires ASANA_* variables plus the unprefixed names used by the
// deployment scripts (PORT, DATABASE_URL, JWT_SECRET, NODE_ENV).
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("environment", EnvPrefix+"_ENVIRONMENT", "NODE_ENV")
	_ = v.BindEnv("server.port", EnvPrefix+"_SERVER_PORT", "PORT")
	_ = v.BindEnv("database.url", EnvPrefix+"_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("jwt.secret", EnvPrefix+"_JWT_SECRET", "JWT_SECRET")
	_ = v.BindEnv("mongo.uri", EnvPrefix+"_MONGO_URI", "MONGO_URI")
	_ = v.BindEnv("cassandra.hosts", EnvPrefix+"_CASSANDRA_HOSTS", "CASS_DB")
}

// LoadDotEnv loads the first .env-style file that exists. Missing files are not an error.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
		return nil
	}
	return nil
}

// Load builds a Config from v. SetDefaults and BindEnv must have been applied.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Cassandra.Hosts = splitHosts(cfg.Cassandra.Hosts)
	return &cfg, nil
}

// New returns a Config built only from defaults and the environment.
func New() (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	BindEnv(v)
	return Load(v)
}

// Validate reports settings that make serving impossible.
func (c *Config) Validate() error {
	var errs []error
	if c.Database.URL == "" {
		errs = append(errs, errors.New("database.url is required"))
	}
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("jwt.secret is required"))
	}
	if c.JWT.Expiry <= 0 {
		errs = append(errs, errors.New("jwt.expiry must be positive"))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Uploads.MaxSize <= 0 {
		errs = append(errs, errors.New("uploads.max_size must be positive"))
	}
	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// splitHosts accepts both list values and a single comma-separated env value.
func splitHosts(in []string) []string {
	var out []string
	for _, h := range in {
		for _, part := range strings.Split(h, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
