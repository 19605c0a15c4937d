// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Export     ExportConfig     `mapstructure:"export"`
	Admin      AdminConfig      `mapstructure:"admin"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	UpdateInfo UpdateInfoConfig `mapstructure:"update_info"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	// Timezone names the IANA zone used to decide what "today" is.
	Timezone string `mapstructure:"timezone"`
}

type ServerConfig struct {
	Address      string `mapstructure:"address"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout int    `mapstructure:"write_timeout"` // milliseconds
	BodyLimit    int    `mapstructure:"body_limit"`    // bytes
	// AllowOrigins is a comma-separated CORS origin list.
	AllowOrigins string `mapstructure:"allow_origins"`
}

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

type StorageConfig struct {
	Driver    string         `mapstructure:"driver"`
	KeyPrefix string         `mapstructure:"key_prefix"`
	Timeout   int            `mapstructure:"timeout"` // milliseconds
	File      FileConfig     `mapstructure:"file"`
	SQLite    SQLiteConfig   `mapstructure:"sqlite"`
	Postgres  PostgresConfig `mapstructure:"postgres"`
	Redis     RedisConfig    `mapstructure:"redis"`
}

type FileConfig struct {
	Dir string `mapstructure:"dir"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Export sink drivers.
const (
	SinkFS = "fs"
	SinkS3 = "s3"
)

type ExportConfig struct {
	Driver string   `mapstructure:"driver"`
	Dir    string   `mapstructure:"dir"`
	S3     S3Config `mapstructure:"s3"`
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	PathStyle bool   `mapstructure:"path_style"`
}

type AdminConfig struct {
	Passcode string `mapstructure:"passcode"`
}

type CatalogConfig struct {
	// Path to a JSON catalog file. Empty keeps the built-in catalog.
	Path string `mapstructure:"path"`
}

// UpdateInfoConfig drives the "last update / next update" banner. Values are RFC 3339.
type UpdateInfoConfig struct {
	LastUpdate string `mapstructure:"last_update"`
	NextUpdate string `mapstructure:"next_update"`
}

// Parse returns the configured instants. A blank value yields the zero time.
func (u UpdateInfoConfig) Parse() (last, next time.Time, err error) {
	if u.LastUpdate != "" {
		if last, err = time.Parse(time.RFC3339, u.LastUpdate); err != nil {
			return last, next, fmt.Errorf("update_info.last_update: %w", err)
		}
	}
	if u.NextUpdate != "" {
		if next, err = time.Parse(time.RFC3339, u.NextUpdate); err != nil {
			return last, next, fmt.Errorf("update_info.next_update: %w", err)
		}
	}
	return last, next, nil
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
