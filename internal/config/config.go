package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Режимы хранения.
const (
	ModeDatabase = "database"
	ModeSQLite   = "sqlite"
	ModeFile     = "file"
	ModeMemory   = "in-memory"
)

// Config хранит конфигурацию сервера
type Config struct {
	ServerAddress   string        `json:"server_address"`
	GRPCAddress     string        `json:"grpc_address"`
	DatabaseDSN     string        `json:"database_dsn"`
	SQLiteDSN       string        `json:"sqlite_dsn"`
	FileStoragePath string        `json:"file_storage_path"`
	BodyLimit       int64         `json:"body_limit"`
	ShutdownTimeout time.Duration `json:"-"`
	LogLevel        string        `json:"log_level"`
	Mode            string        `json:"-"`
}

// fileConfig JSON-файл конфигурации; длительности задаются строкой ("10s").
type fileConfig struct {
	Config
	ShutdownTimeout string `json:"shutdown_timeout"`
}

var flagBindings = []struct {
	name, key, usage string
}{
	{"a", "SERVER_ADDRESS", "HTTP server address"},
	{"g", "GRPC_ADDRESS", "gRPC server address, empty disables gRPC"},
	{"d", "DATABASE_DSN", "PostgreSQL DSN"},
	{"q", "SQLITE_DSN", "SQLite file path or libsql URL"},
	{"f", "FILE_STORAGE_PATH", "file storage path (JSON lines journal)"},
	{"l", "BODY_LIMIT", "request body limit in bytes"},
}

// Load собирает конфигурацию. Приоритет по убыванию: флаги командной строки,
// переменные окружения, файл .env, JSON-файл (-c/-config или CONFIG), значения по умолчанию.
func Load(args []string) (*Config, error) {
	v := viper.New()

	v.SetDefault("SERVER_ADDRESS", "localhost:8080") // Значения по умолчанию
	v.SetDefault("GRPC_ADDRESS", "")
	v.SetDefault("DATABASE_DSN", "")
	v.SetDefault("SQLITE_DSN", "")
	v.SetDefault("FILE_STORAGE_PATH", "")
	v.SetDefault("BODY_LIMIT", 64<<10)
	v.SetDefault("SHUTDOWN_TIMEOUT", 10*time.Second)
	v.SetDefault("LOG_LEVEL", "info")

	v.AutomaticEnv()

	// Определяем флаги, но НЕ задаем в них значения по умолчанию
	fs := flag.NewFlagSet("shortr", flag.ContinueOnError)
	for _, f := range flagBindings {
		fs.String(f.name, "", f.usage)
	}
	var configPath string
	fs.StringVar(&configPath, "c", "", "path to JSON config file")
	fs.StringVar(&configPath, "config", "", "path to JSON config file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if configPath == "" {
		configPath = os.Getenv("CONFIG")
	}
	if configPath != "" {
		if err := applyJSON(v, configPath); err != nil {
			return nil, err
		}
	}

	// Читаем .env, если есть (не переопределяет переменные окружения!)
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig()

	// Переданные флаги перекрывают всё остальное
	fs.Visit(func(f *flag.Flag) {
		for _, b := range flagBindings {
			if b.name == f.Name {
				v.Set(b.key, f.Value.String())
			}
		}
	})

	cfg := &Config{
		ServerAddress:   v.GetString("SERVER_ADDRESS"),
		GRPCAddress:     v.GetString("GRPC_ADDRESS"),
		DatabaseDSN:     v.GetString("DATABASE_DSN"),
		SQLiteDSN:       v.GetString("SQLITE_DSN"),
		FileStoragePath: v.GetString("FILE_STORAGE_PATH"),
		BodyLimit:       v.GetInt64("BODY_LIMIT"),
		ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
		LogLevel:        v.GetString("LOG_LEVEL"),
	}

	// Определяем режим работы
	switch {
	case cfg.DatabaseDSN != "":
		cfg.Mode = ModeDatabase
	case cfg.SQLiteDSN != "":
		cfg.Mode = ModeSQLite
	case cfg.FileStoragePath != "":
		cfg.Mode = ModeFile
	default:
		cfg.Mode = ModeMemory
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// applyJSON кладёт значения из JSON-файла в умолчания viper.
func applyJSON(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %q: %w", path, err)
	}
	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %q: %w", path, err)
	}

	set := func(key, val string) {
		if val != "" {
			v.SetDefault(key, val)
		}
	}
	set("SERVER_ADDRESS", fc.ServerAddress)
	set("GRPC_ADDRESS", fc.GRPCAddress)
	set("DATABASE_DSN", fc.DatabaseDSN)
	set("SQLITE_DSN", fc.SQLiteDSN)
	set("FILE_STORAGE_PATH", fc.FileStoragePath)
	set("SHUTDOWN_TIMEOUT", fc.ShutdownTimeout)
	set("LOG_LEVEL", fc.LogLevel)
	if fc.BodyLimit != 0 {
		v.SetDefault("BODY_LIMIT", fc.BodyLimit)
	}
	return nil
}

// Validate проверяет корректность конфигурации
func (cfg *Config) Validate() error {
	if cfg.ServerAddress == "" {
		return errors.New("server address must not be empty")
	}
	if cfg.BodyLimit <= 0 {
		return errors.New("body limit must be positive")
	}
	if cfg.ShutdownTimeout <= 0 {
		return errors.New("shutdown timeout must be positive")
	}
	return nil
}
