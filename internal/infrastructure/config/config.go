package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port       string `env:"PORT,        default=8080"`
	Env        string `env:"ENV,         default=development"`
	LogLevel   string `env:"LOG_LEVEL,   default=info"`
	TerminalID string `env:"TERMINAL_ID, default=terminal-1"`

	Backend BackendConfig
	Storage StorageConfig
	Redis   RedisConfig
	Mongo   MongoConfig
}

type BackendConfig struct {
	URL     string        `env:"BACKEND_URL,     default=http://localhost:3000/api"`
	Timeout time.Duration `env:"BACKEND_TIMEOUT, default=20s"`
}

// StorageConfig selects where the persisted session keys live.
// Driver is one of: file, redis, mongo.
type StorageConfig struct {
	Driver   string `env:"STORAGE_DRIVER, default=file"`
	StateDir string `env:"STATE_DIR,      default=./state"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=pos_terminal"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
