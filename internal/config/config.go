package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/usira-okay/release-kit/internal/domain"
	"github.com/usira-okay/release-kit/internal/validation"
)

type Config struct {
	Env      string               `yaml:"env" env:"ENV" env-default:"local" validate:"oneof=local dev prod"`
	Postgres Postgres             `yaml:"postgres"`
	Server   Server               `yaml:"server"`
	Pipeline Pipeline             `yaml:"pipeline"`
	Resolver Resolver             `yaml:"resolver"`
	Teams    []domain.TeamMapping `yaml:"teams" validate:"dive"`
}

type Postgres struct {
	Username        string        `yaml:"username" env:"POSTGRES_USER" env-required:"true"`
	Password        string        `yaml:"password" env:"POSTGRES_PASSWORD" env-required:"true"`
	Host            string        `yaml:"host" env:"POSTGRES_HOST" env-default:"localhost"`
	Port            string        `yaml:"port" env:"POSTGRES_PORT" env-default:"5432"`
	Database        string        `yaml:"database" env:"POSTGRES_DB" env-required:"true"`
	MaxOpenConns    int           `yaml:"max_open_conns" env-default:"10"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env-default:"5"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env-default:"5m"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time" env-default:"1m"`
}

type Server struct {
	Host    string        `yaml:"host" env-default:"localhost"`
	Port    string        `yaml:"port" env-default:"8080"`
	Timeout time.Duration `yaml:"timeout" env-default:"30s"`
}

// Pipeline holds the handoff store keys each stage reads and writes.
type Pipeline struct {
	BitbucketKey string `yaml:"bitbucket_key" env:"PIPELINE_BITBUCKET_KEY" env-default:"Bitbucket:FetchResult" validate:"required,handoff_key"`
	GitLabKey    string `yaml:"gitlab_key" env:"PIPELINE_GITLAB_KEY" env-default:"GitLab:FetchResult" validate:"required,handoff_key"`
	WorkItemsKey string `yaml:"work_items_key" env:"PIPELINE_WORK_ITEMS_KEY" env-default:"AzureDevOps:WorkItems" validate:"required,handoff_key"`
	ResultKey    string `yaml:"result_key" env:"PIPELINE_RESULT_KEY" env-default:"ConsolidatedResult" validate:"required,handoff_key"`
}

type Resolver struct {
	TopLevelTypes []string `yaml:"top_level_types" env:"RESOLVER_TOP_LEVEL_TYPES" env-default:"User Story,Feature,Epic" validate:"min=1,dive,required"`
	MaxDepth      int      `yaml:"max_depth" env:"RESOLVER_MAX_DEPTH" env-default:"10" validate:"min=1,max=100"`
	Concurrency   int      `yaml:"concurrency" env:"RESOLVER_CONCURRENCY" env-default:"4" validate:"min=1,max=64"`
}

func Load() (*Config, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		return nil, errors.New("CONFIG_PATH is not set")
	}

	return LoadFile(configPath)
}

func LoadFile(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); err != nil {
		return nil, fmt.Errorf("config file does not exist: %w", err)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}

	if err := validation.ValidateStruct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}

	return cfg
}
