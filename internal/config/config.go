// Package config loads dramarec settings.
//
// Sources are layered with koanf, later ones winning:
//
//  1. built-in defaults
//  2. a YAML file (--config, $DRAMAREC_CONFIG, or ./dramarec.yaml)
//  3. DRAMAREC_* environment variables
//
// Environment keys use a double underscore between section and field:
// DRAMAREC_RESOLVER__MIN_SCORE=70 sets resolver.min_score.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/saeedalam/dramarec/internal/logging"
)

const (
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "DRAMAREC_"
	// ConfigPathEnvVar names an explicit config file.
	ConfigPathEnvVar = "DRAMAREC_CONFIG"
	// DefaultConfigFile is looked up in the working directory.
	DefaultConfigFile = "dramarec.yaml"
)

// Config is the full application configuration.
type Config struct {
	Dataset    string           `koanf:"dataset"`
	IndexDir   string           `koanf:"index_dir" validate:"required"`
	Resolver   ResolverConfig   `koanf:"resolver"`
	Vectorizer VectorizerConfig `koanf:"vectorizer"`
	Recommend  RecommendConfig  `koanf:"recommend"`
	Browse     BrowseConfig     `koanf:"browse"`
	Server     ServerConfig     `koanf:"server"`
	Logging    LoggingConfig    `koanf:"logging"`
}

type ResolverConfig struct {
	MinScore int `koanf:"min_score" validate:"gte=0,lte=100"`
}

type VectorizerConfig struct {
	Stem          bool `koanf:"stem"`
	MinDocFreq    int  `koanf:"min_doc_freq" validate:"gte=0"`
	MaxVocabulary int  `koanf:"max_vocabulary" validate:"gte=0"`
}

type RecommendConfig struct {
	DefaultCount int `koanf:"default_count" validate:"gte=1"`
	MaxCount     int `koanf:"max_count" validate:"gtefield=DefaultCount"`
}

type BrowseConfig struct {
	PageSize int `koanf:"page_size" validate:"gte=1"`
}

// ServerConfig configures the MCP tool server.
type ServerConfig struct {
	CacheSize     int           `koanf:"cache_size" validate:"gte=1"`
	Watch         bool          `koanf:"watch"`
	WatchInterval time.Duration `koanf:"watch_interval" validate:"gte=100ms"`
}

type LoggingConfig struct {
	Level  string `koanf:"level" validate:"loglevel"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Dataset:  "",
		IndexDir: ".dramarec",
		Resolver: ResolverConfig{
			MinScore: 60,
		},
		Vectorizer: VectorizerConfig{
			Stem:          false,
			MinDocFreq:    1,
			MaxVocabulary: 0,
		},
		Recommend: RecommendConfig{
			DefaultCount: 5,
			MaxCount:     50,
		},
		Browse: BrowseConfig{
			PageSize: 10,
		},
		Server: ServerConfig{
			CacheSize:     256,
			Watch:         false,
			WatchInterval: 5 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration. An empty path falls back to
// $DRAMAREC_CONFIG and then ./dramarec.yaml; missing default files are not
// an error, a missing explicit path is.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	configPath, err := findConfigFile(path)
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func findConfigFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file: %w", err)
		}
		return explicit, nil
	}
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
	}
	if _, err := os.Stat(DefaultConfigFile); err == nil {
		return DefaultConfigFile, nil
	}
	return "", nil
}

// envTransformFunc maps DRAMAREC_SERVER__CACHE_SIZE to server.cache_size.
// DRAMAREC_CONFIG names the file itself and is skipped.
func envTransformFunc(key string) string {
	if key == ConfigPathEnvVar {
		return ""
	}
	key = strings.TrimPrefix(key, EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(key), "__", ".")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		return logging.ValidLevel(fl.Field().String())
	})
	return v
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	return validate.Struct(c)
}

// LogConfig converts to the logging package's settings.
func (c *Config) LogConfig() logging.Config {
	return logging.Config{
		Level:  c.Logging.Level,
		Format: c.Logging.Format,
	}
}
