// Package config assembles the settings for the nfasim commands.
//
// Values are layered, later layers winning: built-in defaults, a YAML file, a .env
// file, the process environment, and finally command-line flags (applied by the
// caller). Nothing in the simulation core reads the environment; it only ever sees
// the resolved Config.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variable names. RUTA_NFA and CADENA are kept for existing .env files.
const (
	EnvAutomatonPath   = "RUTA_NFA"
	EnvInput           = "CADENA"
	EnvOutputPath      = "NFASIM_OUTPUT"
	EnvSourceLabel     = "NFASIM_SOURCE_LABEL"
	EnvLogLevel        = "NFASIM_LOG_LEVEL"
	EnvUnionDuplicates = "NFASIM_UNION_DUPLICATES"
	EnvListenAddr      = "NFASIM_LISTEN"
	EnvRedisAddr       = "NFASIM_REDIS_ADDR"
	EnvRedisPassword   = "NFASIM_REDIS_PASSWORD"
	EnvCacheTTL        = "NFASIM_CACHE_TTL"
)

const (
	DefaultOutputPath = "simulacion.json"
	DefaultLogLevel   = "info"
	DefaultListenAddr = ":8080"
	DefaultEnvFile    = ".env"
)

var ErrMissingAutomaton = errors.New("automaton path not set")

// Config is the fully resolved configuration.
type Config struct {
	AutomatonPath   string       `yaml:"automaton"`
	Input           string       `yaml:"input"`
	OutputPath      string       `yaml:"output"`
	SourceLabel     string       `yaml:"source_label"`
	UnionDuplicates bool         `yaml:"union_duplicates"`
	LogLevel        string       `yaml:"log_level"`
	Server          ServerConfig `yaml:"server"`
}

type ServerConfig struct {
	ListenAddr    string        `yaml:"listen"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	RedisPrefix   string        `yaml:"redis_prefix"`
	CacheTTL      time.Duration `yaml:"cache_ttl"`
	MaxInputRunes int           `yaml:"max_input_runes"`
}

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Options selects the sources Load reads.
type Options struct {
	// File is an optional YAML file. Empty means none.
	File string

	// EnvFile is a dotenv file. A missing file is ignored.
	EnvFile string

	// Lookup reads the process environment; nil disables it.
	Lookup LookupFunc
}

func Default() *Config {
	return &Config{
		OutputPath: DefaultOutputPath,
		LogLevel:   DefaultLogLevel,
		Server: ServerConfig{
			ListenAddr:    DefaultListenAddr,
			RedisPrefix:   "nfasim:result:",
			CacheTTL:      time.Hour,
			MaxInputRunes: 1 << 16,
		},
	}
}

// Load resolves defaults, the YAML file, the dotenv file and the environment.
func Load(opts Options) (*Config, error) {
	cfg := Default()

	if opts.File != "" {
		data, err := os.ReadFile(opts.File)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", opts.File, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", opts.File, err)
		}
	}

	dotenv := map[string]string{}
	if opts.EnvFile != "" {
		vals, err := godotenv.Read(opts.EnvFile)
		switch {
		case err == nil:
			dotenv = vals
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("read env file %s: %w", opts.EnvFile, err)
		}
	}

	lookup := func(key string) (string, bool) {
		if opts.Lookup != nil {
			if v, ok := opts.Lookup(key); ok {
				return v, true
			}
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup LookupFunc) error {
	str := map[string]*string{
		EnvAutomatonPath: &c.AutomatonPath,
		EnvInput:         &c.Input,
		EnvOutputPath:    &c.OutputPath,
		EnvSourceLabel:   &c.SourceLabel,
		EnvLogLevel:      &c.LogLevel,
		EnvListenAddr:    &c.Server.ListenAddr,
		EnvRedisAddr:     &c.Server.RedisAddr,
		EnvRedisPassword: &c.Server.RedisPassword,
	}
	for key, dst := range str {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	if v, ok := lookup(EnvUnionDuplicates); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvUnionDuplicates, err)
		}
		c.UnionDuplicates = b
	}
	if v, ok := lookup(EnvCacheTTL); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvCacheTTL, err)
		}
		c.Server.CacheTTL = d
	}
	return nil
}

// Label returns SourceLabel, or the base name of the automaton file when unset.
func (c *Config) Label() string {
	if c.SourceLabel != "" {
		return c.SourceLabel
	}
	if c.AutomatonPath == "" {
		return ""
	}
	return filepath.Base(c.AutomatonPath)
}

// Validate checks what the simulate command needs.
func (c *Config) Validate() error {
	if c.AutomatonPath == "" {
		return fmt.Errorf("%w: set --automaton or %s", ErrMissingAutomaton, EnvAutomatonPath)
	}
	if c.OutputPath == "" {
		return errors.New("output path is empty")
	}
	return nil
}
