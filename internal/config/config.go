package config

// #region imports
import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/battle-agent/internal/backend"
	"github.com/danielpatrickdp/battle-agent/internal/orchestrator"
)

// #endregion imports

// #region config-struct

// Config is the agent's runtime configuration. Precedence, lowest first:
// defaults, YAML file, .env file, process environment.
type Config struct {
	Backend      string        `yaml:"backend"`
	Model        string        `yaml:"model"`
	Temperature  float64       `yaml:"temperature"`
	PromptAlgo   string        `yaml:"prompt_algo"`
	LogDir       string        `yaml:"log_dir"`
	TraceDB      string        `yaml:"trace_db"` // empty disables the SQLite store
	Timeout      time.Duration `yaml:"timeout"`
	BaseURL      string        `yaml:"base_url"`
	APIKeyEnv    string        `yaml:"api_key_env"` // name of the variable holding the key
	CodecAddr    string        `yaml:"codec_addr"`
	AWSRegion    string        `yaml:"aws_region"`
	ReferenceDir string        `yaml:"reference_dir"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Backend:     backend.KindOpenAI,
		Model:       "gpt-4o-mini",
		Temperature: 0.8,
		PromptAlgo:  string(orchestrator.ProtocolIO),
		LogDir:      "logs",
		TraceDB:     "battle_agent.db",
		Timeout:     60 * time.Second,
		APIKeyEnv:   "OPENAI_API_KEY",
		CodecAddr:   "localhost:50051",
		AWSRegion:   "us-east-1",
	}
}

// #endregion config-struct

// #region load

// Load builds a Config from defaults, then path (skipped when empty),
// then envFile (skipped when missing), then environment variables.
func Load(path, envFile string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if envFile != "" {
		// godotenv never overrides variables already set
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Backend = envOr("BATTLE_BACKEND", c.Backend)
	c.Model = envOr("BATTLE_MODEL", c.Model)
	c.PromptAlgo = envOr("BATTLE_PROMPT_ALGO", c.PromptAlgo)
	c.LogDir = envOr("BATTLE_LOG_DIR", c.LogDir)
	c.TraceDB = envOr("BATTLE_TRACE_DB", c.TraceDB)
	c.BaseURL = envOr("BATTLE_BASE_URL", c.BaseURL)
	c.APIKeyEnv = envOr("BATTLE_API_KEY_ENV", c.APIKeyEnv)
	c.CodecAddr = envOr("CODEC_ADDR", c.CodecAddr)
	c.AWSRegion = envOr("AWS_REGION", c.AWSRegion)
	c.ReferenceDir = envOr("BATTLE_REFERENCE_DIR", c.ReferenceDir)

	if v := os.Getenv("BATTLE_TEMPERATURE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("BATTLE_TEMPERATURE: %w", err)
		}
		c.Temperature = f
	}
	if v := os.Getenv("BATTLE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("BATTLE_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	return nil
}

// #endregion load

// #region validate

// Validate checks the backend kind, protocol and numeric ranges.
func (c Config) Validate() error {
	switch c.Backend {
	case backend.KindOpenAI, backend.KindBedrock, backend.KindCodec:
	default:
		return fmt.Errorf("backend %q: want openai, bedrock or codec", c.Backend)
	}
	if _, err := orchestrator.ParseProtocol(c.PromptAlgo); err != nil {
		return err
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature %v out of range [0, 2]", c.Temperature)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout %s is negative", c.Timeout)
	}
	return nil
}

// Protocol returns the parsed prompt_algo. Call after Validate.
func (c Config) Protocol() orchestrator.ProtocolID {
	p, _ := orchestrator.ParseProtocol(c.PromptAlgo)
	return p
}

// BackendConfig resolves the API key from APIKeyEnv.
func (c Config) BackendConfig() backend.Config {
	var key string
	if c.APIKeyEnv != "" {
		key = os.Getenv(c.APIKeyEnv)
	}
	return backend.Config{
		Kind:      c.Backend,
		Model:     c.Model,
		BaseURL:   c.BaseURL,
		APIKey:    key,
		CodecAddr: c.CodecAddr,
		Region:    c.AWSRegion,
		Timeout:   c.Timeout,
	}
}

// #endregion validate

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
// #endregion helpers
