package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the texforge configuration.
type Config struct {
	HTTP         HTTPConfig                `yaml:"http"`
	Index        IndexConfig               `yaml:"index"`
	Dataset      DatasetConfig             `yaml:"dataset"`
	Embedding    EmbeddingConfig           `yaml:"embedding"`
	LLM          LLMConfig                 `yaml:"llm"`
	Retrieval    RetrievalConfig           `yaml:"retrieval"`
	Cache        CacheConfig               `yaml:"cache"`
	Output       OutputConfig              `yaml:"output"`
	Templates    map[string]TemplateConfig `yaml:"templates"`
	Placeholders map[string]string         `yaml:"placeholders"`
	Logging      LoggingConfig             `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings for the serve command.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// IndexConfig holds persisted index file locations.
type IndexConfig struct {
	VectorsPath string `yaml:"vectors_path"`
	MetaPath    string `yaml:"meta_path"`
}

// DatasetConfig holds the source dataset location for the build command.
type DatasetConfig struct {
	Path  string `yaml:"path"`
	Sheet string `yaml:"sheet"` // xlsx sheet name; first sheet when empty
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	APIKey      string `yaml:"api_key"`
	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"`
	Dimensions  int    `yaml:"dimensions"`
	Instruction string `yaml:"instruction"` // optional prefix prepended before embedding
}

// LLMConfig holds text generation provider settings.
type LLMConfig struct {
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float32 `yaml:"temperature"`
	TimeoutSec  int     `yaml:"timeout_sec"`
	MaxRetries  int     `yaml:"max_retries"`
}

// RetrievalConfig holds retrieval settings.
type RetrievalConfig struct {
	TopK int `yaml:"top_k"`
}

// CacheConfig holds the optional Redis embedding cache settings.
// The cache is disabled when Addrs is empty.
type CacheConfig struct {
	Addrs     []string `yaml:"addrs"`
	Password  string   `yaml:"password"`
	KeyPrefix string   `yaml:"key_prefix"`
}

// OutputConfig holds generation output settings.
type OutputConfig struct {
	TexPath string `yaml:"tex_path"`
}

// TemplateConfig is a config-supplied document template. Config templates are
// merged over the built-in registry at startup.
type TemplateConfig struct {
	Preamble  string `yaml:"preamble"`
	Postamble string `yaml:"postamble"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port <= 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		// Generation round trips are slow; leave room for the LLM call.
		c.HTTP.WriteTimeoutSec = 180
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Index.VectorsPath == "" {
		c.Index.VectorsPath = "data/index.vec"
	}
	if c.Index.MetaPath == "" {
		c.Index.MetaPath = "data/meta.json"
	}
	if c.Retrieval.TopK <= 0 {
		c.Retrieval.TopK = 3
	}
	if c.LLM.MaxTokens <= 0 {
		c.LLM.MaxTokens = 2000
	}
	if c.LLM.TimeoutSec <= 0 {
		c.LLM.TimeoutSec = 120
	}
	if c.LLM.MaxRetries < 0 {
		c.LLM.MaxRetries = 0
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = "texforge:"
	}
	if c.Output.TexPath == "" {
		c.Output.TexPath = "last_output.tex"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Embedding.Model == "" {
		return fmt.Errorf("embedding.model is required")
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("llm.model is required")
	}
	for name, t := range c.Templates {
		if strings.TrimSpace(t.Preamble) == "" {
			return fmt.Errorf("templates.%s.preamble is required", name)
		}
		if strings.TrimSpace(t.Postamble) == "" {
			return fmt.Errorf("templates.%s.postamble is required", name)
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
