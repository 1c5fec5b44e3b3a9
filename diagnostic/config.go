package diagnostic

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// MaxResults is the largest number of ranked conditions a diagnosis returns.
	MaxResults = 3
	// ConfidenceCap is the highest confidence ever reported.
	ConfidenceCap = 95

	envPrefix         = "SYMPTOMCHECK"
	defaultConfigName = "symptomcheck"
	defaultLanguage   = "fr"
	defaultAddr       = ":8080"
	defaultLogLevel   = "info"
)

// ErrUnsupportedFormat is returned for file extensions no codec handles.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr" toml:"addr" mapstructure:"addr"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	JSON  bool   `json:"json" yaml:"json" toml:"json" mapstructure:"json"`
	Level string `json:"level" yaml:"level" toml:"level" mapstructure:"level"`
}

// Config aggregates runtime settings.
type Config struct {
	TopK              int          `json:"topK" yaml:"topK" toml:"topK" mapstructure:"topK"`
	KnowledgeBasePath string       `json:"knowledgeBasePath" yaml:"knowledgeBasePath" toml:"knowledgeBasePath" mapstructure:"knowledgeBasePath"`
	Language          string       `json:"language" yaml:"language" toml:"language" mapstructure:"language"`
	Server            ServerConfig `json:"server" yaml:"server" toml:"server" mapstructure:"server"`
	Log               LogConfig    `json:"log" yaml:"log" toml:"log" mapstructure:"log"`

	// Columns lists the header names recognised when reading CSV/TSV batches.
	Columns ColumnCandidates `json:"columns" yaml:"columns" toml:"columns" mapstructure:"columns"`
}

// DefaultConfig returns a configuration with every default applied.
func DefaultConfig() Config {
	var cfg Config
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults populates zero values and clamps out-of-range settings.
func (c *Config) ApplyDefaults() {
	if c.TopK <= 0 || c.TopK > MaxResults {
		c.TopK = MaxResults
	}
	switch strings.ToLower(strings.TrimSpace(c.Language)) {
	case "fr", "en":
		c.Language = strings.ToLower(strings.TrimSpace(c.Language))
	default:
		c.Language = defaultLanguage
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		c.Server.Addr = defaultAddr
	}
	if strings.TrimSpace(c.Log.Level) == "" {
		c.Log.Level = defaultLogLevel
	}
	c.KnowledgeBasePath = strings.TrimSpace(c.KnowledgeBasePath)
	c.Columns = c.Columns.WithDefaults()
}

// NewViper returns a viper instance with defaults and SYMPTOMCHECK_* environment binding.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("topK", MaxResults)
	v.SetDefault("knowledgeBasePath", "")
	v.SetDefault("language", defaultLanguage)
	v.SetDefault("server.addr", defaultAddr)
	v.SetDefault("log.json", false)
	v.SetDefault("log.level", defaultLogLevel)
}

// LoadConfig reads the configuration at path. An empty path looks for
// symptomcheck.{yaml,toml,json} in the working directory; a missing file yields
// defaults. Environment variables override file values.
func LoadConfig(path string) (Config, error) {
	v := NewViper()
	path = strings.TrimSpace(path)
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(defaultConfigName)
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound):
		case path != "" && errors.Is(err, os.ErrNotExist):
		default:
			return DefaultConfig(), errors.Wrapf(err, "read config %s", path)
		}
	}
	return LoadConfigWithViper(v)
}

// LoadConfigWithViper decodes the configuration from an already prepared viper instance.
func LoadConfigWithViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return DefaultConfig(), errors.Wrap(err, "decode config")
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// SaveConfig persists configuration to disk atomically. The encoding follows the
// file extension (.yaml, .yml, .toml, anything else JSON).
func SaveConfig(path string, cfg Config) error {
	if strings.TrimSpace(path) == "" {
		path = defaultConfigName + ".json"
	}
	cfg.ApplyDefaults()
	data, err := encodeByExt(path, cfg)
	if err != nil {
		return errors.Wrap(err, "encode config")
	}
	return writeFileAtomic(path, data)
}

// LoadKnowledgeBase returns the compiled-in table, or the table stored at
// cfg.KnowledgeBasePath when it is set.
func LoadKnowledgeBase(cfg Config) (*KnowledgeBase, error) {
	if cfg.KnowledgeBasePath == "" {
		return DefaultKnowledgeBase(), nil
	}
	return LoadKnowledgeFile(cfg.KnowledgeBasePath)
}

func encodeByExt(path string, value any) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Marshal(value)
	case ".toml":
		var buf strings.Builder
		if err := toml.NewEncoder(&buf).Encode(value); err != nil {
			return nil, err
		}
		return []byte(buf.String()), nil
	case ".json", "":
		data, err := json.MarshalIndent(value, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%s", filepath.Ext(path))
	}
}

func writeFileAtomic(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "create config dir")
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrap(err, "write temp file")
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Wrap(err, "rename temp file")
	}
	return nil
}
