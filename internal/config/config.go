package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/example/go-nertags/internal/params"
)

type Config struct {
	Paths    PathsConfig   `mapstructure:"paths"`
	Indexer  IndexerConfig `mapstructure:"indexer"`
	Vocab    VocabConfig   `mapstructure:"vocab"`
	Batch    BatchConfig   `mapstructure:"batch"`
	Server   ServerConfig  `mapstructure:"server"`
	LogLevel string        `mapstructure:"log_level"`
}

type PathsConfig struct {
	VocabDir string `mapstructure:"vocab_dir"`
	DataPath string `mapstructure:"data_path"`
}

type IndexerConfig struct {
	Type       string `mapstructure:"type"`
	Namespace  string `mapstructure:"namespace"`
	ParamsFile string `mapstructure:"params_file"`
	KeepBIO    bool   `mapstructure:"keep_bio"`
}

type VocabConfig struct {
	MinCount int `mapstructure:"min_count"`
}

type BatchConfig struct {
	MaxLength int `mapstructure:"max_length"`
}

type ServerConfig struct {
	ListenAddr      string `mapstructure:"listen_addr"`
	MaxTokens       int    `mapstructure:"max_tokens"`
	RequestTimeout  int    `mapstructure:"request_timeout"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

func DefaultConfig() Config {
	return Config{
		Paths: PathsConfig{
			VocabDir: "vocabulary",
			DataPath: "",
		},
		Indexer: IndexerConfig{
			Type:       IndexerNER,
			Namespace:  "",
			ParamsFile: "",
			KeepBIO:    false,
		},
		Vocab: VocabConfig{
			MinCount: 1,
		},
		Batch: BatchConfig{
			MaxLength: 0,
		},
		Server: ServerConfig{
			ListenAddr:      ":8080",
			MaxTokens:       512,
			RequestTimeout:  10,
			ShutdownTimeout: 30,
		},
		LogLevel: "info",
	}
}

// flagKeys maps each config key to the flag that overrides it.
var flagKeys = map[string]string{
	"paths.vocab_dir":         "vocab-dir",
	"paths.data_path":         "data",
	"indexer.type":            "indexer",
	"indexer.namespace":       "namespace",
	"indexer.params_file":     "indexer-params",
	"indexer.keep_bio":        "keep-bio",
	"vocab.min_count":         "min-count",
	"batch.max_length":        "max-length",
	"server.listen_addr":      "listen-addr",
	"server.max_tokens":       "max-tokens",
	"server.request_timeout":  "request-timeout",
	"server.shutdown_timeout": "shutdown-timeout",
	"log_level":               "log-level",
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("vocab-dir", defaults.Paths.VocabDir, "Vocabulary directory")
	fs.String("data", defaults.Paths.DataPath, "CoNLL data file")
	fs.String("indexer", defaults.Indexer.Type, "Token indexer type (ner_tag|pos_tag|single_id)")
	fs.String("namespace", defaults.Indexer.Namespace, "Vocabulary namespace (indexer default when empty)")
	fs.String("indexer-params", defaults.Indexer.ParamsFile, "Indexer params file (yaml|json); overrides --indexer and --namespace")
	fs.Bool("keep-bio", defaults.Indexer.KeepBIO, "Keep BIO prefixes on entity tags")
	fs.Int("min-count", defaults.Vocab.MinCount, "Minimum tag count kept in the vocabulary")
	fs.Int("max-length", defaults.Batch.MaxLength, "Pad or truncate sequences to this length (0 = longest in batch)")
	fs.String("listen-addr", defaults.Server.ListenAddr, "HTTP listen address")
	fs.Int("max-tokens", defaults.Server.MaxTokens, "Maximum tokens per /index request")
	fs.Int("request-timeout", defaults.Server.RequestTimeout, "Per-request timeout in seconds")
	fs.Int("shutdown-timeout", defaults.Server.ShutdownTimeout, "Graceful shutdown timeout in seconds")
	fs.String("log-level", defaults.LogLevel, "Log level (debug|info|warn|error)")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := bindFlags(v, opts.Cmd.Flags()); err != nil {
			return Config{}, err
		}
	}

	v.SetEnvPrefix("NERTAGS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("nertags")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for key, name := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag --%s: %w", name, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("paths.vocab_dir", c.Paths.VocabDir)
	v.SetDefault("paths.data_path", c.Paths.DataPath)
	v.SetDefault("indexer.type", c.Indexer.Type)
	v.SetDefault("indexer.namespace", c.Indexer.Namespace)
	v.SetDefault("indexer.params_file", c.Indexer.ParamsFile)
	v.SetDefault("indexer.keep_bio", c.Indexer.KeepBIO)
	v.SetDefault("vocab.min_count", c.Vocab.MinCount)
	v.SetDefault("batch.max_length", c.Batch.MaxLength)
	v.SetDefault("server.listen_addr", c.Server.ListenAddr)
	v.SetDefault("server.max_tokens", c.Server.MaxTokens)
	v.SetDefault("server.request_timeout", c.Server.RequestTimeout)
	v.SetDefault("server.shutdown_timeout", c.Server.ShutdownTimeout)
	v.SetDefault("log_level", c.LogLevel)
}

// ParamsFileKey is the optional top-level key of an indexer params file that
// wraps the indexer object.
const ParamsFileKey = "indexer"

// IndexerParams returns the construction parameters of the configured
// indexer: the params file when set, otherwise type and namespace. A params
// file holds the indexer object either at its top level or under
// ParamsFileKey, in which case no other top-level key is allowed.
func (c Config) IndexerParams() (*params.Params, error) {
	if c.Indexer.ParamsFile != "" {
		p, err := params.FromFile(c.Indexer.ParamsFile)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(p.Keys(), ParamsFileKey) {
			return p, nil
		}
		nested, err := p.PopParams(ParamsFileKey)
		if err != nil {
			return nil, err
		}
		if err := p.AssertEmpty(c.Indexer.ParamsFile); err != nil {
			return nil, err
		}
		return nested, nil
	}

	typ, err := NormalizeIndexerType(c.Indexer.Type)
	if err != nil {
		return nil, err
	}
	m := map[string]any{"type": typ}
	if c.Indexer.Namespace != "" {
		m["namespace"] = c.Indexer.Namespace
	}
	return params.New(m), nil
}
