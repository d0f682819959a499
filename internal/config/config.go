package config

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"logbridge/internal/level"
	"logbridge/internal/logger"
)

const (
	KeyLevel   = "level"
	KeyContext = "context"
	KeyFormat  = "format"
	KeyGRPC    = "grpc"
	KeyMetrics = "metrics"

	EnvPrefix  = "LOGBRIDGE"
	EnvConfig  = "LOGBRIDGE_CONFIG"
	EnvLevel   = "LOGBRIDGE_LEVEL"
	EnvContext = "LOGBRIDGE_CONTEXT"
	EnvFormat  = "LOGBRIDGE_FORMAT"
	EnvGRPC    = "LOGBRIDGE_GRPC"
	EnvMetrics = "LOGBRIDGE_METRICS"

	DefaultLevel      = "INFO"
	DefaultContext    = "logbridge"
	DefaultFormat     = "json"
	DefaultGRPC       = ":13100"
	DefaultMetrics    = ":2112"
	DefaultConfigName = "logbridge"
	ConfigDir         = "."
)

// Config configures the logbridge server: the initial level, default context
// and output format of the bridged logger, and the gRPC and metrics listen
// addresses.
type Config struct {
	Level   string `mapstructure:"level"`
	Context string `mapstructure:"context"`
	Format  string `mapstructure:"format"`
	GRPC    string `mapstructure:"grpc"`
	Metrics string `mapstructure:"metrics"`
}

// Load reads configuration from defaults, the environment and an optional
// config file, and rejects unknown levels and formats. An explicit path wins over LOGBRIDGE_CONFIG; without either,
// logbridge.{yaml,json,toml} in the working directory is used if present.
func Load(path string) (Config, error) {
	var cfg Config
	v := viper.New()

	v.SetDefault(KeyLevel, DefaultLevel)
	v.SetDefault(KeyContext, DefaultContext)
	v.SetDefault(KeyFormat, DefaultFormat)
	v.SetDefault(KeyGRPC, DefaultGRPC)
	v.SetDefault(KeyMetrics, DefaultMetrics)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if path == "" {
		if envPath, ok := os.LookupEnv(EnvConfig); ok {
			path = envPath
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.AddConfigPath(ConfigDir)
	}

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !(errors.As(err, &nf) || errors.Is(err, os.ErrNotExist)) {
			return cfg, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if _, err := level.Parse(c.Level); err != nil {
		return errors.Wrap(err, KeyLevel)
	}
	if _, err := logger.ParseFormat(c.Format); err != nil {
		return errors.Wrap(err, KeyFormat)
	}
	if c.GRPC == "" {
		return errors.New("grpc: empty listen address")
	}
	return nil
}
