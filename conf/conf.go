// Package conf loads the application configuration from file and environment.
// Lookup order: explicit GMCDASH_CONFIG path, ./gmcdash.yml, /etc/gmcdash/.
// Environment variables override file values with the GMCDASH_ prefix, e.g.
// GMCDASH_SERVER_PORT=8080.
package conf

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/gmcdash/gmcdash/internal/isolation"
	"github.com/gmcdash/gmcdash/internal/log"
	"github.com/gmcdash/gmcdash/internal/pkg/xcache"
	"github.com/gmcdash/gmcdash/internal/server"
	"github.com/gmcdash/gmcdash/internal/server/biz"
	"github.com/gmcdash/gmcdash/internal/server/db"
)

type Config struct {
	Server    server.Config    `conf:"server" yaml:"server" json:"server"`
	DB        db.Config        `conf:"db" yaml:"db" json:"db"`
	Log       log.Config       `conf:"log" yaml:"log" json:"log"`
	Cache     xcache.Config    `conf:"cache" yaml:"cache" json:"cache"`
	Auth      biz.AuthConfig   `conf:"auth" yaml:"auth" json:"auth"`
	Isolation isolation.Config `conf:"isolation" yaml:"isolation" json:"isolation"`
}

// Load reads the configuration. A missing config file is not an error; the
// defaults plus environment variables are enough for local development.
func Load() (Config, error) {
	v := viper.New()

	v.SetConfigName("gmcdash")
	v.SetConfigType("yaml")

	if path := os.Getenv("GMCDASH_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/gmcdash")
	}

	v.SetEnvPrefix("GMCDASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config

	err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "conf"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	})
	if err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.name", "gmcdash")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.request_timeout", "60s")
	v.SetDefault("db.migrate", true)
	v.SetDefault("cache.mode", "memory")
}

// ProvideSections exposes the nested config sections to fx consumers.
func ProvideSections(cfg Config) (
	server.Config,
	db.Config,
	log.Config,
	xcache.Config,
	biz.AuthConfig,
	isolation.Config,
) {
	return cfg.Server, cfg.DB, cfg.Log, cfg.Cache, cfg.Auth, cfg.Isolation
}
