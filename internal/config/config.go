// Package config implements the layered configuration every complete
// server needs: flags override
// environment, which overrides a config file, which overrides defaults
// (the same precedence order dittofs's pkg/config documents), validated
// with struct tags before anything is wired up.
package config

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// ServerConfig is cmd/bank-server's configuration.
type ServerConfig struct {
	Port        int           `mapstructure:"port" yaml:"port" validate:"required,gt=0,lt=65536"`
	LossReq     float64       `mapstructure:"loss_req" yaml:"loss_req" validate:"gte=0,lt=1"`
	LossRep     float64       `mapstructure:"loss_rep" yaml:"loss_rep" validate:"gte=0,lt=1"`
	DedupTTL    time.Duration `mapstructure:"dedup_ttl" yaml:"dedup_ttl" validate:"gt=0"`
	Seed        int64         `mapstructure:"seed" yaml:"seed"`
	SeedFile    string        `mapstructure:"seed_file" yaml:"seed_file"`
	MetricsOn   bool          `mapstructure:"metrics" yaml:"metrics"`
	MetricsAddr string        `mapstructure:"metrics_addr" yaml:"metrics_addr"`
}

func serverDefaults() *viper.Viper {
	v := viper.New()
	v.SetDefault("port", 9000)
	v.SetDefault("loss_req", 0.0)
	v.SetDefault("loss_rep", 0.0)
	v.SetDefault("dedup_ttl", 60*time.Second)
	v.SetDefault("seed", 1)
	v.SetDefault("seed_file", "")
	v.SetDefault("metrics", false)
	v.SetDefault("metrics_addr", "127.0.0.1:9100")
	return v
}

// LoadServerConfig builds a ServerConfig from defaults, an optional config
// file, and BANK_-prefixed environment variables, in that precedence
// order. The caller applies any explicitly-set CLI flags on top, since
// those take highest precedence.
func LoadServerConfig(configFile string) (*ServerConfig, error) {
	v := serverDefaults()
	v.SetEnvPrefix("bank")
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg ServerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate runs struct-tag validation over cfg, after CLI overrides have
// been applied.
func Validate(cfg interface{}) error {
	return validator.New().Struct(cfg)
}
