package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

// minSecretBytes is the minimum HMAC key length (256 bits).
const minSecretBytes = 32

type JWTConfig struct {
	SecretKey string        `mapstructure:"secretKey"`
	TokenTTL  time.Duration `mapstructure:"tokenTTL"`
	Issuer    string        `mapstructure:"issuer"`
}

type Config struct {
	Mode     string `mapstructure:"mode"`
	Handlers struct {
		Prometheus struct {
			Port string `mapstructure:"port"`
		} `mapstructure:"prometheus"`
	} `mapstructure:"handlers"`
	Repositories struct {
		Postgres struct {
			Host     string `mapstructure:"host"`
			Password string `mapstructure:"password"`
			Port     string `mapstructure:"port"`
			Username string `mapstructure:"username"`
			DB       string `mapstructure:"db"`
			SSLMode  string `mapstructure:"sslmode"`
		} `mapstructure:"postgres"`
	} `mapstructure:"repositories"`
	Server struct {
		HTTPPort string        `mapstructure:"HTTPPort"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	JWT JWTConfig `mapstructure:"jwt"`
	Auth struct {
		LoginMaxAttempts int           `mapstructure:"loginMaxAttempts"`
		LoginWindow      time.Duration `mapstructure:"loginWindow"`
	} `mapstructure:"auth"`
}

// InitConfig loads the application configuration from a config.yml on disk,
// falling back to the embedded copy. Environment variables with the
// CUSTOMERAPI_ prefix override file values (e.g. CUSTOMERAPI_JWT_SECRETKEY).
func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	v.SetEnvPrefix("CUSTOMERAPI")
	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %s", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %s", err)
	}

	if err = config.validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// validate enforces the startup invariants. A short signing secret is fatal:
// the process must refuse to serve traffic rather than mint weak tokens.
func (c *Config) validate() error {
	if len(c.JWT.SecretKey) < minSecretBytes {
		return fmt.Errorf("jwt.secretKey must be at least %d bytes (256 bits), got %d", minSecretBytes, len(c.JWT.SecretKey))
	}
	if c.JWT.TokenTTL <= 0 {
		return fmt.Errorf("jwt.tokenTTL must be positive, got %s", c.JWT.TokenTTL)
	}
	return nil
}
