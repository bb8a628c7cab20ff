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

type Config struct {
	Mode   string `mapstructure:"mode"`
	Server struct {
		HTTPPort    string        `mapstructure:"HTTPPort"`
		MetricsPort string        `mapstructure:"metricsPort"`
		Timeout     time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
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
	Auth struct {
		GoogleClientID string `mapstructure:"googleClientID"`
		SessionSecret  string `mapstructure:"sessionSecret"`
		SessionName    string `mapstructure:"sessionName"`
	} `mapstructure:"auth"`
	Geocoder struct {
		BaseURL   string        `mapstructure:"baseURL"`
		UserAgent string        `mapstructure:"userAgent"`
		Timeout   time.Duration `mapstructure:"timeout"`
	} `mapstructure:"geocoder"`
	Media struct {
		CloudName string        `mapstructure:"cloudName"`
		APIKey    string        `mapstructure:"apiKey"`
		APISecret string        `mapstructure:"apiSecret"`
		Folder    string        `mapstructure:"folder"`
		Timeout   time.Duration `mapstructure:"timeout"`
	} `mapstructure:"media"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	// Secrets and deploy-specific values always come from the environment.
	bindings := map[string]string{
		"repositories.postgres.password": "POSTGRES_PASSWORD",
		"repositories.postgres.host":     "POSTGRES_HOST",
		"auth.googleClientID":            "GOOGLE_CLIENT_ID",
		"auth.sessionSecret":             "SESSION_SECRET",
		"media.cloudName":                "CLOUDINARY_CLOUD_NAME",
		"media.apiKey":                   "CLOUDINARY_API_KEY",
		"media.apiSecret":                "CLOUDINARY_API_SECRET",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

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
	if err = config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// Validate enforces the startup contract: a missing credential fails the
// process at boot instead of failing individual requests later.
func (c Config) Validate() error {
	required := map[string]string{
		"repositories.postgres.host":     c.Repositories.Postgres.Host,
		"repositories.postgres.username": c.Repositories.Postgres.Username,
		"repositories.postgres.db":       c.Repositories.Postgres.DB,
		"auth.googleClientID":            c.Auth.GoogleClientID,
		"auth.sessionSecret":             c.Auth.SessionSecret,
		"media.cloudName":                c.Media.CloudName,
		"media.apiKey":                   c.Media.APIKey,
		"media.apiSecret":                c.Media.APISecret,
	}
	for key, value := range required {
		if value == "" {
			return fmt.Errorf("missing required config value %q", key)
		}
	}
	return nil
}
