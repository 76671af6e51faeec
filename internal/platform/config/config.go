package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config agrupa toda la configuración del servicio.
// Se carga desde env vars (y un .env opcional para dev).
type Config struct {
	Port string `mapstructure:"PORT"`
	Env  string `mapstructure:"ENV"`

	// Si DB_DSN viene vacío, el router cae a repos in-memory (modo dev).
	DBDSN string `mapstructure:"DB_DSN"`

	JWTSecret          string `mapstructure:"JWT_SECRET"`
	JWTExpirationHours int    `mapstructure:"JWT_EXPIRATION_HOURS"`

	// Base del front para armar el fullLink de las consultas compartidas.
	FrontendURL string `mapstructure:"FRONTEND_URL"`

	// Colaborador CDSS (opcional; si no está configurado, /analyze responde 503).
	CdssBaseURL string `mapstructure:"CDSS_BASE_URL"`
	CdssAPIKey  string `mapstructure:"CDSS_API_KEY"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
	AppName   string `mapstructure:"APP_NAME"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("JWT_EXPIRATION_HOURS", 24)
	v.SetDefault("FRONTEND_URL", "http://localhost:5173")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("APP_NAME", "athlete-clinical-history")

	// Bind explícito para que Unmarshal levante las env vars.
	for _, key := range []string{
		"PORT", "ENV", "DB_DSN",
		"JWT_SECRET", "JWT_EXPIRATION_HOURS",
		"FRONTEND_URL",
		"CDSS_BASE_URL", "CDSS_API_KEY",
		"LOG_LEVEL", "LOG_FORMAT", "APP_NAME",
	} {
		_ = v.BindEnv(key)
	}

	// .env es opcional; si no existe seguimos con env puro.
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.IsProd() && strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, fmt.Errorf("JWT_SECRET is required in production")
	}

	return cfg, nil
}

func (c *Config) IsProd() bool {
	return strings.EqualFold(strings.TrimSpace(c.Env), "production")
}
