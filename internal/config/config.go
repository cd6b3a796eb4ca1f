package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config centraliza a configuração carregada do ambiente.
type Config struct {
	Port            int
	APIBaseURL      string
	RedisURL        string
	SessionTTL      time.Duration
	DefaultTimezone string
	CSRFKey         string
	Production      bool
	RateLimitPublic RateLimitConfig
}

// RateLimitConfig representa limites simples para throttling.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// Load carrega variáveis de ambiente e aplica defaults seguros.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	portStr := getEnv("PORT", "4000")
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 {
		return nil, errors.New("PORT inválida")
	}
	cfg.Port = port

	cfg.APIBaseURL = strings.TrimSpace(getEnv("API_BASE_URL", "http://localhost:3000"))
	if cfg.APIBaseURL == "" {
		return nil, errors.New("API_BASE_URL obrigatória")
	}

	cfg.RedisURL = strings.TrimSpace(getEnv("REDIS_URL", ""))

	sessionTTL, err := parseDurationEnv("SESSION_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.SessionTTL = sessionTTL

	cfg.DefaultTimezone = strings.TrimSpace(getEnv("DEFAULT_TIMEZONE", "UTC"))

	cfg.Production = strings.EqualFold(getEnv("ENV", "development"), "production")

	cfg.CSRFKey = strings.TrimSpace(getEnv("CSRF_KEY", ""))
	if cfg.Production && len(cfg.CSRFKey) < 32 {
		return nil, errors.New("CSRF_KEY deve ter pelo menos 32 caracteres em produção")
	}

	cfg.RateLimitPublic = RateLimitConfig{RequestsPerSecond: 10, Burst: 20}

	return cfg, nil
}

func getEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	val := getEnv(key, "")
	if val == "" {
		return def, nil
	}
	dur, err := time.ParseDuration(val)
	if err != nil {
		return 0, errors.New(key + " inválido")
	}
	return dur, nil
}
