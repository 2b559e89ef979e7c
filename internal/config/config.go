package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port      string
	DataDir   string
	JWTSecret string

	// Remote order gateway. An empty URL or API key means the gateway is
	// not configured and every checkout is deferred locally.
	GatewayURL    string
	GatewayAPIKey string

	// Sync tuning.
	ReplayDelay       time.Duration // delay before the post-checkout replay attempt
	SettleDelay       time.Duration // debounce after an offline->online transition
	ProbeInterval     time.Duration // gateway reachability probe period
	RetentionAge      time.Duration // synced orders older than this are swept
	RetentionInterval time.Duration // how often the retention sweep runs
}

func Load() *Config {
	return &Config{
		Port:              getEnv("PORT", "8082"),
		DataDir:           getEnv("DATA_DIR", "./data"),
		JWTSecret:         getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		GatewayURL:        getEnv("GATEWAY_URL", ""),
		GatewayAPIKey:     getEnv("GATEWAY_API_KEY", ""),
		ReplayDelay:       getEnvDuration("REPLAY_DELAY", time.Second),
		SettleDelay:       getEnvDuration("SETTLE_DELAY", 2*time.Second),
		ProbeInterval:     getEnvDuration("PROBE_INTERVAL", 15*time.Second),
		RetentionAge:      getEnvDuration("RETENTION_AGE", 30*24*time.Hour),
		RetentionInterval: getEnvDuration("RETENTION_INTERVAL", 6*time.Hour),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	// Bare numbers are read as seconds.
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}
