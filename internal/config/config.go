package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Provider holds the connection settings for one provider role.
type Provider struct {
	BaseURL string
	APIKey  string
	Model   string
	// MaxInFlight caps concurrent outbound calls for this role across
	// every request the process is serving.
	MaxInFlight int
}

type Config struct {
	ServerAddr string
	PgConn     string

	// Fast is the cheap planner role, Primary the strategist, Precision
	// the refiner that also serves every boardroom persona.
	Fast      Provider
	Primary   Provider
	Precision Provider

	// EmbedModel is served from the fast role's endpoint.
	EmbedModel string
	EmbedDim   int

	ContextBudget     int
	KeepaliveInterval time.Duration
	PulseInterval     time.Duration
	Version           string
}

// Load reads the environment once at process start. The engine treats the
// result as opaque constants afterwards.
func Load() *Config {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server_addr", ":8080")
	v.SetDefault("pg_conn", "host=localhost port=5432 user=postgres password=postgres dbname=collective sslmode=disable")

	v.SetDefault("fast_base_url", "https://api.openai.com/v1")
	v.SetDefault("fast_api_key", "")
	v.SetDefault("fast_model", "gpt-4o-mini")
	v.SetDefault("fast_max_in_flight", 8)

	v.SetDefault("primary_base_url", "https://api.openai.com/v1")
	v.SetDefault("primary_api_key", "")
	v.SetDefault("primary_model", "gpt-4o")
	v.SetDefault("primary_max_in_flight", 4)

	v.SetDefault("precision_base_url", "https://api.openai.com/v1")
	v.SetDefault("precision_api_key", "")
	v.SetDefault("precision_model", "gpt-4o")
	v.SetDefault("precision_max_in_flight", 4)

	v.SetDefault("embed_model", "text-embedding-3-small")
	v.SetDefault("embed_dim", 1536)

	v.SetDefault("context_budget", 6000)
	v.SetDefault("keepalive_interval", "15s")
	v.SetDefault("pulse_interval", "1s")
	v.SetDefault("app_version", "collective-1.0.0")

	return &Config{
		ServerAddr: v.GetString("server_addr"),
		PgConn:     v.GetString("pg_conn"),
		Fast: Provider{
			BaseURL:     v.GetString("fast_base_url"),
			APIKey:      v.GetString("fast_api_key"),
			Model:       v.GetString("fast_model"),
			MaxInFlight: v.GetInt("fast_max_in_flight"),
		},
		Primary: Provider{
			BaseURL:     v.GetString("primary_base_url"),
			APIKey:      v.GetString("primary_api_key"),
			Model:       v.GetString("primary_model"),
			MaxInFlight: v.GetInt("primary_max_in_flight"),
		},
		Precision: Provider{
			BaseURL:     v.GetString("precision_base_url"),
			APIKey:      v.GetString("precision_api_key"),
			Model:       v.GetString("precision_model"),
			MaxInFlight: v.GetInt("precision_max_in_flight"),
		},
		EmbedModel:        v.GetString("embed_model"),
		EmbedDim:          v.GetInt("embed_dim"),
		ContextBudget:     v.GetInt("context_budget"),
		KeepaliveInterval: v.GetDuration("keepalive_interval"),
		PulseInterval:     v.GetDuration("pulse_interval"),
		Version:           v.GetString("app_version"),
	}
}
