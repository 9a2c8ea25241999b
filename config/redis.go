package config

import "strings"

// RedisConfig contains Redis configuration for the gateway job cache.
type RedisConfig struct {
	// URI is host:port of the Redis server. Empty disables Redis.
	URI      string `env:"URI"      envDefault:""`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB"       envDefault:"0"`
	Prefix   string `env:"PREFIX"   envDefault:"fortunes:job:"`
}

// Sanitize normalises Redis configuration values.
func (r *RedisConfig) Sanitize() {
	r.URI = strings.TrimSpace(r.URI)
	if r.DB < 0 {
		r.DB = 0
	}
	if r.Prefix == "" {
		r.Prefix = "fortunes:job:"
	}
}

// Enabled reports whether a Redis server was configured.
func (r *RedisConfig) Enabled() bool {
	return r.URI != ""
}
