// Package config loads faqbase settings from defaults, an optional config
// file and the environment, in increasing order of precedence.
package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultJWTSecret     = "change-me-in-production"
	DefaultAdminPassword = "admin123"
)

type Config struct {
	Port            int
	DatabaseURL     string
	LogLevel        string
	LogFormat       string
	JWTSecret       string
	AdminPassword   string
	TokenTTL        time.Duration
	NatsURL         string
	NatsToken       string
	StaticDir       string
	CORSOrigins     []string
	MaxUploadBytes  int64
	ImportStatePath string
}

// setting is one config key, the environment variables that override it
// (first set wins) and its default.
type setting struct {
	key      string
	envs     []string
	fallback any
}

var settings = []setting{
	{"port", []string{"FAQBASE_PORT", "PORT"}, 3001},
	{"database_url", []string{"DATABASE_URL"}, "faqbase.db"},
	{"log_level", []string{"LOG_LEVEL"}, "info"},
	{"log_format", []string{"LOG_FORMAT"}, "json"},
	{"jwt_secret", []string{"JWT_SECRET"}, DefaultJWTSecret},
	{"admin_password", []string{"ADMIN_PASSWORD"}, DefaultAdminPassword},
	{"token_ttl", []string{"TOKEN_TTL"}, "168h"},
	{"nats_url", []string{"NATS_URL"}, ""},
	{"nats_token", []string{"NATS_TOKEN"}, ""},
	{"static_dir", []string{"STATIC_DIR"}, ""},
	{"cors_origins", []string{"CORS_ORIGINS"}, "*"},
	{"max_upload_bytes", []string{"MAX_UPLOAD_BYTES"}, 10 << 20},
	{"import_state", []string{"FAQBASE_IMPORT_STATE"}, "~/.faqbase/import-state.json"},
}

// Bind registers defaults and environment bindings on v. Call it before
// reading a config file so that file values sit between the two.
func Bind(v *viper.Viper) {
	for _, s := range settings {
		v.SetDefault(s.key, s.fallback)
		_ = v.BindEnv(append([]string{s.key}, s.envs...)...)
	}
}

// Load reads the settings bound on v.
func Load(v *viper.Viper) Config {
	return Config{
		Port:            intValue(v, "port", 3001),
		DatabaseURL:     v.GetString("database_url"),
		LogLevel:        v.GetString("log_level"),
		LogFormat:       v.GetString("log_format"),
		JWTSecret:       v.GetString("jwt_secret"),
		AdminPassword:   v.GetString("admin_password"),
		TokenTTL:        durationValue(v, "token_ttl", 168*time.Hour),
		NatsURL:         v.GetString("nats_url"),
		NatsToken:       v.GetString("nats_token"),
		StaticDir:       v.GetString("static_dir"),
		CORSOrigins:     listValue(v, "cors_origins"),
		MaxUploadBytes:  int64(intValue(v, "max_upload_bytes", 10<<20)),
		ImportStatePath: v.GetString("import_state"),
	}
}

// Warnings lists settings still at insecure defaults.
func (c Config) Warnings() []string {
	var out []string
	if c.JWTSecret == DefaultJWTSecret {
		out = append(out, "JWT_SECRET is the built-in default; set it in production")
	}
	if c.AdminPassword == DefaultAdminPassword {
		out = append(out, "ADMIN_PASSWORD is the built-in default; change it after first login")
	}
	return out
}

func intValue(v *viper.Viper, key string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func durationValue(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(v.GetString(key)))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// listValue accepts a YAML list or a comma-separated string.
func listValue(v *viper.Viper, key string) []string {
	var out []string
	for _, item := range v.GetStringSlice(key) {
		for part := range strings.SplitSeq(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
