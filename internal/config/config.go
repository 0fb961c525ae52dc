package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port        string
	AppOrigin   string
	Environment string
	WebDistDir  string
}

// FeatureConfig holds the boolean feature flags. A disabled feature must be
// indistinguishable from a route that does not exist.
type FeatureConfig struct {
	Passkeys    bool
	MultiBudget bool
	Assignments bool
}

type AuthConfig struct {
	MagicLinkTTL          time.Duration
	SessionTTL            time.Duration
	MagicLinkMaxPerWindow int
	MagicLinkWindow       time.Duration
}

type SMTPConfig struct {
	Host string
	Port int
	From string
}

type AMQPConfig struct {
	URL      string
	Exchange string
	Queue    string
}

type Config struct {
	Server   ServerConfig
	Features FeatureConfig
	Auth     AuthConfig
	SMTP     SMTPConfig
	AMQP     AMQPConfig
	DevSeed  bool
}

var envBindings = map[string]string{
	"server.port":                    "PORT",
	"server.app_origin":              "APP_ORIGIN",
	"server.environment":             "APP_ENV",
	"server.web_dist_dir":            "WEB_DIST_DIR",
	"database.url":                   "DATABASE_URL",
	"database.host":                  "DATABASE_HOST",
	"database.port":                  "DATABASE_PORT",
	"database.user":                  "DATABASE_USER",
	"database.password":              "DATABASE_PASSWORD",
	"database.name":                  "DATABASE_NAME",
	"database.ssl_mode":              "DATABASE_SSL_MODE",
	"redis.host":                     "REDIS_HOST",
	"redis.port":                     "REDIS_PORT",
	"redis.password":                 "REDIS_PASSWORD",
	"redis.db":                       "REDIS_DB",
	"features.passkeys":              "FEATURE_PASSKEYS",
	"features.multi_budget":          "FEATURE_MULTI_BUDGET",
	"features.assignments":           "FEATURE_ASSIGNMENTS",
	"dev_seed":                       "DEV_SEED",
	"smtp.host":                      "SMTP_HOST",
	"smtp.port":                      "SMTP_PORT",
	"smtp.from":                      "SMTP_FROM",
	"amqp.url":                       "AMQP_URL",
	"amqp.exchange":                  "AMQP_EXCHANGE",
	"amqp.queue":                     "AMQP_QUEUE",
	"auth.magic_link_ttl":            "MAGIC_LINK_TTL",
	"auth.session_ttl":               "SESSION_TTL",
	"auth.magic_link_max_per_window": "MAGIC_LINK_MAX_PER_WINDOW",
	"auth.magic_link_window":         "MAGIC_LINK_WINDOW",
}

func setDefaults() {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.app_origin", "http://localhost:8080")
	viper.SetDefault("server.environment", "development")
	viper.SetDefault("server.web_dist_dir", "apps/web/dist")

	viper.SetDefault("features.passkeys", false)
	viper.SetDefault("features.multi_budget", false)
	viper.SetDefault("features.assignments", true)
	viper.SetDefault("dev_seed", true)

	viper.SetDefault("smtp.host", "mailpit")
	viper.SetDefault("smtp.port", 1025)
	viper.SetDefault("smtp.from", "noreply@envelopezero.local")

	viper.SetDefault("amqp.url", "")
	viper.SetDefault("amqp.exchange", "envelopezero")
	viper.SetDefault("amqp.queue", "magic_link_emails")

	viper.SetDefault("auth.magic_link_ttl", 15*time.Minute)
	viper.SetDefault("auth.session_ttl", 30*24*time.Hour)
	viper.SetDefault("auth.magic_link_max_per_window", 5)
	viper.SetDefault("auth.magic_link_window", time.Hour)
}

// RegisterFlags declares the command line flags understood by every binary.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("port", "", "HTTP listen port (overrides PORT)")
	fs.Bool("seed", true, "seed development data on startup")
}

// Load reads .env (if present), the environment and any parsed flags into a Config.
func Load(fs *pflag.FlagSet) (*Config, error) {
	// .env is optional; production injects real environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("[CONFIG] No .env file loaded: %v", err)
	}

	setDefaults()
	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	if fs != nil {
		if f := fs.Lookup("port"); f != nil && f.Changed {
			viper.Set("server.port", f.Value.String())
		}
		if f := fs.Lookup("seed"); f != nil && f.Changed {
			if err := viper.BindPFlag("dev_seed", f); err != nil {
				return nil, fmt.Errorf("bind seed flag: %w", err)
			}
		}
	}

	cfg := FromViper()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromViper builds a Config from whatever viper currently holds.
func FromViper() *Config {
	setDefaults()
	return &Config{
		Server: ServerConfig{
			Port:        viper.GetString("server.port"),
			AppOrigin:   strings.TrimRight(viper.GetString("server.app_origin"), "/"),
			Environment: viper.GetString("server.environment"),
			WebDistDir:  viper.GetString("server.web_dist_dir"),
		},
		Features: FeatureConfig{
			Passkeys:    viper.GetBool("features.passkeys"),
			MultiBudget: viper.GetBool("features.multi_budget"),
			Assignments: viper.GetBool("features.assignments"),
		},
		Auth: AuthConfig{
			MagicLinkTTL:          viper.GetDuration("auth.magic_link_ttl"),
			SessionTTL:            viper.GetDuration("auth.session_ttl"),
			MagicLinkMaxPerWindow: viper.GetInt("auth.magic_link_max_per_window"),
			MagicLinkWindow:       viper.GetDuration("auth.magic_link_window"),
		},
		SMTP: SMTPConfig{
			Host: viper.GetString("smtp.host"),
			Port: viper.GetInt("smtp.port"),
			From: viper.GetString("smtp.from"),
		},
		AMQP: AMQPConfig{
			URL:      viper.GetString("amqp.url"),
			Exchange: viper.GetString("amqp.exchange"),
			Queue:    viper.GetString("amqp.queue"),
		},
		DevSeed: viper.GetBool("dev_seed"),
	}
}

func (c *Config) Validate() error {
	var problems []string

	if c.Server.Port == "" {
		problems = append(problems, "server port must not be empty")
	}
	if c.Auth.MagicLinkTTL <= 0 {
		problems = append(problems, "magic link ttl must be positive")
	}
	if c.Auth.SessionTTL <= 0 {
		problems = append(problems, "session ttl must be positive")
	}
	if c.SMTP.Port < 1 || c.SMTP.Port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid smtp port %d", c.SMTP.Port))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// IsProduction reports whether debug affordances (like returning raw magic-link tokens) must be off.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}
