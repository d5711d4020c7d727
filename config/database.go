package config

import (
	"strings"
	"time"
)

// DBConfig contains PostgreSQL database configuration.
type DBConfig struct {
	Host     string `env:"HOST"                    envDefault:"localhost"`
	Port     int    `env:"PORT"                    envDefault:"5432"`
	User     string `env:"USER"                    envDefault:"careconnect"`
	Password string `env:"PASSWORD"                envDefault:"careconnect"`
	Name     string `env:"NAME"                    envDefault:"careconnect"`
	SSLMode  string `env:"SSL_MODE"                envDefault:"disable"` // Use 'disable' for local dev, 'require' for production
	// RunMigrationsOnStart controls whether the application automatically applies migrations during startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`

	// Pool sizing. The role cascade holds a connection for at most two point lookups.
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS"    envDefault:"25"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS"    envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"5m"`
}

// Sanitize keeps the pool settings usable.
func (d *DBConfig) Sanitize() {
	if d.MaxOpenConns <= 0 {
		d.MaxOpenConns = 25
	}
	if d.MaxIdleConns < 0 {
		d.MaxIdleConns = 0
	}
	if d.MaxIdleConns > d.MaxOpenConns {
		d.MaxIdleConns = d.MaxOpenConns
	}
	if d.ConnMaxLifetime < 0 {
		d.ConnMaxLifetime = 0
	}
	if strings.TrimSpace(d.SSLMode) == "" {
		d.SSLMode = "disable"
	}
}

// RedisConfig contains Redis configuration.
type RedisConfig struct {
	// URI is host:port or a redis:// / rediss:// URL for the direct topology.
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	DB                 int      `env:"DB"                   envDefault:"0"`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string `env:"CLUSTER_NODES"        envDefault:""`
	UseCluster         bool     `env:"USE_CLUSTER"          envDefault:"false"`

	// MirrorTTL bounds how long mirrored tokens and favorites live. Zero keeps them forever.
	MirrorTTL time.Duration `env:"MIRROR_TTL" envDefault:"720h"`
	// EventsChannel is the pub/sub channel carrying session events.
	EventsChannel string `env:"EVENTS_CHANNEL" envDefault:"careconnect:session-events"`
}

// Sanitize clamps negative TTLs and trims the channel name.
func (r *RedisConfig) Sanitize() {
	if r.MirrorTTL < 0 {
		r.MirrorTTL = 0
	}
	r.EventsChannel = strings.TrimSpace(r.EventsChannel)
}
