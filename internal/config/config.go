package config // package config loads application configuration from environment variables

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
	Env      string // application environment (e.g. "dev", "prod")
	Port     string // HTTP port to listen on
	LogLevel string // zap level name

	DBUser      string // database username
	DBPass      string // database password (optional)
	DBHost      string // database host address
	DBPort      string // database port number
	DBName      string // database name
	DBMaxOpen   int    // connection pool size
	SeedSeats   int    // seats created on first start
	SeatsPerRow int    // seats per row label when seeding

	JWTSecret         string // secret used to sign JWTs; admin routes are off when empty
	AdminPasswordHash string // bcrypt hash of the admin password
	AccessTTLMin      int    // access token time-to-live in minutes

	RabbitURL   string // broker URL; events are dropped when empty
	EventLogDir string // directory of booking.log written by the consumer

	ShutdownTimeout time.Duration
}

// required lists variables without a sensible default.
var required = []string{"DB_USER", "DB_HOST", "DB_PORT", "DB_NAME"}

// Load reads configuration values from environment variables and returns a
// Config.  Every missing required variable is reported in a single error.
func Load() (Config, error) {
	var missing []string
	for _, k := range required {
		if v, ok := os.LookupEnv(k); !ok || strings.TrimSpace(v) == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}

	cfg := Config{
		Env:               envStr("APP_ENV", "prod"),
		Port:              envStr("APP_PORT", "8080"),
		LogLevel:          envStr("LOG_LEVEL", "info"),
		DBUser:            os.Getenv("DB_USER"),
		DBPass:            os.Getenv("DB_PASS"), // empty allowed
		DBHost:            os.Getenv("DB_HOST"),
		DBPort:            os.Getenv("DB_PORT"),
		DBName:            os.Getenv("DB_NAME"),
		DBMaxOpen:         envInt("DB_MAX_OPEN_CONNS", 25),
		SeedSeats:         envInt("SEED_SEATS", 10),
		SeatsPerRow:       envInt("SEATS_PER_ROW", 10),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		AccessTTLMin:      envInt("ACCESS_TOKEN_TTL_MIN", 15),
		RabbitURL:         os.Getenv("RABBITMQ_URL"),
		EventLogDir:       envStr("EVENT_LOG_DIR", "logs"),
		ShutdownTimeout:   envDur("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
	if _, err := strconv.Atoi(cfg.DBPort); err != nil {
		return Config{}, fmt.Errorf("invalid DB_PORT %q", cfg.DBPort)
	}
	if cfg.SeedSeats < 0 {
		cfg.SeedSeats = 0
	}
	if cfg.AccessTTLMin < 1 {
		cfg.AccessTTLMin = 15
	}
	return cfg, nil
}

// IsDev reports whether the development logger and error output are wanted.
func (c Config) IsDev() bool { return strings.EqualFold(c.Env, "dev") }

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
