package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultRows                = 30
	defaultMutationProbability = 1.0
	defaultTickInterval        = 100 * time.Millisecond
)

// Config holds the application's configuration values.
type Config struct {
	HostIP   string // Host IP for the server
	RESTPort int    // Port for the REST API
	GinMode  string // Mode for the Gin framework (e.g., release, debug, test)

	JWTSecret    string // Secret key for JWT signing
	JWTIssuer    string // Issuer claim for JWTs
	PilotName    string // Name the agent pilot signs in with
	PilotKeyHash string // bcrypt hash of the pilot key

	RedisAddr     string // Redis address for snapshot broadcasting, empty disables it
	RedisPassword string // Redis password
	RedisChannel  string // Redis pub/sub channel for snapshots

	Rows         int     // Number of maze rows
	Columns      int     // Number of maze columns, derived when not set
	ScreenWidth  float64 // Renderer width in pixels
	ScreenHeight float64 // Renderer height in pixels

	MutationProbability float64       // Chance of one edge swap per tick, in [0,1]
	MutationStrategy    string        // shore or cycle
	ShoreAnchor         string        // origin or random
	Seed                int64         // Random seed, 0 picks one from the clock
	TickInterval        time.Duration // Time between simulation ticks

	LogLevel string // Minimum log level

	DotenvLoaded bool // Whether a .env file was read
}

// Load reads an optional .env file (or the given files) and the process
// environment, validating every value once.
func Load(files ...string) (*Config, error) {
	loaded := godotenv.Load(files...) == nil

	r := &envReader{}
	c := &Config{
		HostIP:   r.stringOr("HOST_IP", "0.0.0.0"),
		RESTPort: r.intOr("REST_PORT", 8080),
		GinMode:  r.stringOr("GIN_MODE", "release"),

		JWTSecret:    r.mustString("JWT_SECRET"),
		JWTIssuer:    r.stringOr("JWT_ISSUER", "vinom-drift"),
		PilotName:    r.stringOr("PILOT_NAME", "pilot"),
		PilotKeyHash: r.mustString("PILOT_KEY_HASH"),

		RedisAddr:     r.stringOr("REDIS_ADDR", ""),
		RedisPassword: r.stringOr("REDIS_PASSWORD", ""),
		RedisChannel:  r.stringOr("REDIS_CHANNEL", "vinom-drift:snapshots"),

		Rows:         r.intOr("ROWS", defaultRows),
		Columns:      r.intOr("COLUMNS", 0),
		ScreenWidth:  r.floatOr("SCREEN_WIDTH", 0),
		ScreenHeight: r.floatOr("SCREEN_HEIGHT", 0),

		MutationProbability: r.floatOr("MUTATION_PROBABILITY", defaultMutationProbability),
		MutationStrategy:    r.stringOr("MUTATION_STRATEGY", "shore"),
		ShoreAnchor:         r.stringOr("SHORE_ANCHOR", "origin"),
		Seed:                int64(r.intOr("SEED", 0)),
		TickInterval:        r.durationOr("TICK_INTERVAL", defaultTickInterval),

		LogLevel: r.stringOr("LOG_LEVEL", "info"),

		DotenvLoaded: loaded,
	}

	aspectRatio := r.floatOr("ASPECT_RATIO", 0)
	if len(r.errs) > 0 {
		return nil, errors.Join(r.errs...)
	}

	c.Columns = ResolveColumns(c.Rows, c.Columns, aspectRatio, c.ScreenWidth, c.ScreenHeight)
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// ResolveColumns returns cols when set, otherwise derives it from the aspect
// ratio, then from the screen size, falling back to a square grid.
func ResolveColumns(rows, cols int, aspectRatio, screenWidth, screenHeight float64) int {
	switch {
	case cols > 0:
		return cols
	case aspectRatio > 0:
		return max(1, int(float64(rows)*aspectRatio))
	case screenWidth > 0 && screenHeight > 0:
		return max(1, int(float64(rows)*(screenWidth/screenHeight)))
	}
	return rows
}

func (c *Config) validate() error {
	var errs []error
	if c.Rows <= 0 || c.Columns <= 0 {
		errs = append(errs, fmt.Errorf("maze dimensions must be positive, got %dx%d", c.Rows, c.Columns))
	}
	if math.IsNaN(c.MutationProbability) || c.MutationProbability < 0 || c.MutationProbability > 1 {
		errs = append(errs, fmt.Errorf("MUTATION_PROBABILITY must be within [0,1], got %v", c.MutationProbability))
	}
	if c.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("TICK_INTERVAL must be positive, got %v", c.TickInterval))
	}
	if c.RESTPort <= 0 || c.RESTPort > 65535 {
		errs = append(errs, fmt.Errorf("REST_PORT out of range: %d", c.RESTPort))
	}
	return errors.Join(errs...)
}

// envReader collects every lookup failure so all of them are reported at
// once.
type envReader struct {
	errs []error
}

func (r *envReader) mustString(key string) string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		r.errs = append(r.errs, fmt.Errorf("environment variable %s is not set", key))
	}
	return value
}

func (r *envReader) stringOr(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func (r *envReader) intOr(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("environment variable %s must be an integer: %w", key, err))
	}
	return n
}

func (r *envReader) floatOr(key string, defaultValue float64) float64 {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("environment variable %s must be a number: %w", key, err))
	}
	return f
}

func (r *envReader) durationOr(key string, defaultValue time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("environment variable %s must be a duration: %w", key, err))
	}
	return d
}
