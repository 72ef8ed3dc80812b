package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time parses interval settings
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints and durations
// for costs and intervals.
type Config struct {
	Env           string        // application environment (e.g. "dev", "prod")
	Port          string        // HTTP port to listen on
	StoreBackend  string        // "mysql" or "memory"
	DBUser        string        // database username
	DBPass        string        // database password (optional)
	DBHost        string        // database host address
	DBPort        string        // database port number
	DBName        string        // database name
	JWTSecret     string        // secret used to sign JWTs
	AccessTTLMin  int           // access token time-to-live in minutes
	BcryptCost    int           // bcrypt cost for password hashing
	SweepInterval time.Duration // expiry reaper interval
	SeatCacheTTL  time.Duration // redis TTL for the seat map response
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Database variables
// are only required when the MySQL backend is selected.
func Load() Config {
	cfg := Config{
		Env:           must("APP_ENV"),                        // environment (dev/test/prod)
		Port:          must("APP_PORT"),                       // port to bind the HTTP server
		StoreBackend:  envDefault("STORE_BACKEND", "mysql"),   // persistence backend
		JWTSecret:     must("JWT_SECRET"),                     // secret used for signing JWTs
		AccessTTLMin:  mustInt("ACCESS_TOKEN_TTL_MIN"),        // TTL for access tokens in minutes
		BcryptCost:    mustInt("BCRYPT_COST"),                 // bcrypt cost factor
		SweepInterval: durDefault("SWEEP_INTERVAL", time.Minute), // reaper tick
		SeatCacheTTL:  durDefault("SEAT_CACHE_TTL", 3*time.Second),
	}
	if cfg.StoreBackend == "mysql" {
		cfg.DBUser = must("DB_USER")      // database user
		cfg.DBPass = os.Getenv("DB_PASS") // database password (empty allowed)
		cfg.DBHost = must("DB_HOST")      // database host
		cfg.DBPort = must("DB_PORT")      // database port
		cfg.DBName = must("DB_NAME")      // database name
	}
	return cfg
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// envDefault returns the variable's value or the given default when unset.
func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// durDefault parses the variable as a Go duration, falling back to the
// default on absence or parse failure.
func durDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("invalid duration for %s: %q, using %s", key, v, def)
		return def
	}
	return d
}
