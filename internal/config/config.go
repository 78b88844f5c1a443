package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time parses sweep intervals
)

// Config holds all runtime configuration values.  Each field
// corresponds to an environment variable.  Database and JWT settings
// are required; payment and broker settings have usable development
// defaults (stub provider, local broker).
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing

	// Payment provider selection and credentials.  Provider is one of
	// "stub", "paypal", "stripe".  Credentials for providers that are
	// not selected may be left empty.
	PaymentProvider  string // PAYMENT_PROVIDER
	PayPalBaseURL    string // PAYPAL_BASE_URL (sandbox or live)
	PayPalClientID   string // PAYPAL_CLIENT_ID
	PayPalSecret     string // PAYPAL_SECRET
	StripeBaseURL    string // STRIPE_BASE_URL
	StripeSecretKey  string // STRIPE_SECRET_KEY
	PlatformCurrency string // PLATFORM_CURRENCY, ISO 4217 (default EUR)

	// ExpirySweepInterval controls how often available listings are
	// checked against their event date and expired.
	ExpirySweepInterval time.Duration // EXPIRY_SWEEP_INTERVAL
}

// Load reads configuration values from environment variables and
// returns a Config.  Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"), // empty allowed
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     mustInt("BCRYPT_COST"),

		PaymentProvider:  getenv("PAYMENT_PROVIDER", "stub"),
		PayPalBaseURL:    getenv("PAYPAL_BASE_URL", "https://api-m.sandbox.paypal.com"),
		PayPalClientID:   os.Getenv("PAYPAL_CLIENT_ID"),
		PayPalSecret:     os.Getenv("PAYPAL_SECRET"),
		StripeBaseURL:    getenv("STRIPE_BASE_URL", "https://api.stripe.com"),
		StripeSecretKey:  os.Getenv("STRIPE_SECRET_KEY"),
		PlatformCurrency: getenv("PLATFORM_CURRENCY", "EUR"),

		ExpirySweepInterval: parseDur(getenv("EXPIRY_SWEEP_INTERVAL", "1h")),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and
// exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an
// integer.  If conversion fails, the application logs a fatal error
// and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
