package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort          string // Application port
	DBUser           string // Database user
	DBPassword       string // Database password
	DBHost           string // Database host
	DBPort           string // Database port
	DBName           string // Database name
	RedisAddr        string // Redis server address
	RedisPass        string // Redis password
	RedisDB          int    // Redis database number
	PawaPayToken     string // Shared secret for webhook signature verification
	RequireSignature bool   // Reject callbacks without a signature header
	CurrencyExponent int    // Decimal places of the ledger currency (0 for UGX)
	JWTSecret        string // JWT secret key for ops tokens
	OpsPasswordHash  string // Bcrypt hash of the ops console password
	IsProd           bool   // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	exponent, _ := strconv.Atoi(os.Getenv("CURRENCY_EXPONENT"))
	return &Config{
		AppPort:          os.Getenv("APP_PORT"),                    // Application port
		DBUser:           os.Getenv("DB_USER"),                     // Database user
		DBPassword:       os.Getenv("DB_PASSWORD"),                 // Database password
		DBHost:           os.Getenv("DB_HOST"),                     // Database host
		DBPort:           os.Getenv("DB_PORT"),                     // Database port
		DBName:           os.Getenv("DB_NAME"),                     // Database name
		RedisAddr:        os.Getenv("REDIS_ADDR"),                  // Redis server address
		RedisPass:        os.Getenv("REDIS_PASS"),                  // Redis password
		RedisDB:          redisDB,                                  // Redis database number
		PawaPayToken:     os.Getenv("PAWAPAY_API_TOKEN"),           // Webhook signing secret
		RequireSignature: os.Getenv("REQUIRE_SIGNATURE") == "true", // Signature required flag
		CurrencyExponent: exponent,                                 // Currency exponent, defaults to 0
		JWTSecret:        os.Getenv("JWT_SECRET"),                  // JWT secret key
		OpsPasswordHash:  os.Getenv("OPS_PASSWORD_HASH"),           // Ops console password hash
		IsProd:           os.Getenv("IS_PROD") == "true",           // Is production environment
	}
}
