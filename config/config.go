package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port      string
	DBName    string
	JWTKey    string
	SaltRound int

	// Completion percentage weights; they must sum to 100. Assignments get
	// weight only when a workshop actually has assignment gates.
	SessionWeight       float64
	AssignmentWeight    float64
	CompletionThreshold float64

	// Cron expression for the periodic unlock refresh (time-gap rules).
	UnlockRefreshCron string

	EmailSender string
	SendGridKey string

	ZoomAccountID    string
	ZoomClientID     string
	ZoomClientSecret string
	ZoomApiURL       string
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	// Initialize AppConfig with values from environment variables
	AppConfig = &Config{
		Port:      getEnv("PORT", "3000"),
		DBName:    getEnv("DB_NAME", "sadhaka"),
		JWTKey:    getEnv("JWT_SECRET_KEY", "defaultSecret"),
		SaltRound: getEnvInt("SALT_ROUND", 10),

		SessionWeight:       getEnvFloat("SESSION_WEIGHT", 70),
		AssignmentWeight:    getEnvFloat("ASSIGNMENT_WEIGHT", 30),
		CompletionThreshold: getEnvFloat("COMPLETION_THRESHOLD", 100),

		UnlockRefreshCron: getEnv("UNLOCK_REFRESH_CRON", "*/15 * * * *"),

		EmailSender: getEnv("EMAIL_SENDER", "noreply@sadhaka.local"),
		SendGridKey: getEnv("SENDGRID_API_KEY", ""),

		ZoomAccountID:    getEnv("ZOOM_ACCOUNT_ID", ""),
		ZoomClientID:     getEnv("ZOOM_CLIENT_ID", ""),
		ZoomClientSecret: getEnv("ZOOM_CLIENT_SECRET", ""),
		ZoomApiURL:       getEnv("ZOOM_API_URL", "https://api.zoom.us/v2"),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.SendGridKey == "" {
		log.Println("Warning: SENDGRID_API_KEY not set. Email notifications are disabled.")
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}

// getEnvFloat retrieves an environment variable as a float or returns the default value
func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("Error converting environment variable %s to float: %v", key, err)
		return defaultValue
	}
	return floatValue
}
