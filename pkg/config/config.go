package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool

	// Return window scanner
	ScannerInterval time.Duration

	// Expense posting retry budget
	ExpenseRetryBudget int

	// External services
	HRBaseURL         string `mapstructure:"HR_BASE_URL"`
	StatementsBaseURL string `mapstructure:"STATEMENTS_BASE_URL"`
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("SCANNER_INTERVAL", "5m")
	viper.SetDefault("EXPENSE_RETRY_BUDGET", 5)
	viper.SetDefault("HR_BASE_URL", "http://localhost:9090")
	viper.SetDefault("STATEMENTS_BASE_URL", "http://localhost:9091")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080" // Default port
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	scannerIntervalStr := viper.GetString("SCANNER_INTERVAL")
	scannerInterval, err := time.ParseDuration(scannerIntervalStr)
	if err != nil {
		scannerInterval = 5 * time.Minute
		if scannerIntervalStr != "" {
			log.Printf("Warning: Invalid value for SCANNER_INTERVAL ('%s'). Defaulting to %s.\n", scannerIntervalStr, scannerInterval.String())
		}
	}
	cfg.ScannerInterval = scannerInterval

	cfg.ExpenseRetryBudget = viper.GetInt("EXPENSE_RETRY_BUDGET")
	if cfg.ExpenseRetryBudget <= 0 {
		cfg.ExpenseRetryBudget = 5
		log.Printf("Warning: EXPENSE_RETRY_BUDGET not set or invalid. Defaulting to %d.\n", cfg.ExpenseRetryBudget)
	}

	cfg.HRBaseURL = viper.GetString("HR_BASE_URL")
	cfg.StatementsBaseURL = viper.GetString("STATEMENTS_BASE_URL")

	return cfg, nil
}
