// src/config/config.go
package config

import (
	"encoding/json"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// AppConfig holds all configuration for the application.
// The values are loaded from environment variables.
type AppConfig struct {
	// Core settings
	Port         string
	DatabasePath string
	LogLevel     string

	// Billing settings
	TaxRate        decimal.Decimal // fraction, e.g. 0.21
	InvoiceCeiling decimal.Decimal // max tax-inclusive total per invoice, in currency units
	InvoiceConcept string          // placeholder description for rows with none

	// Numbering continuity: last used sequence per year, consulted when the
	// history yields nothing for a year. Loaded from LAST_INVOICE_NUMBERS
	// as JSON, e.g. {"2025": 263}.
	LastInvoiceNumbers map[int]int

	// Upload settings
	MaxUploadSizeBytes int64

	// CORS: origins allowed to call the API
	AllowedOrigins []string

	// Output settings
	OutputDir       string
	HistoryFilePath string // JSON flat-file history, fallback store

	// Company data printed on rendered invoices
	CompanyName    string
	CompanyAddress string
	CompanyTaxID   string
	CompanyPhone   string
	CompanyEmail   string
}

// Cfg is a global instance of the AppConfig.
var Cfg *AppConfig

// LoadConfig loads configuration from environment variables or a .env file.
// It centralizes all configuration logic for the application.
func LoadConfig() {
	errEnv := godotenv.Load()
	if errEnv != nil {
		if os.IsNotExist(errEnv) {
			log.Println("Info: No .env file found. Relying on OS environment variables (expected in production).")
		} else {
			log.Printf("Warning: Error loading .env file: %v. Relying on OS environment variables.", errEnv)
		}
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")

	taxRate := getEnvAsDecimal("TAX_RATE", "0.21")
	if taxRate.IsNegative() {
		log.Fatalf("FATAL: TAX_RATE must not be negative, got %s", taxRate)
	}

	ceiling := getEnvAsDecimal("INVOICE_CEILING", "400.00")
	if !ceiling.IsPositive() {
		log.Fatalf("FATAL: INVOICE_CEILING must be positive, got %s", ceiling)
	}

	maxUploadSizeBytesStr := getEnv("MAX_UPLOAD_SIZE_BYTES", "10485760") // 10MB default
	maxUploadSizeBytes, err := strconv.ParseInt(maxUploadSizeBytesStr, 10, 64)
	if err != nil {
		log.Printf("WARNING: Invalid MAX_UPLOAD_SIZE_BYTES format '%s'. Using default 10MB. Error: %v", maxUploadSizeBytesStr, err)
		maxUploadSizeBytes = 10 * 1024 * 1024
	}

	Cfg = &AppConfig{
		// Core
		Port:         getEnv("PORT", "8080"),
		DatabasePath: getEnv("DATABASE_PATH", "./facturas.db"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),

		// Billing
		TaxRate:            taxRate,
		InvoiceCeiling:     ceiling,
		InvoiceConcept:     getEnv("INVOICE_CONCEPT", "Sin concepto"),
		LastInvoiceNumbers: getLastInvoiceNumbers("LAST_INVOICE_NUMBERS"),

		// Upload
		MaxUploadSizeBytes: maxUploadSizeBytes,

		// CORS
		AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),

		// Output
		OutputDir:       getEnv("OUTPUT_DIR", "./output"),
		HistoryFilePath: getEnv("HISTORY_FILE_PATH", "./output/history/history.json"),

		// Company
		CompanyName:    getEnv("COMPANY_NAME", ""),
		CompanyAddress: getEnv("COMPANY_ADDRESS", ""),
		CompanyTaxID:   getEnv("COMPANY_TAX_ID", ""),
		CompanyPhone:   getEnv("COMPANY_PHONE", ""),
		CompanyEmail:   getEnv("COMPANY_EMAIL", ""),
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, DBPath=%s, TaxRate=%s, Ceiling=%s",
		Cfg.Port, Cfg.LogLevel, Cfg.DatabasePath, Cfg.TaxRate, Cfg.InvoiceCeiling)
}

// getEnv retrieves an environment variable or returns a fallback value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvAsDecimal retrieves an environment variable as a decimal or terminates
// on a malformed value. Billing figures are too sensitive to silently default.
func getEnvAsDecimal(key, fallback string) decimal.Decimal {
	valueStr := getEnv(key, fallback)
	value, err := decimal.NewFromString(valueStr)
	if err != nil {
		log.Fatalf("FATAL: Invalid decimal value for %s: '%s'", key, valueStr)
	}
	return value
}

// getEnvAsList retrieves a comma-separated environment variable as a slice,
// trimming whitespace around each entry.
func getEnvAsList(key, fallback string) []string {
	valueStr := getEnv(key, fallback)
	var values []string
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}

// getLastInvoiceNumbers parses the static per-year fallback table from a JSON
// object of year -> last used sequence.
func getLastInvoiceNumbers(key string) map[int]int {
	table := make(map[int]int)
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return table
	}
	var raw map[string]int
	if err := json.Unmarshal([]byte(valueStr), &raw); err != nil {
		log.Printf("WARNING: Invalid %s value '%s', ignoring: %v", key, valueStr, err)
		return table
	}
	for yearStr, seq := range raw {
		year, err := strconv.Atoi(yearStr)
		if err != nil || seq < 0 {
			log.Printf("WARNING: Skipping invalid %s entry %s=%d", key, yearStr, seq)
			continue
		}
		table[year] = seq
	}
	return table
}
