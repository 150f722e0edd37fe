package config

import (
	"os"
	"strconv"
	"time"

	"ucassist-scraper/models"
)

type Config struct {
	BaseURL      string
	OutputPath   string
	CSVPath      string
	MaxPages     int
	FetchTimeout time.Duration
	SettleDelay  time.Duration
	MinDelay     time.Duration
	MaxDelay     time.Duration
	MaxRetries   int
	BackoffBase  time.Duration
	BackoffCap   time.Duration
	Headless     bool

	// Site structure. The directory is a Caspio deployment, so the markers
	// are Caspio's generated attributes rather than site-specific classes.
	SearchSelector       string
	ListingReadySelector string
	DetailReadySelector  string
	NextSelector         string
	DetailLinkText       string
	LabelSelector        string
	ValueSelector        string

	// VolatileParams are query parameters that change per browser session
	// and are stripped when deriving record keys.
	VolatileParams  []string
	RequiredFields  []string
	MultilineFields []string

	DBEnabled  bool
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
}

func DefaultConfig() *Config {
	return &Config{
		BaseURL:      "https://ucassist.org/search-launch/",
		OutputPath:   "output/ucassist_data.json",
		CSVPath:      "",
		MaxPages:     50,
		FetchTimeout: 45 * time.Second,
		SettleDelay:  2 * time.Second,
		MinDelay:     1 * time.Second,
		MaxDelay:     3 * time.Second,
		MaxRetries:   3,
		BackoffBase:  2 * time.Second,
		BackoffCap:   30 * time.Second,
		Headless:     true,

		SearchSelector:       `input[name="searchID"]`,
		ListingReadySelector: `[data-cb-name="cbTable"]`,
		DetailReadySelector:  `[class*="cbFormLabelCell"]`,
		NextSelector:         `[data-cb-name="JumpToNext"]`,
		DetailLinkText:       "View Details",
		LabelSelector:        `[class*="cbFormLabelCell"]`,
		ValueSelector:        `[class*="cbFormDataCell"]`,

		VolatileParams:  []string{"appSession", "cbResetParam"},
		RequiredFields:  []string{models.FieldServiceName},
		MultilineFields: []string{models.FieldKeywords, models.FieldCounties},

		DBEnabled:  false,
		DBHost:     "localhost",
		DBPort:     5432,
		DBUser:     "postgres",
		DBPassword: "postgres",
		DBName:     "ucassist",
		DBSSLMode:  "disable",
	}
}

// FromEnv builds a config from defaults with UCA_* environment overrides.
func FromEnv() *Config {
	cfg := DefaultConfig()
	cfg.BaseURL = getEnv("UCA_BASE_URL", cfg.BaseURL)
	cfg.OutputPath = getEnv("UCA_OUTPUT_PATH", cfg.OutputPath)
	cfg.CSVPath = getEnv("UCA_CSV_PATH", cfg.CSVPath)
	cfg.MaxPages = getEnvAsInt("UCA_MAX_PAGES", cfg.MaxPages)
	cfg.FetchTimeout = getEnvAsDuration("UCA_FETCH_TIMEOUT", cfg.FetchTimeout)
	cfg.SettleDelay = getEnvAsDuration("UCA_SETTLE_DELAY", cfg.SettleDelay)
	cfg.MaxRetries = getEnvAsInt("UCA_MAX_RETRIES", cfg.MaxRetries)
	cfg.BackoffBase = getEnvAsDuration("UCA_BACKOFF_BASE", cfg.BackoffBase)
	cfg.BackoffCap = getEnvAsDuration("UCA_BACKOFF_CAP", cfg.BackoffCap)
	cfg.Headless = getEnvAsBool("UCA_HEADLESS", cfg.Headless)

	cfg.DBEnabled = getEnvAsBool("UCA_DB_ENABLED", cfg.DBEnabled)
	cfg.DBHost = getEnv("UCA_DB_HOST", cfg.DBHost)
	cfg.DBPort = getEnvAsInt("UCA_DB_PORT", cfg.DBPort)
	cfg.DBUser = getEnv("UCA_DB_USER", cfg.DBUser)
	cfg.DBPassword = getEnv("UCA_DB_PASSWORD", cfg.DBPassword)
	cfg.DBName = getEnv("UCA_DB_NAME", cfg.DBName)
	cfg.DBSSLMode = getEnv("UCA_DB_SSLMODE", cfg.DBSSLMode)
	return cfg
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
