package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Config holds every runtime setting the service reads from the environment.
// A .env file is honored when present, real environment variables win.
type Config struct {
	ListenAddr string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// FeeRateBps is the settlement fee in basis points (250 = 2.5%).
	FeeRateBps uint32
	// FeeAdmin is the only principal allowed to withdraw accrued fees.
	FeeAdmin uuid.UUID
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ListenAddr: getEnv("LISTEN_ADDR", ":9000"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "ntfmarket"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	rate, err := strconv.ParseUint(getEnv("FEE_RATE_BPS", "250"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("config: invalid FEE_RATE_BPS: %w", err)
	}
	if rate >= 10000 {
		return nil, fmt.Errorf("config: FEE_RATE_BPS must be below 10000, got %d", rate)
	}
	cfg.FeeRateBps = uint32(rate)

	if raw := os.Getenv("FEE_ADMIN"); raw != "" {
		admin, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("config: invalid FEE_ADMIN: %w", err)
		}
		cfg.FeeAdmin = admin
	} else {
		// no admin configured, generate one and log it at startup so dev
		// environments still have a working withdrawal path
		cfg.FeeAdmin = uuid.New()
	}

	return cfg, nil
}

// PostgresDSN assembles the connection string from the DB_* settings.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
