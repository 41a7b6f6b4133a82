package main

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Mode string

const (
	ModeProduction Mode = "production"
	ModeTest       Mode = "test"
)

const (
	configDirPathEnv     = "HUB_CONFIG_DIR_PATH"
	defaultConfigDirPath = "."
	defaultClientTimeout = 300 // in seconds
)

// Config represents the overall application configuration
type Config struct {
	mode              Mode
	testnet           bool
	privilegedOrigins []string
	keyguardURL       string
	cashlinkBaseURL   string
	dbConf            DatabaseConfig
	clientTimeout     time.Duration
}

// LoadConfig builds configuration from environment variables
func LoadConfig(logger Logger) (*Config, error) {
	logger = logger.NewSystem("config")

	configDirPath := os.Getenv(configDirPathEnv)
	if configDirPath == "" {
		configDirPath = defaultConfigDirPath
	}

	// Load .env files
	configDotEnvPath := filepath.Join(configDirPath, ".env")
	logger.Info("loading .env file", "path", configDotEnvPath)
	if err := godotenv.Load(configDotEnvPath); err != nil {
		logger.Warn(".env file not found")
	}

	mode := Mode(os.Getenv("HUB_MODE"))
	if mode == "" {
		mode = ModeProduction
	} else if mode != ModeProduction && mode != ModeTest {
		logger.Fatal("invalid HUB_MODE value", "value", mode)
	}
	logger.Info("set mode", "value", mode)

	network := os.Getenv("HUB_NETWORK")
	if network == "" {
		network = "main"
	}
	testnet := network != "main"
	logger.Info("set network", "value", network, "testnet", testnet)

	// Get database URL from environment variables
	var dbConf DatabaseConfig
	dbURL := os.Getenv("HUB_DATABASE_URL")

	// If DATABASE_URL is not empty, parse the connection string
	// Otherwise, read the envs in usual way
	if dbURL != "" {
		var err error
		dbConf, err = ParseConnectionString(dbURL)
		if err != nil {
			logger.Error("failed to parse connection string", "err", err)
			return nil, err
		}
	} else {
		// Read db config
		if err := cleanenv.ReadEnv(&dbConf); err != nil {
			logger.Error("failed to read env", "err", err)
			return nil, err
		}
	}

	keyguardURL := os.Getenv("HUB_KEYGUARD_URL")
	if keyguardURL == "" {
		logger.Fatal("HUB_KEYGUARD_URL environment variable is required")
	}

	cashlinkBaseURL := os.Getenv("HUB_CASHLINK_BASE_URL")
	if cashlinkBaseURL == "" {
		cashlinkBaseURL = "https://hub.nimiq.com"
	}

	// The wildcard entry makes every origin privileged; only meaningful
	// outside production
	var privilegedOrigins []string
	if raw := os.Getenv("HUB_PRIVILEGED_ORIGINS"); raw != "" {
		for _, origin := range strings.Split(raw, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				privilegedOrigins = append(privilegedOrigins, origin)
			}
		}
	}
	if mode == ModeProduction {
		for _, origin := range privilegedOrigins {
			if origin == "*" {
				logger.Fatal("wildcard privileged origin is not allowed in production")
			}
		}
	}
	logger.Info("set privileged origins", "value", privilegedOrigins)

	clientTimeout := defaultClientTimeout
	if rawTimeout := os.Getenv("HUB_CLIENT_TIMEOUT"); rawTimeout != "" {
		if parsed, err := strconv.Atoi(rawTimeout); err == nil && parsed > 0 {
			clientTimeout = parsed
		} else {
			logger.Warn("Invalid HUB_CLIENT_TIMEOUT", "clientTimeout", rawTimeout)
		}
	}
	logger.Info("set client timeout", "value", clientTimeout)

	config := Config{
		mode:              mode,
		testnet:           testnet,
		privilegedOrigins: privilegedOrigins,
		keyguardURL:       keyguardURL,
		cashlinkBaseURL:   cashlinkBaseURL,
		dbConf:            dbConf,
		clientTimeout:     time.Duration(clientTimeout) * time.Second,
	}

	return &config, nil
}
