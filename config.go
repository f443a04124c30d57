package main

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/emb-protocol/issuance/pkg/log"
)

type Mode string

const (
	ModeProduction Mode = "production"
	ModeTest       Mode = "test"
)

const (
	configDirPathEnv     = "EMB_CONFIG_DIR_PATH"
	defaultConfigDirPath = "."
)

// Config represents the overall application configuration
type Config struct {
	mode            Mode
	configDirPath   string
	deployment      DeploymentConfig
	authorityKeyHex string
	ownerKeyHex     string
	dbConf          DatabaseConfig
	metricsConf     MetricsConfig
}

type envConfig struct {
	Mode            Mode   `env:"EMB_MODE" env-default:"production"`
	AuthorityKeyHex string `env:"EMB_AUTHORITY_PRIVATE_KEY" env-default:""`
	OwnerKeyHex     string `env:"EMB_OWNER_PRIVATE_KEY" env-default:""`
	BlockchainRPC   string `env:"EMB_BLOCKCHAIN_RPC" env-default:""`

	Metrics MetricsConfig
}

type logEnvConfig struct {
	Log log.Config `env-prefix:"EMB_"`
}

func configDirPath() string {
	if p := os.Getenv(configDirPathEnv); p != "" {
		return p
	}
	return defaultConfigDirPath
}

// loadDotEnv loads <config dir>/.env into the process environment.
// Variables already set take precedence.
func loadDotEnv() (string, error) {
	path := filepath.Join(configDirPath(), ".env")
	return path, godotenv.Load(path)
}

// LoadLogConfig reads the EMB_LOG_* variables.
func LoadLogConfig() (log.Config, error) {
	var conf logEnvConfig
	if err := cleanenv.ReadEnv(&conf); err != nil {
		return log.Config{}, err
	}
	return conf.Log, nil
}

// LoadConfig builds configuration from environment variables and deployment.yaml
func LoadConfig(logger log.Logger) (*Config, error) {
	logger = logger.WithName("config")
	dirPath := configDirPath()

	var env envConfig
	if err := cleanenv.ReadEnv(&env); err != nil {
		logger.Error("failed to read env", "err", err)
		return nil, err
	}
	if env.Mode != ModeProduction && env.Mode != ModeTest {
		return nil, errors.New("invalid EMB_MODE value: " + string(env.Mode))
	}
	logger.Debug("set mode", "value", env.Mode)

	// EMB_DATABASE_URL wins over the discrete variables
	var dbConf DatabaseConfig
	if dbURL := os.Getenv("EMB_DATABASE_URL"); dbURL != "" {
		var err error
		dbConf, err = ParseConnectionString(dbURL)
		if err != nil {
			logger.Error("failed to parse connection string", "err", err)
			return nil, err
		}
	} else if err := cleanenv.ReadEnv(&dbConf); err != nil {
		logger.Error("failed to read env", "err", err)
		return nil, err
	}

	deployment, err := LoadDeployment(dirPath)
	if err != nil {
		return nil, err
	}

	if env.BlockchainRPC != "" {
		if err := verifyChainRPC(env.BlockchainRPC, deployment.Protocol.ChainID); err != nil {
			return nil, err
		}
		logger.Debug("chain id confirmed by RPC", "chainId", deployment.Protocol.ChainID)
	}

	config := &Config{
		mode:            env.Mode,
		configDirPath:   dirPath,
		deployment:      deployment,
		authorityKeyHex: env.AuthorityKeyHex,
		ownerKeyHex:     env.OwnerKeyHex,
		dbConf:          dbConf,
		metricsConf:     env.Metrics,
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// validate checks settings that only make sense together.
func (c *Config) validate() error {
	// ledger state would vanish on restart
	if c.dbConf.InMemory() && c.mode != ModeTest {
		return errors.New("in-memory database is only allowed in test mode")
	}
	return nil
}
