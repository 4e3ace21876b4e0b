package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DeployConfig holds configuration for the run, deploy and link commands.
type DeployConfig struct {
	RPCURL           string
	PrivateKey       string
	Network          string
	ChainID          uint64
	EnvFile          string
	Journal          string
	Artifacts        string
	Plan             string
	Steps            []string
	Out              string
	PGDSN            string
	MetricsTextfile  string
	ConfirmTimeout   time.Duration
	GasBufferPercent uint64
	GasLimit         uint64
	GasPriceGwei     float64
	Redeploy         bool
	LogLevel         string
}

// RegistryConfig holds configuration for the registry and ledger commands.
type RegistryConfig struct {
	RPCURL       string
	Network      string
	ChainID      uint64
	EnvFile      string
	Out          string
	PGDSN        string
	MaxRetries   int
	RetryBackoff time.Duration
	LogLevel     string
}

func newViper(cfgFile string, flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("DEPLOYER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	// RPC_URL and PRIVATE_KEY are what the env file conventionally carries.
	_ = v.BindEnv("rpc-url", "DEPLOYER_RPC_URL", "RPC_URL")
	_ = v.BindEnv("private-key", "DEPLOYER_PRIVATE_KEY", "PRIVATE_KEY")

	v.SetDefault("env-file", ".env")
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}

// LoadDeploy merges config file, environment variables, and flags into DeployConfig.
func LoadDeploy(cfgFile string, flags *pflag.FlagSet) (DeployConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return DeployConfig{}, err
	}
	v.SetDefault("journal", "./data/journal.json")
	v.SetDefault("artifacts", "./artifacts")
	v.SetDefault("out", "./data/deployments.jsonl")
	v.SetDefault("confirm-timeout", 5*time.Minute)
	v.SetDefault("gas-buffer", uint64(20))
	v.SetDefault("gas-limit", uint64(10_000_000))

	cfg := DeployConfig{
		RPCURL:           v.GetString("rpc-url"),
		PrivateKey:       v.GetString("private-key"),
		Network:          v.GetString("network"),
		ChainID:          v.GetUint64("chain-id"),
		EnvFile:          v.GetString("env-file"),
		Journal:          v.GetString("journal"),
		Artifacts:        v.GetString("artifacts"),
		Plan:             v.GetString("plan"),
		Steps:            getStringSlice(v, "steps"),
		Out:              v.GetString("out"),
		PGDSN:            v.GetString("pg-dsn"),
		MetricsTextfile:  v.GetString("metrics-textfile"),
		ConfirmTimeout:   v.GetDuration("confirm-timeout"),
		GasBufferPercent: v.GetUint64("gas-buffer"),
		GasLimit:         v.GetUint64("gas-limit"),
		GasPriceGwei:     v.GetFloat64("gas-price-gwei"),
		Redeploy:         v.GetBool("redeploy"),
		LogLevel:         v.GetString("log-level"),
	}
	if cfg.ConfirmTimeout <= 0 {
		return DeployConfig{}, fmt.Errorf("confirm-timeout must be positive")
	}
	return cfg, nil
}

// LoadRegistry merges config file, environment variables, and flags into RegistryConfig.
func LoadRegistry(cfgFile string, flags *pflag.FlagSet) (RegistryConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return RegistryConfig{}, err
	}
	v.SetDefault("max-retries", 5)
	v.SetDefault("retry-backoff", 500*time.Millisecond)

	return RegistryConfig{
		RPCURL:       v.GetString("rpc-url"),
		Network:      v.GetString("network"),
		ChainID:      v.GetUint64("chain-id"),
		EnvFile:      v.GetString("env-file"),
		Out:          v.GetString("out"),
		PGDSN:        v.GetString("pg-dsn"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
		LogLevel:     v.GetString("log-level"),
	}, nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
