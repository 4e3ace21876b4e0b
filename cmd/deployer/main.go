package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"stableDeploy/internal/chain"
	"stableDeploy/internal/registry"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "deployer",
		Short:        "Stable-swap contract deployer",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	root.AddCommand(newRunCmd())
	root.AddCommand(newPlanCmd())
	root.AddCommand(newDeployCmd())
	root.AddCommand(newLinkCmd())
	root.AddCommand(newLedgerCmd())
	root.AddCommand(newRecordsCmd())
	root.AddCommand(newRegistryCmd())
	return root
}

// addChainFlags registers the flags shared by every command that talks to a node.
func addChainFlags(cmd *cobra.Command) {
	cmd.Flags().String("rpc-url", "", "JSON-RPC endpoint (falls back to RPC_URL)")
	cmd.Flags().String("network", "", "target network (bscTestnet, sapphireTestnet)")
	cmd.Flags().Uint64("chain-id", 0, "target chain id, overrides --network")
	cmd.Flags().String("env-file", ".env", "address ledger env file")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

func addDeployFlags(cmd *cobra.Command) {
	addChainFlags(cmd)
	cmd.Flags().String("private-key", "", "deployer private key (falls back to PRIVATE_KEY)")
	cmd.Flags().String("journal", "./data/journal.json", "status journal path")
	cmd.Flags().String("artifacts", "./artifacts", "compiled artifacts directory")
	cmd.Flags().String("plan", "", "deployment plan YAML (default: built-in stable-swap plan)")
	cmd.Flags().String("out", "./data/deployments.jsonl", "deployment records JSONL path")
	cmd.Flags().String("pg-dsn", "", "Postgres DSN for deployment records")
	cmd.Flags().String("metrics-textfile", "", "write Prometheus metrics to this file on exit")
	cmd.Flags().Duration("confirm-timeout", 5*time.Minute, "maximum wait for a receipt")
	cmd.Flags().Uint64("gas-buffer", 20, "percent added to gas estimates")
	cmd.Flags().Uint64("gas-limit", 10_000_000, "gas limit used when estimation fails")
	cmd.Flags().Float64("gas-price-gwei", 0, "fixed gas price in gwei, 0 asks the node")
	cmd.Flags().Bool("redeploy", false, "deploy again even when the ledger has an address")
}

// loadEnvFile exports the ledger into the process environment. Variables
// already set win.
func loadEnvFile(path string, logger *zap.Logger) {
	if path == "" {
		return
	}
	if err := godotenv.Load(path); err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("env file not loaded", zap.String("path", path), zap.Error(err))
		}
	}
}

// resolveNetwork picks the target from --chain-id, then --network.
func resolveNetwork(name string, chainID uint64) (registry.Network, error) {
	if chainID != 0 {
		if n, ok := registry.NetworkByChainID(chainID); ok {
			return n, nil
		}
		return registry.Network{Name: fmt.Sprintf("chain-%d", chainID), ChainID: chainID}, nil
	}
	if strings.TrimSpace(name) == "" {
		return registry.Network{}, fmt.Errorf("network or chain-id is required")
	}
	n, ok := registry.NetworkByName(name)
	if !ok {
		known := make([]string, 0, 2)
		for _, n := range registry.Networks() {
			known = append(known, n.Name)
		}
		return registry.Network{}, fmt.Errorf("unknown network %q (known: %s)", name, strings.Join(known, ", "))
	}
	return n, nil
}

// knownNetwork is resolveNetwork restricted to networks the registry carries.
func knownNetwork(name string, chainID uint64) (registry.Network, error) {
	n, err := resolveNetwork(name, chainID)
	if err != nil {
		return n, err
	}
	if _, ok := registry.NetworkByChainID(n.ChainID); !ok {
		return n, fmt.Errorf("no registry for chain %d", n.ChainID)
	}
	return n, nil
}

func connect(ctx context.Context, rpcURL string) (*chain.Client, error) {
	if rpcURL == "" {
		return nil, fmt.Errorf("rpc url is required")
	}
	client, err := chain.NewClient(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("connect rpc: %w", err)
	}
	return client, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
