package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stableDeploy/internal/config"
	"stableDeploy/internal/dex"
	"stableDeploy/internal/registry"
)

func newRegistryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect the static token, pool and contract registry",
	}

	listFlags := func(c *cobra.Command) {
		c.Flags().String("network", "", "network (bscTestnet, sapphireTestnet)")
		c.Flags().Uint64("chain-id", 0, "chain id, overrides --network")
	}

	tokensCmd := &cobra.Command{
		Use:   "tokens",
		Short: "List known tokens",
		RunE: registryList(func(chainID uint64) interface{} {
			return registry.TokensFor(chainID)
		}),
	}
	listFlags(tokensCmd)

	poolsCmd := &cobra.Command{
		Use:   "pools",
		Short: "List known pools",
		RunE: registryList(func(chainID uint64) interface{} {
			return registry.PoolsFor(chainID)
		}),
	}
	listFlags(poolsCmd)

	contractsCmd := &cobra.Command{
		Use:   "contracts",
		Short: "List known core contract addresses",
		RunE: registryList(func(chainID uint64) interface{} {
			out := make(map[string]string)
			for _, name := range registry.ContractNames(chainID) {
				addr, _ := registry.ContractAddress(chainID, name)
				out[name] = addr.Hex()
			}
			return out
		}),
	}
	listFlags(contractsCmd)

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Check registry consistency",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := registry.Validate(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "registry ok")
			return nil
		},
	}

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write the registry of one network as JSON",
		RunE:  runRegistryExport,
	}
	listFlags(exportCmd)
	exportCmd.Flags().String("out", "", "output file (default stdout)")

	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Compare the registry with on-chain state",
		RunE:  runRegistryVerify,
	}
	addChainFlags(verifyCmd)
	verifyCmd.Flags().Int("max-retries", 5, "maximum retry attempts per call")
	verifyCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")

	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Upsert the registry into Postgres",
		RunE:  runRegistrySync,
	}
	syncCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	syncCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	cmd.AddCommand(tokensCmd, poolsCmd, contractsCmd, validateCmd, exportCmd, verifyCmd, syncCmd)
	return cmd
}

func registryList(list func(chainID uint64) interface{}) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cfgFile, _ := cmd.Flags().GetString("config")
		cfg, err := config.LoadRegistry(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		network, err := knownNetwork(cfg.Network, cfg.ChainID)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), list(network.ChainID))
	}
}

func runRegistryExport(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadRegistry(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	network, err := knownNetwork(cfg.Network, cfg.ChainID)
	if err != nil {
		return err
	}
	data, err := registry.ExportJSON(network.ChainID)
	if err != nil {
		return err
	}
	if cfg.Out == "" {
		_, err = cmd.OutOrStdout().Write(append(data, '\n'))
		return err
	}
	if dir := filepath.Dir(cfg.Out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	return os.WriteFile(cfg.Out, append(data, '\n'), 0o644)
}

func runRegistryVerify(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadRegistry(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	loadEnvFile(cfg.EnvFile, logger)
	if cfg, err = config.LoadRegistry(cfgFile, cmd.Flags()); err != nil {
		return err
	}

	network, err := knownNetwork(cfg.Network, cfg.ChainID)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	client, err := connect(ctx, cfg.RPCURL)
	if err != nil {
		return err
	}
	defer client.Close()

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("get chain id: %w", err)
	}
	if !chainID.IsUint64() || chainID.Uint64() != network.ChainID {
		return fmt.Errorf("rpc reports chain %s, expected %d", chainID, network.ChainID)
	}

	verifier := dex.NewVerifier(client, logger, cfg.MaxRetries, cfg.RetryBackoff)
	findings, err := verifier.Verify(ctx, network.ChainID)
	if err != nil {
		return err
	}
	for _, f := range findings {
		fmt.Fprintln(cmd.OutOrStdout(), f.String())
	}
	logger.Info("registry verified", zap.String("network", network.Name), zap.Int("findings", len(findings)))
	if len(findings) > 0 {
		return fmt.Errorf("%d registry entries disagree with chain %d", len(findings), network.ChainID)
	}
	return nil
}

func runRegistrySync(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadRegistry(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.PGDSN == "" {
		return fmt.Errorf("pg dsn is required")
	}
	if err := registry.Validate(); err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	store, err := openStore(ctx, cfg.PGDSN)
	if err != nil {
		return err
	}
	defer store.Close()

	for _, chainID := range registry.ChainIDs() {
		tokens, pools, contracts := registry.Rows(chainID)
		if err := store.UpsertTokens(ctx, tokens); err != nil {
			return err
		}
		if err := store.UpsertPools(ctx, pools); err != nil {
			return err
		}
		if err := store.UpsertContracts(ctx, contracts); err != nil {
			return err
		}
		logger.Info("registry synced",
			zap.Uint64("chain_id", chainID),
			zap.Int("tokens", len(tokens)),
			zap.Int("pools", len(pools)),
			zap.Int("contracts", len(contracts)),
			zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
		)
	}
	return nil
}
