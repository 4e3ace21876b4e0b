package main

import (
	"context"
	"fmt"
	"math/big"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stableDeploy/internal/artifact"
	"stableDeploy/internal/chain"
	"stableDeploy/internal/config"
	"stableDeploy/internal/deploy"
	"stableDeploy/internal/ledger"
	"stableDeploy/internal/metrics"
	"stableDeploy/internal/plan"
	"stableDeploy/internal/storage"
	"stableDeploy/internal/storage/postgres"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every incomplete step of the deployment plan",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSteps(cmd, nil, "")
		},
	}
	addDeployFlags(cmd)
	cmd.Flags().StringSlice("steps", nil, "restrict the run to these steps (comma-separated)")
	return cmd
}

func newDeployCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deploy <step>...",
		Short: "Deploy the named contracts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSteps(cmd, args, plan.KindDeploy)
		},
	}
	addDeployFlags(cmd)
	return cmd
}

func newLinkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "link <step>...",
		Short: "Perform the named post-deployment calls",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSteps(cmd, args, plan.KindLink)
		},
	}
	addDeployFlags(cmd)
	return cmd
}

// runSteps runs the plan, or the named steps of it. kind, when set, is the
// only step kind the names may refer to.
func runSteps(cmd *cobra.Command, names []string, kind plan.Kind) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadDeploy(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	loadEnvFile(cfg.EnvFile, logger)
	// the env file may carry RPC_URL and PRIVATE_KEY
	cfg, err = config.LoadDeploy(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	p, err := loadPlan(cfg.Plan)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		names = cfg.Steps
	}
	if p, err = p.Select(names); err != nil {
		return err
	}
	if kind != "" {
		for _, s := range p.Steps {
			if s.Kind != kind {
				return fmt.Errorf("step %s is a %s step, not %s", s.Name, s.Kind, kind)
			}
		}
	}

	network, err := resolveNetwork(cfg.Network, cfg.ChainID)
	if err != nil {
		return err
	}
	if cfg.PrivateKey == "" {
		return fmt.Errorf("private key is required")
	}
	signer, err := chain.NewLocalSigner(cfg.PrivateKey)
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

	led, err := ledger.Open(cfg.EnvFile)
	if err != nil {
		return err
	}
	journal, err := ledger.OpenJournal(cfg.Journal)
	if err != nil {
		return err
	}

	sinks := storage.Multi{storage.NewJsonlStorage(cfg.Out)}
	if cfg.PGDSN != "" {
		store, err := openStore(ctx, cfg.PGDSN)
		if err != nil {
			return err
		}
		defer store.Close()
		sinks = append(sinks, store)
	}

	m := metrics.New(network.Name)
	defer writeMetrics(m, cfg.MetricsTextfile, logger)

	d, err := deploy.NewDeployer(deploy.Config{
		ChainID:          network.ChainID,
		Redeploy:         cfg.Redeploy,
		GasBufferPercent: cfg.GasBufferPercent,
		DefaultGasLimit:  cfg.GasLimit,
		GasPrice:         gweiToWei(cfg.GasPriceGwei),
		ConfirmTimeout:   cfg.ConfirmTimeout,
	}, client, signer, artifact.NewDirSource(cfg.Artifacts), led,
		deploy.WithJournal(journal),
		deploy.WithSink(sinks),
		deploy.WithMetrics(m),
		deploy.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	logger.Info("deployer start",
		zap.String("run_id", d.RunID()),
		zap.String("network", network.Name),
		zap.Uint64("chain_id", network.ChainID),
		zap.String("deployer", signer.Address().Hex()),
		zap.String("plan", p.Name),
		zap.Int("steps", len(p.Steps)),
		zap.String("env_file", cfg.EnvFile),
		zap.String("out", cfg.Out),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
		zap.Bool("redeploy", cfg.Redeploy),
	)

	results, err := deploy.NewRunner(d, p, logger).Run(ctx)
	for _, r := range results {
		fields := []zap.Field{zap.String("step", r.Step), zap.String("outcome", r.Outcome)}
		if r.Kind == plan.KindDeploy {
			fields = append(fields, zap.String("address", r.Address.Hex()))
		} else {
			fields = append(fields, zap.String("tx", r.TxHash.Hex()))
		}
		logger.Info("step result", fields...)
	}
	if err != nil {
		return err
	}
	logger.Info("deployer done", zap.Int("steps", len(results)))
	return nil
}

func loadPlan(path string) (*plan.Plan, error) {
	if path == "" {
		return plan.Default(), nil
	}
	return plan.Load(path)
}

func openStore(ctx context.Context, dsn string) (*postgres.Store, error) {
	store, err := postgres.NewStore(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

func writeMetrics(m *metrics.Metrics, path string, logger *zap.Logger) {
	if path == "" {
		return
	}
	if err := m.WriteTextfile(path); err != nil {
		logger.Warn("write metrics textfile failed", zap.String("path", path), zap.Error(err))
	}
}

func gweiToWei(gwei float64) *big.Int {
	if gwei <= 0 {
		return nil
	}
	wei, _ := new(big.Float).Mul(big.NewFloat(gwei), big.NewFloat(1e9)).Int(nil)
	return wei
}
