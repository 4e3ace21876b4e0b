package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"stableDeploy/internal/config"
	"stableDeploy/internal/ledger"
	"stableDeploy/internal/plan"
	"stableDeploy/internal/storage"
)

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the deployment plan in execution order with each step's status",
		RunE:  runPlan,
	}
	cmd.Flags().String("plan", "", "deployment plan YAML (default: built-in stable-swap plan)")
	cmd.Flags().String("env-file", ".env", "address ledger env file")
	cmd.Flags().String("journal", "./data/journal.json", "status journal path")
	cmd.Flags().String("network", "", "network whose journal entries are shown")
	cmd.Flags().Uint64("chain-id", 0, "chain id whose journal entries are shown, overrides --network")
	return cmd
}

func runPlan(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadDeploy(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	p, err := loadPlan(cfg.Plan)
	if err != nil {
		return err
	}
	order, err := p.Order()
	if err != nil {
		return err
	}
	led, err := ledger.Open(cfg.EnvFile)
	if err != nil {
		return err
	}
	journal, err := ledger.OpenJournal(cfg.Journal)
	if err != nil {
		return err
	}

	// without a network only the ledger decides
	var chainID uint64
	if cfg.Network != "" || cfg.ChainID != 0 {
		network, err := resolveNetwork(cfg.Network, cfg.ChainID)
		if err != nil {
			return err
		}
		chainID = network.ChainID
	}

	out := cmd.OutOrStdout()
	for i, step := range order {
		status := ledger.StatusNotStarted
		switch step.Kind {
		case plan.KindDeploy:
			status = led.Status(step.LedgerKey, journal, chainID)
		case plan.KindLink:
			if entry, ok := journal.Get(chainID, step.JournalKey()); ok {
				status = entry.Status
			}
		}
		line := fmt.Sprintf("%2d  %-6s  %-40s  %-11s", i+1, step.Kind, step.Name, status)
		if requires := step.Requires(); len(requires) > 0 {
			line += "  requires " + strings.Join(requires, ",")
		}
		fmt.Fprintln(out, strings.TrimRight(line, " "))
	}
	if external := p.External(); len(external) > 0 {
		fmt.Fprintf(out, "external inputs: %s\n", strings.Join(external, ","))
	}
	return nil
}

func newLedgerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger [key]",
		Short: "Print resolved ledger values, or one key",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLedger,
	}
	cmd.Flags().String("env-file", ".env", "address ledger env file")
	cmd.Flags().Bool("history", false, "print every line instead of the resolved values")
	return cmd
}

func runLedger(cmd *cobra.Command, args []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadRegistry(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	led, err := ledger.Open(cfg.EnvFile)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		value, ok := led.Get(args[0])
		if !ok {
			return fmt.Errorf("%s not in ledger %s", args[0], led.Path())
		}
		fmt.Fprintln(out, value)
		return nil
	}

	history, _ := cmd.Flags().GetBool("history")
	if history {
		for _, entry := range led.Entries() {
			fmt.Fprintf(out, "%d\t%s=%s\n", entry.Line, entry.Key, entry.Value)
		}
		return nil
	}
	return writeJSON(out, led.Values())
}

func newRecordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Print stored deployment records",
		RunE:  runRecords,
	}
	cmd.Flags().String("out", "./data/deployments.jsonl", "deployment records JSONL path")
	cmd.Flags().String("pg-dsn", "", "read from Postgres instead of the JSONL file")
	cmd.Flags().String("network", "", "network to list (Postgres only)")
	cmd.Flags().Uint64("chain-id", 0, "chain id to list (Postgres only)")
	return cmd
}

func runRecords(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadRegistry(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	if cfg.PGDSN == "" {
		if cfg.Out == "" {
			return fmt.Errorf("output path is required")
		}
		records, err := storage.NewJsonlStorage(cfg.Out).ReadRecords()
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), records)
	}

	network, err := resolveNetwork(cfg.Network, cfg.ChainID)
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()
	store, err := openStore(ctx, cfg.PGDSN)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.ListDeployments(ctx, network.ChainID)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), records)
}

func writeJSON(w io.Writer, value interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}
