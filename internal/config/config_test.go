package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestLoadDeployDefaults(t *testing.T) {
	cfg, err := LoadDeploy("", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.EnvFile != ".env" {
		t.Fatalf("env file: %q", cfg.EnvFile)
	}
	if cfg.ConfirmTimeout != 5*time.Minute {
		t.Fatalf("confirm timeout: %s", cfg.ConfirmTimeout)
	}
	if cfg.GasBufferPercent != 20 || cfg.GasLimit != 10_000_000 {
		t.Fatalf("gas defaults: %d %d", cfg.GasBufferPercent, cfg.GasLimit)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("log level: %q", cfg.LogLevel)
	}
}

func TestLoadDeployPrecedence(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "deployer.yaml")
	content := "network: bsc-testnet\nsteps: StableSwapFactory, StableSwapRouter\nconfirm-timeout: 30s\nrpc-url: http://file\n"
	if err := os.WriteFile(cfgFile, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("DEPLOYER_REDEPLOY", "true")
	t.Setenv("PRIVATE_KEY", "0xabc")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("rpc-url", "", "")
	if err := flags.Parse([]string{"--rpc-url", "http://flag"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := LoadDeploy(cfgFile, flags)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RPCURL != "http://flag" {
		t.Fatalf("rpc url: %q", cfg.RPCURL)
	}
	if cfg.Network != "bsc-testnet" {
		t.Fatalf("network: %q", cfg.Network)
	}
	if len(cfg.Steps) != 2 || cfg.Steps[1] != "StableSwapRouter" {
		t.Fatalf("steps: %v", cfg.Steps)
	}
	if cfg.ConfirmTimeout != 30*time.Second {
		t.Fatalf("confirm timeout: %s", cfg.ConfirmTimeout)
	}
	if !cfg.Redeploy {
		t.Fatalf("expected redeploy from env")
	}
	if cfg.PrivateKey != "0xabc" {
		t.Fatalf("private key: %q", cfg.PrivateKey)
	}
}

func TestLoadRegistryMissingConfigFile(t *testing.T) {
	if _, err := LoadRegistry(filepath.Join(t.TempDir(), "missing.yaml"), nil); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
