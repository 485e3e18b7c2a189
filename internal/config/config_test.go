package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"transferScope/internal/model"
)

const sampleConfig = `
usd-threshold: "7500"
exchanges:
  - Binance
  - Coinbase
chains:
  - name: ethereum
    chain_id: 1
    rpc: https://eth.example.org
    api_key_env: ETHERSCAN_API_KEY
    explorer_url: https://etherscan.io
    tokens:
      - name: Example Token
        symbol: EXT
        contract: "0x1111111111111111111111111111111111111111"
        coingecko_id: example-token
        decimals: 18
        monitor_mode: exchange_deposit
  - name: bsc
    chain_id: 56
    rpc: https://bsc.example.org
    api_key_env: BSCSCAN_API_KEY
    explorer_url: https://bscscan.com
    tokens:
      - name: Whale Token
        symbol: WHT
        contract: "0x2222222222222222222222222222222222222222"
        coingecko_id: whale-token
        decimals: 18
        monitor_mode: whale_transfer
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !cfg.USDThreshold.Equal(decimal.RequireFromString("7500")) {
		t.Fatalf("threshold mismatch: %s", cfg.USDThreshold)
	}
	if len(cfg.Exchanges) != 2 {
		t.Fatalf("expected 2 exchanges, got %d", len(cfg.Exchanges))
	}
	if len(cfg.Chains) != 2 {
		t.Fatalf("expected 2 chains, got %d", len(cfg.Chains))
	}

	eth := cfg.Chains[0]
	if eth.Name != "ethereum" || eth.ChainID != 1 {
		t.Fatalf("chain mismatch: %+v", eth)
	}
	if len(eth.Tokens) != 1 {
		t.Fatalf("expected 1 token, got %d", len(eth.Tokens))
	}
	if eth.Tokens[0].Policy != model.PolicyExchangeDeposit {
		t.Fatalf("policy mismatch: %v", eth.Tokens[0].Policy)
	}
	if cfg.Chains[1].Tokens[0].Policy != model.PolicyWhaleTransfer {
		t.Fatalf("policy mismatch: %v", cfg.Chains[1].Tokens[0].Policy)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "chains: []\n"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.USDThreshold.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("default threshold mismatch: %s", cfg.USDThreshold)
	}
	if cfg.LookbackBlocks != 500 {
		t.Fatalf("default lookback mismatch: %d", cfg.LookbackBlocks)
	}
	if cfg.WorkerLimit != 4 {
		t.Fatalf("default workers mismatch: %d", cfg.WorkerLimit)
	}
}

func TestLoadRejectsUnknownPolicy(t *testing.T) {
	bad := `
chains:
  - name: ethereum
    tokens:
      - symbol: EXT
        contract: "0x1111111111111111111111111111111111111111"
        decimals: 18
        monitor_mode: everything
`
	if _, err := Load(writeConfig(t, bad), nil); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}

func TestLoadRejectsDuplicateToken(t *testing.T) {
	bad := `
chains:
  - name: ethereum
    tokens:
      - symbol: EXT
        contract: "0x1111111111111111111111111111111111111111"
        decimals: 18
        monitor_mode: whale_transfer
      - symbol: EXT2
        contract: "0x1111111111111111111111111111111111111111"
        decimals: 18
        monitor_mode: whale_transfer
`
	if _, err := Load(writeConfig(t, bad), nil); err == nil {
		t.Fatalf("expected error for duplicate token")
	}
}

func TestLoadRejectsBadContract(t *testing.T) {
	bad := `
chains:
  - name: ethereum
    tokens:
      - symbol: EXT
        contract: "not-an-address"
        decimals: 18
        monitor_mode: whale_transfer
`
	if _, err := Load(writeConfig(t, bad), nil); err == nil {
		t.Fatalf("expected error for invalid contract address")
	}
}
