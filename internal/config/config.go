package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"transferScope/internal/model"
)

// TokenConfig describes one monitored token contract. Belongs to exactly one
// chain and is immutable once loaded.
type TokenConfig struct {
	Name        string `mapstructure:"name"`
	Symbol      string `mapstructure:"symbol"`
	Contract    string `mapstructure:"contract"`
	CoingeckoID string `mapstructure:"coingecko_id"`
	Decimals    int32  `mapstructure:"decimals"`
	Mode        string `mapstructure:"monitor_mode"`

	Policy model.Policy `mapstructure:"-"`
}

// ChainConfig describes one monitored chain and its tokens.
type ChainConfig struct {
	Name        string        `mapstructure:"name"`
	ChainID     uint64        `mapstructure:"chain_id"`
	RPCURL      string        `mapstructure:"rpc"`
	APIKeyEnv   string        `mapstructure:"api_key_env"`
	ExplorerURL string        `mapstructure:"explorer_url"`
	Tokens      []TokenConfig `mapstructure:"tokens"`
}

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	USDThreshold     decimal.Decimal
	Exchanges        []string
	AddrBookPath     string
	CursorPath       string
	PGDSN            string
	AuditLogPath     string
	LarkWebhookURL   string
	CoingeckoAPIURL  string
	LookbackBlocks   uint64
	MaxRetries       int
	RetryBackoff     time.Duration
	Interval         time.Duration
	WorkerLimit      int
	PriceHTTPTimeout time.Duration
	LogLevel         string
	Chains           []ChainConfig
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("MONITOR")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("usd-threshold", "5000")
	v.SetDefault("addrbook", "./data/exchange_addresses.json")
	v.SetDefault("cursor", "./data/cursor.json")
	v.SetDefault("audit-log", "./data/alerts.jsonl")
	v.SetDefault("coingecko-api-url", "https://api.coingecko.com/api/v3")
	v.SetDefault("lookback-blocks", uint64(500))
	v.SetDefault("max-retries", 5)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("interval", 5*time.Minute)
	v.SetDefault("workers", 4)
	v.SetDefault("price-timeout", 10*time.Second)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	threshold, err := decimal.NewFromString(v.GetString("usd-threshold"))
	if err != nil {
		return Config{}, fmt.Errorf("parse usd threshold: %w", err)
	}

	var chains []ChainConfig
	if err := v.UnmarshalKey("chains", &chains); err != nil {
		return Config{}, fmt.Errorf("parse chains: %w", err)
	}

	cfg := Config{
		USDThreshold:     threshold,
		Exchanges:        getStringSlice(v, "exchanges"),
		AddrBookPath:     v.GetString("addrbook"),
		CursorPath:       v.GetString("cursor"),
		PGDSN:            v.GetString("pg-dsn"),
		AuditLogPath:     v.GetString("audit-log"),
		LarkWebhookURL:   v.GetString("lark-webhook-url"),
		CoingeckoAPIURL:  v.GetString("coingecko-api-url"),
		LookbackBlocks:   v.GetUint64("lookback-blocks"),
		MaxRetries:       v.GetInt("max-retries"),
		RetryBackoff:     v.GetDuration("retry-backoff"),
		Interval:         v.GetDuration("interval"),
		WorkerLimit:      v.GetInt("workers"),
		PriceHTTPTimeout: v.GetDuration("price-timeout"),
		LogLevel:         v.GetString("log-level"),
		Chains:           chains,
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	seen := make(map[string]struct{})
	for ci := range c.Chains {
		chain := &c.Chains[ci]
		if chain.Name == "" {
			return fmt.Errorf("chain %d: name is required", ci)
		}
		for ti := range chain.Tokens {
			token := &chain.Tokens[ti]
			if !common.IsHexAddress(token.Contract) {
				return fmt.Errorf("chain %s token %s: invalid contract address %q",
					chain.Name, token.Symbol, token.Contract)
			}
			if token.Decimals < 0 {
				return fmt.Errorf("chain %s token %s: negative decimals", chain.Name, token.Symbol)
			}

			policy, err := model.ParsePolicy(token.Mode)
			if err != nil {
				return fmt.Errorf("chain %s token %s: %w", chain.Name, token.Symbol, err)
			}
			token.Policy = policy

			key := chain.Name + ":" + strings.ToLower(token.Contract)
			if _, dup := seen[key]; dup {
				return fmt.Errorf("duplicate token %s on chain %s", token.Contract, chain.Name)
			}
			seen[key] = struct{}{}
		}
	}
	return nil
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
