package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"transferScope/internal/chain"
	"transferScope/internal/config"
	"transferScope/internal/cursor"
	"transferScope/internal/engine"
	"transferScope/internal/erc20"
	"transferScope/internal/explorer"
	"transferScope/internal/notify"
	"transferScope/internal/price"
	"transferScope/internal/storage"
)

func main() {
	root := &cobra.Command{
		Use:          "monitor",
		Short:        "Multi-chain token transfer monitor",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run one monitoring cycle and exit",
		RunE:  runOnce,
	}
	addMonitorFlags(runCmd)
	root.AddCommand(runCmd)

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Run monitoring cycles on an interval",
		RunE:  runWatch,
	}
	addMonitorFlags(watchCmd)
	watchCmd.Flags().Duration("interval", 5*time.Minute, "delay between cycles")
	root.AddCommand(watchCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addMonitorFlags(cmd *cobra.Command) {
	cmd.Flags().String("usd-threshold", "5000", "minimum USD value to alert on")
	cmd.Flags().StringSlice("exchanges", nil, "exchange name fragments (comma-separated)")
	cmd.Flags().String("addrbook", "./data/exchange_addresses.json", "exchange address book path")
	cmd.Flags().String("cursor", "./data/cursor.json", "cursor file path")
	cmd.Flags().String("pg-dsn", "", "Postgres DSN for cursor storage (overrides cursor file)")
	cmd.Flags().String("audit-log", "./data/alerts.jsonl", "delivered alert audit log (empty to disable)")
	cmd.Flags().String("lark-webhook-url", "", "Lark webhook URL (or MONITOR_LARK_WEBHOOK_URL)")
	cmd.Flags().Uint64("lookback-blocks", 500, "blocks to scan behind the tip")
	cmd.Flags().Int("max-retries", 5, "maximum RPC retry attempts")
	cmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	cmd.Flags().Int("workers", 4, "parallel pair evaluations")
	cmd.Flags().Bool("verify-tokens", false, "verify configured token metadata on-chain at startup")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

func runOnce(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng, cleanup, logger, err := buildEngine(ctx, cmd)
	if err != nil {
		return err
	}
	defer cleanup()
	defer logger.Sync()

	report, err := eng.RunCycle(ctx)
	if err != nil {
		return err
	}

	logReport(logger, report)
	return nil
}

func runWatch(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	interval, _ := cmd.Flags().GetDuration("interval")

	eng, cleanup, logger, err := buildEngine(ctx, cmd)
	if err != nil {
		return err
	}
	defer cleanup()
	defer logger.Sync()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		report, err := eng.RunCycle(ctx)
		if err != nil {
			logger.Error("cycle failed", zap.Error(err))
		} else {
			logReport(logger, report)
		}

		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return nil
		case <-ticker.C:
		}
	}
}

func buildEngine(ctx context.Context, cmd *cobra.Command) (*engine.Engine, func(), *zap.Logger, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, nil, nil, err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, nil, err
	}

	if len(cfg.Chains) == 0 {
		return nil, nil, nil, fmt.Errorf("at least one chain is required")
	}
	if cfg.LarkWebhookURL == "" {
		return nil, nil, nil, fmt.Errorf("lark webhook url is required (MONITOR_LARK_WEBHOOK_URL)")
	}

	var cleanups []func()
	cleanup := func() {
		for _, fn := range cleanups {
			fn()
		}
	}

	clients := make(map[string]*chain.Client, len(cfg.Chains))
	explorerURLs := make(map[string]string, len(cfg.Chains))
	for _, chainCfg := range cfg.Chains {
		rpcURL, err := resolveRPCURL(chainCfg)
		if err != nil {
			cleanup()
			return nil, nil, nil, err
		}

		client, err := chain.NewClient(ctx, rpcURL)
		if err != nil {
			cleanup()
			return nil, nil, nil, fmt.Errorf("connect %s rpc: %w", chainCfg.Name, err)
		}
		cleanups = append(cleanups, client.Close)
		clients[chainCfg.Name] = client
		explorerURLs[chainCfg.Name] = chainCfg.ExplorerURL

		verify, _ := cmd.Flags().GetBool("verify-tokens")
		if verify {
			for _, token := range chainCfg.Tokens {
				for _, warning := range erc20.VerifyToken(ctx, client, token, logger) {
					logger.Warn("token config mismatch", zap.String("detail", warning))
				}
			}
		}
	}

	var cursors cursor.Store
	if cfg.PGDSN != "" {
		pgStore, err := cursor.NewPGStore(ctx, cfg.PGDSN)
		if err != nil {
			cleanup()
			return nil, nil, nil, fmt.Errorf("connect cursor store: %w", err)
		}
		cleanups = append(cleanups, pgStore.Close)
		cursors = pgStore
	} else {
		cursors = cursor.NewFileStore(cfg.CursorPath)
	}

	var sink storage.AlertSink
	if cfg.AuditLogPath != "" {
		sink = storage.NewJsonlSink(cfg.AuditLogPath)
	}

	eng := engine.New(cfg, engine.Deps{
		Explorer: explorer.NewRPCSource(clients, cfg.LookbackBlocks, cfg.MaxRetries, cfg.RetryBackoff, logger),
		Oracle:   price.NewCoinGeckoClient(cfg.CoingeckoAPIURL, cfg.PriceHTTPTimeout, logger),
		Notifier: notify.NewLarkClient(cfg.LarkWebhookURL, func(chainName string) string {
			return explorerURLs[chainName]
		}, 10*time.Second, logger),
		Cursors: cursors,
		Sink:    sink,
		Logger:  logger,
	})

	logger.Info("monitor configured",
		zap.Int("chains", len(cfg.Chains)),
		zap.String("usd_threshold", cfg.USDThreshold.String()),
		zap.Uint64("lookback_blocks", cfg.LookbackBlocks),
		zap.Int("workers", cfg.WorkerLimit),
	)

	return eng, cleanup, logger, nil
}

// resolveRPCURL substitutes the chain's API key from its configured env var.
func resolveRPCURL(chainCfg config.ChainConfig) (string, error) {
	rpcURL := chainCfg.RPCURL
	if rpcURL == "" {
		return "", fmt.Errorf("chain %s: rpc url is required", chainCfg.Name)
	}

	if strings.Contains(rpcURL, "${API_KEY}") {
		if chainCfg.APIKeyEnv == "" {
			return "", fmt.Errorf("chain %s: rpc url expects an api key but api_key_env is unset", chainCfg.Name)
		}
		key := os.Getenv(chainCfg.APIKeyEnv)
		if key == "" {
			return "", fmt.Errorf("chain %s: %s is not set", chainCfg.Name, chainCfg.APIKeyEnv)
		}
		rpcURL = strings.ReplaceAll(rpcURL, "${API_KEY}", key)
	}

	return rpcURL, nil
}

func logReport(logger *zap.Logger, report engine.CycleReport) {
	for _, pair := range report.Pairs {
		if pair.Err != nil {
			logger.Warn("pair skipped",
				zap.String("chain", pair.Chain),
				zap.String("token", pair.Token),
				zap.Error(pair.Err))
			continue
		}
		logger.Info("pair processed",
			zap.String("chain", pair.Chain),
			zap.String("token", pair.Token),
			zap.Int("new_records", pair.NewRecords),
			zap.Int("alerts", len(pair.Delivered)),
			zap.Bool("seeded", pair.Seeded))
	}
	logger.Info("cycle summary",
		zap.Int("delivered", report.TotalDelivered()),
		zap.Int("failed", report.TotalFailed()),
		zap.Int("skipped", report.TotalSkipped()))
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
