// Package engine runs the monitoring cycle: fetch, dedup, classify, deliver,
// and advance the per-pair cursor.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"transferScope/internal/addrbook"
	"transferScope/internal/classify"
	"transferScope/internal/config"
	"transferScope/internal/cursor"
	"transferScope/internal/explorer"
	"transferScope/internal/model"
	"transferScope/internal/notify"
	"transferScope/internal/price"
	"transferScope/internal/storage"
)

// Pair is one (chain, token) monitoring unit. Pairs are independent: a
// failure in one never affects another.
type Pair struct {
	Chain config.ChainConfig
	Token config.TokenConfig
}

// Deps are the engine's collaborators. Sink may be nil to disable auditing.
type Deps struct {
	Explorer   explorer.Client
	Oracle     price.Oracle
	Notifier   notify.Notifier
	Cursors    cursor.Store
	Sink       storage.AlertSink
	BookLoader func() (*addrbook.Book, error)
	Logger     *zap.Logger
}

// Engine evaluates every configured pair once per cycle.
type Engine struct {
	cfg        config.Config
	classifier *classify.Classifier
	deps       Deps
	logger     *zap.Logger
}

func New(cfg config.Config, deps Deps) *Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.BookLoader == nil {
		deps.BookLoader = func() (*addrbook.Book, error) {
			return addrbook.LoadFile(cfg.AddrBookPath, cfg.Exchanges)
		}
	}
	return &Engine{
		cfg:        cfg,
		classifier: classify.New(cfg.USDThreshold),
		deps:       deps,
		logger:     logger,
	}
}

// RunCycle processes all configured pairs once. The returned report carries a
// per-pair outcome; the error is non-nil only for cycle-level problems such as
// an unreadable address book.
func (e *Engine) RunCycle(ctx context.Context) (CycleReport, error) {
	report := CycleReport{StartedAt: time.Now().UTC()}

	// One snapshot for the whole cycle so parallel pairs classify
	// consistently.
	book, err := e.deps.BookLoader()
	if err != nil {
		return report, fmt.Errorf("load address book: %w", err)
	}

	// One price lookup per token per cycle, shared across workers.
	oracle := price.NewCachedOracle(e.deps.Oracle)

	pairs := lo.FlatMap(e.cfg.Chains, func(chain config.ChainConfig, _ int) []Pair {
		return lo.Map(chain.Tokens, func(token config.TokenConfig, _ int) Pair {
			return Pair{Chain: chain, Token: token}
		})
	})

	results := make([]PairResult, len(pairs))

	group, groupCtx := errgroup.WithContext(ctx)
	limit := e.cfg.WorkerLimit
	if limit <= 0 {
		limit = 1
	}
	group.SetLimit(limit)

	for i, pair := range pairs {
		i, pair := i, pair
		group.Go(func() error {
			results[i] = e.processPair(groupCtx, book, oracle, pair)
			return nil
		})
	}

	// Workers never return errors; pair failures are isolated in results.
	_ = group.Wait()

	report.Pairs = results
	report.FinishedAt = time.Now().UTC()

	e.logger.Info("cycle complete",
		zap.Int("pairs", len(report.Pairs)),
		zap.Int("alerts", report.TotalDelivered()),
		zap.Int("skipped", report.TotalSkipped()),
		zap.Duration("elapsed", report.FinishedAt.Sub(report.StartedAt)))

	return report, nil
}

func (e *Engine) processPair(ctx context.Context, book *addrbook.Book, oracle price.Oracle, pair Pair) PairResult {
	result := PairResult{
		Chain:    pair.Chain.Name,
		Token:    pair.Token.Symbol,
		Contract: pair.Token.Contract,
	}
	log := e.logger.With(
		zap.String("chain", pair.Chain.Name),
		zap.String("token", pair.Token.Symbol))

	key, hasKey, err := e.deps.Cursors.Load(ctx, pair.Chain.Name, pair.Token.Contract)
	if err != nil {
		result.Err = fmt.Errorf("%w: load cursor: %v", model.ErrPersistFailed, err)
		log.Error("cursor load failed", zap.Error(err))
		return result
	}

	records, err := e.deps.Explorer.FetchTransfers(ctx, pair.Chain, pair.Token)
	if err != nil {
		// No new data this cycle for this pair; cursor stays put.
		result.Err = err
		log.Warn("fetch failed, pair skipped", zap.Error(err))
		return result
	}

	if !hasKey {
		// First run: seed the cursor to the newest record and report
		// nothing. Only future transfers alert, never historical backlog.
		max, ok := cursor.MaxKey(records)
		if !ok {
			log.Info("first run, no records to seed from")
			return result
		}
		if err := e.deps.Cursors.Save(ctx, pair.Chain.Name, pair.Token.Contract, max); err != nil {
			result.Err = fmt.Errorf("%w: seed cursor: %v", model.ErrPersistFailed, err)
			log.Error("cursor seed failed", zap.Error(err))
			return result
		}
		result.Seeded = true
		result.Committed = true
		result.CommittedKey = max
		log.Info("cursor seeded",
			zap.Uint64("block", max.Block),
			zap.Uint("index", max.Index),
			zap.Int("records", len(records)))
		return result
	}

	fresh := cursor.FilterNew(records, key, true)
	result.NewRecords = len(fresh)
	if len(fresh) == 0 {
		log.Debug("no unseen records")
		return result
	}

	unitPrice, err := oracle.UnitPrice(ctx, pair.Token)
	if err != nil {
		// Defer every record for this token to the next cycle rather
		// than silently classifying without a value.
		result.Err = err
		log.Warn("price unavailable, pair deferred", zap.Error(err))
		return result
	}

	var alerts []model.Alert
	for _, rec := range fresh {
		if alert, ok := e.classifier.Evaluate(pair.Chain.Name, pair.Token, rec, book, unitPrice); ok {
			alerts = append(alerts, alert)
		}
	}

	// Alerts are ascending because fresh is; deliver in that order so a
	// failure bounds the commit below every undelivered alert.
	var firstFailed *model.OrderingKey
	for _, alert := range alerts {
		if err := e.deps.Notifier.Send(ctx, alert); err != nil {
			log.Error("alert delivery failed",
				zap.String("tx", alert.TxHash),
				zap.Error(err))
			result.Failed = append(result.Failed, alert)
			if firstFailed == nil {
				k := alert.Key
				firstFailed = &k
			}
			continue
		}
		result.Delivered = append(result.Delivered, alert)
		log.Info("alert delivered",
			zap.String("tx", alert.TxHash),
			zap.String("policy", alert.PolicyName),
			zap.String("usd_value", alert.USDValue.StringFixed(2)))
	}

	commit, ok := commitKey(fresh, firstFailed)
	if ok {
		if err := e.deps.Cursors.Save(ctx, pair.Chain.Name, pair.Token.Contract, commit); err != nil {
			// Delivered alerts will be re-raised next cycle; duplicate
			// notification is accepted over a missed one.
			result.Err = fmt.Errorf("%w: %v", model.ErrPersistFailed, err)
			log.Error("cursor commit failed, expect duplicate alerts", zap.Error(err))
			return result
		}
		result.Committed = true
		result.CommittedKey = commit
	}

	if e.deps.Sink != nil && len(result.Delivered) > 0 {
		if err := e.deps.Sink.PutAlertBatch(result.Delivered); err != nil {
			log.Warn("audit log write failed", zap.Error(err))
		}
	}

	return result
}

// commitKey computes the highest ordering key safe to persist: the maximum
// across the full batch, capped strictly below the earliest failed alert so
// its record is re-evaluated next cycle. fresh must be in ascending order.
func commitKey(fresh []model.TransferRecord, firstFailed *model.OrderingKey) (model.OrderingKey, bool) {
	if len(fresh) == 0 {
		return model.OrderingKey{}, false
	}
	if firstFailed == nil {
		return fresh[len(fresh)-1].Key, true
	}

	var commit model.OrderingKey
	found := false
	for _, rec := range fresh {
		if !rec.Key.Less(*firstFailed) {
			break
		}
		commit = rec.Key
		found = true
	}
	return commit, found
}
