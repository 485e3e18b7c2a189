package explorer

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"transferScope/internal/chain"
	"transferScope/internal/config"
	"transferScope/internal/model"
)

// transferTopic is topic0 of Transfer(address indexed, address indexed, uint256).
var transferTopic = common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")

// RPCSource fetches transfers via eth_getLogs over a recent block window.
type RPCSource struct {
	clients        map[string]*chain.Client
	lookbackBlocks uint64
	maxRetries     int
	retryBackoff   time.Duration
	logger         *zap.Logger
}

// NewRPCSource builds a source over per-chain RPC clients, keyed by chain name.
func NewRPCSource(
	clients map[string]*chain.Client,
	lookbackBlocks uint64,
	maxRetries int,
	retryBackoff time.Duration,
	logger *zap.Logger,
) *RPCSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	if lookbackBlocks == 0 {
		lookbackBlocks = 500
	}
	return &RPCSource{
		clients:        clients,
		lookbackBlocks: lookbackBlocks,
		maxRetries:     maxRetries,
		retryBackoff:   retryBackoff,
		logger:         logger,
	}
}

func (s *RPCSource) FetchTransfers(ctx context.Context, chainCfg config.ChainConfig, token config.TokenConfig) ([]model.TransferRecord, error) {
	client, ok := s.clients[chainCfg.Name]
	if !ok {
		return nil, fmt.Errorf("%w: no rpc client for chain %s", model.ErrFetchFailed, chainCfg.Name)
	}

	var latest uint64
	err := withRetry(ctx, s.maxRetries, s.retryBackoff, func(ctx context.Context) error {
		var err error
		latest, err = client.LatestBlockNumber(ctx)
		if err != nil {
			s.logger.Warn("latest block fetch failed", zap.String("chain", chainCfg.Name), zap.Error(err))
		}
		return err
	})
	if err != nil {
		return nil, classifyFetchErr(fmt.Errorf("latest block: %w", err))
	}

	from := uint64(0)
	if latest > s.lookbackBlocks {
		from = latest - s.lookbackBlocks
	}

	contract := common.HexToAddress(token.Contract)

	var logs []types.Log
	err = withRetry(ctx, s.maxRetries, s.retryBackoff, func(ctx context.Context) error {
		var err error
		logs, err = client.FilterLogs(ctx, from, latest, []common.Address{contract}, []common.Hash{transferTopic})
		if err != nil {
			s.logger.Warn("filter logs failed",
				zap.String("chain", chainCfg.Name),
				zap.String("token", token.Symbol),
				zap.Uint64("from", from),
				zap.Uint64("to", latest),
				zap.Error(err))
		}
		return err
	})
	if err != nil {
		return nil, classifyFetchErr(fmt.Errorf("filter logs: %w", err))
	}

	records := make([]model.TransferRecord, 0, len(logs))
	for _, log := range logs {
		if log.Removed {
			continue
		}

		rec, err := parseTransferLog(log)
		if err != nil {
			s.logger.Debug("skip malformed transfer log",
				zap.String("tx", log.TxHash.Hex()),
				zap.Error(err))
			continue
		}

		ts, err := client.BlockTimestamp(ctx, log.BlockNumber)
		if err != nil {
			// A missing timestamp only degrades the alert text.
			s.logger.Debug("block timestamp fetch failed",
				zap.Uint64("block", log.BlockNumber),
				zap.Error(err))
		}
		rec.Timestamp = ts

		records = append(records, rec)
	}

	return records, nil
}

// parseTransferLog decodes an ERC-20 Transfer log into a TransferRecord.
// topics[1] and topics[2] carry the padded sender/recipient, data the amount.
func parseTransferLog(log types.Log) (model.TransferRecord, error) {
	if len(log.Topics) < 3 {
		return model.TransferRecord{}, fmt.Errorf("transfer log has %d topics", len(log.Topics))
	}

	return model.TransferRecord{
		TxHash: log.TxHash,
		Key: model.OrderingKey{
			Block: log.BlockNumber,
			Index: log.Index,
		},
		From:      common.BytesToAddress(log.Topics[1].Bytes()),
		To:        common.BytesToAddress(log.Topics[2].Bytes()),
		RawAmount: new(big.Int).SetBytes(log.Data),
	}, nil
}

func classifyFetchErr(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "429") || strings.Contains(msg, "rate limit") || strings.Contains(msg, "too many requests") {
		return fmt.Errorf("%w: %v", model.ErrRateLimited, err)
	}
	return fmt.Errorf("%w: %v", model.ErrFetchFailed, err)
}
