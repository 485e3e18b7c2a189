// Package explorer fetches raw token transfer records for monitored pairs.
package explorer

import (
	"context"

	"transferScope/internal/config"
	"transferScope/internal/model"
)

// Client returns the recent transfer records for a token contract, ordered by
// on-chain position. Implementations own their timeouts and retries; a failure
// means "no new data this cycle for this pair" to the engine.
type Client interface {
	FetchTransfers(ctx context.Context, chain config.ChainConfig, token config.TokenConfig) ([]model.TransferRecord, error)
}
