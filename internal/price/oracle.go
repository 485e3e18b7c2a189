// Package price resolves token unit prices in USD.
package price

import (
	"context"

	"github.com/shopspring/decimal"

	"transferScope/internal/config"
)

// Oracle resolves the USD unit price for a token. A failure propagates as
// model.ErrPriceUnavailable and defers all of that token's records to the
// next cycle.
type Oracle interface {
	UnitPrice(ctx context.Context, token config.TokenConfig) (decimal.Decimal, error)
}
