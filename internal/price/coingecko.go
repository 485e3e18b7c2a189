package price

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"transferScope/internal/config"
	"transferScope/internal/model"
)

// CoinGeckoClient resolves prices from the CoinGecko simple price endpoint.
type CoinGeckoClient struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

func NewCoinGeckoClient(baseURL string, timeout time.Duration, logger *zap.Logger) *CoinGeckoClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &CoinGeckoClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (c *CoinGeckoClient) UnitPrice(ctx context.Context, token config.TokenConfig) (decimal.Decimal, error) {
	if token.CoingeckoID == "" {
		return decimal.Zero, fmt.Errorf("%w: token %s has no coingecko id", model.ErrPriceUnavailable, token.Symbol)
	}

	endpoint := fmt.Sprintf("%s/simple/price?%s", c.baseURL, url.Values{
		"ids":           {token.CoingeckoID},
		"vs_currencies": {"usd"},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: build request: %v", model.ErrPriceUnavailable, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", model.ErrPriceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("%w: status %d", model.ErrPriceUnavailable, resp.StatusCode)
	}

	// {"<id>": {"usd": 1.23}}
	var payload map[string]map[string]json.Number
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return decimal.Zero, fmt.Errorf("%w: decode response: %v", model.ErrPriceUnavailable, err)
	}

	raw, ok := payload[token.CoingeckoID]["usd"]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: no usd price for %s", model.ErrPriceUnavailable, token.CoingeckoID)
	}

	price, err := decimal.NewFromString(raw.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: parse price %q: %v", model.ErrPriceUnavailable, raw.String(), err)
	}

	c.logger.Debug("price resolved",
		zap.String("token", token.CoingeckoID),
		zap.String("usd", price.String()))

	return price, nil
}
