package classify

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"transferScope/internal/addrbook"
	"transferScope/internal/config"
	"transferScope/internal/model"
)

const (
	exchangeWallet  = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	exchangeWallet2 = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	unknownWallet   = "0x1234567890123456789012345678901234567890"
	unknownWallet2  = "0x0987654321098765432109876543210987654321"
)

func testBook() *addrbook.Book {
	return addrbook.New(map[string]map[string]string{
		"ethereum": {
			exchangeWallet:  "Binance 14",
			exchangeWallet2: "Binance 15",
		},
	}, []string{"Binance"})
}

func tokens(n int64) *big.Int {
	exp := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	return new(big.Int).Mul(big.NewInt(n), exp)
}

func record(from, to string, raw *big.Int) model.TransferRecord {
	return model.TransferRecord{
		TxHash:    common.HexToHash("0xdead"),
		Key:       model.OrderingKey{Block: 100, Index: 1},
		From:      common.HexToAddress(from),
		To:        common.HexToAddress(to),
		RawAmount: raw,
		Timestamp: 1700000000,
	}
}

func token(policy model.Policy) config.TokenConfig {
	return config.TokenConfig{
		Name:     "Example Token",
		Symbol:   "EXT",
		Decimals: 18,
		Policy:   policy,
	}
}

func TestExchangeDepositAlert(t *testing.T) {
	// 3000 tokens at $2.00 = $6000, threshold $5000, unknown -> exchange.
	c := New(decimal.NewFromInt(5000))
	price := decimal.RequireFromString("2.00")

	alert, ok := c.Evaluate("ethereum", token(model.PolicyExchangeDeposit),
		record(unknownWallet, exchangeWallet, tokens(3000)), testBook(), price)
	if !ok {
		t.Fatalf("expected alert")
	}
	if !alert.USDValue.Equal(decimal.NewFromInt(6000)) {
		t.Fatalf("usd value mismatch: %s", alert.USDValue)
	}
	if !alert.Amount.Equal(decimal.NewFromInt(3000)) {
		t.Fatalf("amount mismatch: %s", alert.Amount)
	}
	if alert.ExchangeName != "Binance" {
		t.Fatalf("exchange mismatch: %q", alert.ExchangeName)
	}
}

func TestExchangeDepositExcludesInternalConsolidation(t *testing.T) {
	c := New(decimal.NewFromInt(5000))
	price := decimal.RequireFromString("2.00")

	// Same value, but between two known exchange wallets.
	if _, ok := c.Evaluate("ethereum", token(model.PolicyExchangeDeposit),
		record(exchangeWallet2, exchangeWallet, tokens(3000)), testBook(), price); ok {
		t.Fatalf("internal consolidation must not alert")
	}
}

func TestExchangeDepositIgnoresNonExchangeRecipient(t *testing.T) {
	c := New(decimal.NewFromInt(5000))
	price := decimal.RequireFromString("2.00")

	if _, ok := c.Evaluate("ethereum", token(model.PolicyExchangeDeposit),
		record(unknownWallet, unknownWallet2, tokens(3000)), testBook(), price); ok {
		t.Fatalf("transfer to unknown recipient must not alert")
	}
}

func TestWhaleTransferAlert(t *testing.T) {
	// 20000 tokens at $0.50 = $10000 between unknown addresses.
	c := New(decimal.NewFromInt(5000))
	price := decimal.RequireFromString("0.50")

	alert, ok := c.Evaluate("ethereum", token(model.PolicyWhaleTransfer),
		record(unknownWallet, unknownWallet2, tokens(20000)), testBook(), price)
	if !ok {
		t.Fatalf("expected alert")
	}
	if !alert.USDValue.Equal(decimal.NewFromInt(10000)) {
		t.Fatalf("usd value mismatch: %s", alert.USDValue)
	}
}

func TestWhaleTransferIgnoresIdentity(t *testing.T) {
	c := New(decimal.NewFromInt(5000))
	price := decimal.RequireFromString("2.00")

	// Exchange-internal transfer still alerts under whale policy.
	alert, ok := c.Evaluate("ethereum", token(model.PolicyWhaleTransfer),
		record(exchangeWallet2, exchangeWallet, tokens(3000)), testBook(), price)
	if !ok {
		t.Fatalf("expected alert regardless of sender/recipient identity")
	}
	if alert.ToLabel != "Binance 14" {
		t.Fatalf("to-label mismatch: %q", alert.ToLabel)
	}
}

func TestBelowThresholdNeverAlerts(t *testing.T) {
	c := New(decimal.NewFromInt(5000))
	price := decimal.RequireFromString("1.00")

	for _, policy := range []model.Policy{model.PolicyExchangeDeposit, model.PolicyWhaleTransfer} {
		if _, ok := c.Evaluate("ethereum", token(policy),
			record(unknownWallet, exchangeWallet, tokens(4999)), testBook(), price); ok {
			t.Fatalf("below threshold must not alert under %s", policy)
		}
	}
}

func TestThresholdIsInclusive(t *testing.T) {
	c := New(decimal.NewFromInt(5000))
	price := decimal.RequireFromString("1.00")

	if _, ok := c.Evaluate("ethereum", token(model.PolicyWhaleTransfer),
		record(unknownWallet, unknownWallet2, tokens(5000)), testBook(), price); !ok {
		t.Fatalf("value equal to threshold must alert")
	}
}

func TestZeroAmountNeverAlerts(t *testing.T) {
	c := New(decimal.NewFromInt(5000))
	// Absurd price makes any rounding mistake show up.
	price := decimal.RequireFromString("1000000000000")

	for _, policy := range []model.Policy{model.PolicyExchangeDeposit, model.PolicyWhaleTransfer} {
		if _, ok := c.Evaluate("ethereum", token(policy),
			record(unknownWallet, exchangeWallet, big.NewInt(0)), testBook(), price); ok {
			t.Fatalf("zero-amount transfer must not alert under %s", policy)
		}
	}
}

func TestFractionalValueComparedWithoutRounding(t *testing.T) {
	c := New(decimal.RequireFromString("5000"))
	price := decimal.RequireFromString("0.4999999")

	// 10000 tokens * 0.4999999 = 4999.999 — must stay below threshold.
	if _, ok := c.Evaluate("ethereum", token(model.PolicyWhaleTransfer),
		record(unknownWallet, unknownWallet2, tokens(10000)), testBook(), price); ok {
		t.Fatalf("4999.999 must not round up over the threshold")
	}
}
