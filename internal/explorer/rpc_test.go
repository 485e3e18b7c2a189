package explorer

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"transferScope/internal/model"
)

func transferLog(block uint64, index uint, from, to common.Address, amount *big.Int) types.Log {
	return types.Log{
		BlockNumber: block,
		Index:       index,
		TxHash:      common.HexToHash("0x01"),
		Topics: []common.Hash{
			transferTopic,
			common.BytesToHash(from.Bytes()),
			common.BytesToHash(to.Bytes()),
		},
		Data: common.LeftPadBytes(amount.Bytes(), 32),
	}
}

func TestParseTransferLog(t *testing.T) {
	from := common.HexToAddress("0x1234567890123456789012345678901234567890")
	to := common.HexToAddress("0x0987654321098765432109876543210987654321")
	amount := new(big.Int).Mul(big.NewInt(3000), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))

	rec, err := parseTransferLog(transferLog(1042, 7, from, to, amount))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.From != from || rec.To != to {
		t.Fatalf("address mismatch: %+v", rec)
	}
	if rec.RawAmount.Cmp(amount) != 0 {
		t.Fatalf("amount mismatch: %s", rec.RawAmount)
	}
	want := model.OrderingKey{Block: 1042, Index: 7}
	if rec.Key != want {
		t.Fatalf("key mismatch: %+v", rec.Key)
	}
}

func TestParseTransferLogRejectsShortTopics(t *testing.T) {
	log := types.Log{Topics: []common.Hash{transferTopic}}
	if _, err := parseTransferLog(log); err == nil {
		t.Fatalf("expected error for log without indexed addresses")
	}
}

func TestClassifyFetchErrRateLimit(t *testing.T) {
	err := classifyFetchErr(fmt.Errorf("request failed: 429 Too Many Requests"))
	if !errors.Is(err, model.ErrRateLimited) {
		t.Fatalf("expected rate limit classification, got %v", err)
	}

	err = classifyFetchErr(fmt.Errorf("connection refused"))
	if !errors.Is(err, model.ErrFetchFailed) {
		t.Fatalf("expected generic fetch failure, got %v", err)
	}
}

func TestWithRetryStopsOnSuccess(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), 5, time.Millisecond, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestWithRetryExhausts(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), 2, time.Millisecond, func(context.Context) error {
		calls++
		return errors.New("permanent")
	})
	if err == nil {
		t.Fatalf("expected error after retries exhausted")
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestWithRetryHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := withRetry(ctx, 5, time.Hour, func(context.Context) error {
		return errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}
