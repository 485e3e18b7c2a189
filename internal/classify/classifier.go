// Package classify decides whether a single transfer is alertworthy.
package classify

import (
	"strings"

	"github.com/shopspring/decimal"

	"transferScope/internal/addrbook"
	"transferScope/internal/config"
	"transferScope/internal/model"
)

// Classifier applies a token's monitoring policy to transfer records.
type Classifier struct {
	threshold decimal.Decimal
}

func New(usdThreshold decimal.Decimal) *Classifier {
	return &Classifier{threshold: usdThreshold}
}

// Evaluate returns the alert for a record, if the record qualifies under the
// token's policy at the given unit price. It is a pure decision function: the
// address book snapshot and price are resolved by the caller.
//
// Zero-amount transfers never alert. The USD value is compared against the
// threshold with no rounding.
func (c *Classifier) Evaluate(
	chain string,
	token config.TokenConfig,
	rec model.TransferRecord,
	book *addrbook.Book,
	unitPrice decimal.Decimal,
) (model.Alert, bool) {
	if rec.RawAmount == nil || rec.RawAmount.Sign() == 0 {
		return model.Alert{}, false
	}

	amount := decimal.NewFromBigInt(rec.RawAmount, -token.Decimals)
	usdValue := amount.Mul(unitPrice)

	if usdValue.LessThan(c.threshold) {
		return model.Alert{}, false
	}

	from := strings.ToLower(rec.From.Hex())
	to := strings.ToLower(rec.To.Hex())
	fromEntry, _ := book.Lookup(chain, from)
	toEntry, _ := book.Lookup(chain, to)

	var exchange string
	switch token.Policy {
	case model.PolicyExchangeDeposit:
		name, toIsExchange := book.ExchangeOf(chain, to)
		if !toIsExchange {
			return model.Alert{}, false
		}
		// A sender that is itself a known exchange address means an
		// exchange-internal consolidation transfer, not a deposit.
		if book.IsExchangeAddress(chain, from) {
			return model.Alert{}, false
		}
		exchange = name

	case model.PolicyWhaleTransfer:
		// No identity constraint: every transfer at or above the
		// threshold is reported.
		exchange, _ = book.ExchangeOf(chain, to)

	default:
		return model.Alert{}, false
	}

	return model.Alert{
		Chain:        chain,
		TokenName:    token.Name,
		Symbol:       token.Symbol,
		Policy:       token.Policy,
		PolicyName:   token.Policy.String(),
		TxHash:       rec.TxHash.Hex(),
		Key:          rec.Key,
		From:         from,
		FromLabel:    fromEntry.Label,
		To:           to,
		ToLabel:      toEntry.Label,
		ExchangeName: exchange,
		Amount:       amount,
		USDValue:     usdValue,
		Timestamp:    rec.Timestamp,
	}, true
}
