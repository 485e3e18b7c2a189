package model

import (
	"github.com/shopspring/decimal"
)

// Alert describes one qualifying transfer. Alerts are derived per cycle and
// never persisted beyond delivery; the audit sink keeps a copy for operators.
type Alert struct {
	Chain        string          `json:"chain"`
	TokenName    string          `json:"token_name"`
	Symbol       string          `json:"symbol"`
	Policy       Policy          `json:"-"`
	PolicyName   string          `json:"policy"`
	TxHash       string          `json:"tx_hash"`
	Key          OrderingKey     `json:"key"`
	From         string          `json:"from"`
	FromLabel    string          `json:"from_label,omitempty"`
	To           string          `json:"to"`
	ToLabel      string          `json:"to_label,omitempty"`
	ExchangeName string          `json:"exchange,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	USDValue     decimal.Decimal `json:"usd_value"`
	Timestamp    uint64          `json:"timestamp"`
}
