package notify

import (
	"fmt"
	"strings"
	"time"

	"transferScope/internal/model"
)

// ShortAddress renders 0x1234567890...abcd for display.
func ShortAddress(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}

func displayAddress(addr, label string) string {
	short := ShortAddress(addr)
	if label != "" {
		return fmt.Sprintf("%s (%s)", short, label)
	}
	return short
}

// FormatAlert renders the chat message for an alert, one template per policy.
func FormatAlert(alert model.Alert, explorerURL string) string {
	ts := time.Unix(int64(alert.Timestamp), 0).UTC().Format("2006-01-02 15:04:05 UTC")
	txLink := alert.TxHash
	if explorerURL != "" {
		txLink = strings.TrimRight(explorerURL, "/") + "/tx/" + alert.TxHash
	}

	switch alert.Policy {
	case model.PolicyExchangeDeposit:
		return fmt.Sprintf(`🚨 Exchange Deposit Alert

💎 Token: %s (%s) [%s]
💰 Amount: %s %s
💵 Value: ≈ $%s USD
📤 From: %s
🏦 To: %s
🔗 Tx: %s
⏰ Time: %s`,
			alert.Symbol, alert.TokenName, alert.Chain,
			alert.Amount.StringFixed(2), alert.Symbol,
			alert.USDValue.StringFixed(2),
			displayAddress(alert.From, alert.FromLabel),
			displayAddress(alert.To, alert.ToLabel),
			txLink, ts)

	case model.PolicyWhaleTransfer:
		return fmt.Sprintf(`🐋 Whale Transfer Alert

💎 Token: %s (%s) [%s]
💰 Amount: %s %s
💵 Value: ≈ $%s USD
📤 From: %s
📥 To: %s
🔗 Tx: %s
⏰ Time: %s`,
			alert.Symbol, alert.TokenName, alert.Chain,
			alert.Amount.StringFixed(2), alert.Symbol,
			alert.USDValue.StringFixed(2),
			displayAddress(alert.From, alert.FromLabel),
			displayAddress(alert.To, alert.ToLabel),
			txLink, ts)

	default:
		return ""
	}
}
