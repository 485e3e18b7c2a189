package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"transferScope/internal/model"
)

// LarkClient posts alerts to a Lark custom bot webhook.
type LarkClient struct {
	webhookURL  string
	explorerURL func(chain string) string
	http        *http.Client
	logger      *zap.Logger
}

// NewLarkClient builds a notifier. explorerURL resolves the block explorer
// base URL for a chain name and may be nil.
func NewLarkClient(webhookURL string, explorerURL func(chain string) string, timeout time.Duration, logger *zap.Logger) *LarkClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if explorerURL == nil {
		explorerURL = func(string) string { return "" }
	}
	return &LarkClient{
		webhookURL:  webhookURL,
		explorerURL: explorerURL,
		http:        &http.Client{Timeout: timeout},
		logger:      logger,
	}
}

type larkMessage struct {
	MsgType string      `json:"msg_type"`
	Content larkContent `json:"content"`
}

type larkContent struct {
	Text string `json:"text"`
}

type larkResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

func (c *LarkClient) Send(ctx context.Context, alert model.Alert) error {
	body, err := json.Marshal(larkMessage{
		MsgType: "text",
		Content: larkContent{Text: FormatAlert(alert, c.explorerURL(alert.Chain))},
	})
	if err != nil {
		return fmt.Errorf("%w: marshal message: %v", model.ErrDeliveryFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: build request: %v", model.ErrDeliveryFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrDeliveryFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", model.ErrDeliveryFailed, resp.StatusCode)
	}

	var parsed larkResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("%w: decode response: %v", model.ErrDeliveryFailed, err)
	}
	if parsed.Code != 0 {
		return fmt.Errorf("%w: webhook code %d: %s", model.ErrDeliveryFailed, parsed.Code, parsed.Msg)
	}

	c.logger.Debug("alert delivered",
		zap.String("tx", alert.TxHash),
		zap.String("policy", alert.PolicyName))

	return nil
}
