// Package notify delivers alerts to chat channels.
package notify

import (
	"context"

	"transferScope/internal/model"
)

// Notifier delivers one alert. A failure for one alert must not block
// delivery of the others in the same cycle; the engine keeps the failed
// alert's record out of the committed cursor so it is retried next run.
type Notifier interface {
	Send(ctx context.Context, alert model.Alert) error
}
