package storage

import "transferScope/internal/model"

// AlertSink records delivered alerts for auditing.
type AlertSink interface {
	PutAlertBatch(alerts []model.Alert) error
}
