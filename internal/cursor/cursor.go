// Package cursor tracks the per-(chain, token) high-water mark that prevents
// a transfer from ever being reported twice.
package cursor

import (
	"context"
	"sort"

	"transferScope/internal/model"
)

// Store persists high-water marks. The mark for a pair is the maximum ordering
// key of any record confirmed processed, whether or not it alerted.
type Store interface {
	// Load returns the stored key for a pair. ok is false on first run.
	Load(ctx context.Context, chain, contract string) (key model.OrderingKey, ok bool, err error)
	// Save records the new high-water mark for a pair.
	Save(ctx context.Context, chain, contract string, key model.OrderingKey) error
}

// FilterNew returns the records strictly above the stored key, in ascending
// ordering-key order. When hasKey is false every record passes. The explorer
// may deliver late records out of order near the tip, so callers must derive
// the next mark with MaxKey over the full filtered batch rather than taking
// the last-fetched record.
func FilterNew(records []model.TransferRecord, key model.OrderingKey, hasKey bool) []model.TransferRecord {
	fresh := make([]model.TransferRecord, 0, len(records))
	for _, rec := range records {
		if hasKey && !key.Less(rec.Key) {
			continue
		}
		fresh = append(fresh, rec)
	}

	sort.Slice(fresh, func(i, j int) bool {
		return fresh[i].Key.Less(fresh[j].Key)
	})

	return fresh
}

// MaxKey returns the maximum ordering key across records.
func MaxKey(records []model.TransferRecord) (model.OrderingKey, bool) {
	if len(records) == 0 {
		return model.OrderingKey{}, false
	}
	max := records[0].Key
	for _, rec := range records[1:] {
		if max.Less(rec.Key) {
			max = rec.Key
		}
	}
	return max, true
}
