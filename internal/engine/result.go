package engine

import (
	"time"

	"transferScope/internal/model"
)

// PairResult describes what one cycle did for one (chain, token) pair.
type PairResult struct {
	Chain    string
	Token    string
	Contract string

	// Seeded is true on the pair's first run, when the cursor was
	// initialized from the fetched batch and nothing was evaluated.
	Seeded bool

	// NewRecords counts unseen records after cursor filtering.
	NewRecords int

	Delivered []model.Alert
	Failed    []model.Alert

	// Committed reports whether the cursor advanced, and to where.
	Committed    bool
	CommittedKey model.OrderingKey

	// Err is the reason the pair was skipped or partially processed.
	Err error
}

// Skipped reports whether the pair produced no result this cycle.
func (r PairResult) Skipped() bool {
	return r.Err != nil && !r.Committed && len(r.Delivered) == 0
}

// CycleReport is the outcome of one full monitoring cycle.
type CycleReport struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Pairs      []PairResult
}

func (c CycleReport) TotalDelivered() int {
	total := 0
	for _, pair := range c.Pairs {
		total += len(pair.Delivered)
	}
	return total
}

func (c CycleReport) TotalFailed() int {
	total := 0
	for _, pair := range c.Pairs {
		total += len(pair.Failed)
	}
	return total
}

func (c CycleReport) TotalSkipped() int {
	total := 0
	for _, pair := range c.Pairs {
		if pair.Skipped() {
			total++
		}
	}
	return total
}
