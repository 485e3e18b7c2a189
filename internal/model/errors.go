package model

import "errors"

// Failure taxonomy for one monitoring cycle. Fetch and price failures are
// recovered per pair; delivery failures are per alert; a persistence failure
// means the cursor could not advance past already-delivered records.
var (
	ErrRateLimited      = errors.New("explorer rate limited")
	ErrFetchFailed      = errors.New("transfer fetch failed")
	ErrPriceUnavailable = errors.New("price unavailable")
	ErrDeliveryFailed   = errors.New("alert delivery failed")
	ErrPersistFailed    = errors.New("cursor persist failed")
)
