package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// OrderingKey establishes a total order over transfers on one chain.
type OrderingKey struct {
	Block uint64 `json:"block_number"`
	Index uint   `json:"log_index"`
}

// Less reports whether k orders strictly before other.
func (k OrderingKey) Less(other OrderingKey) bool {
	if k.Block != other.Block {
		return k.Block < other.Block
	}
	return k.Index < other.Index
}

// Compare returns -1, 0 or 1 ordering k against other.
func (k OrderingKey) Compare(other OrderingKey) int {
	switch {
	case k.Less(other):
		return -1
	case other.Less(k):
		return 1
	default:
		return 0
	}
}

// TransferRecord is the normalized representation of one ERC-20 transfer.
type TransferRecord struct {
	TxHash    common.Hash
	Key       OrderingKey
	From      common.Address
	To        common.Address
	RawAmount *big.Int
	Timestamp uint64
}
