package model

import "fmt"

// Policy selects how transfers for a token are classified.
type Policy uint8

const (
	// PolicyExchangeDeposit alerts on transfers from external addresses into
	// known exchange addresses.
	PolicyExchangeDeposit Policy = iota
	// PolicyWhaleTransfer alerts on any transfer above the USD threshold.
	PolicyWhaleTransfer
)

// ParsePolicy converts a config string into a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "exchange_deposit":
		return PolicyExchangeDeposit, nil
	case "whale_transfer":
		return PolicyWhaleTransfer, nil
	default:
		return 0, fmt.Errorf("unknown monitor policy: %q", s)
	}
}

func (p Policy) String() string {
	switch p {
	case PolicyExchangeDeposit:
		return "exchange_deposit"
	case PolicyWhaleTransfer:
		return "whale_transfer"
	default:
		return fmt.Sprintf("policy(%d)", uint8(p))
	}
}
