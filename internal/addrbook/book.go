// Package addrbook maps on-chain addresses to exchange labels.
//
// The label database is maintained by an out-of-band enrichment process; the
// monitor only reads it. A Book is an immutable snapshot built once per cycle
// so every classification within a cycle sees the same view.
package addrbook

import "strings"

// Entry is a labeled address. Exchange is non-empty when the label matched one
// of the configured exchange name fragments.
type Entry struct {
	Label    string
	Exchange string
}

// Book is a per-cycle snapshot of labeled addresses, keyed by chain name and
// lowercased address.
type Book struct {
	entries   map[string]map[string]Entry
	exchanges []string
}

// New builds a snapshot from chain -> address -> label data. Addresses are
// lowercased at construction so lookups are case-insensitive. exchanges are
// the operator-configured name fragments, e.g. "Binance".
func New(labels map[string]map[string]string, exchanges []string) *Book {
	entries := make(map[string]map[string]Entry, len(labels))
	for chain, addrs := range labels {
		chainEntries := make(map[string]Entry, len(addrs))
		for addr, label := range addrs {
			chainEntries[strings.ToLower(addr)] = Entry{
				Label:    label,
				Exchange: matchExchange(label, exchanges),
			}
		}
		entries[chain] = chainEntries
	}
	return &Book{entries: entries, exchanges: exchanges}
}

// Lookup returns the entry for an address on a chain. A miss is not an error,
// it simply means the address is external/unknown.
func (b *Book) Lookup(chain, address string) (Entry, bool) {
	if b == nil {
		return Entry{}, false
	}
	entry, ok := b.entries[chain][strings.ToLower(address)]
	return entry, ok
}

// ExchangeOf returns the exchange name for an address, if the address carries
// a label matching a configured exchange fragment.
func (b *Book) ExchangeOf(chain, address string) (string, bool) {
	entry, ok := b.Lookup(chain, address)
	if !ok || entry.Exchange == "" {
		return "", false
	}
	return entry.Exchange, true
}

// IsExchangeAddress reports whether the address is controlled by a known
// exchange on the given chain.
func (b *Book) IsExchangeAddress(chain, address string) bool {
	_, ok := b.ExchangeOf(chain, address)
	return ok
}

func matchExchange(label string, exchanges []string) string {
	lower := strings.ToLower(label)
	for _, name := range exchanges {
		if name == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(name)) {
			return name
		}
	}
	return ""
}
