package model

import "testing"

func TestOrderingKeyLess(t *testing.T) {
	cases := []struct {
		a, b OrderingKey
		want bool
	}{
		{OrderingKey{Block: 100, Index: 0}, OrderingKey{Block: 101, Index: 0}, true},
		{OrderingKey{Block: 100, Index: 3}, OrderingKey{Block: 100, Index: 7}, true},
		{OrderingKey{Block: 100, Index: 7}, OrderingKey{Block: 100, Index: 3}, false},
		{OrderingKey{Block: 101, Index: 0}, OrderingKey{Block: 100, Index: 99}, false},
		{OrderingKey{Block: 100, Index: 3}, OrderingKey{Block: 100, Index: 3}, false},
	}

	for _, tc := range cases {
		if got := tc.a.Less(tc.b); got != tc.want {
			t.Fatalf("Less(%+v, %+v) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestOrderingKeyCompare(t *testing.T) {
	a := OrderingKey{Block: 5, Index: 1}
	b := OrderingKey{Block: 5, Index: 2}

	if a.Compare(b) != -1 {
		t.Fatalf("expected a < b")
	}
	if b.Compare(a) != 1 {
		t.Fatalf("expected b > a")
	}
	if a.Compare(a) != 0 {
		t.Fatalf("expected a == a")
	}
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("exchange_deposit")
	if err != nil || p != PolicyExchangeDeposit {
		t.Fatalf("unexpected: %v %v", p, err)
	}
	p, err = ParsePolicy("whale_transfer")
	if err != nil || p != PolicyWhaleTransfer {
		t.Fatalf("unexpected: %v %v", p, err)
	}
	if _, err := ParsePolicy("everything"); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}
