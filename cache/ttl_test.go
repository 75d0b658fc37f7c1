package cache

import (
	"testing"
	"time"
)

func TestTTLPolicyFor(t *testing.T) {
	t.Parallel()

	policy := DefaultTTLPolicy()
	cases := []struct {
		name          string
		query         string
		hasDateFilter bool
		want          time.Duration
	}{
		{"temporal term today", "acme corp today", false, NewsTTL},
		{"temporal term news", "acme corp news", false, NewsTTL},
		{"date filter forces temporal", "acme corp", true, NewsTTL},
		{"temporal beats funding", "latest funding news", false, NewsTTL},
		{"funding term", "Series B funding", false, FundingTTL},
		{"funding term raised", "how much has acme raised", false, FundingTTL},
		{"background term", "acme corp company overview", false, BackgroundTTL},
		{"background term founded", "when was acme founded", false, BackgroundTTL},
		{"funding beats background", "funding history of acme", false, FundingTTL},
		{"no class", "acme corp products", false, DefaultTTL},
		{"case insensitive", "LATEST acme releases", false, NewsTTL},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := policy.For(tc.query, tc.hasDateFilter); got != tc.want {
				t.Fatalf("For(%q, %v) = %s, want %s", tc.query, tc.hasDateFilter, got, tc.want)
			}
		})
	}
}
