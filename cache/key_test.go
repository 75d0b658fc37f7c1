package cache

import (
	"strings"
	"testing"
)

func TestKeyNormalization(t *testing.T) {
	t.Parallel()

	base := Key("fusion_search", "hello world", map[string]any{"a": 2, "b": 1})

	cases := []struct {
		name   string
		query  string
		params map[string]any
		same   bool
	}{
		{"identical inputs", "hello world", map[string]any{"a": 2, "b": 1}, true},
		{"parameter order ignored", "hello world", map[string]any{"b": 1, "a": 2}, true},
		{"case insensitive query", "Hello World", map[string]any{"a": 2, "b": 1}, true},
		{"whitespace collapsed", "  Hello   World  ", map[string]any{"a": 2, "b": 1}, true},
		{"different query", "hello there", map[string]any{"a": 2, "b": 1}, false},
		{"different param value", "hello world", map[string]any{"a": 2, "b": 2}, false},
		{"extra param", "hello world", map[string]any{"a": 2, "b": 1, "c": 0}, false},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Key("fusion_search", tc.query, tc.params)
			if (got == base) != tc.same {
				t.Fatalf("Key(%q, %v) = %s, base = %s, want same=%v", tc.query, tc.params, got, base, tc.same)
			}
		})
	}
}

func TestKeyToolNameScopes(t *testing.T) {
	t.Parallel()
	a := Key("fusion_search", "query", nil)
	b := Key("other_tool", "query", nil)
	if a == b {
		t.Fatalf("keys for different tools collided: %s", a)
	}
}

func TestKeyShape(t *testing.T) {
	t.Parallel()
	key := Key("fusion_search", "query", map[string]any{"maxResults": 10})
	if !strings.HasPrefix(key, KeyPrefix) {
		t.Fatalf("key %s missing prefix %s", key, KeyPrefix)
	}
	if len(key) != len(KeyPrefix)+64 {
		t.Fatalf("key %s has unexpected length %d", key, len(key))
	}
}
