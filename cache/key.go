// Package cache provides deterministic cache keys, content-aware TTL
// classification and a get/set/invalidate/sweep service over a persistent
// key-value store.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// KeyPrefix marks engine-owned cache keys in the shared store.
const KeyPrefix = "qc_"

// Key derives a deterministic cache key from a tool name, a query and an open
// parameter map. The query is trimmed, lowercased and whitespace-collapsed;
// parameters are serialised with keys sorted lexicographically, so identical
// semantic inputs produce identical keys regardless of parameter order.
func Key(toolName, query string, params map[string]any) string {
	normQuery := strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(query))), " ")

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		if data, err := json.Marshal(params[k]); err == nil {
			b.Write(data)
		} else {
			fmt.Fprintf(&b, "%v", params[k])
		}
	}

	sum := sha256.Sum256([]byte(toolName + "|" + normQuery + "|" + b.String()))
	return KeyPrefix + hex.EncodeToString(sum[:])
}
