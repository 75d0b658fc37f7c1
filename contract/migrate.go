package contract

import (
	"encoding/json"
	"fmt"
	"sync"
)

// MigrationFunc rewrites an envelope document from one version to the next.
// It receives and returns the full envelope JSON; the registry re-checks the
// version stamp after each step.
type MigrationFunc func(doc json.RawMessage) (json.RawMessage, error)

var (
	migrationsMu sync.RWMutex
	// migrations is keyed by the version a function migrates FROM. There is
	// deliberately no entry until a v2 exists: compatibility is opt-in, one
	// explicit function per schema change.
	migrations = map[int]MigrationFunc{}
)

// RegisterMigration installs the forward migration for envelopes at version
// from. Registering the same step twice panics: two code paths disagreeing on
// a migration is a programming error.
func RegisterMigration(from int, fn MigrationFunc) {
	migrationsMu.Lock()
	defer migrationsMu.Unlock()
	if _, dup := migrations[from]; dup {
		panic(fmt.Sprintf("contract: migration from version %d registered twice", from))
	}
	migrations[from] = fn
}

// Upgrade walks an old envelope forward through registered migrations until it
// reaches the current version, then validates it. Unknown and future versions
// are rejected; there is no implicit upgrade path.
func Upgrade(raw []byte) ([]byte, error) {
	for {
		var head struct {
			Kind    string `json:"kind"`
			Version *int   `json:"version"`
		}
		if err := json.Unmarshal(raw, &head); err != nil {
			return nil, invalid("payload is not a JSON object: %v", err)
		}
		if head.Kind != Kind || head.Version == nil {
			return nil, invalid("missing or unknown discriminator %q (want kind=%q)", head.Kind, Kind)
		}
		version := *head.Version
		if version == CurrentVersion {
			if err := Validate(raw); err != nil {
				return nil, err
			}
			return raw, nil
		}
		if version > CurrentVersion {
			return nil, invalid("Unsupported version %d (supported: %d)", version, CurrentVersion)
		}

		migrationsMu.RLock()
		fn, ok := migrations[version]
		migrationsMu.RUnlock()
		if !ok {
			return nil, invalid("no migration registered from version %d", version)
		}
		next, err := fn(raw)
		if err != nil {
			return nil, fmt.Errorf("migrate from version %d: %w", version, err)
		}
		raw = next
	}
}
