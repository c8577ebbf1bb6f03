package store

import (
	"context"
	"time"

	"laurel/internal/achievement/models"
)

// RegistryKey is the single well-known key the whole achievement sequence
// lives under in the backing store. Kept to nine bytes to match the host
// ledger's short-symbol encoding.
const RegistryKey = "achvmnts"

// Ledger-hosted storage is bounded and charged: entries carry a finite
// time-to-live and are reclaimed when it lapses. The defaults mirror the
// registry's on-ledger renewal window of 1000 ledgers at the network's
// five-second close interval.
const (
	defaultLedgerInterval = 5 * time.Second
	defaultTTLLedgers     = 1000
)

// TTLConfig parameterizes the renew-with-threshold primitive: when the
// remaining lifetime of the registry entry drops below Threshold, it is
// extended to Extension from now.
type TTLConfig struct {
	Threshold time.Duration
	Extension time.Duration
}

// DefaultTTLConfig returns the renewal window the registry ships with.
func DefaultTTLConfig() TTLConfig {
	return TTLConfig{
		Threshold: defaultTTLLedgers * defaultLedgerInterval,
		Extension: defaultTTLLedgers * defaultLedgerInterval,
	}
}

// Store is the registry's view of host storage, reduced to the three
// primitives the ledger environment provides for an instance-storage entry.
// It is injected into the service so tests can substitute the in-memory
// implementation for the Redis-backed one.
//
// The whole record sequence is one value: Load returns it in full (empty if
// never written or reclaimed), Replace rewrites it in full. There is no
// partial update.
type Store interface {
	// Load returns the full achievement sequence in issuance order. An
	// absent or expired entry loads as an empty sequence, never an error.
	Load(ctx context.Context) ([]models.Achievement, error)

	// Replace overwrites the entire stored sequence with records. The
	// entry's remaining lifetime is preserved; renewal is a separate call.
	Replace(ctx context.Context, records []models.Achievement) error

	// ExtendTTL renews the entry's lifetime when it has dropped below the
	// configured threshold. Called after every mutation; never on reads.
	ExtendTTL(ctx context.Context) error
}
