package persistence

import "context"

// Storage keys. All application state lives under these four names; each key
// has exactly one owning component and the values under schedules and proofs
// are JSON documents described in models.go.
const (
	KeyCurrentIdentity = "currentIdentity"
	KeyLastActivityAt  = "lastActivityAt"
	KeySchedules       = "schedules"
	KeyProofs          = "proofs"
)

// KeyValueStore is the storage substrate: a synchronous string-keyed store
// with no expiry semantics of its own. Get returns ErrNotFound for absent
// keys. Delete of an absent key is not an error.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
