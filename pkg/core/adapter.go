package core

import (
	"context"

	"github.com/google/uuid"
)

// Adapter defines the contract a storage driver fulfils for a Collection.
// Adhering to this interface keeps the staging logic independent of the
// underlying storage mechanism (filesystem, SQL, S3, etc).
//
// Flush calls Create, Update and Remove concurrently for distinct keys, so
// implementations must be safe for concurrent use.
type Adapter interface {
	// Find returns the stored data for key. A missing key is (nil, nil).
	Find(ctx context.Context, key string) (Data, error)

	// Create persists data under a new key.
	Create(ctx context.Context, key string, data Data) (Data, error)

	// Update persists data over an existing key. original is the value the
	// key held when it was first loaded, or nil if it was never persisted.
	Update(ctx context.Context, key string, data, original Data) (Data, error)

	// Remove deletes key from storage.
	Remove(ctx context.Context, key string) error
}

// KeyGenerator is implemented by adapters that assign their own keys.
type KeyGenerator interface {
	GenerateKey(ctx context.Context, data Data) (string, error)
}

// KeyGeneratorFunc adapts a function to KeyGenerator.
type KeyGeneratorFunc func(ctx context.Context, data Data) (string, error)

func (f KeyGeneratorFunc) GenerateKey(ctx context.Context, data Data) (string, error) {
	return f(ctx, data)
}

// UUIDKeys generates random (version 4) UUID keys.
var UUIDKeys KeyGeneratorFunc = func(ctx context.Context, data Data) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
