package store

import "github.com/rohmanhakim/newsfeed/pkg/failure"

/*
Responsibilities
- Persist string values under string keys
- Survive process restarts (file and sqlite backends)
- Report write failures, never read failures

Guarantees
- What you wrote is what you read back until overwritten
- Read never fails loudly: unavailable storage reads as absent
- Write failures are returned as a classified *StoreError
*/

// Store is the port every persistence backend implements.
// Values are opaque strings; callers own serialization.
type Store interface {
	// Read returns the last value written under key.
	// It returns ("", false) when the key was never written or the storage is unavailable.
	Read(key string) (string, bool)

	// Write persists value under key, overwriting any previous value.
	Write(key string, value string) failure.ClassifiedError
}

// ClosableStore is a Store that holds resources released by Close.
type ClosableStore interface {
	Store
	Close() error
}
