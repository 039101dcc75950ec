// Package migrations holds the index definitions the storefront collections
// rely on. Each migration is idempotent: creating an index that already
// exists with the same options is a no-op in MongoDB, so Run can execute on
// every start.
package migrations

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"
)

// Func applies one migration against db.
type Func func(ctx context.Context, db *mongo.Database) error

type entry struct {
	name string
	fn   Func
}

var (
	mu       sync.Mutex
	registry []entry
)

// Register adds a migration. Call it from init() in this package, in the
// order the migrations must run.
func Register(name string, fn Func) {
	mu.Lock()
	defer mu.Unlock()
	registry = append(registry, entry{name: name, fn: fn})
}

// Names lists the registered migrations in run order.
func Names() []string {
	mu.Lock()
	defer mu.Unlock()

	out := make([]string, len(registry))
	for i, e := range registry {
		out[i] = e.name
	}
	return out
}

// Run applies every registered migration, stopping at the first failure.
func Run(ctx context.Context, db *mongo.Database) error {
	mu.Lock()
	current := append([]entry(nil), registry...)
	mu.Unlock()

	for _, e := range current {
		if err := e.fn(ctx, db); err != nil {
			return fmt.Errorf("migration %q: %w", e.name, err)
		}
	}
	return nil
}
