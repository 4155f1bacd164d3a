package uuid

import (
	"context"
	"fmt"
	"sync/atomic"

	google_uuid "github.com/google/uuid"
)

type key int

const generatorKey key = iota

// Generator hands out transaction identifiers. Implementations must be
// safe for concurrent use since transactions start on many goroutines.
type Generator interface {
	NewID() string
}

// MustUUID returns a random (v4) UUID string
func MustUUID() string {
	return google_uuid.New().String()
}

// RandomGenerator produces random UUIDs
type RandomGenerator struct{}

// NewID implements Generator.NewID
func (RandomGenerator) NewID() string {
	return MustUUID()
}

// SequenceGenerator produces "<prefix>-<n>" identifiers with n counting
// up from 1. It is deterministic, which makes it handy in tests and
// replay tooling.
type SequenceGenerator struct {
	Prefix string
	n      uint64
}

// NewID implements Generator.NewID
func (gen *SequenceGenerator) NewID() string {
	return fmt.Sprintf("%s-%d", gen.Prefix, atomic.AddUint64(&gen.n, 1))
}

// WithGenerator attaches an identifier generator to the context
func WithGenerator(ctx context.Context, gen Generator) context.Context {
	return context.WithValue(ctx, generatorKey, gen)
}

// GeneratorFromContext returns the generator attached to ctx, or
// defaultGenerator if there is none.
func GeneratorFromContext(ctx context.Context, defaultGenerator Generator) Generator {
	if gen, ok := ctx.Value(generatorKey).(Generator); ok && gen != nil {
		return gen
	}

	return defaultGenerator
}
