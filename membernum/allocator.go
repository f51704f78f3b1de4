package membernum

import (
	"context"
	"errors"
	"fmt"
)

// maxAttempts bounds the allocation loop. With a 36^8 keyspace a collision
// streak this long means something is wrong with the availability check,
// not the generator.
const maxAttempts = 25

// ErrExhausted is returned when every candidate collided.
var ErrExhausted = errors.New("member number allocation exhausted")

// AvailabilityFunc reports whether a candidate is free to use. An error
// means the check itself failed and aborts the allocation immediately.
type AvailabilityFunc func(ctx context.Context, candidate string) (bool, error)

// Allocator hands out member numbers that were unused at allocation time.
type Allocator struct {
	available AvailabilityFunc
	generate  func() string
}

func NewAllocator(available AvailabilityFunc) *Allocator {
	return &Allocator{available: available, generate: Generate}
}

// Allocate generates candidates until the availability check accepts one,
// giving up after maxAttempts collisions with ErrExhausted.
func (a *Allocator) Allocate(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		candidate := a.generate()
		free, err := a.available(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("availability check failed: %w", err)
		}
		if free {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w after %d attempts", ErrExhausted, maxAttempts)
}
