package cache

import "context"

// Loader produces the value for a key on cache miss. It may be expensive
// (deserialize a model artifact, hit a backing service); the cache invokes it
// outside its lock and imposes no timeout of its own; cancellation, if any,
// comes from the caller's ctx.
type Loader[K comparable, V any] func(ctx context.Context, key K) (V, error)

type getOptions struct {
	forceStore bool
}

// GetOption customizes a single Get call.
type GetOption func(*getOptions)

// ForceStore retains the loaded value even on the key's first observed
// access, bypassing the store-on-second-access heuristic. Used for warming
// known-hot keys at startup.
func ForceStore() GetOption {
	return func(o *getOptions) {
		o.forceStore = true
	}
}
