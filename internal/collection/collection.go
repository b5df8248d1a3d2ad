// ABOUTME: Refresh-after-write synchronization for server-owned collections
// ABOUTME: Shared by the file list and the admin user list

package collection

import "context"

// Syncer keeps a server-owned collection consistent after writes. The
// client never patches a collection in place: every view is a full-replace
// snapshot obtained by re-fetching.
type Syncer[T any] struct {
	fetch func(context.Context) ([]T, error)
}

// New creates a Syncer around the collection's fetch call.
func New[T any](fetch func(context.Context) ([]T, error)) *Syncer[T] {
	return &Syncer[T]{fetch: fetch}
}

// Refresh fetches the current server collection.
func (s *Syncer[T]) Refresh(ctx context.Context) ([]T, error) {
	return s.fetch(ctx)
}

// Apply runs one mutating call and, only if it succeeds, exactly one
// refresh. The two steps are strictly sequenced; a failed mutation
// returns its error and leaves the caller's last snapshot untouched.
// There is no locking across separate Apply calls: when two race, the
// final rendered state is whichever refresh resolves last.
func (s *Syncer[T]) Apply(ctx context.Context, mutate func(context.Context) error) ([]T, error) {
	if err := mutate(ctx); err != nil {
		return nil, err
	}
	return s.fetch(ctx)
}
