package cache

import "context"

// FetchFn is the function signature Service expects when fetching from the
// source of truth on a cache miss.
type FetchFn[T any] func(ctx context.Context) (T, error)

// Service exposes the read-through caching operations the week cache layers
// in front of its summary queries. It is exported so alternate backends can
// be plugged in; the default implementation is the sturdyc adapter.
type Service interface {
	GetOrFetch(ctx context.Context, key string, fetchFn func(ctx context.Context) (any, error)) (any, error)
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// GetOrFetch is a type-safe wrapper around Service.GetOrFetch.
func GetOrFetch[T any](ctx context.Context, service Service, key string, fetchFn FetchFn[T]) (T, error) {
	result, err := service.GetOrFetch(ctx, key, func(ctx context.Context) (any, error) {
		return fetchFn(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result.(T), nil
}
