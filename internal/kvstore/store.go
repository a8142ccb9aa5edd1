// Package kvstore persists small string values under string keys.
//
// It backs the session's token, login and per-user active fridge. A missing
// key is not an error: Get reports it through the boolean result.
package kvstore

import "context"

type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
