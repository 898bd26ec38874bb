package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// AliasSource returns alternate names for an ingredient. Implementations may
// call out of process and may fail.
type AliasSource interface {
	GetAliases(ctx context.Context, name string) ([]string, error)
}

// DishParser turns a free-text dish query into a structured DishInfo.
type DishParser interface {
	ExtractDish(ctx context.Context, query string) (*DishInfo, error)
}

// FoodTable provides the materialized reference table. The returned slice is
// shared and must not be modified.
type FoodTable interface {
	Records() []FoodRecord
}
