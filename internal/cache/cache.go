// Package cache opens the optional Redis storage shared by the curated-list
// cache and the rate limiter.
package cache

import (
	"fmt"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/storage/redis/v3"

	"marketmind/internal/trending"
)

var (
	_ fiber.Storage  = (*redis.Storage)(nil)
	_ trending.Cache = (*redis.Storage)(nil)
)

// Open connects to Redis at url. An empty url disables the cache and returns
// nil storage without error.
func Open(url string) (store *redis.Storage, err error) {
	if url == "" {
		return nil, nil
	}

	// redis.New panics when the initial ping fails
	defer func() {
		if r := recover(); r != nil {
			store = nil
			err = fmt.Errorf("connect to redis: %v", r)
		}
	}()

	return redis.New(redis.Config{URL: url}), nil
}
