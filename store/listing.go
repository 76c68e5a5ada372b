package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/allegro/bigcache/v3"
)

const (
	listingKey = "posts/index"
)

type (
	// ListingCache keeps the result of ListPosts in memory until the
	// next write. A nil *ListingCache always hits the database.
	ListingCache struct {
		cache *bigcache.BigCache
	}
)

func NewListingCache(ttl time.Duration) (*ListingCache, error) {
	cfg := bigcache.DefaultConfig(ttl)
	cfg.Shards = 16
	cfg.Verbose = false
	cache, err := bigcache.NewBigCache(cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to create listing cache, cause %w", err)
	}
	return &ListingCache{cache: cache}, nil
}

func (l *ListingCache) Posts(ctx context.Context, c *Conn) ([]Post, error) {
	if l == nil {
		return c.ListPosts(ctx)
	}
	buf, err := l.cache.Get(listingKey)
	if err == nil {
		var posts []Post
		if err := json.Unmarshal(buf, &posts); err == nil {
			return posts, nil
		}
	} else if !errors.Is(err, bigcache.ErrEntryNotFound) {
		return nil, fmt.Errorf("unable to read listing cache, cause %w", err)
	}
	posts, err := c.ListPosts(ctx)
	if err != nil {
		return nil, err
	}
	buf, err = json.Marshal(posts)
	if err != nil {
		return nil, fmt.Errorf("unable to encode posts for listing cache, cause %w", err)
	}
	// a failed Set only costs a query on the next request
	_ = l.cache.Set(listingKey, buf)
	return posts, nil
}

// Invalidate must be called after every post write.
func (l *ListingCache) Invalidate() error {
	if l == nil {
		return nil
	}
	return l.cache.Reset()
}

func (l *ListingCache) Close() error {
	if l == nil {
		return nil
	}
	return l.cache.Close()
}
