// Package redis owns the connection to the dashboard cache. The client is
// optional: an unset URL disables caching and callers receive nil.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"sitewatch/internal/platform/config"
)

// Client wraps go-redis so callers can health-check the cache alongside the
// other monitored components.
type Client struct {
	*redis.Client
}

// New dials Redis from the config. Returns (nil, nil) when no URL is set so
// the caller can wire a nil cache without a special case.
func New(cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Client{Client: client}, nil
}

// Health reports whether the cache connection answers.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.Client.Close()
}
