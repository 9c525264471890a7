package db

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// NewRedis connects to the rate limit store. tlsConfig, when non-nil,
// replaces whatever TLS settings the URL implied.
func NewRedis(ctx context.Context, redisURL string, tlsConfig *tls.Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if tlsConfig != nil {
		opts.TLSConfig = tlsConfig
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}
