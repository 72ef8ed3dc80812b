package config

import (
	"context"
	"crypto/tls"
	"net"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient builds the redis client backing the rate limiter and the
// seat map cache.  Both uses are optional accelerations, so a redis that
// cannot be reached at startup yields nil and the callers run without it
// rather than refusing to serve bookings.
//
// Address resolution: REDIS_ADDR ("host:port") wins; otherwise
// REDIS_HOST + REDIS_PORT; otherwise the local default.  REDIS_PASSWORD,
// REDIS_DB, and REDIS_TLS (true/1) are honored when set.
func NewRedisClient() *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		host := envDefault("REDIS_HOST", "localhost")
		port := envDefault("REDIS_PORT", "6379")
		addr = net.JoinHostPort(host, port)
	}

	var tlsConf *tls.Config
	if envBool("REDIS_TLS", false) {
		tlsConf = &tls.Config{InsecureSkipVerify: true}
	}

	client := redis.NewClient(&redis.Options{
		Addr:      addr,
		Password:  os.Getenv("REDIS_PASSWORD"),
		DB:        envInt("REDIS_DB", 0),
		TLSConfig: tlsConf,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil
	}
	return client
}
