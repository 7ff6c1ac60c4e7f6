package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/rs/zerolog"

	"vibin_match/models"
)

// DefaultRedisChannel is the pub/sub channel changes travel on.
const DefaultRedisChannel = "vibin:changes"

// ConnGetter hands out redis connections; *redis.Pool implements it.
type ConnGetter interface {
	Get() redis.Conn
}

// NewRedisPool returns a pool dialing addr.
func NewRedisPool(addr, password string) *redis.Pool {
	return &redis.Pool{
		MaxIdle:     8,
		IdleTimeout: 4 * time.Minute,
		Dial: func() (redis.Conn, error) {
			return redis.Dial("tcp", addr, redis.DialPassword(password))
		},
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			if time.Since(t) < time.Minute {
				return nil
			}
			_, err := c.Do("PING")
			return err
		},
	}
}

// RedisFeed shares changes between server instances over redis PUBLISH and
// SUBSCRIBE.
type RedisFeed struct {
	pool    ConnGetter
	channel string
	log     zerolog.Logger
}

func NewRedisFeed(pool ConnGetter, channel string, log zerolog.Logger) *RedisFeed {
	if channel == "" {
		channel = DefaultRedisChannel
	}
	return &RedisFeed{pool: pool, channel: channel, log: log.With().Str("component", "redis_feed").Logger()}
}

func (f *RedisFeed) Publish(_ context.Context, change models.Change) error {
	data, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("failed to encode change: %w", err)
	}
	conn := f.pool.Get()
	defer conn.Close()
	if _, err := conn.Do("PUBLISH", f.channel, data); err != nil {
		return fmt.Errorf("failed to publish change: %w", err)
	}
	return nil
}

func (f *RedisFeed) Subscribe(ctx context.Context) (<-chan models.Change, error) {
	conn := f.pool.Get()
	psc := redis.PubSubConn{Conn: conn}
	if err := psc.Subscribe(f.channel); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: subscribe %s: %v", models.ErrSubscriptionFailure, f.channel, err)
	}

	out := make(chan models.Change, localStreamBuffer)
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			psc.Unsubscribe()
			conn.Close()
		case <-done:
		}
	}()

	go func() {
		defer close(out)
		defer close(done)
		defer conn.Close()
		for {
			switch msg := psc.Receive().(type) {
			case redis.Message:
				var change models.Change
				if err := json.Unmarshal(msg.Data, &change); err != nil {
					f.log.Warn().Err(err).Msg("dropping undecodable change")
					continue
				}
				select {
				case out <- change:
				case <-ctx.Done():
					return
				}
			case redis.Subscription:
				if msg.Kind == "unsubscribe" && msg.Count == 0 {
					return
				}
			case error:
				if ctx.Err() == nil {
					f.log.Warn().Err(msg).Msg("⚠️ redis subscription lost")
				}
				return
			}
		}
	}()
	return out, nil
}
