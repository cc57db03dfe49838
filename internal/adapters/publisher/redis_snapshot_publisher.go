package publisher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/atomic"

	"fleet-tracking-service/internal/domain"
	"fleet-tracking-service/internal/platform/obs"
)

// EncodeFunc renders a snapshot as the payload stored and broadcast.
type EncodeFunc func(*domain.LiveSnapshot) ([]byte, error)

// RedisSnapshotPublisher stores the latest snapshot under "<prefix>:latest"
// and broadcasts it on the "<prefix>:ticks" channel.
type RedisSnapshotPublisher struct {
	Client *redis.Client
	Prefix string
	TTL    time.Duration
	Encode EncodeFunc

	published atomic.Int64
	failed    atomic.Int64
}

func NewRedisSnapshotPublisher(client *redis.Client, prefix string, encode EncodeFunc) *RedisSnapshotPublisher {
	if prefix == "" {
		prefix = "fleet"
	}
	return &RedisSnapshotPublisher{
		Client: client,
		Prefix: prefix,
		TTL:    time.Minute,
		Encode: encode,
	}
}

// Connect parses a redis:// URL and verifies the server answers.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("connect redis: parse url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis: ping: %w", err)
	}
	return client, nil
}

func (p *RedisSnapshotPublisher) LatestKey() string { return p.Prefix + ":latest" }
func (p *RedisSnapshotPublisher) Channel() string   { return p.Prefix + ":ticks" }

func (p *RedisSnapshotPublisher) Publish(ctx context.Context, snap *domain.LiveSnapshot) (err error) {
	defer obs.Time(ctx, "publisher.redis.publish")(&err)
	defer func() {
		if err != nil {
			p.failed.Inc()
			return
		}
		p.published.Inc()
	}()

	if p.Client == nil || p.Encode == nil {
		return errors.New("redis publisher: client or encoder is nil")
	}
	if snap == nil {
		return nil
	}

	payload, err := p.Encode(snap)
	if err != nil {
		return fmt.Errorf("redis publish: encode snapshot: %w", err)
	}

	_, err = p.Client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, p.LatestKey(), payload, p.TTL)
		pipe.Publish(ctx, p.Channel(), payload)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis publish tick=%d: %w", snap.Tick, err)
	}
	return nil
}

// Stats reports how many publishes succeeded and failed.
func (p *RedisSnapshotPublisher) Stats() (published, failed int64) {
	return p.published.Load(), p.failed.Load()
}
