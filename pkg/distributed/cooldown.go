package distributed

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCooldown 프로세스 간 공유되는 쿨다운 트래커.
// 마크는 window TTL을 가진 키로 저장되고 남은 시간은 PTTL로 읽는다.
type RedisCooldown struct {
	client    *redis.Client
	keyPrefix string
	window    time.Duration
}

// NewRedisCooldown Redis 쿨다운 트래커 생성
func NewRedisCooldown(client *redis.Client, window time.Duration) *RedisCooldown {
	return &RedisCooldown{
		client:    client,
		keyPrefix: "cooldown:",
		window:    window,
	}
}

// Mark 쿨다운 시작. 기존 마크가 있어도 TTL을 새 window로 다시 건다.
func (c *RedisCooldown) Mark(ctx context.Context, participantID string) error {
	key := c.keyPrefix + participantID
	if err := c.client.Set(ctx, key, time.Now().UnixMilli(), c.window).Err(); err != nil {
		return fmt.Errorf("failed to mark cooldown: %w", err)
	}
	return nil
}

// Remaining 남은 쿨다운. 키가 없거나 만료됐으면 0.
func (c *RedisCooldown) Remaining(ctx context.Context, participantID string) (time.Duration, error) {
	ttl, err := c.client.PTTL(ctx, c.keyPrefix+participantID).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read cooldown: %w", err)
	}
	if ttl < 0 {
		// -2: 키 없음, -1: TTL 없는 키 (여기선 나올 수 없음)
		return 0, nil
	}
	return ttl, nil
}
