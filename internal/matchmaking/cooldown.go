package matchmaking

import (
	"context"
	"sync"
	"time"
)

// CooldownTracker next/leave 직후의 재요청을 제한하는 참가자별 타임스탬프.
// Redis 구현(pkg/distributed)은 프로세스 간 공유, 메모리 구현은 프로세스
// 로컬 전용이다. 제어 연결이 한 프로세스에 고정되므로 로컬 구현도 설정으로
// 선택 가능하다 (다중 프로세스에서는 best-effort가 된다).
type CooldownTracker interface {
	// Mark 쿨다운 시작 시각 기록
	Mark(ctx context.Context, participantID string) error
	// Remaining 남은 쿨다운. 없으면 0.
	Remaining(ctx context.Context, participantID string) (time.Duration, error)
}

// MemoryCooldown 프로세스 로컬 쿨다운 트래커
type MemoryCooldown struct {
	window time.Duration
	now    func() time.Time
	mu     sync.Mutex
	marks  map[string]time.Time
}

// NewMemoryCooldown 메모리 쿨다운 트래커 생성
func NewMemoryCooldown(window time.Duration) *MemoryCooldown {
	return &MemoryCooldown{
		window: window,
		now:    time.Now,
		marks:  make(map[string]time.Time),
	}
}

// Mark 쿨다운 시작. 타임스탬프는 참가자별로 단조 증가만 허용한다.
func (c *MemoryCooldown) Mark(_ context.Context, participantID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if prev, ok := c.marks[participantID]; ok && prev.After(now) {
		return nil
	}
	c.marks[participantID] = now
	return nil
}

// Remaining 남은 쿨다운 시간. 만료된 마크는 제거한다.
func (c *MemoryCooldown) Remaining(_ context.Context, participantID string) (time.Duration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	mark, ok := c.marks[participantID]
	if !ok {
		return 0, nil
	}

	elapsed := c.now().Sub(mark)
	if elapsed >= c.window {
		delete(c.marks, participantID)
		return 0, nil
	}
	return c.window - elapsed, nil
}
