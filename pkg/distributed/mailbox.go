package distributed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Sulusulthan/stranger-chat-web/internal/models"
)

// ErrNoAssignment 메일박스가 비어있음 (배달된 적 없거나, 이미 수거됐거나, 만료됨)
var ErrNoAssignment = errors.New("no match assignment")

// Mailbox 참가자별 단일 슬롯 매칭 결과 저장소.
// 다른 프로세스에서 성사된 매칭이 여기 적재되고, 당사자의 다음 poll이
// 원자적 read-and-clear로 정확히 한 번 수거한다.
type Mailbox struct {
	client    *redis.Client
	keyPrefix string
}

// NewMailbox 메일박스 스토어 생성
func NewMailbox(client *redis.Client) *Mailbox {
	return &Mailbox{
		client:    client,
		keyPrefix: "mailbox:",
	}
}

// Put 매칭 결과 적재. TTL이 지나면 읽히지 않은 채 사라진다.
func (m *Mailbox) Put(ctx context.Context, participantID string, assignment models.MatchAssignment, ttl time.Duration) error {
	data, err := json.Marshal(assignment)
	if err != nil {
		return fmt.Errorf("failed to marshal assignment: %w", err)
	}

	if err := m.client.Set(ctx, m.keyPrefix+participantID, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to put assignment: %w", err)
	}
	return nil
}

// TakeAndClear 적재된 결과를 원자적으로 읽고 지운다 (GETDEL).
// 동시 호출 중 정확히 하나만 값을 받고 나머지는 ErrNoAssignment.
func (m *Mailbox) TakeAndClear(ctx context.Context, participantID string) (models.MatchAssignment, error) {
	raw, err := m.client.GetDel(ctx, m.keyPrefix+participantID).Result()
	if err == redis.Nil {
		return models.MatchAssignment{}, ErrNoAssignment
	}
	if err != nil {
		return models.MatchAssignment{}, fmt.Errorf("failed to take assignment: %w", err)
	}

	var assignment models.MatchAssignment
	if err := json.Unmarshal([]byte(raw), &assignment); err != nil {
		return models.MatchAssignment{}, fmt.Errorf("failed to unmarshal assignment: %w", err)
	}
	return assignment, nil
}
