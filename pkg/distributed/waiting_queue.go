package distributed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Sulusulthan/stranger-chat-web/internal/models"
)

// ErrEntryGone 제거하려는 엔트리가 이미 다른 시도에 의해 제거됨 (경쟁 패배)
var ErrEntryGone = errors.New("waiting entry already removed")

// WaitingQueue 프로세스 간 공유되는 매칭 대기열 (Redis List).
// 엔트리는 JSON으로 직렬화되어 저장되고 제거는 값 일치(LREM)로 이루어진다.
type WaitingQueue struct {
	client   *redis.Client
	queueKey string
}

// NewWaitingQueue 대기열 스토어 생성
func NewWaitingQueue(client *redis.Client, name string) *WaitingQueue {
	return &WaitingQueue{
		client:   client,
		queueKey: fmt.Sprintf("matchqueue:%s", name),
	}
}

// appendScript 같은 참가자의 기존 엔트리를 지우고 새 엔트리를 추가.
// 참가자당 살아있는 엔트리는 항상 최대 1개가 되도록 원자적으로 교체한다.
var appendScript = redis.NewScript(`
	local entries = redis.call('LRANGE', KEYS[1], 0, -1)
	for _, raw in ipairs(entries) do
		local ok, decoded = pcall(cjson.decode, raw)
		if ok and decoded.participantId == ARGV[2] then
			redis.call('LREM', KEYS[1], 1, raw)
		end
	end
	redis.call('RPUSH', KEYS[1], ARGV[1])
	return redis.call('LLEN', KEYS[1])
`)

// Append 대기열 끝에 엔트리 추가. 같은 참가자의 이전 엔트리는 교체된다.
func (q *WaitingQueue) Append(ctx context.Context, entry models.WaitingEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal waiting entry: %w", err)
	}

	if err := appendScript.Run(ctx, q.client, []string{q.queueKey}, data, entry.ParticipantID).Err(); err != nil {
		return fmt.Errorf("failed to append waiting entry: %w", err)
	}
	return nil
}

// Len 대기열 길이
func (q *WaitingQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.queueKey).Result()
}

// PeekRange 앞에서부터 최대 n개의 엔트리 스냅샷. 깨진 엔트리는 건너뛴다.
func (q *WaitingQueue) PeekRange(ctx context.Context, n int64) ([]models.WaitingEntry, error) {
	raws, err := q.client.LRange(ctx, q.queueKey, 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read waiting queue: %w", err)
	}

	entries := make([]models.WaitingEntry, 0, len(raws))
	for _, raw := range raws {
		var entry models.WaitingEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// RemoveOne 값이 같은 엔트리를 정확히 하나 제거. 이미 없으면 ErrEntryGone.
// 호출자는 ErrEntryGone을 경쟁 패배로 보고 새 스냅샷으로 재시도해야 한다.
func (q *WaitingQueue) RemoveOne(ctx context.Context, entry models.WaitingEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal waiting entry: %w", err)
	}

	removed, err := q.client.LRem(ctx, q.queueKey, 1, data).Result()
	if err != nil {
		return fmt.Errorf("failed to remove waiting entry: %w", err)
	}
	if removed == 0 {
		return ErrEntryGone
	}
	return nil
}
