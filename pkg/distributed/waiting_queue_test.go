package distributed

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sulusulthan/stranger-chat-web/internal/models"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // 테스트용 DB
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skip("Redis not available:", err)
	}

	// 테스트 전 DB 초기화
	client.FlushDB(ctx)

	return client
}

func waitingEntry(id string, tags ...string) models.WaitingEntry {
	return models.WaitingEntry{
		ParticipantID: id,
		EnqueuedAt:    time.Now().UTC().Truncate(time.Millisecond),
		Tags:          tags,
		Language:      "en",
	}
}

func TestWaitingQueue_AppendPeek(t *testing.T) {
	client := setupRedis(t)
	defer client.Close()

	ctx := context.Background()
	queue := NewWaitingQueue(client, "test")

	require.NoError(t, queue.Append(ctx, waitingEntry("p1", "anime")))
	require.NoError(t, queue.Append(ctx, waitingEntry("p2", "coding")))
	require.NoError(t, queue.Append(ctx, waitingEntry("p3", "music")))

	length, err := queue.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), length)

	// 범위 제한 읽기
	entries, err := queue.PeekRange(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "p1", entries[0].ParticipantID)
	assert.Equal(t, "p2", entries[1].ParticipantID)
}

func TestWaitingQueue_AppendReplacesSameParticipant(t *testing.T) {
	client := setupRedis(t)
	defer client.Close()

	ctx := context.Background()
	queue := NewWaitingQueue(client, "test")

	require.NoError(t, queue.Append(ctx, waitingEntry("p1", "anime")))
	require.NoError(t, queue.Append(ctx, waitingEntry("p2", "coding")))

	// 같은 참가자의 두 번째 find: 엔트리가 중복되지 않고 교체된다.
	require.NoError(t, queue.Append(ctx, waitingEntry("p1", "music")))

	length, err := queue.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), length)

	entries, err := queue.PeekRange(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "p2", entries[0].ParticipantID)
	assert.Equal(t, "p1", entries[1].ParticipantID)
	assert.Equal(t, []string{"music"}, entries[1].Tags)
}

func TestWaitingQueue_RemoveOne(t *testing.T) {
	client := setupRedis(t)
	defer client.Close()

	ctx := context.Background()
	queue := NewWaitingQueue(client, "test")

	entry := waitingEntry("p1", "anime")
	require.NoError(t, queue.Append(ctx, entry))

	// 스냅샷에서 읽은 값으로 제거
	entries, err := queue.PeekRange(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.NoError(t, queue.RemoveOne(ctx, entries[0]))

	length, err := queue.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), length)

	// 두 번째 제거 (경쟁 패배 시뮬레이션): 에러가 아니라 ErrEntryGone
	err = queue.RemoveOne(ctx, entries[0])
	assert.ErrorIs(t, err, ErrEntryGone)
}
