package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Sulusulthan/stranger-chat-web/internal/matchmaking"
	"github.com/Sulusulthan/stranger-chat-web/internal/models"
	"github.com/Sulusulthan/stranger-chat-web/pkg/distributed"
	"github.com/Sulusulthan/stranger-chat-web/pkg/geoip"
	"github.com/Sulusulthan/stranger-chat-web/pkg/token"
	"github.com/Sulusulthan/stranger-chat-web/pkg/verifier"
)

// WaitingQueueStore 매칭 대기열. 모든 연산은 서로에 대해 원자적이지만
// "읽고-선택하고-제거"를 묶는 단일 프리미티브는 없다. 선택한 엔트리가
// 이미 제거됐으면 RemoveOne이 ErrEntryGone을 돌려준다.
type WaitingQueueStore interface {
	Append(ctx context.Context, entry models.WaitingEntry) error
	PeekRange(ctx context.Context, n int64) ([]models.WaitingEntry, error)
	RemoveOne(ctx context.Context, entry models.WaitingEntry) error
}

// MailboxStore 매칭 결과 전달용 참가자별 단일 슬롯 저장소
type MailboxStore interface {
	Put(ctx context.Context, participantID string, assignment models.MatchAssignment, ttl time.Duration) error
	TakeAndClear(ctx context.Context, participantID string) (models.MatchAssignment, error)
}

// MatchResult 요청자 쪽에 바로 돌려주는 매칭 결과
type MatchResult struct {
	Room       string
	Credential string
	PartnerID  string
}

// CoordinatorConfig 매칭 시도의 설정값
type CoordinatorConfig struct {
	CountryBias float64       // 같은 국가 매칭 선호 확률
	ScanLimit   int64         // 한 시도에서 읽는 대기열 길이 상한
	MaxRetries  int           // 경쟁 패배 시 재시도 횟수
	MailboxTTL  time.Duration // 상대방 메일박스 엔트리 수명
}

// MatchmakingCoordinator 매칭 시도 한 번을 끝까지 책임진다:
// 검증 → 쿨다운 → 국가 조회 → 스냅샷 → 선택 → 제거 → 크리덴셜 발급
// → 상대방 메일박스 적재. 제거가 크리덴셜 발급보다 항상 먼저다.
type MatchmakingCoordinator struct {
	queue    WaitingQueueStore
	mailbox  MailboxStore
	cooldown matchmaking.CooldownTracker
	verify   verifier.Verifier
	geo      geoip.Lookup
	issuer   token.Issuer
	cfg      CoordinatorConfig
	logger   *zap.Logger

	// [0,1) 난수 소스. 전역 rand는 고루틴 안전, 테스트에서 교체한다.
	randFloat func() float64
}

// NewMatchmakingCoordinator Coordinator 생성
func NewMatchmakingCoordinator(
	queue WaitingQueueStore,
	mailbox MailboxStore,
	cooldown matchmaking.CooldownTracker,
	verify verifier.Verifier,
	geo geoip.Lookup,
	issuer token.Issuer,
	cfg CoordinatorConfig,
	logger *zap.Logger,
) *MatchmakingCoordinator {
	if cfg.CountryBias <= 0 {
		cfg.CountryBias = matchmaking.DefaultCountryBias
	}
	if cfg.ScanLimit <= 0 {
		cfg.ScanLimit = matchmaking.DefaultScanLimit
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.MailboxTTL <= 0 {
		cfg.MailboxTTL = 60 * time.Second
	}

	return &MatchmakingCoordinator{
		queue:     queue,
		mailbox:   mailbox,
		cooldown:  cooldown,
		verify:    verify,
		geo:       geo,
		issuer:    issuer,
		cfg:       cfg,
		logger:    logger,
		randFloat: rand.Float64,
	}
}

// Attempt 매칭 시도. 즉시 성사되면 MatchResult를 돌려주고 상대방의
// 메일박스에 배정을 적재한다. 상대가 없으면 요청자를 대기열에 넣고
// nil을 돌려준다 (queued).
func (c *MatchmakingCoordinator) Attempt(
	ctx context.Context,
	requesterID string,
	prefs matchmaking.Preferences,
	remoteAddr string,
	proof string,
) (*MatchResult, error) {
	if !c.verify.Verify(ctx, proof) {
		return nil, ErrVerificationFailed
	}

	remaining, err := c.cooldown.Remaining(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if remaining > 0 {
		return nil, &CooldownActiveError{Remaining: remaining}
	}

	if prefs.Country == "" {
		prefs.Country = c.geo.Country(ctx, remoteAddr)
	}

	for attempt := 0; attempt < c.cfg.MaxRetries; attempt++ {
		snapshot, err := c.queue.PeekRange(ctx, c.cfg.ScanLimit)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}

		pool := snapshot[:0:0]
		for _, entry := range snapshot {
			if entry.ParticipantID != requesterID {
				pool = append(pool, entry)
			}
		}

		idx := matchmaking.Select(pool, prefs, c.cfg.CountryBias, c.randFloat)
		if idx < 0 {
			break
		}
		candidate := pool[idx]

		// 제거가 먼저다. 같은 엔트리를 두 요청자에게 주지 않으려면
		// 크리덴셜 발급 전에 대기열에서 빠져야 한다.
		if err := c.queue.RemoveOne(ctx, candidate); err != nil {
			if errors.Is(err, distributed.ErrEntryGone) {
				c.logger.Debug("candidate already taken, retrying",
					zap.String("requester", requesterID),
					zap.String("candidate", candidate.ParticipantID),
					zap.Int("attempt", attempt))
				continue
			}
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}

		return c.completeMatch(ctx, requesterID, candidate)
	}

	// 상대가 없거나 재시도 소진: 요청자를 대기열에 넣는다.
	entry := models.WaitingEntry{
		ParticipantID: requesterID,
		EnqueuedAt:    time.Now().UTC(),
		Tags:          prefs.Tags,
		Language:      prefs.Language,
		Country:       prefs.Country,
	}
	if err := c.queue.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil, nil
}

// completeMatch 대기열에서 제거된 상대와 방을 만들고 양쪽 크리덴셜을
// 발급한다. 실패하면 상대 엔트리를 best-effort로 복원한다.
func (c *MatchmakingCoordinator) completeMatch(
	ctx context.Context,
	requesterID string,
	candidate models.WaitingEntry,
) (*MatchResult, error) {
	room := "room-" + uuid.NewString()
	grants := token.Grants{Publish: true, Subscribe: true}

	requesterCred, err := c.issuer.Issue(requesterID, room, grants)
	if err != nil {
		c.requeue(ctx, candidate)
		return nil, fmt.Errorf("failed to issue credential: %w", err)
	}
	candidateCred, err := c.issuer.Issue(candidate.ParticipantID, room, grants)
	if err != nil {
		c.requeue(ctx, candidate)
		return nil, fmt.Errorf("failed to issue credential: %w", err)
	}

	assignment := models.MatchAssignment{
		RoomID:     room,
		Credential: candidateCred,
		PartnerID:  requesterID,
	}
	if err := c.mailbox.Put(ctx, candidate.ParticipantID, assignment, c.cfg.MailboxTTL); err != nil {
		c.requeue(ctx, candidate)
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	c.logger.Info("match completed",
		zap.String("room", room),
		zap.String("requester", requesterID),
		zap.String("partner", candidate.ParticipantID))

	return &MatchResult{
		Room:       room,
		Credential: requesterCred,
		PartnerID:  candidate.ParticipantID,
	}, nil
}

func (c *MatchmakingCoordinator) requeue(ctx context.Context, entry models.WaitingEntry) {
	if err := c.queue.Append(ctx, entry); err != nil {
		c.logger.Error("failed to restore waiting entry",
			zap.String("participant", entry.ParticipantID),
			zap.Error(err))
	}
}

// MarkCooldown next/leave 처리: 매칭된 적이 없어도 항상 마크한다.
func (c *MatchmakingCoordinator) MarkCooldown(ctx context.Context, participantID string) error {
	return c.cooldown.Mark(ctx, participantID)
}

// CooldownRemaining 남은 쿨다운 조회
func (c *MatchmakingCoordinator) CooldownRemaining(ctx context.Context, participantID string) (time.Duration, error) {
	return c.cooldown.Remaining(ctx, participantID)
}

// TakeAssignment 자기 메일박스 확인 (poll 처리)
func (c *MatchmakingCoordinator) TakeAssignment(ctx context.Context, participantID string) (*models.MatchAssignment, error) {
	assignment, err := c.mailbox.TakeAndClear(ctx, participantID)
	if err != nil {
		if errors.Is(err, distributed.ErrNoAssignment) {
			return nil, nil
		}
		return nil, err
	}
	return &assignment, nil
}
