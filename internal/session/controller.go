package session

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Sulusulthan/stranger-chat-web/internal/matchmaking"
	"github.com/Sulusulthan/stranger-chat-web/internal/models"
	"github.com/Sulusulthan/stranger-chat-web/internal/protocol"
	"github.com/Sulusulthan/stranger-chat-web/internal/service"
)

// Sender 아웃바운드 프레임 전달자 (websocket 클라이언트의 send 채널로 연결)
type Sender func(msg protocol.ServerMessage)

// Coordinator 컨트롤러가 쓰는 매칭 오케스트레이터의 계약
type Coordinator interface {
	Attempt(ctx context.Context, requesterID string, prefs matchmaking.Preferences, remoteAddr, proof string) (*service.MatchResult, error)
	MarkCooldown(ctx context.Context, participantID string) error
	TakeAssignment(ctx context.Context, participantID string) (*models.MatchAssignment, error)
}

// ReportSink 모더레이션 로그 (fire-and-forget)
type ReportSink interface {
	Append(ctx context.Context, event models.ReportEvent) error
}

// Controller 연결 하나의 상태 머신. 연결당 하나씩 만들어지고 해당 연결의
// 읽기 고루틴에서만 Handle이 호출되므로 내부 상태에 락이 필요 없다.
// 프로세스 간 조율은 전부 공유 스토어의 원자 연산으로 이루어진다.
type Controller struct {
	id         string
	remoteAddr string
	state      models.SessionState

	lastPartner string
	lastRoom    string

	coord          Coordinator
	reports        ReportSink
	send           Sender
	cooldownWindow time.Duration
	logger         *zap.Logger
}

// NewController 세션 컨트롤러 생성
func NewController(
	id, remoteAddr string,
	coord Coordinator,
	reports ReportSink,
	send Sender,
	cooldownWindow time.Duration,
	logger *zap.Logger,
) *Controller {
	return &Controller{
		id:             id,
		remoteAddr:     remoteAddr,
		state:          models.StateIdle,
		coord:          coord,
		reports:        reports,
		send:           send,
		cooldownWindow: cooldownWindow,
		logger:         logger.With(zap.String("participant", id)),
	}
}

// ID 참가자 식별자
func (c *Controller) ID() string {
	return c.id
}

// State 현재 상태 (테스트용)
func (c *Controller) State() models.SessionState {
	return c.state
}

// Handle 수신 프레임 하나 처리. 파싱 불가능한 프레임은 연결을 유지한 채
// 조용히 버린다. 협력 서비스에서 패닉이 올라와도 연결은 계속 통신 가능해야
// 하므로 여기서 잡아 error 프레임으로 바꾼다.
func (c *Controller) Handle(ctx context.Context, raw []byte) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("recovered from panic in message handler",
				zap.Any("panic", r))
			c.send(protocol.ErrorMessage("internal error"))
		}
	}()

	msg, err := protocol.ParseClientMessage(raw)
	if err != nil {
		c.logger.Debug("dropped malformed frame", zap.Int("bytes", len(raw)))
		return
	}

	switch m := msg.(type) {
	case protocol.Find:
		c.handleFind(ctx, m)
	case protocol.Poll:
		c.handlePoll(ctx)
	case protocol.Next:
		c.handleSkip(ctx)
	case protocol.Leave:
		c.handleSkip(ctx)
	case protocol.Report:
		c.handleReport(ctx, m)
	}
}

func (c *Controller) handleFind(ctx context.Context, m protocol.Find) {
	prefs := matchmaking.Preferences{
		Tags:     m.Tags,
		Language: m.Lang,
	}

	result, err := c.coord.Attempt(ctx, c.id, prefs, c.remoteAddr, m.Proof)
	if err != nil {
		var cooldownErr *service.CooldownActiveError
		switch {
		case errors.As(err, &cooldownErr):
			c.send(protocol.CooldownMessage(cooldownErr.Seconds()))
		case errors.Is(err, service.ErrVerificationFailed):
			c.send(protocol.ErrorMessage("verification failed"))
		default:
			c.logger.Error("match attempt failed", zap.Error(err))
			c.send(protocol.ErrorMessage("matchmaking unavailable"))
		}
		return
	}

	if result == nil {
		c.state = models.StateQueued
		c.send(protocol.QueuedMessage())
		return
	}

	c.state = models.StateMatched
	c.lastPartner = result.PartnerID
	c.lastRoom = result.Room
	c.send(protocol.MatchedMessage(result.Room, result.Credential, result.PartnerID))
}

func (c *Controller) handlePoll(ctx context.Context) {
	if c.state != models.StateQueued {
		return
	}

	assignment, err := c.coord.TakeAssignment(ctx, c.id)
	if err != nil {
		c.logger.Error("mailbox check failed", zap.Error(err))
		c.send(protocol.ErrorMessage("matchmaking unavailable"))
		return
	}
	if assignment == nil {
		return
	}

	c.state = models.StateMatched
	c.lastPartner = assignment.PartnerID
	c.lastRoom = assignment.RoomID
	c.send(protocol.MatchedMessage(assignment.RoomID, assignment.Credential, assignment.PartnerID))
}

// handleSkip next와 leave는 동일하게 처리된다: 매칭 여부와 무관하게
// 쿨다운을 마크하고 left를 보낸다.
func (c *Controller) handleSkip(ctx context.Context) {
	if err := c.coord.MarkCooldown(ctx, c.id); err != nil {
		c.logger.Error("failed to mark cooldown", zap.Error(err))
	}

	if c.cooldownWindow > 0 {
		c.state = models.StateCoolingDown
	} else {
		c.state = models.StateIdle
	}
	c.send(protocol.LeftMessage())
}

func (c *Controller) handleReport(ctx context.Context, m protocol.Report) {
	event := models.ReportEvent{
		ReporterID: c.id,
		PartnerID:  c.lastPartner,
		RoomID:     c.lastRoom,
		Reason:     m.Reason,
		CreatedAt:  time.Now().UTC(),
	}

	// 신고 기록 실패는 신고자에게 보이지 않는다.
	go func() {
		appendCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.reports.Append(appendCtx, event); err != nil {
			c.logger.Error("failed to append report", zap.Error(err))
		}
	}()

	c.send(protocol.OKMessage())
}
