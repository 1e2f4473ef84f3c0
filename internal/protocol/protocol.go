package protocol

import (
	"encoding/json"
	"errors"

	"github.com/Sulusulthan/stranger-chat-web/internal/models"
)

// ErrMalformed 파싱 불가능한 프레임 (연결을 끊지 않고 버림)
var ErrMalformed = errors.New("malformed message")

const (
	maxTagLen    = 32
	maxLangLen   = 16
	maxReasonLen = 200
)

// 클라이언트 → 서버 메시지 타입
const (
	TypeFind   = "find"
	TypePoll   = "poll"
	TypeNext   = "next"
	TypeLeave  = "leave"
	TypeReport = "report"
)

// 서버 → 클라이언트 메시지 타입
const (
	TypeQueued   = "queued"
	TypeMatched  = "matched"
	TypeCooldown = "cooldown"
	TypeLeft     = "left"
	TypeError    = "error"
	TypeOK       = "ok"
)

// ClientMessage 클라이언트 메시지의 닫힌 집합 (컨트롤러에서 타입 스위치로 분기)
type ClientMessage interface {
	clientMessage()
}

// Find 매칭 요청
type Find struct {
	Tags  []string `json:"tags,omitempty"`
	Lang  string   `json:"lang,omitempty"`
	Proof string   `json:"proof"`
}

// Poll 메일박스 확인 요청 (클라이언트 주기 폴링)
type Poll struct{}

// Next 현재 상대 건너뛰기
type Next struct{}

// Leave 세션 떠나기
type Leave struct{}

// Report 현재/직전 상대 신고
type Report struct {
	Reason string `json:"reason"`
}

func (Find) clientMessage()   {}
func (Poll) clientMessage()   {}
func (Next) clientMessage()   {}
func (Leave) clientMessage()  {}
func (Report) clientMessage() {}

type envelope struct {
	Type   string   `json:"type"`
	Tags   []string `json:"tags"`
	Lang   string   `json:"lang"`
	Proof  string   `json:"proof"`
	Reason string   `json:"reason"`
}

// ParseClientMessage 수신 프레임을 타입별 메시지로 변환.
// 형식이 잘못되었거나 제한을 넘으면 ErrMalformed.
func ParseClientMessage(data []byte) (ClientMessage, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, ErrMalformed
	}

	switch env.Type {
	case TypeFind:
		if len(env.Tags) > models.MaxTags || len(env.Lang) > maxLangLen {
			return nil, ErrMalformed
		}
		for _, tag := range env.Tags {
			if tag == "" || len(tag) > maxTagLen {
				return nil, ErrMalformed
			}
		}
		return Find{Tags: env.Tags, Lang: env.Lang, Proof: env.Proof}, nil

	case TypePoll:
		return Poll{}, nil

	case TypeNext:
		return Next{}, nil

	case TypeLeave:
		return Leave{}, nil

	case TypeReport:
		if env.Reason == "" || len(env.Reason) > maxReasonLen {
			return nil, ErrMalformed
		}
		return Report{Reason: env.Reason}, nil

	default:
		return nil, ErrMalformed
	}
}

// ServerMessage 서버가 보내는 모든 프레임의 공통 형태. Type 필드가 항상 먼저 온다.
type ServerMessage struct {
	Type       string   `json:"type"`
	Room       string   `json:"room,omitempty"`
	Credential string   `json:"credential,omitempty"`
	Partner    *Partner `json:"partner,omitempty"`
	Seconds    int      `json:"seconds,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// Partner 매칭 상대 정보
type Partner struct {
	ID string `json:"id"`
}

// QueuedMessage 대기열 등록 알림
func QueuedMessage() ServerMessage {
	return ServerMessage{Type: TypeQueued}
}

// MatchedMessage 매칭 완료 알림
func MatchedMessage(room, credential, partnerID string) ServerMessage {
	return ServerMessage{
		Type:       TypeMatched,
		Room:       room,
		Credential: credential,
		Partner:    &Partner{ID: partnerID},
	}
}

// CooldownMessage 쿨다운 잔여 시간 알림 (에러 아님)
func CooldownMessage(seconds int) ServerMessage {
	return ServerMessage{Type: TypeCooldown, Seconds: seconds}
}

// LeftMessage 떠나기/건너뛰기 확인
func LeftMessage() ServerMessage {
	return ServerMessage{Type: TypeLeft}
}

// ErrorMessage 사용자에게 보이는 에러
func ErrorMessage(msg string) ServerMessage {
	return ServerMessage{Type: TypeError, Error: msg}
}

// OKMessage 신고 접수 확인
func OKMessage() ServerMessage {
	return ServerMessage{Type: TypeOK}
}
