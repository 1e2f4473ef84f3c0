package verifier

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Verifier 휴먼 검증 증거를 확인하는 외부 서비스.
// 전송 오류는 실패로 취급한다 (fail closed).
type Verifier interface {
	Verify(ctx context.Context, proof string) bool
}

// Client 외부 검증 서비스 HTTP 클라이언트
type Client struct {
	rest      *resty.Client
	verifyURL string
	logger    *zap.Logger
}

type verifyRequest struct {
	Proof string `json:"proof"`
}

type verifyResponse struct {
	Success bool `json:"success"`
}

// NewClient 검증 클라이언트 생성
func NewClient(verifyURL string, logger *zap.Logger) *Client {
	rest := resty.New().
		SetTimeout(5 * time.Second).
		SetRetryCount(1)

	return &Client{
		rest:      rest,
		verifyURL: verifyURL,
		logger:    logger,
	}
}

// Verify 증거 검증. 응답을 못 받으면 무조건 false.
func (c *Client) Verify(ctx context.Context, proof string) bool {
	if proof == "" {
		return false
	}

	var result verifyResponse
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(verifyRequest{Proof: proof}).
		SetResult(&result).
		Post(c.verifyURL)
	if err != nil {
		c.logger.Warn("verification request failed", zap.Error(err))
		return false
	}
	if resp.IsError() {
		c.logger.Warn("verification request rejected",
			zap.Int("status", resp.StatusCode()))
		return false
	}

	return result.Success
}

// AllowAll 검증 서비스가 설정되지 않은 환경용. 비어있지 않은 증거를
// 전부 통과시킨다. 프로덕션에서는 쓰지 않는다.
type AllowAll struct{}

// Verify 비어있지 않은 증거면 통과
func (AllowAll) Verify(_ context.Context, proof string) bool {
	return proof != ""
}
