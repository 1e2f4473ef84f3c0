package geoip

import (
	"context"
	"net"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Lookup 네트워크 주소를 국가 코드로 변환. best-effort이며 실패 시
// 빈 문자열 ("unknown")을 돌려줄 뿐 절대 에러를 내지 않는다.
type Lookup interface {
	Country(ctx context.Context, address string) string
}

// Client 외부 지오로케이션 서비스 HTTP 클라이언트
type Client struct {
	rest    *resty.Client
	baseURL string
	logger  *zap.Logger
}

type lookupResponse struct {
	CountryCode string `json:"countryCode"`
}

// NewClient 지오로케이션 클라이언트 생성
func NewClient(baseURL string, logger *zap.Logger) *Client {
	rest := resty.New().
		SetTimeout(2 * time.Second)

	return &Client{
		rest:    rest,
		baseURL: baseURL,
		logger:  logger,
	}
}

// Country 주소의 국가 코드 조회. host:port 형태도 받는다.
func (c *Client) Country(ctx context.Context, address string) string {
	ip := address
	if host, _, err := net.SplitHostPort(address); err == nil {
		ip = host
	}
	if ip == "" {
		return ""
	}

	var result lookupResponse
	resp, err := c.rest.R().
		SetContext(ctx).
		SetResult(&result).
		Get(c.baseURL + "/" + ip)
	if err != nil {
		c.logger.Debug("geoip lookup failed", zap.String("ip", ip), zap.Error(err))
		return ""
	}
	if resp.IsError() {
		return ""
	}

	return result.CountryCode
}

// Disabled 지오로케이션 미설정 환경용. 항상 unknown.
type Disabled struct{}

// Country 항상 빈 문자열
func (Disabled) Country(_ context.Context, _ string) string {
	return ""
}
