package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// HealthHandler 상태 확인 핸들러
type HealthHandler struct {
	redis *redis.Client
}

// NewHealthHandler HealthHandler 생성
func NewHealthHandler(redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{redis: redisClient}
}

// HealthCheck 서버와 공유 스토어 상태 확인
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	redisStatus := "ok"
	if err := h.redis.Ping(c.Request.Context()).Err(); err != nil {
		redisStatus = "unavailable"
	}

	status := http.StatusOK
	if redisStatus != "ok" {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status":  redisStatus,
		"service": "stranger-chat-web",
	})
}
