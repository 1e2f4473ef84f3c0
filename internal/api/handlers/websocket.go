package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Sulusulthan/stranger-chat-web/internal/websocket"
)

// WebSocketHandler 제어 연결 진입점. 계정이 없으므로 연결마다 새 익명
// 참가자 ID를 발급한다.
type WebSocketHandler struct {
	hub     *websocket.Hub
	factory websocket.ControllerFactory
	logger  *zap.Logger
}

// NewWebSocketHandler WebSocketHandler 생성
func NewWebSocketHandler(hub *websocket.Hub, factory websocket.ControllerFactory, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:     hub,
		factory: factory,
		logger:  logger,
	}
}

// HandleWebSocket WebSocket 연결 엔드포인트
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	participantID := uuid.NewString()
	websocket.ServeWs(h.hub, c.Writer, c.Request, participantID, h.factory, h.logger)
}
