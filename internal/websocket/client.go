package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Sulusulthan/stranger-chat-web/internal/protocol"
	"github.com/Sulusulthan/stranger-chat-web/internal/session"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: 프로덕션에서는 특정 origin만 허용
		return true
	},
}

// Client 제어 연결 하나. 읽기 펌프가 프레임을 컨트롤러에 넘기고 쓰기
// 펌프가 send 채널의 프레임을 내보낸다.
type Client struct {
	hub           *Hub
	conn          *websocket.Conn
	send          chan protocol.ServerMessage
	participantID string
	controller    *session.Controller
	logger        *zap.Logger
}

// ControllerFactory 연결마다 세션 컨트롤러를 만든다. send는 이 연결의
// 아웃바운드 큐에 프레임을 넣는다.
type ControllerFactory func(participantID, remoteAddr string, send session.Sender) *session.Controller

// readPump 수신 프레임을 컨트롤러에 전달 (핑/퐁 유지)
func (c *Client) readPump(ctx context.Context, cancel context.CancelFunc) {
	defer func() {
		cancel()
		c.hub.drop(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("websocket read error",
					zap.String("participant", c.participantID),
					zap.Error(err))
			}
			break
		}

		c.controller.Handle(ctx, data)
	}
}

// writePump send 채널의 프레임을 클라이언트에게 전송
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub가 채널을 닫음
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(message)
			if err != nil {
				c.logger.Error("failed to marshal frame",
					zap.String("participant", c.participantID),
					zap.Error(err))
				continue
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Error("failed to write frame",
					zap.String("participant", c.participantID),
					zap.Error(err))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWs WebSocket 연결 업그레이드 및 세션 시작
func ServeWs(hub *Hub, w http.ResponseWriter, r *http.Request, participantID string, factory ControllerFactory, logger *zap.Logger) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("failed to upgrade websocket connection", zap.Error(err))
		return
	}

	client := &Client{
		hub:           hub,
		conn:          conn,
		send:          make(chan protocol.ServerMessage, 64),
		participantID: participantID,
		logger:        logger,
	}

	client.controller = factory(participantID, r.RemoteAddr, func(msg protocol.ServerMessage) {
		// 느린 소비자 때문에 매칭 루프가 막히면 안 된다.
		select {
		case client.send <- msg:
		default:
			logger.Warn("send queue full, frame dropped",
				zap.String("participant", participantID),
				zap.String("type", msg.Type))
		}
	})

	hub.add(client)

	ctx, cancel := context.WithCancel(context.Background())

	go client.writePump()
	go client.readPump(ctx, cancel)
}
