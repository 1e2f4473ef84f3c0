package websocket

import (
	"sync"

	"go.uber.org/zap"
)

// Hub 살아있는 제어 연결의 레지스트리. 연결 수명 관리(등록/해제/종료
// 스위프)에만 쓰이고 세션 간 메시지 전달에는 쓰지 않는다. 다른 프로세스에
// 붙은 상대에게 매칭을 알리는 일은 전적으로 메일박스 스토어 몫이다.
type Hub struct {
	// 참가자별 연결 (participantID -> *Client)
	clients map[string]*Client
	mu      sync.RWMutex

	// 등록/해제 채널
	register   chan *Client
	unregister chan *Client

	done chan struct{}

	logger *zap.Logger
}

// NewHub Hub 생성
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run Hub 실행
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case <-h.done:
			h.closeAll()
			return
		}
	}
}

// Shutdown 모든 연결 종료
func (h *Hub) Shutdown() {
	close(h.done)
}

// add 새 연결 등록. Hub가 내려간 뒤에는 소켓을 닫고 돌아간다.
func (h *Hub) add(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.conn.Close()
	}
}

// drop readPump 종료 시 호출. Hub가 내려간 뒤에는 바로 돌아간다.
func (h *Hub) drop(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Count 현재 연결 수
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// registerClient 클라이언트 등록. 같은 참가자의 기존 연결은 끊는다.
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// 같은 참가자의 기존 연결은 소켓만 닫는다. send 채널은 그 연결의
	// readPump이 해제를 마친 뒤에 닫혀야 한다.
	if oldClient, exists := h.clients[client.participantID]; exists {
		oldClient.conn.Close()
		h.logger.Info("replaced existing control connection",
			zap.String("participant", client.participantID))
	}

	h.clients[client.participantID] = client
	h.logger.Info("control connection registered",
		zap.String("participant", client.participantID),
		zap.Int("totalClients", len(h.clients)))
}

// unregisterClient 클라이언트 해제
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, exists := h.clients[client.participantID]; exists && current == client {
		delete(h.clients, client.participantID)
		close(client.send)
		h.logger.Info("control connection unregistered",
			zap.String("participant", client.participantID),
			zap.Int("totalClients", len(h.clients)))
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.clients {
		client.conn.Close()
	}
	h.logger.Info("all control connections closing", zap.Int("count", len(h.clients)))
}
