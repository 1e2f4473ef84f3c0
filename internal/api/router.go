package api

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/Sulusulthan/stranger-chat-web/internal/api/handlers"
	"github.com/Sulusulthan/stranger-chat-web/internal/api/middleware"
	"github.com/Sulusulthan/stranger-chat-web/internal/config"
	"github.com/Sulusulthan/stranger-chat-web/internal/matchmaking"
	"github.com/Sulusulthan/stranger-chat-web/internal/repository"
	"github.com/Sulusulthan/stranger-chat-web/internal/service"
	"github.com/Sulusulthan/stranger-chat-web/internal/session"
	ws "github.com/Sulusulthan/stranger-chat-web/internal/websocket"
	"github.com/Sulusulthan/stranger-chat-web/pkg/database"
	"github.com/Sulusulthan/stranger-chat-web/pkg/distributed"
	"github.com/Sulusulthan/stranger-chat-web/pkg/geoip"
	"github.com/Sulusulthan/stranger-chat-web/pkg/logger"
	"github.com/Sulusulthan/stranger-chat-web/pkg/token"
	"github.com/Sulusulthan/stranger-chat-web/pkg/verifier"
)

// SetupRouter API 라우터 및 매칭 파이프라인 설정
func SetupRouter(cfg *config.Config, redisClient *redis.Client, db *database.DB) (*gin.Engine, *ws.Hub) {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 전역 미들웨어
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	zlog := logger.L()

	// 공유 스토어 초기화
	queue := distributed.NewWaitingQueue(redisClient, "default")
	mailbox := distributed.NewMailbox(redisClient)

	var cooldown matchmaking.CooldownTracker
	if cfg.CooldownBackend == "memory" {
		// 프로세스 로컬: 다중 프로세스 배포에서는 best-effort가 된다.
		logger.Warn("using in-process cooldown tracker; cooldown is per-process only")
		cooldown = matchmaking.NewMemoryCooldown(cfg.CooldownWindow)
	} else {
		cooldown = distributed.NewRedisCooldown(redisClient, cfg.CooldownWindow)
	}

	// 외부 협력 서비스
	var verify verifier.Verifier
	if cfg.VerifierURL != "" {
		verify = verifier.NewClient(cfg.VerifierURL, zlog)
	} else {
		logger.Warn("no verifier configured, accepting any non-empty proof")
		verify = verifier.AllowAll{}
	}

	var geo geoip.Lookup
	if cfg.GeoIPURL != "" {
		geo = geoip.NewClient(cfg.GeoIPURL, zlog)
	} else {
		geo = geoip.Disabled{}
	}

	issuer := token.NewRoomTokenIssuer(cfg.TokenSecret, cfg.TokenTTL)

	var reports session.ReportSink
	if db != nil {
		reports = repository.NewReportRepository(db)
	} else {
		reports = repository.NoopReportSink{}
	}

	// Coordinator 초기화
	coordinator := service.NewMatchmakingCoordinator(
		queue, mailbox, cooldown, verify, geo, issuer,
		service.CoordinatorConfig{
			CountryBias: cfg.CountryBias,
			ScanLimit:   cfg.QueueScanLimit,
			MaxRetries:  cfg.MatchRetries,
			MailboxTTL:  cfg.MailboxTTL,
		},
		zlog,
	)

	// WebSocket Hub 초기화 및 시작
	hub := ws.NewHub(zlog)
	go hub.Run()

	factory := func(participantID, remoteAddr string, send session.Sender) *session.Controller {
		return session.NewController(
			participantID, remoteAddr,
			coordinator, reports, send,
			cfg.CooldownWindow, zlog,
		)
	}

	// Handler 초기화
	healthHandler := handlers.NewHealthHandler(redisClient)
	wsHandler := handlers.NewWebSocketHandler(hub, factory, zlog)

	// Health check
	router.GET("/health", healthHandler.HealthCheck)

	// API v1
	v1 := router.Group("/api/v1")
	{
		v1.GET("/ws", wsHandler.HandleWebSocket)
	}

	return router, hub
}
