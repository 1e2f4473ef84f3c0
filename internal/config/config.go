package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port     string
	Env      string
	LogLevel string

	// Redis (대기열/메일박스/쿨다운 공유 스토어)
	RedisURL string

	// Database (신고 로그, 비우면 저장 안 함)
	DatabaseURL string

	// 방 입장 크리덴셜
	TokenSecret string
	TokenTTL    time.Duration

	// 외부 협력 서비스
	VerifierURL string // 비우면 개발용 allow-all
	GeoIPURL    string // 비우면 국가 조회 생략

	// Matchmaking
	CooldownWindow  time.Duration
	CooldownBackend string // redis | memory
	CountryBias     float64
	MailboxTTL      time.Duration
	QueueScanLimit  int64
	MatchRetries    int

	// CORS
	CORSAllowedOrigins []string
}

func Load() (*Config, error) {
	// .env 파일 로드 (있는 경우)
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("ENV", "development"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		RedisURL:        getEnv("REDIS_URL", "redis://localhost:6379"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		TokenSecret:     getEnv("TOKEN_SECRET", "your-secret-key"),
		TokenTTL:        parseDuration(getEnv("TOKEN_TTL", "2h"), 2*time.Hour),
		VerifierURL:     getEnv("VERIFIER_URL", ""),
		GeoIPURL:        getEnv("GEOIP_URL", ""),
		CooldownWindow:  parseDuration(getEnv("COOLDOWN_WINDOW", "8s"), 8*time.Second),
		CooldownBackend: getEnv("COOLDOWN_BACKEND", "redis"),
		CountryBias:     parseFloat(getEnv("COUNTRY_BIAS", "0.7"), 0.7),
		MailboxTTL:      parseDuration(getEnv("MAILBOX_TTL", "60s"), 60*time.Second),
		QueueScanLimit:  parseInt(getEnv("QUEUE_SCAN_LIMIT", "50"), 50),
		MatchRetries:    int(parseInt(getEnv("MATCH_RETRIES", "3"), 3)),
		CORSAllowedOrigins: []string{
			"http://localhost:3000",
			"http://localhost:5173",
		},
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseFloat(s string, fallback float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return f
}

func parseInt(s string, fallback int64) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
