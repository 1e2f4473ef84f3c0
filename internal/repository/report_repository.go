package repository

import (
	"context"

	"github.com/Sulusulthan/stranger-chat-web/internal/models"
	"github.com/Sulusulthan/stranger-chat-web/pkg/database"
	"github.com/Sulusulthan/stranger-chat-web/pkg/logger"
)

// ReportRepository 모더레이션 로그 (append-only)
type ReportRepository struct {
	db *database.DB
}

func NewReportRepository(db *database.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Append 신고 이벤트 기록
func (r *ReportRepository) Append(ctx context.Context, event models.ReportEvent) error {
	query := `
		INSERT INTO reports (reporter_id, partner_id, room_id, reason, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		event.ReporterID,
		event.PartnerID,
		event.RoomID,
		event.Reason,
		event.CreatedAt,
	)
	return err
}

// NoopReportSink 데이터베이스가 설정되지 않은 환경용. 신고를 로그로만 남긴다.
type NoopReportSink struct{}

// Append 로그로만 기록
func (NoopReportSink) Append(_ context.Context, event models.ReportEvent) error {
	logger.Warn("report dropped (no database configured)",
		"reporter", event.ReporterID,
		"partner", event.PartnerID,
		"room", event.RoomID,
	)
	return nil
}
