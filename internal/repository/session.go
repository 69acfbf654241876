// Package repository 提供采集会话汇总的持久化
//
// 可选组件：配置了 DB_HOST 时，腰带采集进程在退出时写入一条
// 会话汇总（样本数、平均呼吸率、平均力度），供事后查看训练记录。
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dhruvmynd/breathUnity/internal/models"
)

// SessionRepository 会话汇总仓库
type SessionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSessionRepository 创建会话汇总仓库
func NewSessionRepository(db *sql.DB, logger *zap.Logger) *SessionRepository {
	return &SessionRepository{
		db:     db,
		logger: logger,
	}
}

// Save 写入一条会话汇总
func (r *SessionRepository) Save(ctx context.Context, s *models.SessionSummary) error {
	query := `
		INSERT INTO sessions (
			session_id,
			service,
			started_at,
			ended_at,
			samples,
			avg_resp_rate,
			avg_force
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		s.SessionID,
		s.Service,
		time.Unix(s.StartedAt, 0).UTC(),
		time.Unix(s.EndedAt, 0).UTC(),
		s.Samples,
		s.AvgRespRate,
		s.AvgForce,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session summary: %w", err)
	}

	r.logger.Info("Saved session summary",
		zap.String("session_id", s.SessionID),
		zap.Int64("samples", s.Samples),
	)

	return nil
}

// GetBySessionID 按会话ID查询汇总
func (r *SessionRepository) GetBySessionID(ctx context.Context, sessionID string) (*models.SessionSummary, error) {
	query := `
		SELECT
			session_id,
			service,
			started_at,
			ended_at,
			samples,
			avg_resp_rate,
			avg_force
		FROM sessions
		WHERE session_id = $1
		LIMIT 1
	`

	var (
		s       models.SessionSummary
		started time.Time
		ended   time.Time
	)
	err := r.db.QueryRowContext(ctx, query, sessionID).Scan(
		&s.SessionID,
		&s.Service,
		&started,
		&ended,
		&s.Samples,
		&s.AvgRespRate,
		&s.AvgForce,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("session not found: %s", sessionID)
		}
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	s.StartedAt = started.Unix()
	s.EndedAt = ended.Unix()

	return &s, nil
}
