package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dhruvmynd/breathUnity/internal/models"
)

func TestSessionRepository_Save(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSessionRepository(db, zap.NewNop())

	summary := &models.SessionSummary{
		SessionID:   "3e2f1f54-3b8c-4d6e-9a2b-93b3a1c0de77",
		Service:     "breath-analysis",
		StartedAt:   1700000000,
		EndedAt:     1700000300,
		Samples:     6000,
		AvgRespRate: 14.8,
		AvgForce:    6.2,
	}

	mock.ExpectExec(`INSERT INTO sessions`).
		WithArgs(
			summary.SessionID,
			summary.Service,
			time.Unix(summary.StartedAt, 0).UTC(),
			time.Unix(summary.EndedAt, 0).UTC(),
			summary.Samples,
			summary.AvgRespRate,
			summary.AvgForce,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Save(context.Background(), summary))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_GetBySessionID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSessionRepository(db, zap.NewNop())

	sessionID := "3e2f1f54-3b8c-4d6e-9a2b-93b3a1c0de77"
	started := time.Unix(1700000000, 0).UTC()
	ended := time.Unix(1700000300, 0).UTC()

	mock.ExpectQuery(`SELECT\s+session_id`).
		WithArgs(sessionID).
		WillReturnRows(sqlmock.NewRows([]string{
			"session_id", "service", "started_at", "ended_at",
			"samples", "avg_resp_rate", "avg_force",
		}).AddRow(sessionID, "belt-stream", started, ended, int64(6000), 14.8, 6.2))

	s, err := repo.GetBySessionID(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Equal(t, sessionID, s.SessionID)
	assert.Equal(t, "belt-stream", s.Service)
	assert.Equal(t, int64(1700000000), s.StartedAt)
	assert.Equal(t, int64(1700000300), s.EndedAt)
	assert.Equal(t, int64(6000), s.Samples)
	assert.Equal(t, 14.8, s.AvgRespRate)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_GetBySessionID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSessionRepository(db, zap.NewNop())

	mock.ExpectQuery(`SELECT\s+session_id`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{
			"session_id", "service", "started_at", "ended_at",
			"samples", "avg_resp_rate", "avg_force",
		}))

	_, err = repo.GetBySessionID(context.Background(), "missing")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "session not found")
}
