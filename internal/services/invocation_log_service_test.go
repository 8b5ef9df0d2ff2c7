package services

import (
	"context"
	"testing"
	"time"

	"agent-relay/internal/models"
	"agent-relay/internal/types"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupLogService(t *testing.T) (*InvocationLogService, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.InvocationLog{}))

	cm := &mockConfigManager{chat: types.ChatConfig{MaxChats: 10, LogWriteIntervalSeconds: 30}}
	return NewInvocationLogService(db, cm), db
}

func TestInvocationLogRecordAndFlush(t *testing.T) {
	svc, db := setupLogService(t)

	svc.Record(&models.InvocationLog{
		AgentID:    1,
		AgentName:  "support-bot",
		ChatID:     "chat-1",
		IsSuccess:  true,
		IsStream:   true,
		StatusCode: 200,
		Duration:   120,
	})
	svc.Record(&models.InvocationLog{
		AgentID:      1,
		AgentName:    "support-bot",
		IsSuccess:    false,
		StatusCode:   502,
		ErrorMessage: "upstream error",
	})

	svc.flush()

	var logs []models.InvocationLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 2)
	assert.NotEmpty(t, logs[0].ID)
	assert.False(t, logs[0].Timestamp.IsZero())
}

func TestInvocationLogStopFlushesBuffer(t *testing.T) {
	svc, db := setupLogService(t)
	svc.Start()

	svc.Record(&models.InvocationLog{AgentID: 2, AgentName: "mas-bot", IsSuccess: true, StatusCode: 200})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	svc.Stop(ctx)

	var count int64
	require.NoError(t, db.Model(&models.InvocationLog{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestInvocationLogFlushEmptyBuffer(t *testing.T) {
	svc, db := setupLogService(t)

	svc.flush()

	var count int64
	require.NoError(t, db.Model(&models.InvocationLog{}).Count(&count).Error)
	assert.Zero(t, count)
}
