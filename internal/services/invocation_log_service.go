package services

import (
	"context"
	"sync"
	"time"

	"agent-relay/internal/models"
	"agent-relay/internal/types"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const invocationLogBufferSize = 1024

// InvocationLogService buffers invocation logs in memory and flushes them to
// the database in batches on a fixed interval. Recording never blocks the
// relay hot path: when the buffer is full the entry is dropped with a warning.
type InvocationLogService struct {
	db            *gorm.DB
	configManager types.ConfigManager
	entries       chan *models.InvocationLog
	stopChan      chan struct{}
	wg            sync.WaitGroup
}

// NewInvocationLogService creates a new InvocationLogService instance.
func NewInvocationLogService(db *gorm.DB, configManager types.ConfigManager) *InvocationLogService {
	return &InvocationLogService{
		db:            db,
		configManager: configManager,
		entries:       make(chan *models.InvocationLog, invocationLogBufferSize),
		stopChan:      make(chan struct{}),
	}
}

// Start launches the periodic flush routine.
func (s *InvocationLogService) Start() {
	s.wg.Add(1)
	go s.runLoop()
}

func (s *InvocationLogService) runLoop() {
	defer s.wg.Done()

	interval := time.Duration(s.configManager.GetChatConfig().LogWriteIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.flush()
		case <-s.stopChan:
			return
		}
	}
}

// Stop gracefully stops the service, flushing anything still buffered.
func (s *InvocationLogService) Stop(ctx context.Context) {
	close(s.stopChan)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.flush()
		logrus.Info("InvocationLogService stopped gracefully.")
	case <-ctx.Done():
		logrus.Warn("InvocationLogService stop timed out.")
	}
}

// Record buffers one invocation log entry for the next flush.
func (s *InvocationLogService) Record(entry *models.InvocationLog) {
	entry.ID = uuid.NewString()
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	select {
	case s.entries <- entry:
	default:
		logrus.Warn("invocation log buffer full, dropping entry")
	}
}

// flush drains the buffer and writes everything to the database in one batch.
func (s *InvocationLogService) flush() {
	var batch []*models.InvocationLog
	for {
		select {
		case entry := <-s.entries:
			batch = append(batch, entry)
		default:
			if len(batch) == 0 {
				return
			}
			if err := s.db.CreateInBatches(batch, 200).Error; err != nil {
				logrus.WithError(err).Error("failed to flush invocation logs")
				return
			}
			logrus.Debugf("flushed %d invocation logs", len(batch))
			return
		}
	}
}
