package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/teachspace-api/internal/models"
	appErrors "github.com/noah-isme/teachspace-api/pkg/errors"
)

const flashSlot = "flash"

// FlashService stores one message per session that is read exactly once.
type FlashService struct {
	store  TransientStore
	ttl    time.Duration
	logger *zap.Logger
}

// NewFlashService constructs the flash service.
func NewFlashService(store TransientStore, ttl time.Duration, logger *zap.Logger) *FlashService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FlashService{store: store, ttl: ttl, logger: logger}
}

// Set replaces the pending message for the session. Store errors are logged,
// not returned.
func (s *FlashService) Set(ctx context.Context, sessionID string, flash *models.Flash) {
	if sessionID == "" || flash == nil {
		return
	}
	if err := s.store.Put(ctx, sessionKey(sessionID, flashSlot), flash, s.ttl); err != nil {
		s.logger.Warn("failed to store flash", zap.Error(err))
	}
}

// Pop returns and clears the pending message, or nil when there is none.
func (s *FlashService) Pop(ctx context.Context, sessionID string) *models.Flash {
	if sessionID == "" {
		return nil
	}
	var flash models.Flash
	if err := s.store.Take(ctx, sessionKey(sessionID, flashSlot), &flash); err != nil {
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("failed to read flash", zap.Error(err))
		}
		return nil
	}
	return &flash
}
