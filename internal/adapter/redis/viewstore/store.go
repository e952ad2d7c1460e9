// Package viewstore keeps submission view snapshots in Redis so the status API and other
// processes can read the watcher's state.
package viewstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"gitlab.com/codearena.net/internal/core/ports/primary"
	"gitlab.com/codearena.net/internal/core/ports/secondary"
	"gitlab.com/codearena.net/internal/domain"
)

var _ secondary.ViewStore = (*ViewStore)(nil)

const (
	viewKeyPrefix = "view:"
	activeViewKey = "view:active"
)

// ViewStore implements secondary.ViewStore with Redis
type ViewStore struct {
	redisClient *redis.Client
	logger      primary.Logger
	ttl         time.Duration
}

func NewViewStore(redisClient *redis.Client, logger primary.Logger, ttl time.Duration) *ViewStore {
	return &ViewStore{
		redisClient: redisClient,
		logger:      logger,
		ttl:         ttl,
	}
}

func viewKey(submissionID string) string {
	return fmt.Sprintf("%s%s", viewKeyPrefix, submissionID)
}

// SaveView stores the snapshot and marks it active. An Idle view only clears the active marker.
func (s *ViewStore) SaveView(ctx context.Context, view domain.SubmissionView) error {
	if view.SubmissionID == "" {
		if err := s.redisClient.Del(ctx, activeViewKey).Err(); err != nil {
			s.logger.Error("Failed to clear active view", "error", err)
			return fmt.Errorf("failed to clear active view: %w", err)
		}
		return nil
	}

	viewJSON, err := json.Marshal(view)
	if err != nil {
		s.logger.Error("Failed to marshal view", "error", err)
		return fmt.Errorf("failed to marshal view: %w", err)
	}

	_, err = s.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, viewKey(view.SubmissionID), viewJSON, s.ttl)
		pipe.Set(ctx, activeViewKey, view.SubmissionID, s.ttl)
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to save view", "submissionId", view.SubmissionID, "error", err)
		return fmt.Errorf("failed to save view: %w", err)
	}
	return nil
}

// GetView returns nil when no snapshot exists.
func (s *ViewStore) GetView(ctx context.Context, submissionID string) (*domain.SubmissionView, error) {
	viewJSON, err := s.redisClient.Get(ctx, viewKey(submissionID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		s.logger.Error("Failed to get view", "submissionId", submissionID, "error", err)
		return nil, fmt.Errorf("failed to get view: %w", err)
	}

	var view domain.SubmissionView
	if err := json.Unmarshal(viewJSON, &view); err != nil {
		s.logger.Error("Failed to unmarshal view", "error", err)
		return nil, fmt.Errorf("failed to unmarshal view: %w", err)
	}
	return &view, nil
}

// GetActiveView returns the most recently saved submission, or nil.
func (s *ViewStore) GetActiveView(ctx context.Context) (*domain.SubmissionView, error) {
	id, err := s.redisClient.Get(ctx, activeViewKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		s.logger.Error("Failed to get active view id", "error", err)
		return nil, fmt.Errorf("failed to get active view id: %w", err)
	}
	return s.GetView(ctx, id)
}

// Ping checks the connection.
func (s *ViewStore) Ping(ctx context.Context) error {
	return s.redisClient.Ping(ctx).Err()
}
