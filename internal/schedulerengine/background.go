// Package schedulerengine runs the periodic tasks of the watch process: a connectivity poll
// for display and the history sync with the submission service.
package schedulerengine

import (
	"context"
	"sync"
	"time"

	"gitlab.com/codearena.net/internal/config"
	"gitlab.com/codearena.net/internal/core/ports/primary"
	"gitlab.com/codearena.net/internal/core/ports/secondary"
	"gitlab.com/codearena.net/internal/domain"
)

// ConnectionObserver receives the polled connection state.
type ConnectionObserver func(state domain.ConnectionState)

type SchedulerEngine struct {
	cfg         *config.BackgroundConfig
	channel     primary.RealtimeChannel
	submissions secondary.SubmissionPort
	history     secondary.HistoryRepository
	observers   []ConnectionObserver
	logger      primary.Logger

	wg sync.WaitGroup
}

func NewSchedulerEngine(
	cfg *config.BackgroundConfig,
	channel primary.RealtimeChannel,
	submissions secondary.SubmissionPort,
	history secondary.HistoryRepository,
	logger primary.Logger,
	observers ...ConnectionObserver,
) *SchedulerEngine {
	return &SchedulerEngine{
		cfg:         cfg,
		channel:     channel,
		submissions: submissions,
		history:     history,
		observers:   observers,
		logger:      logger,
	}
}

// StartBackgroundEngine starts the tasks that have a positive interval. They stop with ctx.
func (s *SchedulerEngine) StartBackgroundEngine(ctx context.Context) {
	if s.cfg.ConnectionPollInterval > 0 && s.channel != nil {
		s.wg.Add(1)
		ticker := time.NewTicker(s.cfg.ConnectionPollInterval)
		go func() {
			defer s.wg.Done()
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					s.PollConnection()
				}
			}
		}()
	}

	if s.cfg.HistorySyncInterval > 0 && s.submissions != nil && s.history != nil {
		s.wg.Add(1)
		tickerSync := time.NewTicker(s.cfg.HistorySyncInterval)
		go func() {
			defer s.wg.Done()
			defer tickerSync.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-tickerSync.C:
					if _, err := s.SyncHistory(ctx); err != nil {
						s.logger.Warn("History sync failed", "error", err)
					}
				}
			}
		}()
	}
}

// Wait blocks until every started task has returned.
func (s *SchedulerEngine) Wait() {
	s.wg.Wait()
}

func (s *SchedulerEngine) PollConnection() {
	state := s.channel.State()
	s.logger.Debug("Connection polled", "state", state)
	for _, o := range s.observers {
		o(state)
	}
}

// SyncHistory records every finished submission of the user in the history repository and
// returns how many were saved.
func (s *SchedulerEngine) SyncHistory(ctx context.Context) (int, error) {
	submissions, err := s.submissions.ListUserSubmissions(ctx)
	if err != nil {
		return 0, err
	}

	entryCh := make(chan *domain.HistoryEntry, len(submissions))
	for _, sub := range submissions {
		if entry, ok := domain.HistoryEntryFromSubmission(sub); ok {
			entryCh <- entry
		}
	}
	close(entryCh)
	if len(entryCh) == 0 {
		s.logger.Debug("No finished submissions to sync")
		return 0, nil
	}

	workerSize := s.cfg.SyncWorkers
	if workerSize <= 0 {
		workerSize = 1
	}
	errCh := make(chan error, len(entryCh))
	var saved int
	var mu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(workerSize)
	for i := 0; i < workerSize; i++ {
		go func() {
			defer wg.Done()
			for entry := range entryCh {
				if err := s.history.SaveEntry(ctx, entry); err != nil {
					errCh <- err
					continue
				}
				mu.Lock()
				saved++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	close(errCh)

	var firstErr error
	for err := range errCh {
		s.logger.Error("Failed to save history entry", "error", err)
		if firstErr == nil {
			firstErr = err
		}
	}
	s.logger.Info("History synced", "saved", saved, "fetched", len(submissions))
	return saved, firstErr
}
