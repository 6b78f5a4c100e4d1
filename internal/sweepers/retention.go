package sweepers

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/polica/planogram-service/internal/database"
)

// RetentionSweeper periodically expires old optimization runs
type RetentionSweeper struct {
	logger    *zerolog.Logger
	interval  time.Duration
	retention time.Duration
	archive   bool
	stopChan  chan struct{}
}

// NewRetentionSweeper creates a new sweeper for run history maintenance
func NewRetentionSweeper(logger *zerolog.Logger, interval, retention time.Duration, archive bool) *RetentionSweeper {
	return &RetentionSweeper{
		logger:    logger,
		interval:  interval,
		retention: retention,
		archive:   archive,
		stopChan:  make(chan struct{}),
	}
}

// Start begins the periodic retention sweep
func (s *RetentionSweeper) Start(ctx context.Context) {
	s.logger.Info().
		Dur("interval", s.interval).
		Dur("retention", s.retention).
		Bool("archive", s.archive).
		Msg("Starting run retention sweeper")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Run retention sweeper stopping (context cancelled)")
			return
		case <-s.stopChan:
			s.logger.Info().Msg("Run retention sweeper stopping (stop signal)")
			return
		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil {
				s.logger.Error().Err(err).Msg("Failed to expire old runs")
			}
		}
	}
}

// Stop signals the sweeper to stop
func (s *RetentionSweeper) Stop() {
	close(s.stopChan)
}

// Sweep expires runs older than the retention window, archiving them first
// when archiving is enabled
func (s *RetentionSweeper) Sweep(ctx context.Context) error {
	s.logger.Debug().Msg("Running run retention sweep")

	var (
		removed int64
		err     error
	)
	if s.archive {
		removed, err = database.ArchiveRuns(ctx, s.retention)
	} else {
		removed, err = database.PruneRuns(ctx, s.retention)
	}
	if err != nil {
		return err
	}

	if removed > 0 {
		s.logger.Info().
			Int64("removed", removed).
			Bool("archived", s.archive).
			Msg("Expired old runs")
	}

	return nil
}
