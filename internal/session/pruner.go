package session

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Prune deletes session rows that have not been touched within ttl.
// Returns the number of rows removed.
func (s *Store) Prune(ctx context.Context, ttl time.Duration) (int64, error) {
	cutoff := time.Now().Add(-ttl)
	res := s.db.WithContext(ctx).Where("updated_at < ?", cutoff).Delete(&Record{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to prune sessions: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// StartPruner deletes idle sessions on the given cron schedule. It blocks
// until ctx is cancelled, so run it in its own goroutine.
func (s *Store) StartPruner(ctx context.Context, schedule string, ttl time.Duration) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(schedule)
	if err != nil {
		return fmt.Errorf("invalid prune schedule %q: %w", schedule, err)
	}

	next := sched.Next(time.Now())
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if now.Before(next) {
				continue
			}
			next = sched.Next(now)

			removed, err := s.Prune(ctx, ttl)
			if err != nil {
				s.logger.Error().Err(err).Msg("Session prune failed")
				continue
			}
			if removed > 0 {
				s.logger.Info().Int64("removed", removed).Msg("Pruned idle sessions")
			}
		}
	}
}
