package worker

// sync_cron.go
// Background goroutine that periodically mirrors the reports directory to
// remote storage. The handle is retained by the composition root: shutdown
// cancels the goroutine and then waits for it, so no sync work outlives the
// process.

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// SyncRunner is the slice of the syncer the cron needs.
type SyncRunner interface {
	SyncDirectory(ctx context.Context, localDir, remotePrefix string) ([]string, error)
}

// SyncCron owns the periodic sync goroutine.
type SyncCron struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// StartSyncCron launches the periodic mirror task. When enabled is false it
// returns nil and schedules nothing — the caller treats a nil handle as a
// no-op on shutdown.
func StartSyncCron(ctx context.Context, runner SyncRunner, localDir, remotePrefix string, interval time.Duration, enabled bool) *SyncCron {
	if !enabled {
		log.Info().Msg("sync_cron: disabled by configuration")
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	c := &SyncCron{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(c.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		log.Info().Dur("interval", interval).Msg("sync_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("sync_cron: shutting down")
				return
			case <-ticker.C:
				if _, err := runner.SyncDirectory(ctx, localDir, remotePrefix); err != nil {
					if ctx.Err() != nil {
						return
					}
					log.Error().Err(err).Msg("sync_cron: sync pass failed")
				}
			}
		}
	}()

	return c
}

// Stop requests cancellation and waits for the goroutine to finish its
// current unit of work or observe cancellation. Safe to call on a nil handle.
func (c *SyncCron) Stop() {
	if c == nil {
		return
	}
	c.cancel()
	<-c.done
}
