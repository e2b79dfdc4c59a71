// Package syncer mirrors local report directories to remote storage with
// bounded retries and administrator alerting on exhaustion. Uploads are
// sequential within the service; no change detection is performed, so
// re-running on an unchanged tree re-uploads everything.
package syncer

import (
	"context"
	"io/fs"
	"path"
	"path/filepath"
	"time"

	"github.com/La-Clique-qui-Recycle/Recyclic-sub002/internal/apierror"

	"github.com/rs/zerolog/log"
)

// RemoteStore abstracts the remote side of the mirror.
type RemoteStore interface {
	DirExists(ctx context.Context, remoteDir string) (bool, error)
	// CreateDir must be idempotent: creating an existing directory is not an error.
	CreateDir(ctx context.Context, remoteDir string) error
	Upload(ctx context.Context, localPath, remotePath string) error
}

// Notifier is the escalation channel invoked once per exhausted retry budget.
type Notifier interface {
	NotifyFailure(ctx context.Context, localPath, remotePath, errMsg string) bool
}

// Service performs the uploads. The sleep function is injectable so tests can
// simulate N failures with zero real delay.
type Service struct {
	store      RemoteStore
	notifier   Notifier
	maxRetries int
	delay      time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
}

func New(store RemoteStore, notifier Notifier, maxRetries int, delay time.Duration) *Service {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Service{
		store:      store,
		notifier:   notifier,
		maxRetries: maxRetries,
		delay:      delay,
		sleep:      sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// UploadFile pushes one file, ensuring the remote parent directory exists
// first. It attempts up to maxRetries times with the configured delay in
// between. On the first success it returns the remote path. When the budget
// is exhausted it returns UploadFailed carrying the last error and notifies
// the escalation channel asynchronously. Cancellation mid-retry aborts
// without notification: a cancelled sync is not a failure.
func (s *Service) UploadFile(ctx context.Context, localPath, remotePath string) (string, error) {
	remoteDir := path.Dir(remotePath)
	exists, err := s.store.DirExists(ctx, remoteDir)
	if err != nil || !exists {
		if err := s.store.CreateDir(ctx, remoteDir); err != nil {
			return "", apierror.UploadFailed("sync: create remote dir "+remoteDir, err)
		}
	}

	var lastErr error
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if err := s.store.Upload(ctx, localPath, remotePath); err == nil {
			if attempt > 1 {
				log.Info().Str("remote", remotePath).Int("attempt", attempt).Msg("sync: upload succeeded after retry")
			}
			return remotePath, nil
		} else {
			lastErr = err
			log.Warn().Err(err).Str("local", localPath).Int("attempt", attempt).Msg("sync: upload attempt failed")
		}
		if attempt < s.maxRetries {
			if err := s.sleep(ctx, s.delay); err != nil {
				return "", err
			}
		}
	}

	errMsg := lastErr.Error()
	log.Error().
		Str("local", localPath).
		Str("remote", remotePath).
		Str("error", errMsg).
		Msg("sync: upload retries exhausted")

	go func() {
		ok := s.notifier.NotifyFailure(context.Background(), localPath, remotePath, errMsg)
		if !ok {
			log.Error().Str("local", localPath).Msg("sync: failure notification could not be delivered")
		}
	}()

	// File paths stay in the log and the notification; the client-facing
	// message must not disclose server-local paths.
	return "", apierror.UploadFailed("sync: upload failed after all retries", lastErr)
}

// SyncDirectory recursively mirrors localDir under remotePrefix, sequentially,
// and returns every local file that was uploaded (including nested ones).
func (s *Service) SyncDirectory(ctx context.Context, localDir, remotePrefix string) ([]string, error) {
	var uploaded []string
	err := filepath.WalkDir(localDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(localDir, p)
		if err != nil {
			return err
		}
		remotePath := path.Join(remotePrefix, filepath.ToSlash(rel))
		if _, err := s.UploadFile(ctx, p, remotePath); err != nil {
			return err
		}
		uploaded = append(uploaded, p)
		return nil
	})
	if err != nil {
		return uploaded, err
	}
	log.Info().Int("files", len(uploaded)).Str("dir", localDir).Msg("sync: directory mirrored")
	return uploaded, nil
}
