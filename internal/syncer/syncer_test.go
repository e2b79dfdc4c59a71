package syncer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/La-Clique-qui-Recycle/Recyclic-sub002/internal/apierror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Fakes ────────────────────────────────────────────────────────────────────

type fakeStore struct {
	mu        sync.Mutex
	failTimes int // first N uploads fail
	attempts  int
	uploads   []string
	dirs      map[string]bool
}

func newFakeStore(failTimes int) *fakeStore {
	return &fakeStore{failTimes: failTimes, dirs: make(map[string]bool)}
}

func (s *fakeStore) DirExists(_ context.Context, remoteDir string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirs[remoteDir], nil
}

func (s *fakeStore) CreateDir(_ context.Context, remoteDir string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirs[remoteDir] = true
	return nil
}

func (s *fakeStore) Upload(_ context.Context, _, remotePath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts++
	if s.attempts <= s.failTimes {
		return errors.New("remote unreachable")
	}
	s.uploads = append(s.uploads, remotePath)
	return nil
}

var _ RemoteStore = (*fakeStore)(nil)

type notifyCall struct {
	localPath  string
	remotePath string
	errMsg     string
}

type fakeNotifier struct {
	calls chan notifyCall
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{calls: make(chan notifyCall, 4)}
}

func (n *fakeNotifier) NotifyFailure(_ context.Context, localPath, remotePath, errMsg string) bool {
	n.calls <- notifyCall{localPath: localPath, remotePath: remotePath, errMsg: errMsg}
	return true
}

var _ Notifier = (*fakeNotifier)(nil)

// noSleep replaces the retry delay so tests run instantly.
func noSleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

func waitNotify(t *testing.T, n *fakeNotifier) notifyCall {
	t.Helper()
	select {
	case call := <-n.calls:
		return call
	case <-time.After(2 * time.Second):
		t.Fatal("expected a failure notification")
		return notifyCall{}
	}
}

func assertNoNotify(t *testing.T, n *fakeNotifier) {
	t.Helper()
	select {
	case <-n.calls:
		t.Fatal("unexpected failure notification")
	case <-time.After(50 * time.Millisecond):
	}
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestUploadFileSucceedsAfterRetries(t *testing.T) {
	store := newFakeStore(2) // two transient failures, third attempt succeeds
	notifier := newFakeNotifier()
	svc := New(store, notifier, 3, time.Second)
	svc.sleep = noSleep

	remote, err := svc.UploadFile(context.Background(), "/tmp/report.csv", "reports/report.csv")
	require.NoError(t, err)
	assert.Equal(t, "reports/report.csv", remote)
	assert.Equal(t, 3, store.attempts)
	assertNoNotify(t, notifier)
}

func TestUploadFileExhaustsRetries(t *testing.T) {
	store := newFakeStore(10) // never recovers within the budget
	notifier := newFakeNotifier()
	svc := New(store, notifier, 3, time.Second)
	svc.sleep = noSleep

	_, err := svc.UploadFile(context.Background(), "/tmp/report.csv", "reports/report.csv")
	assert.True(t, apierror.IsKind(err, apierror.KindUploadFailed))
	assert.Equal(t, 3, store.attempts)

	// The typed message reaches clients via the error middleware: it must
	// not carry the server-local path. The path travels in the notification.
	var typed *apierror.Error
	require.ErrorAs(t, err, &typed)
	assert.NotContains(t, typed.Msg, "/tmp/report.csv")

	call := waitNotify(t, notifier)
	assert.Equal(t, "/tmp/report.csv", call.localPath)
	assert.Equal(t, "reports/report.csv", call.remotePath)
	assert.Equal(t, "remote unreachable", call.errMsg)

	// Exactly one notification per exhausted budget.
	assertNoNotify(t, notifier)
}

func TestUploadFileEnsuresRemoteDir(t *testing.T) {
	store := newFakeStore(0)
	svc := New(store, newFakeNotifier(), 1, 0)
	svc.sleep = noSleep

	_, err := svc.UploadFile(context.Background(), "/tmp/report.csv", "reports/2026/report.csv")
	require.NoError(t, err)
	assert.True(t, store.dirs["reports/2026"])
}

func TestUploadFileCancelledMidRetry(t *testing.T) {
	store := newFakeStore(10)
	notifier := newFakeNotifier()
	svc := New(store, notifier, 5, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := svc.UploadFile(ctx, "/tmp/report.csv", "reports/report.csv")
	assert.ErrorIs(t, err, context.Canceled)

	// A cancelled sync is not a failure: no escalation.
	assertNoNotify(t, notifier)
}

func TestSyncDirectoryUploadsEverything(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.csv"), []byte("a"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "2026"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2026", "b.csv"), []byte("b"), 0o644))

	store := newFakeStore(0)
	svc := New(store, newFakeNotifier(), 1, 0)
	svc.sleep = noSleep

	uploaded, err := svc.SyncDirectory(context.Background(), dir, "mirror")
	require.NoError(t, err)
	assert.Len(t, uploaded, 2)
	assert.Contains(t, store.uploads, "mirror/a.csv")
	assert.Contains(t, store.uploads, "mirror/2026/b.csv")

	// No change detection: a second pass re-uploads the full tree.
	_, err = svc.SyncDirectory(context.Background(), dir, "mirror")
	require.NoError(t, err)
	assert.Len(t, store.uploads, 4)
}

func TestSyncDirectoryStopsOnExhaustedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.csv"), []byte("a"), 0o644))

	store := newFakeStore(10)
	notifier := newFakeNotifier()
	svc := New(store, notifier, 2, 0)
	svc.sleep = noSleep

	uploaded, err := svc.SyncDirectory(context.Background(), dir, "mirror")
	assert.True(t, apierror.IsKind(err, apierror.KindUploadFailed))
	assert.Empty(t, uploaded)
	waitNotify(t, notifier)
}

func TestNewClampsRetryBudget(t *testing.T) {
	store := newFakeStore(0)
	svc := New(store, newFakeNotifier(), 0, 0)
	svc.sleep = noSleep

	_, err := svc.UploadFile(context.Background(), "/tmp/report.csv", "reports/report.csv")
	require.NoError(t, err)
	assert.Equal(t, 1, store.attempts)
}
