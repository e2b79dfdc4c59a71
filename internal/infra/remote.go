package infra

// remote.go — HTTP client for the off-site storage gateway mirroring report
// artifacts. The gateway exposes a WebDAV-like surface: HEAD to probe a
// directory, MKCOL to create one, PUT to upload a file. All calls flow
// through the circuit breaker so a downed gateway is not hammered by the
// periodic sync task.

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

// RemoteStorageClient implements syncer.RemoteStore against the gateway.
type RemoteStorageClient struct {
	baseURL    string
	httpClient *http.Client
	cb         *CircuitBreaker
}

func NewRemoteStorageClient(baseURL string, cb *CircuitBreaker) *RemoteStorageClient {
	return &RemoteStorageClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
		cb:         cb,
	}
}

func (c *RemoteStorageClient) url(remotePath string) string {
	return c.baseURL + "/" + strings.TrimLeft(remotePath, "/")
}

// DirExists probes the remote directory with a HEAD request.
func (c *RemoteStorageClient) DirExists(ctx context.Context, remoteDir string) (bool, error) {
	var exists bool
	err := c.cb.Execute(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.url(remoteDir)+"/", nil)
		if err != nil {
			return err
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("remote: gateway unreachable: %w", err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			exists = false
			return nil
		case resp.StatusCode < 300:
			exists = true
			return nil
		default:
			return fmt.Errorf("remote: probe %s returned %d", remoteDir, resp.StatusCode)
		}
	})
	return exists, err
}

// CreateDir creates the remote directory. Idempotent: a 405 "already exists"
// answer from the gateway is treated as success.
func (c *RemoteStorageClient) CreateDir(ctx context.Context, remoteDir string) error {
	return c.cb.Execute(func() error {
		req, err := http.NewRequestWithContext(ctx, "MKCOL", c.url(remoteDir)+"/", nil)
		if err != nil {
			return err
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("remote: gateway unreachable: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 300 || resp.StatusCode == http.StatusMethodNotAllowed {
			return nil
		}
		return fmt.Errorf("remote: mkdir %s returned %d", remoteDir, resp.StatusCode)
	})
}

// Upload streams the local file to the gateway with a PUT.
func (c *RemoteStorageClient) Upload(ctx context.Context, localPath, remotePath string) error {
	return c.cb.Execute(func() error {
		f, err := os.Open(localPath)
		if err != nil {
			return fmt.Errorf("remote: open %s: %w", localPath, err)
		}
		defer f.Close()

		req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.url(remotePath), f)
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/octet-stream")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("remote: gateway unreachable: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			return fmt.Errorf("remote: upload %s returned %d", remotePath, resp.StatusCode)
		}
		return nil
	})
}
