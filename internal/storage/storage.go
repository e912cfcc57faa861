// Package storage talks to Supabase Storage over its REST API. Source
// videos and rendered clips are large, so every transfer streams: uploads
// read straight from disk and downloads copy straight to disk, with
// per-attempt timeouts and exponential backoff around both.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// Per-attempt deadlines. Mirrored source videos can run to gigabytes,
	// so transfers get minutes, not seconds.
	uploadTimeout   = 10 * time.Minute
	downloadTimeout = 10 * time.Minute

	maxAttempts    = 5
	baseRetryDelay = time.Second
	maxRetryDelay  = 30 * time.Second
)

type Storage struct {
	url        string
	serviceKey string
	Bucket     string
	client     *http.Client
}

// New returns a client for one bucket. The http.Client carries no global
// timeout — a whole-request cap would kill long streaming transfers — so
// every call sites a per-attempt context deadline instead.
func New(url, serviceKey, bucket string) *Storage {
	return &Storage{
		url:        strings.TrimRight(url, "/"),
		serviceKey: serviceKey,
		Bucket:     bucket,
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// UploadFile streams a local file into the bucket at storagePath,
// overwriting any existing object (x-upsert). Each retry reopens the file
// from the start so a half-sent body never poisons the next attempt.
func (s *Storage) UploadFile(ctx context.Context, storagePath, localPath string, contentType string) error {
	info, err := os.Stat(localPath)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", localPath, err)
	}
	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.url, s.Bucket, storagePath)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			if err := waitRetry(ctx, attempt, "Upload", storagePath); err != nil {
				return err
			}
		}

		retryable, err := s.uploadOnce(ctx, url, localPath, contentType, info.Size())
		if err == nil {
			if attempt > 1 {
				log.Printf("[Storage] Upload of %s succeeded on attempt %d", storagePath, attempt)
			}
			return nil
		}
		lastErr = err
		if !retryable {
			return err
		}
		log.Printf("[Storage] Upload attempt %d for %s failed: %v", attempt, storagePath, err)
	}
	return fmt.Errorf("upload of %s failed after %d attempts: %w", storagePath, maxAttempts, lastErr)
}

func (s *Storage) uploadOnce(ctx context.Context, url, localPath, contentType string, size int64) (retryable bool, err error) {
	attemptCtx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	f, err := os.Open(localPath)
	if err != nil {
		return false, fmt.Errorf("failed to open %s: %w", localPath, err)
	}
	defer f.Close()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPut, url, f)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	// A file body does not set ContentLength on its own, and chunked
	// uploads are rejected by the storage API.
	req.ContentLength = size
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")

	resp, err := s.client.Do(req)
	if err != nil {
		return isRetryableError(err), fmt.Errorf("upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
		return false, nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return isRetryableStatus(resp.StatusCode), fmt.Errorf("upload returned status %d: %s", resp.StatusCode, body)
}

// Download streams an object from the bucket to a local file.
func (s *Storage) Download(ctx context.Context, path, localPath string) error {
	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.url, s.Bucket, path)
	return s.fetchToFile(ctx, url, true, localPath)
}

// DownloadURL fetches an arbitrary HTTP(S) URL to a local file. Used for
// sources registered by external URL instead of storage path.
func (s *Storage) DownloadURL(ctx context.Context, srcURL, localPath string) error {
	return s.fetchToFile(ctx, srcURL, false, localPath)
}

func (s *Storage) fetchToFile(ctx context.Context, url string, withAuth bool, localPath string) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			if err := waitRetry(ctx, attempt, "Download", localPath); err != nil {
				return err
			}
		}

		retryable, err := s.fetchOnce(ctx, url, withAuth, localPath)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable {
			return err
		}
		log.Printf("[Storage] Download attempt %d for %s failed: %v", attempt, localPath, err)
	}
	return fmt.Errorf("download to %s failed after %d attempts: %w", localPath, maxAttempts, lastErr)
}

func (s *Storage) fetchOnce(ctx context.Context, url string, withAuth bool, localPath string) (retryable bool, err error) {
	attemptCtx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	if withAuth {
		req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return isRetryableError(err), fmt.Errorf("download request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return isRetryableStatus(resp.StatusCode), fmt.Errorf("download returned status %d: %s", resp.StatusCode, body)
	}

	out, err := os.Create(localPath)
	if err != nil {
		return false, fmt.Errorf("failed to create %s: %w", localPath, err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		// A truncated body is transient; the next attempt recreates the file.
		return true, fmt.Errorf("failed to write download body: %w", err)
	}
	return false, out.Close()
}

// GetPublicURL returns the public URL for an object in a public bucket.
func (s *Storage) GetPublicURL(path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.url, s.Bucket, path)
}

// GetSignedURL creates a time-limited URL for a private object.
func (s *Storage) GetSignedURL(ctx context.Context, path string, expiresIn int) (string, error) {
	url := fmt.Sprintf("%s/storage/v1/object/sign/%s/%s", s.url, s.Bucket, path)

	payload, err := json.Marshal(map[string]int{"expiresIn": expiresIn})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to sign URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("sign request returned status %d: %s", resp.StatusCode, body)
	}

	var result struct {
		SignedURL string `json:"signedURL"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to parse sign response: %w", err)
	}
	return s.url + result.SignedURL, nil
}

// GenerateStoragePath places a project-level asset under its project.
func (s *Storage) GenerateStoragePath(projectID uuid.UUID, filename string) string {
	return filepath.Join(projectID.String(), filename)
}

// GenerateClipStoragePath places a per-clip asset under its project and clip.
func (s *Storage) GenerateClipStoragePath(projectID, clipID uuid.UUID, filename string) string {
	return filepath.Join(projectID.String(), "clips", clipID.String(), filename)
}

// waitRetry sleeps the backoff delay before retry attempt n, honoring ctx.
func waitRetry(ctx context.Context, attempt int, op, target string) error {
	delay := retryDelay(attempt)
	log.Printf("[Storage] %s retry %d/%d for %s (waiting %v)", op, attempt-1, maxAttempts-1, target, delay)
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s cancelled: %w", strings.ToLower(op), ctx.Err())
	case <-time.After(delay):
		return nil
	}
}

// retryDelay doubles from the base per attempt, capped, plus up to 25%
// jitter so parallel workers don't retry in lockstep.
func retryDelay(attempt int) time.Duration {
	delay := baseRetryDelay << (attempt - 2)
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay + time.Duration(rand.Int63n(int64(delay)/4+1))
}

// isRetryableError reports whether a transport-level failure is worth
// another attempt.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := err.Error()
	for _, transient := range []string{"timeout", "connection reset", "connection refused", "EOF", "broken pipe"} {
		if strings.Contains(msg, transient) {
			return true
		}
	}
	return false
}

// isRetryableStatus reports whether an HTTP status is worth another attempt.
func isRetryableStatus(status int) bool {
	switch status {
	case http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
