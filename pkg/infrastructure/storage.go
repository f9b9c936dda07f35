package infrastructure

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// SupabaseStorage uploads objects through the Storage REST API.
type SupabaseStorage struct {
	client  *resty.Client
	baseURL string
	bucket  string
}

func NewSupabaseStorage(baseURL, serviceKey, bucket string) *SupabaseStorage {
	baseURL = strings.TrimRight(baseURL, "/")
	client := resty.New().
		SetBaseURL(baseURL+"/storage/v1").
		SetAuthToken(serviceKey).
		SetHeader("apikey", serviceKey).
		SetTimeout(60 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)
	return &SupabaseStorage{client: client, baseURL: baseURL, bucket: bucket}
}

// Put uploads data at path, overwriting any existing object, and returns its
// public URL.
func (s *SupabaseStorage) Put(ctx context.Context, path, contentType string, data []byte) (string, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetHeader("x-upsert", "true").
		SetBody(data).
		Post("/object/" + s.bucket + "/" + path)
	if err != nil {
		return "", fmt.Errorf("storage: upload %s: %w", path, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("storage: upload %s: %s: %s", path, resp.Status(), resp.String())
	}
	return s.PublicURL(path), nil
}

func (s *SupabaseStorage) PublicURL(path string) string {
	return s.baseURL + "/storage/v1/object/public/" + s.bucket + "/" + path
}

// LocalStorage keeps objects on disk; the server exposes dir under urlPrefix.
type LocalStorage struct {
	dir       string
	urlPrefix string
}

func NewLocalStorage(dir, urlPrefix string) *LocalStorage {
	return &LocalStorage{dir: dir, urlPrefix: strings.TrimRight(urlPrefix, "/")}
}

func (s *LocalStorage) Dir() string { return s.dir }

func (s *LocalStorage) Put(_ context.Context, path, _ string, data []byte) (string, error) {
	clean := filepath.Clean("/" + path)
	full := filepath.Join(s.dir, clean)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", err
	}
	return s.urlPrefix + filepath.ToSlash(clean), nil
}
