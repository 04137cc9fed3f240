package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cmlabs-hris/training-records-backend/internal/domain/upload"
)

const inlinePrefix = "data:"

// InlineStorage keeps no files at all: the reference is a base64 data URI
// holding the content, persisted in the row itself. maxSize caps the decoded
// content so rows stay bounded.
type InlineStorage struct {
	maxSize int64
}

func NewInlineStorage(maxSize int64) *InlineStorage {
	return &InlineStorage{maxSize: maxSize}
}

func (s *InlineStorage) Upload(ctx context.Context, file io.Reader, path string, contentType string) (string, error) {
	content, err := io.ReadAll(io.LimitReader(file, s.maxSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	if int64(len(content)) > s.maxSize {
		return "", upload.ErrFileTooLarge
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return inlinePrefix + contentType + ";base64," + base64.StdEncoding.EncodeToString(content), nil
}

func (s *InlineStorage) Download(ctx context.Context, ref string) (io.ReadCloser, error) {
	content, err := decodeDataURI(ref)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

// Delete is a no-op: the content disappears with the row that holds it.
func (s *InlineStorage) Delete(ctx context.Context, ref string) error {
	return nil
}

func (s *InlineStorage) GetURL(ctx context.Context, ref string, expiry time.Duration) (string, error) {
	if _, err := decodeDataURI(ref); err != nil {
		return "", err
	}
	return ref, nil
}

func (s *InlineStorage) Exists(ctx context.Context, ref string) (bool, error) {
	_, err := decodeDataURI(ref)
	return err == nil, nil
}

func decodeDataURI(ref string) ([]byte, error) {
	if !strings.HasPrefix(ref, inlinePrefix) {
		return nil, fmt.Errorf("%w: not an inline reference", upload.ErrFileNotFound)
	}

	meta, payload, ok := strings.Cut(strings.TrimPrefix(ref, inlinePrefix), ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("%w: malformed inline reference", upload.ErrFileNotFound)
	}

	content, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", upload.ErrFileNotFound, err)
	}
	return content, nil
}
