package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path"
	"strings"

	"loan-desk/internal/config"
	"loan-desk/internal/domain/loan"
	"loan-desk/internal/pkg/apperrors"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

const uploadsPrefix = "uploads"

type GCSDocumentStorage struct {
	client        *storage.Client
	bucket        string
	publicBaseURL string
	logger        *slog.Logger
}

var _ loan.DocumentStorage = (*GCSDocumentStorage)(nil)

func NewGCSClient(ctx context.Context, opts ...option.ClientOption) (*storage.Client, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	return client, nil
}

func NewGCSDocumentStorage(client *storage.Client, cfg config.StorageConfig, logger *slog.Logger) (*GCSDocumentStorage, error) {
	if client == nil {
		return nil, fmt.Errorf("GCS client cannot be nil")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage bucket must be configured")
	}
	base := cfg.PublicBaseURL
	if base == "" {
		base = "https://storage.googleapis.com"
	}
	return &GCSDocumentStorage{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(base, "/"),
		logger:        logger.With(slog.String("component", "GCSDocumentStorage"), slog.String("bucket", cfg.Bucket)),
	}, nil
}

// ObjectName places a file under uploads/<category>/. Only the base name of
// filename is kept.
func ObjectName(category, filename string) (string, error) {
	category = strings.Trim(strings.TrimSpace(category), "/")
	if category == "" || strings.Contains(category, "/") || category == "." || category == ".." {
		return "", apperrors.NewValidationError("category", fmt.Sprintf("invalid document category %q", category))
	}

	base := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), "\\", "/"))
	if base == "" || base == "." || base == ".." || base == "/" {
		return "", apperrors.NewValidationError("document", fmt.Sprintf("invalid document file name %q", filename))
	}
	return path.Join(uploadsPrefix, category, base), nil
}

func (s *GCSDocumentStorage) Upload(ctx context.Context, category, filename, contentType string, r io.Reader) (string, error) {
	objectName, err := ObjectName(category, filename)
	if err != nil {
		return "", err
	}
	logCtx := s.logger.With(slog.String("objectName", objectName))

	writer := s.client.Bucket(s.bucket).Object(objectName).NewWriter(ctx)
	if contentType != "" {
		writer.ContentType = contentType
	}

	written, err := io.Copy(writer, r)
	if err != nil {
		_ = writer.Close()
		logCtx.ErrorContext(ctx, "Failed to copy document to GCS", slog.Any("error", err))
		return "", fmt.Errorf("failed to write to GCS: %w", err)
	}
	if err := writer.Close(); err != nil {
		logCtx.ErrorContext(ctx, "Failed to finalize GCS write", slog.Any("error", err))
		return "", fmt.Errorf("failed to finalize GCS write: %w", err)
	}

	publicURL, err := url.JoinPath(s.publicBaseURL, s.bucket, objectName)
	if err != nil {
		return "", fmt.Errorf("failed to build document URL: %w", err)
	}
	logCtx.InfoContext(ctx, "Uploaded loan document", slog.Int64("bytes", written))
	return publicURL, nil
}

func (s *GCSDocumentStorage) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
