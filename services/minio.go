package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"timetable-api/config"
	"timetable-api/models"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// TimetableExporter publishes a rendered timetable and returns a download link.
type TimetableExporter interface {
	Export(ctx context.Context, tt models.Timetable, format string) (*models.PresignedURLResponse, error)
}

// MinIOExporter uploads timetables to an object storage bucket.
type MinIOExporter struct {
	client   *minio.Client
	bucket   string
	urlTTL   time.Duration
	workbook *WorkbookService
	logger   *slog.Logger
	now      func() time.Time
}

func NewMinIOExporter(cfg *config.Config, logger *slog.Logger) (*MinIOExporter, error) {
	client, err := minio.New(cfg.MinIOEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
		Secure: cfg.MinIOUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &MinIOExporter{
		client:   client,
		bucket:   cfg.MinIOBucket,
		urlTTL:   cfg.PresignedURLTTL,
		workbook: NewWorkbookService(),
		logger:   logger.With("component", "exporter"),
		now:      time.Now,
	}, nil
}

// EnsureBucket creates the export bucket if it is missing.
func (s *MinIOExporter) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	s.logger.Info("bucket created", "bucket", s.bucket)
	return nil
}

// Export uploads tt as "json" or "xlsx" and returns a presigned GET URL.
func (s *MinIOExporter) Export(ctx context.Context, tt models.Timetable, format string) (*models.PresignedURLResponse, error) {
	data, contentType, err := s.render(tt, format)
	if err != nil {
		return nil, err
	}

	objectPath := fmt.Sprintf("timetables/%s.%s", s.now().UTC().Format("20060102T150405Z"), format)
	_, err = s.client.PutObject(ctx, s.bucket, objectPath, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload object: %w", err)
	}

	fileName := extractFileName(objectPath)
	reqParams := make(url.Values)
	reqParams.Set("response-content-disposition", fmt.Sprintf("attachment; filename=\"%s\"", fileName))

	presignedURL, err := s.client.PresignedGetObject(ctx, s.bucket, objectPath, s.urlTTL, reqParams)
	if err != nil {
		return nil, fmt.Errorf("failed to generate presigned url: %w", err)
	}

	s.logger.Info("timetable exported", "bucket", s.bucket, "object", objectPath, "bytes", len(data))
	return &models.PresignedURLResponse{
		URL:       presignedURL.String(),
		ExpiresAt: s.now().Add(s.urlTTL),
		FileName:  fileName,
	}, nil
}

func (s *MinIOExporter) render(tt models.Timetable, format string) ([]byte, string, error) {
	switch format {
	case "json":
		data, err := json.MarshalIndent(tt, "", "  ")
		if err != nil {
			return nil, "", err
		}
		return data, "application/json", nil
	case "xlsx":
		data, err := s.workbook.WriteTimetable(tt)
		if err != nil {
			return nil, "", err
		}
		return data, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil
	default:
		return nil, "", models.Invalidf("unsupported export format %q (want json or xlsx)", format)
	}
}

func extractFileName(path string) string {
	parts := strings.Split(path, "/")
	return parts[len(parts)-1]
}
