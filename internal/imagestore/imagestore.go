// Package imagestore uploads admin-form images to S3-compatible storage and
// hands back a public URL. Validation happens before any network call.
package imagestore

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Bucket names one of the three image destinations.
type Bucket string

const (
	BucketCouponImages Bucket = "coupon-images"
	BucketNewsImages   Bucket = "news-images"
	BucketPartnerLogos Bucket = "partner-logos"
)

// Valid reports whether b is one of the known buckets.
func (b Bucket) Valid() bool {
	switch b {
	case BucketCouponImages, BucketNewsImages, BucketPartnerLogos:
		return true
	}
	return false
}

// MaxImageSize is the upload limit enforced before any network call.
const MaxImageSize = 5 * 1024 * 1024

// ValidationError carries the user-facing message for a rejected file.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Config holds S3-compatible storage settings. Empty credentials leave the
// service unconfigured, which the admin forms treat as "paste a URL instead".
type Config struct {
	Endpoint      string
	Region        string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
}

// s3Client is the slice of the S3 API the service uses, for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Service uploads validated images and returns their public URLs.
type Service struct {
	cfg    Config
	client s3Client
	logger *slog.Logger
}

// NewService creates the image store. When credentials are missing the
// service stays unconfigured and Upload fails fast.
func NewService(cfg Config, logger *slog.Logger) *Service {
	svc := &Service{cfg: cfg, logger: logger}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		svc.client = newS3Client(cfg)
	}
	return svc
}

func newS3Client(cfg Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Configured reports whether uploads can be attempted.
func (s *Service) Configured() bool {
	return s.client != nil
}

// ValidateImage rejects non-image MIME types and files over the size limit.
// The returned error text is shown to the user as-is.
func ValidateImage(contentType string, size int64) error {
	if !strings.HasPrefix(contentType, "image/") {
		return &ValidationError{Message: "画像ファイルを選択してください"}
	}
	if size > MaxImageSize {
		return &ValidationError{Message: "ファイルサイズは5MB以下にしてください"}
	}
	return nil
}

// Upload stores the file under a fresh key in the given bucket and returns
// its public URL.
func (s *Service) Upload(ctx context.Context, bucket Bucket, filename, contentType string, body io.Reader, size int64) (string, error) {
	if !s.Configured() {
		return "", fmt.Errorf("image storage not configured")
	}
	if !bucket.Valid() {
		return "", fmt.Errorf("unknown bucket %q", bucket)
	}
	if err := ValidateImage(contentType, size); err != nil {
		return "", err
	}

	key := newKey(filename)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(string(bucket)),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		s.logger.Error("image upload", "bucket", bucket, "key", key, "error", err)
		return "", fmt.Errorf("upload to %s: %w", bucket, err)
	}

	url := fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.cfg.PublicBaseURL, "/"), bucket, key)
	s.logger.Info("image uploaded", "bucket", bucket, "key", key)
	return url, nil
}

// newKey builds a collision-resistant object key keeping the original
// extension.
func newKey(filename string) string {
	suffix := make([]byte, 4)
	rand.Read(suffix)
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), hex.EncodeToString(suffix), ext)
}
