// Package images uploads property images to S3-compatible object storage.
// When an upload fails, or no storage is configured, the record gets the
// placeholder image URL instead, so a property always has at least one image.
package images

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/brokerdesk/internal/filex"
	"github.com/dmitrijs2005/brokerdesk/internal/logging"
)

// MaxImageBytes bounds the size of an uploaded image.
const MaxImageBytes = 10 << 20

var ErrNotImage = errors.New("file is not an image")

// Uploader stores a local image file and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, filePath string) (string, error)
}

// ObjectPutter is the subset of *s3.Client used for uploads.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Config struct {
	Bucket       string
	Region       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
	// PublicBaseURL prefixes object keys in returned URLs. When empty the
	// URL is built from BaseEndpoint and Bucket.
	PublicBaseURL string
}

// Enabled reports whether enough is configured to attempt uploads.
func (c S3Config) Enabled() bool {
	return c.Bucket != "" && c.Region != ""
}

type S3Uploader struct {
	api ObjectPutter
	cfg S3Config
	log logging.Logger
	now func() time.Time
}

// NewS3Uploader builds an uploader from cfg. Static credentials are used
// when both keys are set; otherwise the default AWS credential chain.
func NewS3Uploader(ctx context.Context, cfg S3Config, log logging.Logger) (*S3Uploader, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	api := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3UploaderWithClient(api, cfg, log), nil
}

func NewS3UploaderWithClient(api ObjectPutter, cfg S3Config, log logging.Logger) *S3Uploader {
	return &S3Uploader{api: api, cfg: cfg, log: log.With("component", "images"), now: time.Now}
}

// StorageKey returns a fresh object key for an image named name.
func StorageKey(now time.Time, name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	return fmt.Sprintf("properties/%d/%02d/%02d/%s%s", now.Year(), now.Month(), now.Day(), uuid.New(), ext)
}

func (u *S3Uploader) Upload(ctx context.Context, filePath string) (string, error) {
	data, err := filex.ReadLimited(filePath, MaxImageBytes)
	if err != nil {
		return "", err
	}
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("%w: %s is %s", ErrNotImage, filePath, contentType)
	}

	key := StorageKey(u.now(), filePath)
	_, err = u.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	u.log.Info(ctx, "image uploaded", "key", key, "bytes", len(data))
	return u.publicURL(key), nil
}

func (u *S3Uploader) publicURL(key string) string {
	if u.cfg.PublicBaseURL != "" {
		return strings.TrimRight(u.cfg.PublicBaseURL, "/") + "/" + key
	}
	if u.cfg.BaseEndpoint != "" {
		return strings.TrimRight(u.cfg.BaseEndpoint, "/") + "/" + path.Join(u.cfg.Bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.cfg.Bucket, u.cfg.Region, key)
}

// Resolve turns image references into URLs. References that already are
// http(s) URLs pass through; local files are uploaded with up. Files that
// cannot be uploaded are dropped, and if nothing is left the placeholder is
// returned. A nil up means uploads are not configured.
func Resolve(ctx context.Context, up Uploader, refs []string, placeholder string, log logging.Logger) []string {
	urls := make([]string, 0, len(refs))
	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}
		if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
			urls = append(urls, ref)
			continue
		}
		if up == nil {
			log.Warn(ctx, "image storage not configured, skipping upload", "file", ref)
			continue
		}
		u, err := up.Upload(ctx, ref)
		if err != nil {
			log.Warn(ctx, "image upload failed", "file", ref, "error", err)
			continue
		}
		urls = append(urls, u)
	}
	if len(urls) == 0 && placeholder != "" {
		urls = append(urls, placeholder)
	}
	return urls
}
