// Package storage keeps uploaded images (avatars, progress photos) in an S3
// bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/config"
)

const MaxImageBytes = 5 * 1024 * 1024

var (
	ErrStorageDisabled = errors.New("file storage is not configured")
	ErrUnsupportedType = errors.New("only JPEG, PNG, WebP or HEIC images are accepted")
	ErrTooLarge        = errors.New("image must be 5 MB or smaller")
)

var imageExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/heic": ".heic",
}

// Uploader stores objects and returns their public URL.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	Delete(ctx context.Context, key string) error
}

// New returns an S3-backed uploader, or a disabled one when no bucket is set.
func New(ctx context.Context, cfg *config.Config) (Uploader, error) {
	if !cfg.StorageEnabled() {
		return Disabled{}, nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.S3Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config for s3: %w", err)
	}
	base := cfg.S3PublicBaseURL
	if base == "" {
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.S3Region)
	}
	return &S3Store{
		client:     s3.NewFromConfig(awsCfg),
		bucket:     cfg.S3Bucket,
		publicBase: strings.TrimRight(base, "/"),
	}, nil
}

type S3Store struct {
	client     *s3.Client
	bucket     string
	publicBase string
}

func (s *S3Store) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to s3: %w", err)
	}
	return s.publicBase + "/" + key, nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from s3: %w", err)
	}
	return nil
}

// Disabled rejects every upload.
type Disabled struct{}

func (Disabled) Upload(context.Context, string, string, io.Reader, int64) (string, error) {
	return "", ErrStorageDisabled
}

func (Disabled) Delete(context.Context, string) error {
	return ErrStorageDisabled
}

// CheckImage validates an upload before it is sent to the bucket and returns
// the file extension to use.
func CheckImage(contentType string, size int64) (string, error) {
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	ext, ok := imageExt[ct]
	if !ok {
		return "", ErrUnsupportedType
	}
	if size <= 0 || size > MaxImageBytes {
		return "", ErrTooLarge
	}
	return ext, nil
}

// ImageKey builds "<prefix>/<owner>/<random><ext>".
func ImageKey(prefix string, owner uuid.UUID, ext string) string {
	return path.Join(prefix, owner.String(), uuid.New().String()+ext)
}

// UploadImage validates a multipart file and stores it under prefix/owner.
func UploadImage(ctx context.Context, up Uploader, fh *multipart.FileHeader, prefix string, owner uuid.UUID) (string, error) {
	contentType := fh.Header.Get("Content-Type")
	ext, err := CheckImage(contentType, fh.Size)
	if err != nil {
		return "", err
	}
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	return up.Upload(ctx, ImageKey(prefix, owner, ext), contentType, f, fh.Size)
}

// ReplaceImage uploads a new image and then removes the one at oldURL when it
// belongs to the same prefix and owner. A failed removal only leaves an
// orphaned object, so it is logged rather than returned.
func ReplaceImage(ctx context.Context, up Uploader, fh *multipart.FileHeader, prefix string, owner uuid.UUID, oldURL string) (string, error) {
	url, err := UploadImage(ctx, up, fh, prefix, owner)
	if err != nil {
		return "", err
	}
	if key, ok := KeyFromURL(oldURL, prefix, owner); ok {
		if err := up.Delete(ctx, key); err != nil {
			slog.Warn("failed to delete replaced image", "key", key, "error", err)
		}
	}
	return url, nil
}

// KeyFromURL recovers the object key of an image stored by UploadImage for
// prefix and owner. URLs pointing anywhere else report false.
func KeyFromURL(url, prefix string, owner uuid.UUID) (string, bool) {
	marker := path.Join(prefix, owner.String()) + "/"
	i := strings.LastIndex(url, "/"+marker)
	if i < 0 {
		return "", false
	}
	key := url[i+1:]
	name := key[len(marker):]
	if name == "" || strings.ContainsAny(name, "/?#") {
		return "", false
	}
	return key, true
}
