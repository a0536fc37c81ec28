// Package storage issues presigned upload URLs for item images on
// S3-compatible object storage.
package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dom/coinshelf/internal/config"
	"github.com/dom/coinshelf/internal/domain"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
)

const uploadExpiry = 15 * time.Minute

var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
}

// Upload describes where the client should PUT the image bytes.
type Upload struct {
	Method    string            `json:"method"`
	URL       string            `json:"upload_url"`
	Headers   map[string]string `json:"headers"`
	Key       string            `json:"key"`
	PublicURL string            `json:"image_url"`
	ExpiresAt time.Time         `json:"expires_at"`
}

type ImageStore struct {
	cfg *config.Config

	once      sync.Once
	presigner *s3.PresignClient
	initErr   error
}

func NewImageStore(cfg *config.Config) *ImageStore {
	return &ImageStore{cfg: cfg}
}

// Enabled reports whether a bucket is configured.
func (s *ImageStore) Enabled() bool {
	return s != nil && s.cfg.StorageEnabled()
}

func (s *ImageStore) presignClient(ctx context.Context) (*s3.PresignClient, error) {
	s.once.Do(func() {
		opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(s.cfg.S3Region)}
		if s.cfg.S3AccessKey != "" {
			opts = append(opts, awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(s.cfg.S3AccessKey, s.cfg.S3SecretKey, ""),
			))
		}
		awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
		if err != nil {
			s.initErr = fmt.Errorf("load aws config: %w", err)
			return
		}

		client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
			if s.cfg.S3Endpoint != "" {
				o.BaseEndpoint = aws.String(s.cfg.S3Endpoint)
				o.UsePathStyle = true
			}
		})
		s.presigner = newS3PresignClient(client)
	})
	return s.presigner, s.initErr
}

// PresignImageUpload returns a presigned PUT for an image of contentType
// belonging to the given item.
func (s *ImageStore) PresignImageUpload(ctx context.Context, userID, itemID uuid.UUID, contentType string) (*Upload, error) {
	if !s.Enabled() {
		return nil, domain.ErrStorageUnavailable
	}
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, domain.Invalidf("unsupported image type %q", contentType)
	}

	pc, err := s.presignClient(ctx)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("items/%s/%s/%s.%s", userID, itemID, uuid.New(), ext)
	req, err := presignPutObject(pc, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.S3Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(uploadExpiry))
	if err != nil {
		return nil, fmt.Errorf("presign upload: %w", err)
	}

	headers := make(map[string]string, len(req.SignedHeader))
	for name, values := range req.SignedHeader {
		if strings.EqualFold(name, "host") {
			continue
		}
		headers[name] = strings.Join(values, ",")
	}

	return &Upload{
		Method:    req.Method,
		URL:       req.URL,
		Headers:   headers,
		Key:       key,
		PublicURL: s.publicURL(key),
		ExpiresAt: time.Now().Add(uploadExpiry).UTC(),
	}, nil
}

func (s *ImageStore) publicURL(key string) string {
	if s.cfg.S3PublicBaseURL != "" {
		return s.cfg.S3PublicBaseURL + "/" + key
	}
	if s.cfg.S3Endpoint != "" {
		return strings.TrimRight(s.cfg.S3Endpoint, "/") + "/" + s.cfg.S3Bucket + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.S3Bucket, s.cfg.S3Region, key)
}
