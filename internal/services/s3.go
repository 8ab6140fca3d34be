package services

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	appconfig "smartentrance/internal/config"
	"smartentrance/internal/utils/logger"
)

// s3API is the part of *s3.Client the uploader calls.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// S3Service stores document files directly in a bucket.
type S3Service struct {
	client     s3API
	bucketName string
	endpoint   string
	region     string
	logger     *logger.Logger
}

var _ Uploader = (*S3Service)(nil)

func NewS3Service(ctx context.Context, cfg appconfig.S3Config) (*S3Service, error) {
	log := logger.New("s3_service")

	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, log.Error("S3 credentials are empty ❌", fmt.Errorf("accessKey or secretKey is empty"))
	}
	if cfg.BucketName == "" {
		return nil, log.Error("S3 bucket is not configured ❌", fmt.Errorf("S3_BUCKET_NAME is empty"))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
		config.WithRetryMode(aws.RetryModeStandard),
		config.WithRetryMaxAttempts(3),
	)
	if err != nil {
		return nil, log.Error("Unable to load SDK config ❌", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.%s", cfg.Region, cfg.Endpoint))
			o.UsePathStyle = true
		}
	})

	svc := newS3Service(client, cfg, log)
	if err := svc.verify(ctx); err != nil {
		return nil, err
	}

	log.Success("S3 service initialized successfully ✅")
	return svc, nil
}

func newS3Service(client s3API, cfg appconfig.S3Config, log *logger.Logger) *S3Service {
	return &S3Service{
		client:     client,
		bucketName: cfg.BucketName,
		endpoint:   cfg.Endpoint,
		region:     cfg.Region,
		logger:     log,
	}
}

func (s *S3Service) verify(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucketName)})
	if err != nil {
		return s.logger.Error("Failed to verify S3 bucket ❌", err)
	}
	return nil
}

// Upload stores the file under a fresh key and returns its public URL.
func (s *S3Service) Upload(ctx context.Context, file File) (string, error) {
	key := fmt.Sprintf("documents/%s%s", uuid.New().String(), filepath.Ext(file.Name))
	s.logger.Info("📤 Uploading %s as %s", file.Name, key)

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(file.Content),
		ContentType: aws.String(contentType),
		Metadata:    map[string]string{"original-name": file.Name},
	})
	if err != nil {
		return "", s.logger.Error("Failed to upload file to storage ❌", err)
	}

	fileURL := s.objectURL(key)
	s.logger.Success("File uploaded: %s", fileURL)
	return fileURL, nil
}

// Discard deletes the object behind a URL returned by Upload.
func (s *S3Service) Discard(ctx context.Context, fileURL string) error {
	key, err := s.keyOf(fileURL)
	if err != nil {
		return err
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return s.logger.Error("Failed to delete %s ❌", err, key)
	}

	s.logger.Info("🗑️ Discarded %s", key)
	return nil
}

func (s *S3Service) objectURL(key string) string {
	if s.endpoint != "" {
		return fmt.Sprintf("https://%s.%s/%s/%s", s.region, s.endpoint, s.bucketName, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucketName, s.region, key)
}

func (s *S3Service) keyOf(fileURL string) (string, error) {
	u, err := url.Parse(fileURL)
	if err != nil {
		return "", fmt.Errorf("parse file url: %w", err)
	}

	p := u.Path
	if s.endpoint != "" {
		prefix := "/" + s.bucketName + "/"
		if len(p) <= len(prefix) || p[:len(prefix)] != prefix {
			return "", fmt.Errorf("url %q is not in bucket %s", fileURL, s.bucketName)
		}
		return p[len(prefix):], nil
	}
	if p == "" || p == "/" {
		return "", fmt.Errorf("url %q has no object key", fileURL)
	}
	return path.Clean(p)[1:], nil
}
