package storage

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/aura-webinar/meeting-transcriber/internal/models"
)

// FolderAudio is the S3 prefix for uploaded recordings.
const FolderAudio = "audio"

// S3Config holds S3 client configuration.
type S3Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
}

// S3 stages audio in a bucket and hands out pre-signed GET URLs so the speech
// service can read it.
type S3 struct {
	client   *s3.Client
	uploader *manager.Uploader
	presign  *s3.PresignClient
	cfg      S3Config
	now      func() time.Time
	logger   *zap.Logger
}

// NewS3 creates an S3 client using credentials from config or the environment
// (AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY), else the default credential chain.
func NewS3(ctx context.Context, cfg S3Config, logger *zap.Logger) (*S3, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	accessKey := cfg.AccessKeyID
	secretKey := cfg.SecretAccessKey
	if accessKey == "" || secretKey == "" {
		accessKey = os.Getenv("AWS_ACCESS_KEY_ID")
		secretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	}
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if accessKey != "" && secretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKey, secretKey, "",
		)))
		logger.Info("S3 client using static credentials", zap.String("region", cfg.Region), zap.String("bucket", cfg.Bucket))
	} else {
		logger.Warn("S3 client using default credential chain (AWS_ACCESS_KEY_ID/AWS_SECRET_ACCESS_KEY not set)")
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg)
	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = 5 * 1024 * 1024
	})
	return &S3{
		client:   client,
		uploader: uploader,
		presign:  s3.NewPresignClient(client),
		cfg:      cfg,
		now:      time.Now,
		logger:   logger,
	}, nil
}

// AudioKey returns the S3 object key: audio/{objectName}.
func AudioKey(objectName string) string {
	return path.Join(FolderAudio, path.Base(objectName))
}

// Upload puts data in the audio bucket and returns a pre-signed GET URL valid for SASValidity.
func (s *S3) Upload(ctx context.Context, objectName, contentType string, data []byte) (models.StorageObjectRef, error) {
	key := AudioKey(objectName)
	size := int64(len(data))
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: &size,
	})
	if err != nil {
		return models.StorageObjectRef{}, fmt.Errorf("upload: %w", err)
	}

	issued := s.now()
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = SASValidity
	})
	if err != nil {
		return models.StorageObjectRef{}, fmt.Errorf("presign get: %w", err)
	}

	s.logger.Info("S3 object uploaded", zap.String("bucket", s.cfg.Bucket), zap.String("key", key), zap.Int64("size", size))
	return models.StorageObjectRef{
		ObjectName: objectName,
		AccessURL:  req.URL,
		Expiry:     issued.Add(SASValidity),
	}, nil
}
