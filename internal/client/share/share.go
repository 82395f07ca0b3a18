// Package share publishes a receipt PDF to S3-compatible storage and hands
// back a time-limited download link.
package share

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/payslips/internal/client/models"
	"github.com/dmitrijs2005/payslips/internal/logging"
	"github.com/dmitrijs2005/payslips/internal/netx"
	"github.com/google/uuid"
)

const (
	pdfContentType = "application/pdf"
	uploadExpiry   = 15 * time.Minute
)

var ErrNotConfigured = errors.New("sharing is not configured")

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}

	uploadObject = netx.UploadToPresignedURL
)

type Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	LinkTTL   time.Duration
}

type Service interface {
	// Share uploads pdf for target and returns a presigned GET URL valid for
	// the configured link TTL.
	Share(ctx context.Context, target models.Target, pdf []byte) (string, error)
}

type s3Service struct {
	config Config
	http   *http.Client
	logger logging.Logger
}

func NewS3Service(cfg Config, httpClient *http.Client, logger logging.Logger) Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &s3Service{config: cfg, http: httpClient, logger: logger}
}

// ObjectKey places each shared copy under a unique name so links to older
// copies keep working.
func ObjectKey(t models.Target) string {
	return fmt.Sprintf("receipts/%d/%d/%d-%s.pdf", t.EmployeeID, t.Period, t.Type, uuid.NewString())
}

func (s *s3Service) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(s.config.Region)}
	if s.config.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.AccessKey,
			s.config.SecretKey,
			"",
		)))
	}

	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.config.Endpoint != "" {
			o.BaseEndpoint = aws.String(s.config.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3PresignClient(client), nil
}

func (s *s3Service) Share(ctx context.Context, target models.Target, pdf []byte) (string, error) {
	if s.config.Bucket == "" {
		return "", ErrNotConfigured
	}

	pc, err := s.getPresignClient(ctx)
	if err != nil {
		return "", fmt.Errorf("s3 client: %w", err)
	}

	bucket := s.config.Bucket
	key := ObjectKey(target)

	put, err := presignPutObject(pc, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		ContentType: aws.String(pdfContentType),
	}, s3.WithPresignExpires(uploadExpiry))
	if err != nil {
		return "", fmt.Errorf("presign upload: %w", err)
	}

	if err := uploadObject(ctx, s.http, put.URL, pdf, pdfContentType); err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}

	get, err := presignGetObject(pc, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(s.config.LinkTTL))
	if err != nil {
		return "", fmt.Errorf("presign download: %w", err)
	}

	s.logger.Info(ctx, "receipt shared", "key", key, "expires_in", s.config.LinkTTL.String())
	return get.URL, nil
}
