package blob

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/pmorel/cv-backend/internal/logging"
	sc "github.com/pmorel/cv-backend/internal/server/config"
)

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in)
	}
	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error) {
		return c.DeleteObject(ctx, in)
	}
)

// S3Store implements Store against an S3-compatible backend (MinIO in
// development). Objects are publicly readable; the returned URL is
// path-style: <endpoint>/<bucket>/<key>.
type S3Store struct {
	accessKey string
	secretKey string
	bucket    string
	region    string
	endpoint  string
	logger    logging.Logger
	now       func() time.Time
}

func NewS3Store(cfg *sc.Config, logger logging.Logger) *S3Store {
	return &S3Store{
		accessKey: cfg.S3AccessKey,
		secretKey: cfg.S3SecretKey,
		bucket:    cfg.S3Bucket,
		region:    cfg.S3Region,
		endpoint:  strings.TrimSuffix(cfg.S3BaseEndpoint, "/"),
		logger:    logger.With("module", "blob"),
		now:       time.Now,
	}
}

func (s *S3Store) client(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(s.region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.accessKey,
			s.secretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.endpoint)
		o.UsePathStyle = true
	}), nil
}

// Validate applies the upload policy without touching the network.
func (s *S3Store) Validate(contentType string, size int64) error {
	return validate(contentType, size)
}

// Upload validates and writes one object, returning its public URL.
// Nothing is written when validation fails.
func (s *S3Store) Upload(ctx context.Context, r io.Reader, size int64, contentType, name string) (string, error) {
	if err := validate(contentType, size); err != nil {
		return "", err
	}

	client, err := s.client(ctx)
	if err != nil {
		return "", fmt.Errorf("s3 client: %w", err)
	}

	key := storageKey(name, s.now())

	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          r,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put %s: %w", key, err)
	}

	return s.publicURL(key), nil
}

// Delete removes the object behind a previously returned URL. Failures are
// logged and reported as false; callers treat deletion as best-effort.
func (s *S3Store) Delete(ctx context.Context, url string) bool {
	key, ok := s.keyFromURL(url)
	if !ok {
		s.logger.Warn(ctx, "blob delete: url outside managed namespace", "url", url)
		return false
	}

	client, err := s.client(ctx)
	if err != nil {
		s.logger.Error(ctx, "blob delete: s3 client", "error", err.Error())
		return false
	}

	if _, err := deleteObject(client, ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		s.logger.Error(ctx, "blob delete failed", "key", key, "error", err.Error())
		return false
	}

	return true
}

func (s *S3Store) publicURL(key string) string {
	return s.endpoint + "/" + s.bucket + "/" + key
}

func (s *S3Store) keyFromURL(url string) (string, bool) {
	prefix := s.endpoint + "/" + s.bucket + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(url, prefix)
	return key, key != ""
}
