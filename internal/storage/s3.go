package storage

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"

	"arforge/internal/config"
)

// S3Store uploads artifacts to an S3 (or S3-compatible) bucket.
type S3Store struct {
	uploader      *s3manager.Uploader
	bucket        string
	region        string
	endpoint      string
	publicBaseURL string
	pathStyle     bool
}

var _ ObjectStore = (*S3Store)(nil)

// NewS3Store builds the uploader from configuration.
func NewS3Store(cfg *config.Config) (*S3Store, error) {
	s3cfg := cfg.Storage.S3

	awsCfg := &aws.Config{Region: aws.String(s3cfg.Region)}
	if s3cfg.AccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(s3cfg.AccessKey, s3cfg.SecretKey, "")
	}
	if s3cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(s3cfg.Endpoint)
	}
	if s3cfg.UsePathStyle {
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("create aws session: %w", err)
	}

	return &S3Store{
		uploader:      s3manager.NewUploader(sess),
		bucket:        s3cfg.Bucket,
		region:        s3cfg.Region,
		endpoint:      strings.TrimRight(s3cfg.Endpoint, "/"),
		publicBaseURL: s3cfg.PublicBaseURL,
		pathStyle:     s3cfg.UsePathStyle,
	}, nil
}

// Upload streams the local file to the bucket and returns its public URL.
func (s *S3Store) Upload(ctx context.Context, localPath, key string) (string, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open artifact: %w", err)
	}
	defer file.Close()

	_, err = s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(ContentTypeFor(localPath)),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}

	return s.publicURL(key), nil
}

func (s *S3Store) publicURL(key string) string {
	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + key
	}
	if s.endpoint != "" {
		if s.pathStyle {
			return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key)
		}
		return fmt.Sprintf("%s/%s", s.endpoint, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
