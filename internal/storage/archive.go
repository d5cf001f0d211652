// Package storage archives uploaded invoice documents in S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
)

// DocumentArchive keeps a copy of every processed document
type DocumentArchive interface {
	// Store saves data and returns where it can be found
	Store(ctx context.Context, fileName string, data []byte) (string, error)
}

// S3Archive stores documents in an S3-compatible bucket
type S3Archive struct {
	s3Client      *s3.S3
	bucket        string
	prefix        string
	publicBaseURL string
}

// Config holds configuration for the S3 archive
type Config struct {
	Endpoint        string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
	Region          string
	Prefix          string
	PublicBaseURL   string // optional; used to build returned URLs
}

// NewS3Archive creates a new S3 archive
func NewS3Archive(config *Config) (*S3Archive, error) {
	if config.Endpoint == "" || config.AccessKeyID == "" || config.AccessKeySecret == "" {
		return nil, fmt.Errorf("S3 configuration is incomplete")
	}

	if config.Bucket == "" {
		return nil, fmt.Errorf("S3 bucket is not configured")
	}

	region := config.Region
	if region == "" {
		region = "us-east-1"
	}

	sess, err := session.NewSession(&aws.Config{
		Region:           aws.String(region),
		Endpoint:         aws.String(config.Endpoint),
		Credentials:      credentials.NewStaticCredentials(config.AccessKeyID, config.AccessKeySecret, ""),
		S3ForcePathStyle: aws.Bool(true),
		DisableSSL:       aws.Bool(strings.HasPrefix(config.Endpoint, "http://")),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 session: %w", err)
	}

	return &S3Archive{
		s3Client:      s3.New(sess),
		bucket:        config.Bucket,
		prefix:        strings.Trim(config.Prefix, "/"),
		publicBaseURL: strings.TrimRight(config.PublicBaseURL, "/"),
	}, nil
}

// Store uploads a PDF under a unique key
func (a *S3Archive) Store(ctx context.Context, fileName string, data []byte) (string, error) {
	key := a.objectKey(fileName)

	_, err := a.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String("application/pdf"),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	if a.publicBaseURL != "" {
		return fmt.Sprintf("%s/%s/%s", a.publicBaseURL, a.bucket, key), nil
	}
	return fmt.Sprintf("s3://%s/%s", a.bucket, key), nil
}

// objectKey is prefix/<uuid>-<base name>
func (a *S3Archive) objectKey(fileName string) string {
	base := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if base == "." || base == "/" {
		base = "document.pdf"
	}
	key := uuid.NewString() + "-" + base
	if a.prefix != "" {
		key = a.prefix + "/" + key
	}
	return key
}
