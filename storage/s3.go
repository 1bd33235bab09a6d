// Package storage defines functions used to interact with the S3 API
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type S3Client struct {
	C        *s3.Client
	Uploader *manager.Uploader
	Bucket   *string

	// Base for the public download URLs handed out to users
	publicURL string
}

func NewS3() (*S3Client, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(viper.GetString("storage.region")),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			viper.GetString("storage.access_key_id"),
			viper.GetString("storage.secret_access_key"),
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	bucket := aws.String(viper.GetString("storage.bucket"))
	endpoint := viper.GetString("storage.endpoint")

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			// Path style is required for R2, MinIO and friends
			o.UsePathStyle = true
		}
	})

	_, err = client.HeadBucket(context.TODO(), &s3.HeadBucketInput{
		Bucket: bucket,
	})
	if err != nil {
		var apiErr smithy.APIError

		if errors.As(err, &apiErr) {
			if apiErr.ErrorCode() == "NotFound" {
				return nil, fmt.Errorf("bucket '%s' does not exist", *bucket)
			}
		}

		return nil, fmt.Errorf("failed to check if bucket exists, %w", err)
	}

	publicURL := fmt.Sprintf("https://%s.s3.%s.amazonaws.com", *bucket, viper.GetString("storage.region"))
	if endpoint != "" {
		publicURL = strings.TrimSuffix(endpoint, "/") + "/" + *bucket
	}

	return &S3Client{
		C:         client,
		Uploader:  manager.NewUploader(client),
		Bucket:    bucket,
		publicURL: publicURL,
	}, nil
}

// Put uploads the object under the given key and returns its durable
// download URL.
func (s *S3Client) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.Uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      s.Bucket,
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object, %w", err)
	}

	return s.publicURL + "/" + key, nil
}

// Delete removes the object under the given key. A key that's already
// gone is not an error, the caller only cares that it no longer exists.
func (s *S3Client) Delete(ctx context.Context, key string) error {
	_, err := s.C.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: s.Bucket,
		Key:    aws.String(key),
	})
	if err != nil {
		var apiErr smithy.APIError

		if errors.As(err, &apiErr) {
			code := apiErr.ErrorCode()
			if code == "NoSuchKey" || code == "NotFound" {
				zap.L().Debug("Object already absent", zap.String("key", key))
				return nil
			}
		}

		return fmt.Errorf("failed to delete object, %w", err)
	}

	return nil
}
