package repository

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/amankumarsingh77/repair-video-stitcher/internal/models"
	"github.com/amankumarsingh77/repair-video-stitcher/internal/videos"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
)

type awsRepository struct {
	client *s3.Client
}

func NewAwsRepository(awsClient *s3.Client) videos.StorageRepository {
	return &awsRepository{client: awsClient}
}

func (a *awsRepository) PutObject(ctx context.Context, input models.UploadInput) (*s3.PutObjectOutput, error) {
	res, err := a.client.PutObject(
		ctx,
		&s3.PutObjectInput{
			Bucket:        &input.BucketName,
			Key:           &input.Key,
			ContentType:   &input.MimeType,
			ContentLength: &input.Size,
			Body:          input.File,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upload file : %w", err)
	}
	return res, nil
}

func (a *awsRepository) GetObject(ctx context.Context, bucket, key string) (*s3.GetObjectOutput, error) {
	res, err := a.client.GetObject(
		ctx,
		&s3.GetObjectInput{
			Bucket: &bucket,
			Key:    &key,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to download file %s/%s : %w", bucket, key, err)
	}
	return res, nil
}

func (a *awsRepository) ListObjects(ctx context.Context, bucket, prefix string) ([]string, error) {
	input := &s3.ListObjectsV2Input{Bucket: &bucket}
	if prefix != "" {
		input.Prefix = &prefix
	}
	var keys []string
	paginator := s3.NewListObjectsV2Paginator(a.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects : %w", err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, *obj.Key)
		}
	}
	return keys, nil
}

// DownloadFile copies the object named by location to localPath. Location is a
// key in defaultBucket or a URL naming its own bucket.
func (a *awsRepository) DownloadFile(ctx context.Context, location, localPath, defaultBucket string) error {
	bucket, key, err := ResolveObject(location, defaultBucket)
	if err != nil {
		return err
	}
	obj, err := a.GetObject(ctx, bucket, key)
	if err != nil {
		return err
	}
	defer obj.Body.Close()

	if err = os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return fmt.Errorf("failed to create download dir: %w", err)
	}
	f, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", localPath, err)
	}
	if _, err = io.Copy(f, obj.Body); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", localPath, err)
	}
	return f.Close()
}

// UploadFile stores a local file, detecting its content type from the bytes.
func (a *awsRepository) UploadFile(ctx context.Context, bucket, key, localPath string) error {
	mtype, err := mimetype.DetectFile(localPath)
	if err != nil {
		return fmt.Errorf("failed to detect content type of %s: %w", localPath, err)
	}
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", localPath, err)
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", localPath, err)
	}

	_, err = a.PutObject(ctx, models.UploadInput{
		File:       f,
		Name:       filepath.Base(localPath),
		MimeType:   mtype.String(),
		Size:       fi.Size(),
		Key:        key,
		BucketName: bucket,
	})
	return err
}

// ResolveObject splits a storage location into bucket and key. s3:// and gs://
// URLs carry the bucket as host; http(s) URLs carry it as the first path
// segment; anything else is a key inside defaultBucket.
func ResolveObject(location, defaultBucket string) (string, string, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return "", "", fmt.Errorf("empty storage location")
	}
	u, err := url.Parse(location)
	if err == nil {
		switch strings.ToLower(u.Scheme) {
		case "s3", "gs":
			key := strings.TrimPrefix(u.Path, "/")
			if u.Host == "" || key == "" {
				return "", "", fmt.Errorf("invalid storage location %q", location)
			}
			return u.Host, key, nil
		case "http", "https":
			parts := strings.SplitN(strings.TrimPrefix(u.Path, "/"), "/", 2)
			if len(parts) == 2 && parts[0] != "" && parts[1] != "" {
				return parts[0], parts[1], nil
			}
		}
	}
	if defaultBucket == "" {
		return "", "", fmt.Errorf("no bucket for storage location %q", location)
	}
	return defaultBucket, strings.TrimPrefix(location, "/"), nil
}
