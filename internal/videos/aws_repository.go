package videos

import (
	"context"

	"github.com/amankumarsingh77/repair-video-stitcher/internal/models"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// StorageRepository is the Storage Gateway over S3-compatible object storage.
type StorageRepository interface {
	PutObject(ctx context.Context, input models.UploadInput) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, bucket, key string) (*s3.GetObjectOutput, error)
	ListObjects(ctx context.Context, bucket, prefix string) ([]string, error)
	DownloadFile(ctx context.Context, location, localPath, defaultBucket string) error
	UploadFile(ctx context.Context, bucket, key, localPath string) error
}
