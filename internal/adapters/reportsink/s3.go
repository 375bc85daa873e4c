package reportsink

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"

	"github.com/minio/minio-go/v7"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type S3Client interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// S3Sink archives day-close report workbooks under reports/<date>/.
type S3Sink struct {
	Client S3Client
	Bucket string
}

func NewS3Sink(cli S3Client, bucket string) *S3Sink {
	return &S3Sink{Client: cli, Bucket: bucket}
}

func (s *S3Sink) Upload(ctx context.Context, date, name string, payload []byte) (string, error) {
	key := fmt.Sprintf("reports/%s/%s", date, name)
	log.Printf("[SINK][S3][START] bucket=%q key=%q size=%d", s.Bucket, key, len(payload))

	info, err := s.Client.PutObject(ctx, s.Bucket, key, bytes.NewReader(payload), int64(len(payload)), minio.PutObjectOptions{
		ContentType: xlsxContentType,
	})
	if err != nil {
		log.Printf("[SINK][S3][ERR] put: %v", err)
		return "", fmt.Errorf("s3 put: %w", err)
	}

	log.Printf("[SINK][S3][OK] key=%q etag=%q size=%d", key, info.ETag, info.Size)
	return key, nil
}
