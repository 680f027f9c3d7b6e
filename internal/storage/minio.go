package storage

import (
	"CloudVault/config"
	"context"
	"fmt"
	"io"
	"log"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore implements Store with a MinIO client.
type MinioStore struct {
	client *minio.Client
}

// NewMinioStore builds a Store from a MinIO client.
func NewMinioStore(client *minio.Client) *MinioStore {
	return &MinioStore{client: client}
}

func mapMinioError(err error) error {
	if err == nil {
		return nil
	}
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" {
		return ErrObjectNotFound
	}
	return err
}

// PutObject uploads an object to MinIO.
func (s *MinioStore) PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts PutOptions) error {
	_, err := s.client.PutObject(ctx, bucket, object, reader, size, minio.PutObjectOptions{
		ContentType: opts.ContentType,
	})
	return err
}

// GetObject fetches an object and its size from MinIO.
func (s *MinioStore) GetObject(ctx context.Context, bucket, object string) (io.ReadCloser, ObjectInfo, error) {
	obj, err := s.client.GetObject(ctx, bucket, object, minio.GetObjectOptions{})
	if err != nil {
		return nil, ObjectInfo{}, mapMinioError(err)
	}
	stat, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return nil, ObjectInfo{}, mapMinioError(err)
	}
	info := ObjectInfo{
		ObjectName:   object,
		Size:         stat.Size,
		LastModified: stat.LastModified,
	}
	return obj, info, nil
}

// StatObject returns object metadata.
func (s *MinioStore) StatObject(ctx context.Context, bucket, object string) (ObjectInfo, error) {
	stat, err := s.client.StatObject(ctx, bucket, object, minio.StatObjectOptions{})
	if err != nil {
		return ObjectInfo{}, mapMinioError(err)
	}
	return ObjectInfo{ObjectName: object, Size: stat.Size, LastModified: stat.LastModified}, nil
}

// RemoveObject deletes an object from MinIO.
func (s *MinioStore) RemoveObject(ctx context.Context, bucket, object string) error {
	return s.client.RemoveObject(ctx, bucket, object, minio.RemoveObjectOptions{})
}

// CopyObject performs a server-side copy.
func (s *MinioStore) CopyObject(ctx context.Context, dest CopyDest, src CopySource) error {
	_, err := s.client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: dest.Bucket, Object: dest.Object},
		minio.CopySrcOptions{Bucket: src.Bucket, Object: src.Object},
	)
	return mapMinioError(err)
}

// ListObjects lists objects under prefix recursively.
func (s *MinioStore) ListObjects(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error) {
	var out []ObjectInfo
	for obj := range s.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		out = append(out, ObjectInfo{ObjectName: obj.Key, Size: obj.Size, LastModified: obj.LastModified})
	}
	return out, nil
}

// InitMinio initializes MinIO client and bucket.
func InitMinio(cfg *config.StorageConfig) {
	client, err := minio.New(fmt.Sprintf("%s:%s", cfg.Minio.Host, cfg.Minio.Port), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Minio.Username, cfg.Minio.Password, ""),
		Secure: cfg.Minio.UseSSL,
	})
	if err != nil {
		log.Fatalln("minio error:", err)
	}
	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		log.Fatalln("check bucket fail:", err)
	}
	if !exists { // 不需要人工去 minio 建立 bucket 直接后端进行操作
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			log.Fatalln("create bucket fail:", err)
		}
	}
	Default = NewMinioStore(client)
	log.Println("init minio success")
}
