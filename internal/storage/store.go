package storage

import (
	"CloudVault/config"
	"context"
	"errors"
	"io"
	"log"
	"time"
)

// ErrObjectNotFound is returned when a key has no stored object.
var ErrObjectNotFound = errors.New("object not found")

// PutOptions describes upload options for object storage.
type PutOptions struct {
	ContentType string
}

// CopySource describes a source object for server-side copies.
type CopySource struct {
	Bucket string
	Object string
}

// CopyDest describes a destination object for server-side copies.
type CopyDest struct {
	Bucket string
	Object string
}

// ObjectInfo is the metadata returned by Get, Stat and List.
type ObjectInfo struct {
	ObjectName   string
	Size         int64
	LastModified time.Time
}

// Store abstracts object storage operations.
type Store interface {
	PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts PutOptions) error
	GetObject(ctx context.Context, bucket, object string) (io.ReadCloser, ObjectInfo, error)
	StatObject(ctx context.Context, bucket, object string) (ObjectInfo, error)
	RemoveObject(ctx context.Context, bucket, object string) error
	CopyObject(ctx context.Context, dest CopyDest, src CopySource) error
	ListObjects(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error)
}

// Default is the main object store instance.
var Default Store

// Bucket is the bucket every blob of this service lives in.
var Bucket string

// Init builds Default from the storage config.
func Init() {
	cfg := config.StorageConfigInstance
	if cfg == nil {
		config.InitStorageConfig()
		cfg = config.StorageConfigInstance
	}
	Bucket = cfg.Bucket
	switch cfg.Driver {
	case config.StorageDriverMinio:
		InitMinio(cfg)
	default:
		store, err := NewLocalStore(cfg.Local.Root)
		if err != nil {
			log.Fatalln("local storage error:", err)
		}
		Default = store
		log.Println("init local storage success:", cfg.Local.Root)
	}
}

// IsNotFound reports whether err means the object is absent.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrObjectNotFound)
}
