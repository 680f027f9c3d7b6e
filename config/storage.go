package config

import (
	"path/filepath"
	"sync"
)

const (
	StorageDriverLocal = "local"
	StorageDriverMinio = "minio"
)

// StorageConfig selects and describes the blob backend.
type StorageConfig struct {
	Driver string             `json:"driver"`  // local, minio
	Local  LocalStorageConfig `json:"local"`   // 本地磁盘
	Minio  MinioConfig        `json:"minio"`   // 对象存储
	Bucket string             `json:"bucket"`  // local 下作为根目录下的子目录名
	ThumbW int                `json:"thumb_w"` // thumbnail bounds
	ThumbH int                `json:"thumb_h"`
}

// LocalStorageConfig describes the on-disk store.
type LocalStorageConfig struct {
	Root string `json:"root"`
}

// MinioConfig describes a MinIO endpoint.
type MinioConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	UseSSL   bool   `json:"use_ssl"`
}

var StorageConfigInstance *StorageConfig
var storageConfigOnce sync.Once

// InitStorageConfig initializes storage config from AppConfig.
func InitStorageConfig() {
	storageConfigOnce.Do(func() {
		driver := AppConfig.StorageDriver
		if driver != StorageDriverMinio {
			driver = StorageDriverLocal
		}
		root, err := filepath.Abs(AppConfig.UploadDir)
		if err != nil {
			root = AppConfig.UploadDir
		}
		StorageConfigInstance = &StorageConfig{
			Driver: driver,
			Local:  LocalStorageConfig{Root: root},
			Minio: MinioConfig{
				Host:     AppConfig.MinioHost,
				Port:     AppConfig.MinioPort,
				Username: AppConfig.MinioUsername,
				Password: AppConfig.MinioPassword,
				UseSSL:   AppConfig.MinioUseSSL,
			},
			Bucket: AppConfig.BucketName,
			ThumbW: 200,
			ThumbH: 200,
		}
	})
}
