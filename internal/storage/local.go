package storage

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	cp "github.com/otiai10/copy"
)

// LocalStore keeps objects as plain files under root/bucket/object.
type LocalStore struct {
	root string
}

// NewLocalStore creates root if needed.
func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &LocalStore{root: root}, nil
}

func (s *LocalStore) path(bucket, object string) (string, error) {
	clean := filepath.ToSlash(filepath.Clean("/" + object))
	if clean == "/" || strings.Contains(object, "..") {
		return "", fmt.Errorf("invalid object key %q", object)
	}
	return filepath.Join(s.root, bucket, filepath.FromSlash(clean)), nil
}

// PutObject writes the object through a temp file so readers never see
// partial content.
func (s *LocalStore) PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts PutOptions) error {
	dst, err := s.path(bucket, object)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	src := reader
	if size >= 0 {
		src = io.LimitReader(reader, size)
	}
	written, err := io.Copy(tmp, src)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}
	if size >= 0 && written != size {
		return fmt.Errorf("short write: %d of %d bytes", written, size)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}

// GetObject opens the object for reading.
func (s *LocalStore) GetObject(ctx context.Context, bucket, object string) (io.ReadCloser, ObjectInfo, error) {
	p, err := s.path(bucket, object)
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, ObjectInfo{}, mapFSError(err)
	}
	stat, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, ObjectInfo{}, mapFSError(err)
	}
	return f, ObjectInfo{ObjectName: object, Size: stat.Size(), LastModified: stat.ModTime()}, nil
}

// StatObject returns object metadata.
func (s *LocalStore) StatObject(ctx context.Context, bucket, object string) (ObjectInfo, error) {
	p, err := s.path(bucket, object)
	if err != nil {
		return ObjectInfo{}, err
	}
	stat, err := os.Stat(p)
	if err != nil {
		return ObjectInfo{}, mapFSError(err)
	}
	if stat.IsDir() {
		return ObjectInfo{}, ErrObjectNotFound
	}
	return ObjectInfo{ObjectName: object, Size: stat.Size(), LastModified: stat.ModTime()}, nil
}

// RemoveObject deletes the object. Removing a missing object is not an error.
func (s *LocalStore) RemoveObject(ctx context.Context, bucket, object string) error {
	p, err := s.path(bucket, object)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// CopyObject duplicates an object into an independent file.
func (s *LocalStore) CopyObject(ctx context.Context, dest CopyDest, src CopySource) error {
	from, err := s.path(src.Bucket, src.Object)
	if err != nil {
		return err
	}
	to, err := s.path(dest.Bucket, dest.Object)
	if err != nil {
		return err
	}
	if _, err := os.Stat(from); err != nil {
		return mapFSError(err)
	}
	return cp.Copy(from, to, cp.Options{
		Sync:          true,
		PreserveTimes: false,
		OnDirExists: func(string, string) cp.DirExistsAction {
			return cp.Merge
		},
	})
}

// ListObjects returns every object whose key starts with prefix.
func (s *LocalStore) ListObjects(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error) {
	base := filepath.Join(s.root, bucket)
	var out []ObjectInfo
	err := filepath.WalkDir(base, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".upload-") {
			return nil
		}
		rel, err := filepath.Rel(base, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		out = append(out, ObjectInfo{ObjectName: key, Size: info.Size(), LastModified: info.ModTime()})
		return nil
	})
	return out, err
}

func mapFSError(err error) error {
	if os.IsNotExist(err) {
		return ErrObjectNotFound
	}
	return err
}
