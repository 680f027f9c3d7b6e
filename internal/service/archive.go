package service

import (
	"CloudVault/internal/repo"
	"CloudVault/model"
	"archive/zip"
	"context"
	"io"
	"log"
	"path"
	"strings"

	"gorm.io/gorm"
)

// ArchiveEntry is one member of a folder archive. Directories carry a
// trailing slash and no file.
type ArchiveEntry struct {
	ZipPath string
	File    *model.File
	IsDir   bool
}

func sanitizeArchiveName(name string) string { // 保证安全
	clean := strings.TrimSpace(name)
	clean = strings.ReplaceAll(clean, "\\", "/")
	clean = strings.ReplaceAll(clean, "/", "_")
	clean = strings.ReplaceAll(clean, "..", "_")
	if clean == "" || clean == "." {
		return "unnamed"
	}
	return clean
}

// BuildFolderArchive collects a folder subtree for a zip download and
// returns the archive file name.
func BuildFolderArchive(ctx context.Context, owner, folderID uint64) ([]ArchiveEntry, string, error) {
	db := repo.Db.WithContext(ctx)
	folder, err := ownedFolder(db, owner, folderID)
	if err != nil {
		return nil, "", err
	}
	root := sanitizeArchiveName(folder.Name)
	entries := []ArchiveEntry{{ZipPath: root + "/", IsDir: true}}
	if err := collectArchiveChildren(db, owner, folder.ID, root, &entries); err != nil {
		return nil, "", err
	}
	return entries, root + ".zip", nil
}

func collectArchiveChildren(db *gorm.DB, owner, parentID uint64, prefix string, entries *[]ArchiveEntry) error {
	var files []model.File
	if err := db.Where("folder_id = ? AND user_id = ?", parentID, owner).
		Order("name").Find(&files).Error; err != nil {
		return err
	}
	for i := range files {
		*entries = append(*entries, ArchiveEntry{
			ZipPath: path.Join(prefix, sanitizeArchiveName(files[i].Name)),
			File:    &files[i],
		})
	}

	var children []model.Folder
	if err := db.Where("parent_id = ? AND user_id = ?", parentID, owner).
		Order("name").Find(&children).Error; err != nil {
		return err
	}
	for _, child := range children {
		childPath := path.Join(prefix, sanitizeArchiveName(child.Name))
		*entries = append(*entries, ArchiveEntry{ZipPath: childPath + "/", IsDir: true})
		if err := collectArchiveChildren(db, owner, child.ID, childPath, entries); err != nil {
			return err
		}
	}
	return nil
}

// WriteArchive streams entries into a zip written to w. Files whose
// blob has gone missing are skipped.
func WriteArchive(ctx context.Context, w io.Writer, entries []ArchiveEntry) error {
	zw := zip.NewWriter(w)
	for _, entry := range entries {
		if entry.IsDir {
			if _, err := zw.Create(entry.ZipPath); err != nil {
				return err
			}
			continue
		}
		if entry.File == nil {
			continue
		}
		if err := writeArchiveFile(ctx, zw, entry); err != nil {
			return err
		}
	}
	return zw.Close()
}

func writeArchiveFile(ctx context.Context, zw *zip.Writer, entry ArchiveEntry) error {
	rc, _, err := openBlob(ctx, entry.File.Path)
	if err != nil {
		log.Printf("service: archive skips file %d: %v", entry.File.ID, err)
		return nil
	}
	defer rc.Close()
	header := &zip.FileHeader{
		Name:     entry.ZipPath,
		Method:   zip.Deflate,
		Modified: entry.File.UpdatedAt,
	}
	dst, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(dst, rc)
	return err
}
