package utils

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// StoredName returns an opaque blob name that keeps the original extension.
func StoredName(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return strings.ReplaceAll(uuid.NewString(), "-", "") + ext
}
