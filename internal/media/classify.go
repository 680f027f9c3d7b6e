// Package media classifies uploads and renders previews and thumbnails.
package media

import (
	"CloudVault/model"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const DefaultMIME = "application/octet-stream"

// contentBook covers extensions the system mime table often lacks.
var contentBook = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".txt":  "text/plain",
	".md":   "text/markdown",
	".csv":  "text/csv",
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".ppt":  "application/vnd.ms-powerpoint",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".zip":  "application/zip",
	".rar":  "application/x-rar-compressed",
	".7z":   "application/x-7z-compressed",
	".tar":  "application/x-tar",
	".gz":   "application/gzip",
	".mp4":  "video/mp4",
	".mkv":  "video/x-matroska",
	".mp3":  "audio/mpeg",
	".flac": "audio/flac",
	".js":   "application/javascript",
	".json": "application/json",
	".xml":  "application/xml",
	".go":   "text/x-go",
	".py":   "text/x-python",
}

// MIMEByName guesses the MIME type from the file extension. It returns
// "" when the extension is unknown.
func MIMEByName(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		return ""
	}
	if t, ok := contentBook[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		if base, _, err := mime.ParseMediaType(t); err == nil {
			return base
		}
		return t
	}
	return ""
}

// DetectMIME resolves the MIME type by name, then by sniffing head.
func DetectMIME(filename string, head io.Reader) string {
	if t := MIMEByName(filename); t != "" {
		return t
	}
	if head != nil {
		if m, err := mimetype.DetectReader(head); err == nil && m != nil {
			if base, _, err := mime.ParseMediaType(m.String()); err == nil {
				return base
			}
			return m.String()
		}
	}
	return DefaultMIME
}

// FileType maps a MIME type to its storage bucket.
func FileType(mimeType string) string {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return model.TypeImage
	case strings.HasPrefix(mimeType, "video/"):
		return model.TypeVideo
	case strings.HasPrefix(mimeType, "audio/"):
		return model.TypeAudio
	}
	switch mimeType {
	case "application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return model.TypeDocument
	case "application/vnd.ms-excel",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return model.TypeSpreadsheet
	case "application/vnd.ms-powerpoint",
		"application/vnd.openxmlformats-officedocument.presentationml.presentation":
		return model.TypePresentation
	}
	if strings.HasPrefix(mimeType, "text/") {
		return model.TypeText
	}
	switch mimeType {
	case "application/zip", "application/x-rar-compressed", "application/x-7z-compressed",
		"application/gzip", "application/x-tar":
		return model.TypeArchive
	case "application/javascript", "application/json", "application/xml":
		return model.TypeText
	}
	return model.TypeOther
}

var codeExts = map[string]bool{
	".py": true, ".js": true, ".ts": true, ".jsx": true, ".tsx": true,
	".html": true, ".css": true, ".scss": true, ".php": true, ".java": true,
	".cpp": true, ".c": true, ".h": true, ".go": true, ".rs": true,
	".rb": true, ".swift": true, ".kt": true, ".dart": true, ".vue": true,
	".json": true, ".xml": true, ".sql": true, ".sh": true,
	".yml": true, ".yaml": true, ".toml": true,
}

// DisplayType is the coarser category shown to clients.
func DisplayType(fileType, name string) string {
	switch fileType {
	case model.TypeDocument, model.TypeSpreadsheet, model.TypePresentation:
		return model.TypeDocument
	case model.TypeText:
		if codeExts[strings.ToLower(path.Ext(name))] {
			return "code"
		}
		return model.TypeDocument
	}
	return fileType
}

var previewExts = map[string]bool{
	".txt": true, ".md": true, ".markdown": true, ".json": true, ".xml": true,
	".csv": true, ".js": true, ".ts": true, ".jsx": true, ".tsx": true,
	".html": true, ".css": true, ".scss": true, ".py": true, ".java": true,
	".cpp": true, ".c": true, ".php": true, ".rb": true, ".go": true,
	".rs": true, ".swift": true, ".kt": true, ".dart": true, ".vue": true,
	".yml": true, ".yaml": true, ".toml": true, ".ini": true, ".cfg": true,
	".conf": true, ".log": true, ".sql": true, ".sh": true,
}

// IsTextPreview reports whether name is previewed as decoded text.
func IsTextPreview(name string) bool {
	return previewExts[strings.ToLower(path.Ext(name))]
}

// IsImage reports whether a thumbnail should be attempted.
func IsImage(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/") && mimeType != "image/svg+xml"
}
