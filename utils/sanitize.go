package utils

import (
	"fmt"
	"net/url"
	"strings"
)

// SanitizeHeaderFilename removes characters that can break headers.
func SanitizeHeaderFilename(name string) string {
	clean := strings.TrimSpace(name)
	if clean == "" {
		return "download"
	}
	clean = strings.ReplaceAll(clean, "\r", "")
	clean = strings.ReplaceAll(clean, "\n", "")
	clean = strings.ReplaceAll(clean, "\"", "")
	return clean
}

// ContentDisposition builds the header value with an RFC 5987 fallback
// for non-ASCII names.
func ContentDisposition(disposition, name string) string {
	safe := SanitizeHeaderFilename(name)
	return fmt.Sprintf(`%s; filename="%s"; filename*=UTF-8''%s`, disposition, safe, url.PathEscape(safe))
}

// CleanName trims a user supplied file or folder name. ok is false for
// empty names and names with path separators.
func CleanName(name string) (string, bool) {
	clean := strings.TrimSpace(name)
	if clean == "" || clean == "." || clean == ".." {
		return "", false
	}
	if strings.ContainsAny(clean, "/\\\x00") {
		return "", false
	}
	return clean, true
}
