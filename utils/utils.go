package utils

import (
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"

	"github.com/google/uuid"
)

func GetUUID() string {
	return uuid.New().String()
}

// ShortID returns the first n hex characters of a fresh uuid.
func ShortID(n int) string {
	s := uuid.New().String()
	s = s[:8] + s[9:13] + s[14:18] + s[19:23] + s[24:]
	if n > len(s) {
		n = len(s)
	}
	return s[:n]
}

var SupportedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

func IsSupportedImage(header *multipart.FileHeader) bool {
	return SupportedImageTypes[header.Header.Get("Content-Type")]
}

func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}

var unsafeFilename = regexp.MustCompile(`[^\w.\-]`)

func SanitizeFilename(name string) string {
	clean := unsafeFilename.ReplaceAllString(filepath.Base(name), "_")
	if clean == "" || clean == "." {
		return "file"
	}
	return clean
}
