package filestorage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/logger"
)

// LocatorPrefix starts every locator Save returns. Stored files are never
// served statically; handlers resolve locators with GetFullPath.
const LocatorPrefix = "/uploads"

// ErrEmptyFile is returned for zero-byte uploads
var ErrEmptyFile = errors.New("uploaded file is empty")

// LocalStorage saves files to the local filesystem.
type LocalStorage struct {
	basePath string
	baseURL  string
}

// NewLocalStorage creates the base directory when missing.
// baseURL is optional; when set, returned URLs are absolute.
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

// Save copies the upload to basePath/subPath under a uuid file name
func (ls *LocalStorage) Save(fileHeader *multipart.FileHeader, subPath string) (*StoredFile, error) {
	if fileHeader == nil || fileHeader.Size == 0 {
		return nil, ErrEmptyFile
	}

	subPath = cleanSubPath(subPath)

	src, err := fileHeader.Open()
	if err != nil {
		logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to open uploaded file")
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dir := filepath.Join(ls.basePath, filepath.FromSlash(subPath))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Error().Err(err).Str("path", dir).Msg("Failed to create subdirectory")
		return nil, fmt.Errorf("failed to create subdirectory: %w", err)
	}

	name := uuid.New().String() + strings.ToLower(filepath.Ext(fileHeader.Filename))
	dstPath := filepath.Join(dir, name)

	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return nil, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	// sniff the content type from the first bytes while copying
	head := make([]byte, 512)
	n, _ := io.ReadFull(src, head)
	head = head[:n]
	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(head)
	}

	written, err := dst.Write(head)
	if err == nil {
		var rest int64
		rest, err = io.Copy(dst, src)
		written += int(rest)
	}
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		_ = os.Remove(dstPath)
		return nil, fmt.Errorf("failed to save file content: %w", err)
	}

	stored := &StoredFile{
		URL:          ls.urlFor(path.Join(subPath, name)),
		OriginalName: filepath.Base(fileHeader.Filename),
		Size:         int64(written),
		MimeType:     mimeType,
	}
	logger.Info().Str("filename", stored.OriginalName).Str("url", stored.URL).Int64("size", stored.Size).Msg("File saved successfully")
	return stored, nil
}

// DeleteFile removes the file a stored URL points at
func (ls *LocalStorage) DeleteFile(fileURL string) error {
	full := ls.GetFullPath(fileURL)
	if full == "" {
		return fmt.Errorf("invalid file path: %s", fileURL)
	}

	if err := os.Remove(full); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn().Str("path", full).Msg("File to delete does not exist")
			return nil
		}
		logger.Error().Err(err).Str("path", full).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Info().Str("path", full).Msg("File deleted successfully")
	return nil
}

// GetFullPath returns the filesystem path for a URL produced by Save,
// or "" when the URL does not point inside the storage root.
func (ls *LocalStorage) GetFullPath(fileURL string) string {
	rel := strings.TrimPrefix(fileURL, ls.baseURL)
	idx := strings.Index(rel, LocatorPrefix+"/")
	if idx < 0 {
		return ""
	}
	rel = path.Clean(rel[idx+len(LocatorPrefix)+1:])
	if rel == "." || rel == "/" || strings.HasPrefix(rel, "..") {
		return ""
	}
	return filepath.Join(ls.basePath, filepath.FromSlash(rel))
}

func (ls *LocalStorage) urlFor(rel string) string {
	return ls.baseURL + LocatorPrefix + "/" + rel
}

func cleanSubPath(subPath string) string {
	subPath = path.Clean("/" + strings.ReplaceAll(subPath, "\\", "/"))
	return strings.TrimPrefix(subPath, "/")
}
