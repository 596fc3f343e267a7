package filestorage

import (
	"mime/multipart"
)

// StoredFile describes an upload after it has been written to storage
type StoredFile struct {
	URL          string
	OriginalName string
	Size         int64
	MimeType     string
}

// FileStorage stores uploaded documents
type FileStorage interface {
	// Save writes the upload under subPath and returns where it can be fetched
	Save(fileHeader *multipart.FileHeader, subPath string) (*StoredFile, error)

	// DeleteFile removes a previously stored file; missing files are not an error
	DeleteFile(fileURL string) error

	// GetFullPath maps a stored URL back to its location on disk
	GetFullPath(fileURL string) string
}
