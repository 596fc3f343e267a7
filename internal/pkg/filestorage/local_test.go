package filestorage

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uploadHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/upload", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["file"][0]
}

func TestLocalStorage_SaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	ls, err := NewLocalStorage(dir, "http://localhost:8080/")
	require.NoError(t, err)

	stored, err := ls.Save(uploadHeader(t, "Transcript.PDF", []byte("%PDF-1.4 transcript")), "documents/12")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(stored.URL, "http://localhost:8080/uploads/documents/12/"))
	assert.True(t, strings.HasSuffix(stored.URL, ".pdf"))
	assert.Equal(t, "Transcript.PDF", stored.OriginalName)
	assert.Equal(t, int64(19), stored.Size)

	full := ls.GetFullPath(stored.URL)
	data, err := os.ReadFile(full)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 transcript", string(data))

	require.NoError(t, ls.DeleteFile(stored.URL))
	_, err = os.Stat(full)
	assert.True(t, os.IsNotExist(err))

	// deleting twice is fine
	assert.NoError(t, ls.DeleteFile(stored.URL))
}

func TestLocalStorage_SubPathCannotEscape(t *testing.T) {
	dir := t.TempDir()
	ls, err := NewLocalStorage(dir, "")
	require.NoError(t, err)

	stored, err := ls.Save(uploadHeader(t, "a.txt", []byte("hello")), "../../etc")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored.URL, "/uploads/etc/"))
	assert.True(t, strings.HasPrefix(ls.GetFullPath(stored.URL), dir))
}

func TestLocalStorage_RejectsEmpty(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)

	_, err = ls.Save(uploadHeader(t, "empty.txt", nil), "")
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = ls.Save(nil, "")
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestGetFullPath_Invalid(t *testing.T) {
	ls := &LocalStorage{basePath: "/srv/uploads"}
	assert.Equal(t, "", ls.GetFullPath("https://elsewhere/file.pdf"))
	assert.Equal(t, "", ls.GetFullPath("/uploads/../secret"))
}
