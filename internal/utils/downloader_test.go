package utils

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HaiFongPan/minas-cli/internal/filestore"
)

type stubOpener struct {
	body string
	size int64
	err  error
	url  string
}

func (s *stubOpener) Open(_ context.Context, rawURL string) (io.ReadCloser, int64, error) {
	s.url = rawURL
	if s.err != nil {
		return nil, 0, s.err
	}
	return io.NopCloser(strings.NewReader(s.body)), s.size, nil
}

func TestFileDownloader_Download(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "downloads")
	opener := &stubOpener{body: "hello", size: 5}
	d := NewFileDownloader(opener, dir)

	var last float64
	path, err := d.Download(context.Background(), "http://nas/files/download/a%20b.txt", "a b.txt", func(_, _ int64, pct float64) {
		last = pct
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a b.txt"), path)
	assert.Equal(t, 100.0, last)
	assert.Equal(t, "http://nas/files/download/a%20b.txt", opener.url)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	// 同名文件自动编号
	path, err = d.Download(context.Background(), "u", "a b.txt", nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a b (1).txt"), path)
}

func TestFileDownloader_DownloadServerError(t *testing.T) {
	dir := t.TempDir()
	d := NewFileDownloader(&stubOpener{err: &filestore.ServerError{StatusCode: 404, Body: "File not found"}}, dir)

	_, err := d.Download(context.Background(), "u", "gone.txt", nil)
	require.Error(t, err)
	assert.Equal(t, "File not found", err.Error())

	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}

func TestResolveFileNameConflict(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "x.tar")
	assert.Equal(t, p, ResolveFileNameConflict(p))

	require.NoError(t, os.WriteFile(p, nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x (1).tar"), nil, 0644))
	assert.Equal(t, filepath.Join(dir, "x (2).tar"), ResolveFileNameConflict(p))
}

func TestProgressReader_UnknownSize(t *testing.T) {
	var totals []int64
	r := NewProgressReader(strings.NewReader("abc"), -1, func(done, total int64, _ float64) {
		totals = append(totals, total)
	})
	_, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, int64(3), r.BytesRead())
	require.NotEmpty(t, totals)
	assert.Equal(t, int64(-1), totals[0])
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "1.5 KiB", FormatBytes(1536))
	assert.Equal(t, "2.0 MiB", FormatBytes(2*1024*1024))
	assert.Equal(t, "-", FormatBytes(-1))
}
