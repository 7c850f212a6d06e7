package filestore

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/HaiFongPan/minas-cli/internal/config"
	"github.com/HaiFongPan/minas-cli/internal/filestore/filestoretest"
)

func newTestClient(t *testing.T) (*Client, *filestoretest.Server) {
	t.Helper()
	srv := filestoretest.NewServer()
	t.Cleanup(srv.Close)

	client, err := NewClient(&appconfig.ServerConfig{BaseURL: srv.URL + "/"})
	require.NoError(t, err)
	return client, srv
}

func TestNewClientRejectsRelativeURL(t *testing.T) {
	_, err := NewClient(&appconfig.ServerConfig{BaseURL: "localhost:8000"})
	assert.Error(t, err)
}

func TestClientURLs(t *testing.T) {
	client, err := NewClient(&appconfig.ServerConfig{BaseURL: "http://nas.local:8000/"})
	require.NoError(t, err)

	assert.Equal(t, "http://nas.local:8000/files/download/docs/my%20file.txt", client.DownloadURL("docs/my file.txt"))
	assert.Equal(t, "http://nas.local:8000/files/stream/m%C3%BAsica/a%23b.mp3", client.StreamURL("música/a#b.mp3"))
	assert.Equal(t, "http://nas.local:8000", client.Name())
}

func TestClientList(t *testing.T) {
	client, srv := newTestClient(t)
	srv.MkdirAll("docs")
	srv.PutFile("b.txt", []byte("hello"))
	srv.MkdirAll("a dir")

	entries, err := client.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// 保持服务器返回的顺序
	assert.Equal(t, "docs", entries[0].Name)
	assert.True(t, entries[0].IsDir)
	assert.Nil(t, entries[0].Size)
	assert.Equal(t, "b.txt", entries[1].Name)
	require.NotNil(t, entries[1].Size)
	assert.Equal(t, int64(5), *entries[1].Size)
	assert.Equal(t, "a dir", entries[2].Name)

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/files/", reqs[0].Path)
}

func TestClientListEncodedPath(t *testing.T) {
	client, srv := newTestClient(t)
	srv.PutFile("my docs/año #1/x.txt", []byte("x"))

	entries, err := client.List(context.Background(), "my docs/año #1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "x.txt", entries[0].Name)

	reqs := srv.Requests()
	assert.Equal(t, "/files/my%20docs/a%C3%B1o%20%231", reqs[len(reqs)-1].Path)
}

func TestClientListNotFound(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.List(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	var se *ServerError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "Path not found!", se.Detail())
}

func TestClientUpload(t *testing.T) {
	client, srv := newTestClient(t)
	srv.MkdirAll("docs")

	err := client.Upload(context.Background(), "docs", "report final.txt", strings.NewReader("content"), 7)
	require.NoError(t, err)

	data, ok := srv.ReadFile("docs/report final.txt")
	require.True(t, ok)
	assert.Equal(t, "content", string(data))

	reqs := srv.Requests()
	assert.Equal(t, http.MethodPost, reqs[len(reqs)-1].Method)
	assert.Equal(t, "/files/upload/docs", reqs[len(reqs)-1].Path)
}

func TestClientUploadRoot(t *testing.T) {
	client, srv := newTestClient(t)

	require.NoError(t, client.Upload(context.Background(), "", "a.png", strings.NewReader("png"), 3))
	assert.True(t, srv.Exists("a.png"))

	reqs := srv.Requests()
	assert.Equal(t, "/files/upload/", reqs[len(reqs)-1].Path)
}

func TestClientUploadErrorBodyVerbatim(t *testing.T) {
	client, srv := newTestClient(t)
	srv.Fail("upload", http.StatusRequestEntityTooLarge, "file too large")

	err := client.Upload(context.Background(), "", "big.bin", strings.NewReader(strings.Repeat("x", 1024)), 1024)
	require.Error(t, err)
	assert.Equal(t, "file too large", err.Error())

	var se *ServerError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusRequestEntityTooLarge, se.StatusCode)
	assert.False(t, srv.Exists("big.bin"))
}

func TestClientUploadConflict(t *testing.T) {
	client, srv := newTestClient(t)
	srv.PutFile("a.txt", []byte("old"))

	err := client.Upload(context.Background(), "", "a.txt", strings.NewReader("new"), 3)
	require.Error(t, err)
	assert.True(t, IsConflict(err))
	assert.Equal(t, `{"detail":"File already exists!"}`, strings.TrimSpace(err.Error()))
}

func TestClientDelete(t *testing.T) {
	client, srv := newTestClient(t)
	srv.PutFile("docs/a b.txt", []byte("x"))

	require.NoError(t, client.Delete(context.Background(), "docs/a b.txt"))
	assert.False(t, srv.Exists("docs/a b.txt"))

	err := client.Delete(context.Background(), "docs/a b.txt")
	assert.True(t, IsNotFound(err))
}

func TestClientDeleteDirRecursive(t *testing.T) {
	client, srv := newTestClient(t)
	srv.PutFile("docs/sub/a.txt", []byte("x"))

	require.NoError(t, client.DeleteDir(context.Background(), "docs"))
	assert.False(t, srv.Exists("docs"))

	reqs := srv.Requests()
	last := reqs[len(reqs)-1]
	assert.Equal(t, http.MethodDelete, last.Method)
	assert.Equal(t, "/files/delete-dir/docs", last.Path)
	assert.Equal(t, "recursive=1", last.Query)
}

func TestClientMkdir(t *testing.T) {
	client, srv := newTestClient(t)

	require.NoError(t, client.Mkdir(context.Background(), "", "new folder"))
	assert.True(t, srv.Exists("new folder"))

	require.NoError(t, client.Mkdir(context.Background(), "new folder", "x&y"))
	assert.True(t, srv.Exists("new folder/x&y"))

	reqs := srv.Requests()
	assert.Equal(t, "/files/mkdir/", reqs[0].Path)
	assert.Equal(t, "name=new+folder", reqs[0].Query)
	assert.Equal(t, "/files/mkdir/new%20folder", reqs[1].Path)
	assert.Equal(t, "name=x%26y", reqs[1].Query)

	err := client.Mkdir(context.Background(), "", "new folder")
	assert.True(t, IsConflict(err))
}

func TestClientRename(t *testing.T) {
	client, srv := newTestClient(t)
	srv.PutFile("docs/a.txt", []byte("x"))

	require.NoError(t, client.Rename(context.Background(), "docs/a.txt", "b.txt"))
	assert.False(t, srv.Exists("docs/a.txt"))
	assert.True(t, srv.Exists("docs/b.txt"))

	reqs := srv.Requests()
	assert.Equal(t, "/files/rename/docs/a.txt", reqs[len(reqs)-1].Path)
	assert.Equal(t, "name=b.txt", reqs[len(reqs)-1].Query)
}

func TestClientPing(t *testing.T) {
	client, _ := newTestClient(t)
	assert.NoError(t, client.Ping(context.Background()))
}

func TestClientOpen(t *testing.T) {
	client, srv := newTestClient(t)
	srv.PutFile("pics/cat.png", []byte("meow"))

	body, size, err := client.Open(context.Background(), client.DownloadURL("pics/cat.png"))
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "meow", string(data))
	assert.Equal(t, int64(4), size)

	_, _, err = client.Open(context.Background(), client.StreamURL("pics/dog.png"))
	assert.True(t, IsNotFound(err))
}

func TestClientTimeout(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte("[]"))
	}))
	defer slow.Close()

	client, err := NewClient(&appconfig.ServerConfig{BaseURL: slow.URL})
	require.NoError(t, err)
	client.GetHTTPClient().Timeout = 20 * time.Millisecond

	_, err = client.List(context.Background(), "")
	assert.Error(t, err)
}

func TestServerErrorMessages(t *testing.T) {
	err := &ServerError{StatusCode: 500}
	assert.Equal(t, "500 Internal Server Error", err.Error())

	err = &ServerError{StatusCode: 409, Body: `{"detail":"Directory already exists"}`}
	assert.Equal(t, `{"detail":"Directory already exists"}`, err.Error())
	assert.Equal(t, "Directory already exists", err.Detail())

	err = &ServerError{StatusCode: 422, Body: `{"detail":[{"msg":"field required"}]}`}
	assert.Equal(t, `[{"msg":"field required"}]`, err.Detail())
}
