package navigator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/HaiFongPan/minas-cli/internal/filestore"
	"github.com/HaiFongPan/minas-cli/internal/vpath"
)

func newTestController(dialogs *scriptedDialogs) (*Controller, *MockStore, *recordingView) {
	store := &MockStore{}
	view := &recordingView{}
	if dialogs == nil {
		dialogs = &scriptedDialogs{}
	}
	return NewController(store, NewState(), dialogs, view), store, view
}

func size(n int64) *int64 { return &n }

// TestRefreshRendersDirectoryRow 根目录只有一个文件夹时的渲染
func TestRefreshRendersDirectoryRow(t *testing.T) {
	c, store, view := newTestController(nil)
	store.On("List", mock.Anything, "").Return([]filestore.Entry{{Name: "docs", IsDir: true}}, nil)

	require.NoError(t, c.Refresh(context.Background()))

	l := view.last()
	assert.Equal(t, "/", l.Breadcrumb)
	assert.False(t, l.CanGoUp)
	require.Len(t, l.Rows, 1)
	assert.Equal(t, "docs", l.Rows[0].Name)
	assert.True(t, l.Rows[0].Has(ActionOpen))
	assert.False(t, l.Rows[0].Has(ActionDownload))
	assert.False(t, l.Rows[0].Has(ActionPreview))
}

func TestRefreshErrorRendersPlaceholder(t *testing.T) {
	c, store, view := newTestController(nil)
	store.On("List", mock.Anything, "").Return(nil, &filestore.ServerError{StatusCode: 500, Body: "disk on fire"})

	err := c.Refresh(context.Background())
	require.Error(t, err)

	l := view.last()
	assert.Equal(t, "disk on fire", l.Err)
	assert.Empty(t, l.Rows)
	assert.Empty(t, c.Rows())
}

func TestNavigateUpdatesBreadcrumbAndGoUp(t *testing.T) {
	c, store, view := newTestController(nil)
	store.On("List", mock.Anything, mock.Anything).Return([]filestore.Entry{}, nil)

	require.NoError(t, c.Navigate(context.Background(), "a/b"))
	assert.Equal(t, "/a/b", view.last().Breadcrumb)
	assert.True(t, view.last().CanGoUp)

	require.NoError(t, c.GoUp(context.Background()))
	assert.Equal(t, "a", c.State().Current())

	require.NoError(t, c.GoUp(context.Background()))
	require.NoError(t, c.GoUp(context.Background()))
	assert.Equal(t, "", c.State().Current())
	assert.Equal(t, []string{"a/b", "a", ""}, store.listedPaths())
}

func TestOpenDirectory(t *testing.T) {
	c, store, _ := newTestController(nil)
	store.On("List", mock.Anything, mock.Anything).Return([]filestore.Entry{}, nil)
	c.State().Navigate("docs")

	require.NoError(t, c.Open(context.Background(), Row{Name: "2024", IsDir: true}))
	assert.Equal(t, "docs/2024", c.State().Current())

	// 文件行不能打开
	require.NoError(t, c.Open(context.Background(), Row{Name: "a.txt"}))
	assert.Equal(t, "docs/2024", c.State().Current())
}

// TestDeleteCurrentDirectoryGoesToParent 删除当前所在目录后回到父目录
func TestDeleteCurrentDirectoryGoesToParent(t *testing.T) {
	dialogs := &scriptedDialogs{confirm: true}
	c, store, view := newTestController(dialogs)
	store.On("List", mock.Anything, mock.Anything).Return([]filestore.Entry{}, nil)
	store.On("DeleteDir", mock.Anything, "docs").Return(nil)

	require.NoError(t, c.Navigate(context.Background(), "docs"))
	row, ok := c.CurrentRow()
	require.True(t, ok)

	require.NoError(t, c.Delete(context.Background(), row))

	assert.Equal(t, "", c.State().Current())
	assert.Equal(t, []string{"docs", ""}, store.listedPaths())
	assert.Equal(t, "/", view.last().Breadcrumb)
	assert.Contains(t, dialogs.asked[0], "remove all of its content")
}

func TestDeleteChildDirectoryRefreshes(t *testing.T) {
	c, store, _ := newTestController(&scriptedDialogs{confirm: true})
	store.On("List", mock.Anything, mock.Anything).Return([]filestore.Entry{}, nil)
	store.On("DeleteDir", mock.Anything, "docs/old").Return(nil)
	c.State().Navigate("docs")

	require.NoError(t, c.Delete(context.Background(), Row{Name: "old", Path: "docs/old", IsDir: true}))
	assert.Equal(t, "docs", c.State().Current())
	assert.Equal(t, []string{"docs"}, store.listedPaths())
}

func TestDeleteAncestorOfCurrentGoesAbove(t *testing.T) {
	c, store, _ := newTestController(&scriptedDialogs{confirm: true})
	store.On("List", mock.Anything, mock.Anything).Return([]filestore.Entry{}, nil)
	store.On("DeleteDir", mock.Anything, "a/b").Return(nil)
	c.State().Navigate("a/b/c")

	require.NoError(t, c.Delete(context.Background(), Row{Name: "b", Path: "a/b", IsDir: true}))
	assert.Equal(t, "a", c.State().Current())
}

func TestDeleteFile(t *testing.T) {
	c, store, view := newTestController(&scriptedDialogs{confirm: true})
	store.On("List", mock.Anything, "docs").Return([]filestore.Entry{}, nil)
	store.On("Delete", mock.Anything, "docs/a.txt").Return(nil)
	c.State().Navigate("docs")

	require.NoError(t, c.Delete(context.Background(), Row{Name: "a.txt", Path: "docs/a.txt"}))
	assert.Equal(t, []string{
		"disable:delete:docs/a.txt",
		"render:docs",
		"enable:delete:docs/a.txt",
	}, view.events)
}

func TestDeleteDeclined(t *testing.T) {
	c, store, view := newTestController(&scriptedDialogs{confirm: false})

	require.NoError(t, c.Delete(context.Background(), Row{Name: "a.txt", Path: "a.txt"}))
	store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	assert.Empty(t, view.events)
}

func TestDeleteFailureKeepsState(t *testing.T) {
	dialogs := &scriptedDialogs{confirm: true}
	c, store, view := newTestController(dialogs)
	store.On("DeleteDir", mock.Anything, "docs").Return(&filestore.ServerError{StatusCode: 403, Body: "Forbidden"})
	c.State().Navigate("docs")

	err := c.Delete(context.Background(), Row{Name: "docs", Path: "docs", IsDir: true})
	require.Error(t, err)

	assert.Equal(t, "docs", c.State().Current())
	assert.Equal(t, []string{"Forbidden"}, dialogs.notified)
	assert.Empty(t, store.listedPaths())
	assert.Equal(t, []string{"disable:delete:docs", "enable:delete:docs"}, view.events)
}

// TestRenameFileRefreshesOnly 重命名文件只刷新当前目录
func TestRenameFileRefreshesOnly(t *testing.T) {
	c, store, _ := newTestController(answer("b.txt"))
	store.On("List", mock.Anything, "docs").Return([]filestore.Entry{}, nil)
	store.On("Rename", mock.Anything, "docs/a.txt", "b.txt").Return(nil)
	c.State().Navigate("docs")

	require.NoError(t, c.Rename(context.Background(), Row{Name: "a.txt", Path: "docs/a.txt"}))
	assert.Equal(t, "docs", c.State().Current())
	assert.Equal(t, []string{"docs"}, store.listedPaths())
}

// TestRenameCurrentDirectoryNavigatesTwice 重命名当前目录：先回父目录再进入新目录
func TestRenameCurrentDirectoryNavigatesTwice(t *testing.T) {
	c, store, view := newTestController(answer("papers"))
	store.On("List", mock.Anything, mock.Anything).Return([]filestore.Entry{}, nil)
	store.On("Rename", mock.Anything, "docs", "papers").Return(nil)
	c.State().Navigate("docs")

	row, ok := c.CurrentRow()
	require.True(t, ok)
	require.NoError(t, c.Rename(context.Background(), row))

	assert.Equal(t, []string{"", "papers"}, store.listedPaths())
	assert.Equal(t, "papers", c.State().Current())
	assert.Equal(t, "/papers", view.last().Breadcrumb)
}

func TestRenameChildDirectoryRefreshes(t *testing.T) {
	c, store, _ := newTestController(answer("new"))
	store.On("List", mock.Anything, "").Return([]filestore.Entry{}, nil)
	store.On("Rename", mock.Anything, "old", "new").Return(nil)

	require.NoError(t, c.Rename(context.Background(), Row{Name: "old", Path: "old", IsDir: true}))
	assert.Equal(t, []string{""}, store.listedPaths())
}

func TestRenameRejectsSeparator(t *testing.T) {
	dialogs := answer("x/y")
	c, store, view := newTestController(dialogs)

	err := c.Rename(context.Background(), Row{Name: "a.txt", Path: "a.txt"})
	assert.ErrorIs(t, err, vpath.ErrSeparator)
	assert.Equal(t, []string{"Name cannot contain '/'."}, dialogs.notified)
	store.AssertNotCalled(t, "Rename", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, view.events)
}

func TestRenameCancelledOrUnchanged(t *testing.T) {
	for _, a := range []promptAnswer{{"", false}, {"", true}, {"   ", true}, {"a.txt", true}} {
		dialogs := &scriptedDialogs{prompts: []promptAnswer{a}}
		c, store, _ := newTestController(dialogs)

		require.NoError(t, c.Rename(context.Background(), Row{Name: "a.txt", Path: "a.txt"}))
		store.AssertNotCalled(t, "Rename", mock.Anything, mock.Anything, mock.Anything)
		assert.Empty(t, dialogs.notified)
	}
}

func TestRenameFailureNotifiesVerbatim(t *testing.T) {
	dialogs := answer("b.txt")
	c, store, _ := newTestController(dialogs)
	store.On("Rename", mock.Anything, "a.txt", "b.txt").Return(&filestore.ServerError{StatusCode: 409, Body: `{"detail":"Destination already exists"}`})

	err := c.Rename(context.Background(), Row{Name: "a.txt", Path: "a.txt"})
	require.Error(t, err)
	assert.Equal(t, []string{`{"detail":"Destination already exists"}`}, dialogs.notified)
	assert.Empty(t, store.listedPaths())
}

// TestUploadFailureShowsServerText 上传失败时显示服务器原文且不刷新
func TestUploadFailureShowsServerText(t *testing.T) {
	dialogs := &scriptedDialogs{}
	c, store, view := newTestController(dialogs)
	store.On("Upload", mock.Anything, "docs", "big.iso", int64(4)).
		Return(&filestore.ServerError{StatusCode: 413, Body: "file too large"})
	c.State().Navigate("docs")

	err := c.Upload(context.Background(), "big.iso", strings.NewReader("data"), 4)
	require.Error(t, err)

	assert.Equal(t, []string{"file too large"}, dialogs.notified)
	assert.Equal(t, "docs", c.State().Current())
	assert.Empty(t, store.listedPaths())
	assert.Equal(t, []string{"disable:upload:", "enable:upload:"}, view.events)
}

func TestUploadSuccessClearsInputAndRefreshes(t *testing.T) {
	c, store, view := newTestController(nil)
	store.On("Upload", mock.Anything, "", "a.png", int64(3)).Return(nil)
	store.On("List", mock.Anything, "").Return([]filestore.Entry{{Name: "a.png", Size: size(3)}}, nil)

	require.NoError(t, c.Upload(context.Background(), "a.png", strings.NewReader("png"), 3))
	assert.Equal(t, []string{"disable:upload:", "clear:upload", "render:", "enable:upload:"}, view.events)
	require.Len(t, view.last().Rows, 1)
}

// TestCreateFolderRejectsSeparator 名称包含 / 时不发送请求
func TestCreateFolderRejectsSeparator(t *testing.T) {
	dialogs := answer("a/b")
	c, store, _ := newTestController(dialogs)

	err := c.CreateFolder(context.Background())
	assert.ErrorIs(t, err, vpath.ErrSeparator)
	assert.Len(t, dialogs.notified, 1)
	assert.Empty(t, store.Calls)
}

func TestCreateFolder(t *testing.T) {
	c, store, _ := newTestController(answer("  reports "))
	store.On("Mkdir", mock.Anything, "docs", "reports").Return(nil)
	store.On("List", mock.Anything, "docs").Return([]filestore.Entry{}, nil)
	c.State().Navigate("docs")

	require.NoError(t, c.CreateFolder(context.Background()))
	store.AssertExpectations(t)
}

func TestCreateFolderEmptyIsNoop(t *testing.T) {
	c, store, view := newTestController(answer(""))

	require.NoError(t, c.CreateFolder(context.Background()))
	assert.Empty(t, store.Calls)
	assert.Empty(t, view.events)
}

func TestCreateFolderConflict(t *testing.T) {
	dialogs := answer("docs")
	c, store, _ := newTestController(dialogs)
	store.On("Mkdir", mock.Anything, "", "docs").Return(errors.New("Directory already exists"))

	require.Error(t, c.CreateFolder(context.Background()))
	assert.Equal(t, []string{"Directory already exists"}, dialogs.notified)
}

func TestPreviewCreatesOverlayLazily(t *testing.T) {
	c, _, _ := newTestController(nil)
	assert.Nil(t, c.overlay)

	_, ok := c.Preview(Row{Name: "docs", Path: "docs", IsDir: true})
	assert.False(t, ok)

	s, ok := c.Preview(Row{Name: "cat.PNG", Path: "pics/cat.PNG"})
	require.True(t, ok)
	assert.NotNil(t, c.overlay)
	assert.Equal(t, ElementImage, s.Element.Kind)
	assert.Equal(t, "http://nas/files/stream/pics/cat.PNG", s.Element.Src)

	first := c.Overlay()
	c.Preview(Row{Name: "song.mp3", Path: "song.mp3"})
	assert.Same(t, first, c.Overlay())
	active, visible := c.Overlay().Active()
	require.True(t, visible)
	assert.Equal(t, "song.mp3", active.TargetPath)
}

func TestLookupUsesLastListing(t *testing.T) {
	c, store, _ := newTestController(nil)
	store.On("List", mock.Anything, "").Return([]filestore.Entry{{Name: "a.txt"}, {Name: "d", IsDir: true}}, nil)
	require.NoError(t, c.Refresh(context.Background()))

	row, ok := c.Lookup("d")
	require.True(t, ok)
	assert.True(t, row.IsDir)
	assert.Equal(t, "http://nas/files/download/a.txt", c.DownloadURL(c.Rows()[0]))

	_, ok = c.Lookup("missing")
	assert.False(t, ok)
}
