package navigator

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/HaiFongPan/minas-cli/internal/filestore"
)

// MockStore 用于模拟远端文件存储
type MockStore struct {
	mock.Mock
}

func (m *MockStore) List(ctx context.Context, path string) ([]filestore.Entry, error) {
	args := m.Called(ctx, path)
	entries, _ := args.Get(0).([]filestore.Entry)
	return entries, args.Error(1)
}

func (m *MockStore) Upload(ctx context.Context, dir, name string, r io.Reader, size int64) error {
	if r != nil {
		io.Copy(io.Discard, r)
	}
	args := m.Called(ctx, dir, name, size)
	return args.Error(0)
}

func (m *MockStore) Delete(ctx context.Context, filePath string) error {
	return m.Called(ctx, filePath).Error(0)
}

func (m *MockStore) DeleteDir(ctx context.Context, dirPath string) error {
	return m.Called(ctx, dirPath).Error(0)
}

func (m *MockStore) Mkdir(ctx context.Context, parent, name string) error {
	return m.Called(ctx, parent, name).Error(0)
}

func (m *MockStore) Rename(ctx context.Context, path, newName string) error {
	return m.Called(ctx, path, newName).Error(0)
}

func (m *MockStore) DownloadURL(path string) string {
	return "http://nas/files/download/" + path
}

func (m *MockStore) StreamURL(path string) string {
	return "http://nas/files/stream/" + path
}

// listedPaths returns the paths passed to List in call order.
func (m *MockStore) listedPaths() []string {
	var paths []string
	for _, call := range m.Calls {
		if call.Method == "List" {
			paths = append(paths, call.Arguments.String(1))
		}
	}
	return paths
}

// scriptedDialogs 按脚本回答确认和输入
type scriptedDialogs struct {
	mu       sync.Mutex
	confirm  bool
	prompts  []promptAnswer
	asked    []string
	notified []string
}

type promptAnswer struct {
	text string
	ok   bool
}

func (d *scriptedDialogs) Confirm(msg string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.asked = append(d.asked, msg)
	return d.confirm
}

func (d *scriptedDialogs) PromptText(msg, def string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.asked = append(d.asked, msg)
	if len(d.prompts) == 0 {
		return "", false
	}
	a := d.prompts[0]
	d.prompts = d.prompts[1:]
	return a.text, a.ok
}

func (d *scriptedDialogs) Notify(msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notified = append(d.notified, msg)
}

func answer(text string) *scriptedDialogs {
	return &scriptedDialogs{confirm: true, prompts: []promptAnswer{{text: text, ok: true}}}
}

// recordingView 记录所有渲染与控件状态变化
type recordingView struct {
	mu       sync.Mutex
	listings []Listing
	events   []string
}

func (v *recordingView) Render(l Listing) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.listings = append(v.listings, l)
	v.events = append(v.events, "render:"+l.Path)
}

func (v *recordingView) SetDisabled(ctrl Control, disabled bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	state := "enable"
	if disabled {
		state = "disable"
	}
	v.events = append(v.events, fmt.Sprintf("%s:%s:%s", state, ctrl.Action, ctrl.Path))
}

func (v *recordingView) ClearInput(ctrl Control) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.events = append(v.events, "clear:"+ctrl.Action.String())
}

func (v *recordingView) last() Listing {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.listings) == 0 {
		return Listing{}
	}
	return v.listings[len(v.listings)-1]
}
