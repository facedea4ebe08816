// Package drivetest provides an in-memory drive.Backend for tests.
package drivetest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"sorubank-bot/api/internal/drive"
)

// ErrInjected is returned by operations listed in Backend.Fail.
var ErrInjected = errors.New("drivetest: injected failure")

type item struct {
	drive.File
	parent  string
	folder  bool
	content []byte
}

// Backend keeps folders and files in memory. Set Fail["upload"] (or
// "find", "create", "list", "download") to make that operation fail.
type Backend struct {
	mu    sync.Mutex
	seq   int
	items map[string]*item

	Fail  map[string]bool
	Calls map[string]int
}

func New() *Backend {
	return &Backend{items: map[string]*item{}, Fail: map[string]bool{}, Calls: map[string]int{}}
}

func (b *Backend) call(op string) error {
	b.Calls[op]++
	if b.Fail[op] {
		return fmt.Errorf("%s: %w", op, ErrInjected)
	}
	return nil
}

func (b *Backend) nextID(prefix string) string {
	b.seq++
	return fmt.Sprintf("%s-%d", prefix, b.seq)
}

func (b *Backend) FindFolder(_ context.Context, name, parentID string) (string, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.call("find"); err != nil {
		return "", false, err
	}
	ids := make([]string, 0, 1)
	for id, it := range b.items {
		if it.folder && it.parent == parentID && it.Name == name {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return "", false, nil
	}
	sort.Strings(ids)
	return ids[0], true, nil
}

func (b *Backend) CreateFolder(_ context.Context, name, parentID string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.call("create"); err != nil {
		return "", err
	}
	id := b.nextID("folder")
	b.items[id] = &item{File: drive.File{ID: id, Name: name, MimeType: "application/vnd.google-apps.folder"}, parent: parentID, folder: true}
	return id, nil
}

func (b *Backend) ListImages(_ context.Context, folderID string) ([]drive.File, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.call("list"); err != nil {
		return nil, err
	}
	var out []drive.File
	for _, it := range b.items {
		if !it.folder && it.parent == folderID && strings.HasPrefix(it.MimeType, "image/") {
			out = append(out, it.File)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (b *Backend) Upload(_ context.Context, name, folderID, mimeType string, content []byte) (drive.File, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.call("upload"); err != nil {
		return drive.File{}, err
	}
	id := b.nextID("file")
	f := drive.File{
		ID:          id,
		Name:        name,
		MimeType:    mimeType,
		CreatedTime: time.Now(),
		ViewLink:    "https://drive.example/" + id,
	}
	b.items[id] = &item{File: f, parent: folderID, content: append([]byte(nil), content...)}
	return f, nil
}

func (b *Backend) Download(_ context.Context, fileID string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.call("download"); err != nil {
		return nil, err
	}
	it, ok := b.items[fileID]
	if !ok || it.folder {
		return nil, fmt.Errorf("file %s not found", fileID)
	}
	return append([]byte(nil), it.content...), nil
}

// Put stores a file directly, bypassing Upload bookkeeping.
func (b *Backend) Put(folderID, name, mimeType string, content []byte) drive.File {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID("file")
	f := drive.File{ID: id, Name: name, MimeType: mimeType, CreatedTime: time.Now(), ViewLink: "https://drive.example/" + id}
	b.items[id] = &item{File: f, parent: folderID, content: append([]byte(nil), content...)}
	return f
}

// Folders returns how many folders named name exist under parentID.
func (b *Backend) Folders(name, parentID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, it := range b.items {
		if it.folder && it.parent == parentID && it.Name == name {
			n++
		}
	}
	return n
}

// Downloads returns how many times Download was called.
func (b *Backend) Downloads() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.Calls["download"]
}

var _ drive.Backend = (*Backend)(nil)
