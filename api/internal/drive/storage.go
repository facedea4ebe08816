package drive

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"sorubank-bot/api/internal/util"
)

// Storage resolves folder paths under a named root folder and moves image
// files in and out of them. It never retries; every backend failure is logged
// here and returned wrapped in ErrBackend.
//
// EnsureFolderPath does an unprotected lookup-then-create per segment. Two
// callers creating the same new folder at the same time can both miss the
// lookup and both create it, leaving duplicate folders with the same name.
type Storage struct {
	backend  Backend
	rootName string
	log      *zap.Logger

	mu     sync.Mutex
	rootID string
}

func NewStorage(b Backend, rootName string, log *zap.Logger) *Storage {
	if log == nil {
		log = zap.NewNop()
	}
	return &Storage{backend: b, rootName: rootName, log: log.Named("drive")}
}

// EnsureRootFolder finds or creates the root folder at the top of the drive.
// The identifier is cached for the life of the process.
func (s *Storage) EnsureRootFolder(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rootID != "" {
		return s.rootID, nil
	}
	id, err := s.ensureChild(ctx, s.rootName, RootParent)
	if err != nil {
		return "", err
	}
	s.rootID = id
	s.log.Info("root folder ready", zap.String("name", s.rootName), zap.String("id", id))
	return id, nil
}

// EnsureFolderPath walks path from the root, creating missing folders, and
// returns the deepest folder's identifier.
func (s *Storage) EnsureFolderPath(ctx context.Context, path []string) (string, error) {
	parent, err := s.EnsureRootFolder(ctx)
	if err != nil {
		return "", err
	}
	for _, name := range path {
		if parent, err = s.ensureChild(ctx, name, parent); err != nil {
			return "", err
		}
	}
	return parent, nil
}

// FindFolderPath is the read-only variant of EnsureFolderPath: it returns
// ErrNotFound as soon as a segment is missing.
func (s *Storage) FindFolderPath(ctx context.Context, path []string) (string, error) {
	parent, err := s.EnsureRootFolder(ctx)
	if err != nil {
		return "", err
	}
	for _, name := range path {
		id, ok, err := s.backend.FindFolder(ctx, name, parent)
		if err != nil {
			return "", s.fail("find folder", err, zap.String("name", name), zap.String("parent", parent))
		}
		if !ok {
			s.log.Debug("folder missing", zap.Strings("path", path), zap.String("name", name))
			return "", fmt.Errorf("%w: %s", ErrNotFound, strings.Join(path, "/"))
		}
		parent = id
	}
	return parent, nil
}

func (s *Storage) ensureChild(ctx context.Context, name, parent string) (string, error) {
	id, ok, err := s.backend.FindFolder(ctx, name, parent)
	if err != nil {
		return "", s.fail("find folder", err, zap.String("name", name), zap.String("parent", parent))
	}
	if ok {
		return id, nil
	}
	id, err = s.backend.CreateFolder(ctx, name, parent)
	if err != nil {
		return "", s.fail("create folder", err, zap.String("name", name), zap.String("parent", parent))
	}
	s.log.Info("folder created", zap.String("name", name), zap.String("id", id), zap.String("parent", parent))
	return id, nil
}

// CountImages counts image files directly inside folderID.
func (s *Storage) CountImages(ctx context.Context, folderID string) (int, error) {
	files, err := s.backend.ListImages(ctx, folderID)
	if err != nil {
		return 0, s.fail("count images", err, zap.String("folder", folderID))
	}
	return len(files), nil
}

// ListImages returns image files directly inside folderID, name ascending.
func (s *Storage) ListImages(ctx context.Context, folderID string) ([]File, error) {
	files, err := s.backend.ListImages(ctx, folderID)
	if err != nil {
		return nil, s.fail("list images", err, zap.String("folder", folderID))
	}
	slices.SortStableFunc(files, func(a, b File) int { return strings.Compare(a.Name, b.Name) })
	return files, nil
}

// UploadImage stores content as a new file named filename inside folderID.
func (s *Storage) UploadImage(ctx context.Context, content []byte, filename, folderID string) (File, error) {
	if len(content) == 0 {
		return File{}, fmt.Errorf("upload %s: empty content", filename)
	}
	f, err := s.backend.Upload(ctx, filename, folderID, util.SniffImageMIME(content), content)
	if err != nil {
		return File{}, s.fail("upload", err, zap.String("name", filename), zap.String("folder", folderID))
	}
	s.log.Info("image uploaded", zap.String("name", f.Name), zap.String("id", f.ID), zap.Int("bytes", len(content)))
	return f, nil
}

// DownloadFile reads the whole file into memory.
func (s *Storage) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	b, err := s.backend.Download(ctx, fileID)
	if err != nil {
		return nil, s.fail("download", err, zap.String("file", fileID))
	}
	return b, nil
}

func (s *Storage) fail(op string, err error, fields ...zap.Field) error {
	if errors.Is(err, context.Canceled) {
		s.log.Warn(op+" cancelled", fields...)
	} else {
		s.log.Error(op+" failed", append(fields, zap.Error(err))...)
	}
	return fmt.Errorf("%w: %s: %w", ErrBackend, op, err)
}
