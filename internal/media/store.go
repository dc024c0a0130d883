package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/SergeiKhy/linkstack/internal/config"
)

var ErrInvalidPath = errors.New("invalid object path")

// ObjectStore хранилище файлов по относительному пути (avatars/..., backgrounds/...)
type ObjectStore interface {
	Upload(ctx context.Context, objectPath string, body io.Reader) error
	Remove(ctx context.Context, objectPaths ...string) error
	PublicURL(objectPath string) string
	// PathFromURL возвращает путь объекта для URL, выданного этим хранилищем
	PathFromURL(url string) (string, bool)
}

type fsStore struct {
	dir    string
	prefix string
}

// NewFSStore хранилище в локальной директории, раздаётся HTTP-сервером по URLPrefix
func NewFSStore(cfg config.MediaConfig) (ObjectStore, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media dir: %w", err)
	}
	return &fsStore{
		dir:    cfg.Dir,
		prefix: strings.TrimRight(cfg.URLPrefix, "/"),
	}, nil
}

func (s *fsStore) Upload(ctx context.Context, objectPath string, body io.Reader) error {
	full, err := s.resolve(objectPath)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("failed to create object dir: %w", err)
	}

	// Пишем во временный файл и переименовываем, чтобы не отдавать недописанный объект
	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close object: %w", err)
	}

	if err := os.Rename(tmp.Name(), full); err != nil {
		return fmt.Errorf("failed to store object: %w", err)
	}
	return nil
}

func (s *fsStore) Remove(ctx context.Context, objectPaths ...string) error {
	for _, p := range objectPaths {
		full, err := s.resolve(p)
		if err != nil {
			return err
		}
		if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove object: %w", err)
		}
	}
	return nil
}

func (s *fsStore) PublicURL(objectPath string) string {
	return s.prefix + "/" + strings.TrimLeft(objectPath, "/")
}

func (s *fsStore) PathFromURL(url string) (string, bool) {
	idx := strings.Index(url, s.prefix+"/")
	if s.prefix == "" || idx < 0 {
		return "", false
	}
	p := url[idx+len(s.prefix)+1:]
	if _, err := s.resolve(p); err != nil {
		return "", false
	}
	return p, true
}

// resolve не даёт выйти за пределы корневой директории
func (s *fsStore) resolve(objectPath string) (string, error) {
	clean := path.Clean("/" + objectPath)
	if clean == "/" || strings.Contains(objectPath, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, objectPath)
	}
	return filepath.Join(s.dir, filepath.FromSlash(clean)), nil
}
