package storage

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/zeebo/blake3"
)

// ErrNotImage is returned when uploaded content is not an image.
var ErrNotImage = errors.New("content is not an image")

// Store saves uploaded files and returns a retrievable reference.
type Store interface {
	SaveImage(ctx context.Context, prefix, filename string, content []byte) (string, error)
}

// Local stores files in a directory served under URLPrefix.
type Local struct {
	dir       string
	urlPrefix string
}

// Ensure Local implements Store
var _ Store = (*Local)(nil)

// NewLocal creates the upload directory if needed.
func NewLocal(dir, urlPrefix string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{dir: dir, urlPrefix: strings.TrimSuffix(urlPrefix, "/")}, nil
}

// Dir returns the directory files are written to.
func (l *Local) Dir() string {
	return l.dir
}

// SaveImage sniffs content, rejects non-images, and writes it as
// <prefix>_<content hash><ext>. Identical uploads map to the same file.
func (l *Local) SaveImage(ctx context.Context, prefix, filename string, content []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	mtype := mimetype.Detect(content)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", fmt.Errorf("%w: detected %s", ErrNotImage, mtype.String())
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = mtype.Extension()
	}

	sum := blake3.Sum256(content)
	name := fmt.Sprintf("%s_%s%s", prefix, hex.EncodeToString(sum[:8]), ext)

	tmp, err := os.CreateTemp(l.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close upload: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(l.dir, name)); err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	return path.Join(l.urlPrefix, name), nil
}
