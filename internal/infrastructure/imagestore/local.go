package imagestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/oksasatya/places-api/internal/domain/service"
)

// Local writes images under Dir and returns references of the form
// "<URLPrefix>/<name>", which the router serves statically.
type Local struct {
	Dir       string
	URLPrefix string
}

func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{Dir: dir, URLPrefix: filepath.ToSlash(filepath.Clean(dir))}, nil
}

func (l *Local) Save(_ context.Context, _ string, contentType string, r io.Reader) (string, error) {
	name, err := objectName(contentType)
	if err != nil {
		return "", err
	}
	f, err := os.OpenFile(filepath.Join(l.Dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create image: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write image: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("close image: %w", err)
	}
	return path.Join(l.URLPrefix, name), nil
}

// Delete removes a file previously returned by Save. References outside
// the upload directory are refused. A missing file is not an error.
func (l *Local) Delete(_ context.Context, ref string) error {
	name := strings.TrimPrefix(ref, l.URLPrefix+"/")
	if name == ref || name == "" || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("image %q is not managed by this store", ref)
	}
	err := os.Remove(filepath.Join(l.Dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

var _ service.ImageStore = (*Local)(nil)
