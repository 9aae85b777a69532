package artifact

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
)

// LocalFS implements Store on the local filesystem under a root directory
type LocalFS struct {
	root string
}

// NewLocalFS creates a filesystem-backed artifact store
func NewLocalFS(root string) *LocalFS {
	return &LocalFS{root: root}
}

func (l *LocalFS) Provider() string { return "localfs" }

func (l *LocalFS) Put(ctx context.Context, in PutInput) error {
	if in.Key == "" {
		return fmt.Errorf("artifact key is required")
	}

	dst := filepath.Join(l.root, filepath.FromSlash(in.Key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create artifact file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, in.Reader); err != nil {
		return fmt.Errorf("failed to write artifact: %w", err)
	}

	return nil
}

func (l *LocalFS) Get(ctx context.Context, key string) (*Object, error) {
	p := filepath.Join(l.root, filepath.FromSlash(key))

	f, err := os.Open(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to open artifact: %w", err)
	}

	var size int64
	if st, err := f.Stat(); err == nil {
		size = st.Size()
	}

	// Prefer extension-based type, sniff the first bytes otherwise
	contentType := mime.TypeByExtension(filepath.Ext(p))
	if contentType == "" {
		buf := make([]byte, 512)
		n, _ := f.Read(buf)
		_, _ = f.Seek(0, 0)
		contentType = http.DetectContentType(buf[:n])
	}

	return &Object{Reader: f, ContentType: contentType, Size: size}, nil
}
