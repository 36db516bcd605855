package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DiskSink writes debug frames into a single directory.
type DiskSink struct {
	dir string
}

// NewDiskSink creates dir if it does not exist yet.
func NewDiskSink(dir string) (*DiskSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}
	return &DiskSink{dir: dir}, nil
}

func (d *DiskSink) Dir() string { return d.dir }

func (d *DiskSink) Save(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := filepath.Join(d.dir, sanitizeName(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// sanitizeName keeps client-supplied ids from escaping the uploads directory.
func sanitizeName(name string) string {
	name = strings.NewReplacer("/", "_", "\\", "_", "\x00", "").Replace(name)
	if name == "" || name == "." || name == ".." {
		return "unnamed.jpg"
	}
	return name
}
