// Package filex contains small filesystem helpers: ensuring storage
// directories exist and moving capture artifacts into them.
package filex

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// EnsureDir creates dir (and parents) if missing and returns its path.
func EnsureDir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return dir, nil
}

// DirMover relocates files into a fixed durable directory, keeping the
// original base name. It satisfies the capture flow's FileMover contract:
// a failed move surfaces and the source file is left in place.
type DirMover struct {
	dir string
}

func NewDirMover(dir string) (*DirMover, error) {
	if _, err := EnsureDir(dir); err != nil {
		return nil, err
	}
	return &DirMover{dir: dir}, nil
}

// Move relocates src into the mover's directory and returns the new path.
// Rename is tried first; when src sits on another filesystem (the usual
// case for device temp files) the file is copied and the source removed.
func (m *DirMover) Move(src string) (string, error) {
	dst := filepath.Join(m.dir, filepath.Base(src))

	if err := os.Rename(src, dst); err == nil {
		return dst, nil
	}

	if err := copyFile(src, dst); err != nil {
		return "", fmt.Errorf("move %s: %w", src, err)
	}
	if err := os.Remove(src); err != nil {
		return "", fmt.Errorf("remove source %s: %w", src, err)
	}
	return dst, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
