// Package fsutil holds the file system plumbing of a build: walking the
// source tree and writing the output tree.
package fsutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/otiai10/copy"
)

// DefaultPerm is the mode of written files.
const DefaultPerm os.FileMode = 0o664

// Files returns every regular file below root in lexical order. Directories
// are recursed into and never returned.
func Files(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: not a directory", root)
	}

	files := make([]string, 0, 100)
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			target, err := os.Stat(path)
			if err != nil || !target.Mode().IsRegular() {
				return nil
			}
		} else if !d.Type().IsRegular() {
			return nil
		}
		files = append(files, path)
		return nil
	})
	return files, err
}

// EnsureDir creates dir if it does not exist. An existing path that is not a
// directory is an error.
func EnsureDir(dir string) error {
	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return os.MkdirAll(dir, 0o775)
	case err != nil:
		return err
	case !info.IsDir():
		return fmt.Errorf("%s: output path was not a directory", dir)
	}
	return nil
}

// Writer writes files into the output tree, creating parent directories and
// truncating existing files.
type Writer struct {
	Perm os.FileMode
}

func (w Writer) perm() os.FileMode {
	if w.Perm == 0 {
		return DefaultPerm
	}
	return w.Perm
}

// WriteFile writes everything read from r to dest.
func (w Writer) WriteFile(dest string, r io.Reader) (err error) {
	if err := os.MkdirAll(filepath.Dir(dest), 0o775); err != nil {
		return err
	}
	f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, w.perm())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	_, err = io.Copy(f, r)
	return err
}

// WriteString writes content to dest.
func (w Writer) WriteString(dest, content string) error {
	return w.WriteFile(dest, strings.NewReader(content))
}

// CopyFile copies the bytes of src to dest.
func (w Writer) CopyFile(dest, src string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o775); err != nil {
		return err
	}
	return copy.Copy(src, dest, copy.Options{
		OnSymlink:         func(string) copy.SymlinkAction { return copy.Deep },
		PermissionControl: copy.AddPermission(0o200),
	})
}
