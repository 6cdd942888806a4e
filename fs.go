package prolog

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
)

// RealFS is the actual file system.
type RealFS struct{}

func (r RealFS) Open(name string) (fs.File, error) {
	return os.Open(name)
}

// OverlayFS is a sequence of fs.FS.
// If the requested file doesn't exist in the first fs.FS, it falls back to the next and so on.
type OverlayFS []fs.FS

func (o OverlayFS) Open(name string) (fs.File, error) {
	for _, e := range o {
		switch f, err := e.Open(name); {
		case err == nil:
			return f, nil
		case errors.Is(err, fs.ErrNotExist):
			continue
		default:
			return nil, err
		}
	}
	return nil, fs.ErrNotExist
}

// FileProvider opens the named streams of see/1, tell/1, append/1 and consult/1 as files.
// Files are read from FS. Unless ReadOnly, they are written to the real file system.
type FileProvider struct {
	FS       fs.FS
	ReadOnly bool
}

// Reader opens the file name. If there's no such file and name has no extension, it tries name.pl.
func (p FileProvider) Reader(_ context.Context, name string) (io.Reader, error) {
	f, err := p.FS.Open(name)
	if errors.Is(err, fs.ErrNotExist) && path.Ext(name) == "" {
		return p.FS.Open(name + ".pl")
	}
	return f, err
}

// Writer opens the file name for writing. The file is truncated unless append is true.
func (p FileProvider) Writer(_ context.Context, name string, append bool) (io.Writer, error) {
	if p.ReadOnly {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrPermission}
	}
	flag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if append {
		flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}
	f, err := os.OpenFile(name, flag, 0o644)
	if err != nil {
		return nil, err
	}
	return f, nil
}
