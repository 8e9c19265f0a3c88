package main

import (
	"io/fs"
	"os"
	"path/filepath"
)

// NewFS returns a file system relative to the working directory. Unlike os.DirFS it accepts absolute paths and
// paths that go up from the working directory, as given on the command line.
func NewFS() fs.FS {
	return osFS("")
}

type osFS string

func (dir osFS) Open(name string) (fs.File, error) {
	return os.Open(filepath.Join(string(dir), name))
}

func (dir osFS) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(filepath.Join(string(dir), name))
}
