package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/matryer/try"
)

// maxAttempts is the number of times a file is opened before giving up, files may be locked briefly by editors
const maxAttempts = 5

// IsDir returns true if the passed string looks like it specifies a directory, false otherwise.
func IsDir(dir string) bool {
	if 0 < len(dir) && dir[len(dir)-1] == os.PathSeparator {
		return true
	}
	info, err := os.Lstat(dir)
	return err == nil && info.Mode().IsDir() && info.Mode()&os.ModeSymlink == 0
}

// SameFile returns true if the two file paths specify the same file. Paths are compared with os.SameFile since
// file systems may be case-insensitive.
func SameFile(filename1 string, filename2 string) (bool, error) {
	fi1, err := os.Stat(filename1)
	if err != nil {
		return false, err
	}

	fi2, err := os.Stat(filename2)
	if err != nil {
		return false, err
	}
	return os.SameFile(fi1, fi2), nil
}

// retryOpen opens a file, retrying on failure.
func retryOpen(open func() (*os.File, error)) (*os.File, error) {
	var f *os.File
	err := try.Do(func(attempt int) (bool, error) {
		var ferr error
		f, ferr = open()
		return attempt < maxAttempts, ferr
	})
	return f, err
}

func openInputFile(input string) (io.ReadCloser, error) {
	if input == "" {
		return os.Stdin, nil
	}
	r, err := retryOpen(func() (*os.File, error) {
		return os.Open(input)
	})
	if err != nil {
		return nil, fmt.Errorf("open input file %q: %w", input, err)
	}
	return r, nil
}

func openOutputFile(output string) (io.WriteCloser, error) {
	if output == "" {
		return os.Stdout, nil
	}

	dir := filepath.Dir(output)
	if err := os.MkdirAll(dir, 0777); err != nil {
		return nil, fmt.Errorf("creating directory %q: %w", dir, err)
	}
	w, err := retryOpen(func() (*os.File, error) {
		return os.OpenFile(output, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0666)
	})
	if err != nil {
		return nil, fmt.Errorf("open output file %q: %w", output, err)
	}
	return w, nil
}

// bundle reads a list of files as one stream with a separator between them. Files are opened when reading reaches
// them, so that no more than one file is open at a time.
type bundle struct {
	io.Reader
	open func(string) (io.ReadCloser, error)
	cur  io.ReadCloser
}

func openBundle(filenames []string, sep []byte) (*bundle, error) {
	return newBundle(filenames, sep, openInputFile)
}

func newBundle(filenames []string, sep []byte, open func(string) (io.ReadCloser, error)) (*bundle, error) {
	b := &bundle{open: open}
	readers := make([]io.Reader, 0, 2*len(filenames))
	for i, filename := range filenames {
		if 0 < i {
			readers = append(readers, bytes.NewReader(sep))
		}
		readers = append(readers, &bundleFile{b, filename, i == 0})
	}
	b.Reader = io.MultiReader(readers...)

	// fail early when the first file cannot be opened
	if 0 < len(filenames) {
		if err := b.next(filenames[0]); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// next closes the current file and opens the given one.
func (b *bundle) next(filename string) error {
	if b.cur != nil {
		if err := b.cur.Close(); err != nil {
			return err
		}
		b.cur = nil
	}
	r, err := b.open(filename)
	if err != nil {
		return err
	}
	b.cur = r
	return nil
}

func (b *bundle) Close() error {
	if b.cur != nil {
		err := b.cur.Close()
		b.cur = nil
		return err
	}
	return nil
}

// bundleFile reads one file of a bundle.
type bundleFile struct {
	b        *bundle
	filename string
	opened   bool
}

func (f *bundleFile) Read(p []byte) (int, error) {
	if !f.opened {
		if err := f.b.next(f.filename); err != nil {
			return 0, err
		}
		f.opened = true
	}
	return f.b.cur.Read(p)
}
