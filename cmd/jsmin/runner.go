package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/matryer/try"

	min "github.com/jsmin/minify"
)

const mimetype = "application/javascript"

// bundleSeparator is written between bundled files, so that a file without a trailing semicolon does not run into
// the next.
var bundleSeparator = []byte(";\n")

// runner executes tasks.
type runner struct {
	m        *min.M
	preserve preserveFlags
	stats    io.Writer // nil for quiet
}

// run minifies a task and returns false on failure. Sources that fail to minify are copied unchanged.
func (r *runner) run(t Task) bool {
	srcName := strings.Join(t.srcs, " + ")
	if 1 < len(t.srcs) {
		srcName = "(" + srcName + ")"
	} else if srcName == "" {
		srcName = "stdin"
	}
	dstName := t.dst
	if dstName == "" {
		dstName = "stdout"
	}

	// move the original aside when overwriting a source
	backup := -1
	if t.dst != "" {
		for i, src := range t.srcs {
			if same, _ := SameFile(src, t.dst); same {
				if err := rename(t.dst, src+".bak"); err != nil {
					Error.Println(err)
					return false
				}
				t.srcs = append([]string{}, t.srcs...)
				t.srcs[i] = src + ".bak"
				backup = i
				break
			}
		}
	}

	b, err := readSources(t.srcs)
	if err != nil {
		Error.Println(err)
		r.restore(t, backup, false)
		return false
	}

	success := true
	start := time.Now()
	Info.Println("minify", srcName)
	w := bytes.NewBuffer(make([]byte, 0, len(b)))
	if err := r.m.Minify(mimetype, w, bytes.NewReader(b)); err != nil {
		Error.Println("cannot minify "+srcName+":", err)
		w = bytes.NewBuffer(b)
		success = false
	}
	rLen, wLen := len(b), w.Len()

	fw, err := openOutputFile(t.dst)
	if err == nil {
		_, err = w.WriteTo(fw)
		if t.dst != "" {
			if cerr := fw.Close(); err == nil {
				err = cerr
			}
		}
	}
	if err != nil {
		Error.Println(err)
		r.restore(t, backup, false)
		return false
	}
	if r.stats != nil {
		fmt.Fprintln(r.stats, statsLine(time.Since(start), rLen, wLen), "-", taskName(srcName, dstName))
	}

	if !r.restore(t, backup, true) {
		return false
	}
	if backup != -1 {
		t.srcs[backup] = t.dst
	}
	r.preserve.apply(t.srcs[0], t.root, t.dst)
	return success
}

// restore removes the backup of an overwritten source when written is true, and puts it back otherwise.
func (r *runner) restore(t Task, backup int, written bool) bool {
	if backup == -1 {
		return true
	}
	var err error
	if written {
		err = os.Remove(t.srcs[backup])
	} else {
		err = rename(t.srcs[backup], t.dst)
	}
	if err != nil {
		Error.Println(err)
		return false
	}
	return true
}

// rename retries since the file may be held open briefly by an editor or virus scanner.
func rename(oldpath, newpath string) error {
	return try.Do(func(attempt int) (bool, error) {
		return attempt < maxAttempts, os.Rename(oldpath, newpath)
	})
}

// readSources reads a single source, or the bundle of all sources.
func readSources(srcs []string) ([]byte, error) {
	var fr io.ReadCloser
	var err error
	if len(srcs) == 1 {
		fr, err = openInputFile(srcs[0])
	} else {
		fr, err = openBundle(srcs, bundleSeparator)
	}
	if err != nil {
		return nil, err
	}
	defer fr.Close()
	return io.ReadAll(fr)
}

func taskName(srcName, dstName string) string {
	if srcName != dstName {
		return srcName + " to " + dstName
	}
	return srcName
}

// statsLine formats the duration, input and output sizes, compression ratio, and speed of a minification.
func statsLine(dur time.Duration, rLen, wLen int) string {
	speed := "Inf MB"
	if 0 < dur {
		speed = humanize.Bytes(uint64(float64(rLen) / dur.Seconds()))
	}
	ratio := 1.0
	if 0 < rLen {
		ratio = float64(wLen) / float64(rLen)
	}
	return fmt.Sprintf("(%9v, %6v, %6v, %5.1f%%, %6v/s)", dur, humanize.Bytes(uint64(rLen)), humanize.Bytes(uint64(wLen)), ratio*100, speed)
}
