package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/djherbis/atime"
)

// preserveFlags are the file attributes copied from the source to the minified file.
type preserveFlags struct {
	mode       bool
	ownership  bool
	timestamps bool
}

func parsePreserve(options []string) (preserveFlags, error) {
	p := preserveFlags{}
	for _, option := range options {
		switch option {
		case "all":
			p = preserveFlags{true, true, true}
		case "mode":
			p.mode = true
		case "ownership":
			p.ownership = true
		case "timestamps":
			p.timestamps = true
		default:
			return p, fmt.Errorf("unknown preserve option %q", option)
		}
	}
	return p, nil
}

// apply copies the attributes of src to dst, and of each parent directory of src up to root to the corresponding
// parent of dst.
func (p preserveFlags) apply(src, root, dst string) {
	if p == (preserveFlags{}) || src == "" || dst == "" {
		return
	}

	rel, err := filepath.Rel(root, src)
	if err != nil {
		Error.Printf("src is not part of root path: src=%s root=%s", src, root)
		return
	}
	for rel != "." {
		info, err := os.Stat(filepath.Join(root, rel))
		if err != nil {
			Warning.Println(err)
			return
		}
		if p.mode {
			if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
				Warning.Println(err)
			}
		}
		if p.ownership {
			if uid, gid, ok := getOwnership(info); ok {
				if err := os.Chown(dst, uid, gid); err != nil {
					Warning.Println(err)
				}
			}
		}
		if p.timestamps {
			if err := os.Chtimes(dst, atime.Get(info), info.ModTime()); err != nil {
				Warning.Println(err)
			}
		}
		rel = filepath.Dir(rel)
		dst = filepath.Dir(dst)
	}
}
