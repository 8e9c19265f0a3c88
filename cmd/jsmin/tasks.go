package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Task minifies one or more source files into dst. An empty source is stdin and an empty dst is stdout. More
// than one source is a bundle.
type Task struct {
	root string
	srcs []string
	dst  string
}

// NewTask returns a new Task. When output is a directory, the destination keeps the path of input relative to
// root.
func NewTask(root, input, output string) (Task, error) {
	if output != "" && (output == "." || output[len(output)-1] == os.PathSeparator) {
		rel, err := filepath.Rel(root, input)
		if err != nil {
			return Task{}, err
		}
		output = filepath.Join(output, rel)
	}
	return Task{root, []string{input}, output}, nil
}

// planner turns the command line inputs into tasks.
type planner struct {
	fsys      fs.FS
	filter    *pathFilter
	recursive bool
	hidden    bool
}

// tasks returns a task for every selected file and the root directories of the inputs, which are used to place
// files that change while watching.
func (p planner) tasks(inputs []string, output string) ([]Task, []string, error) {
	tasks := []Task{}
	roots := []string{}
	for _, input := range inputs {
		root := filepath.Dir(input)
		input = filepath.Clean(input)

		info, err := fs.Stat(p.fsys, input)
		if err != nil {
			return nil, nil, err
		}

		if info.Mode().IsRegular() {
			// explicit inputs are minified regardless of their extension
			if !p.filter.selects(input) {
				Info.Println("filtered out", input)
				continue
			}
			task, err := NewTask(root, input, output)
			if err != nil {
				return nil, nil, err
			}
			tasks = append(tasks, task)
		} else if info.IsDir() {
			if !p.recursive {
				Warning.Println("--recursive not specified, omitting directory", input)
				continue
			}
			if tasks, err = p.walk(tasks, root, input, output); err != nil {
				return nil, nil, err
			}
		} else {
			return nil, nil, fmt.Errorf("not a file or directory %s", input)
		}
		roots = append(roots, root)
	}
	return tasks, roots, nil
}

func (p planner) walk(tasks []Task, root, dir, output string) ([]Task, error) {
	err := fs.WalkDir(p.fsys, dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		} else if path != dir && !p.hidden && d.Name()[0] == '.' {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			// follow symbolic links
			info, err := fs.Stat(p.fsys, path)
			if err != nil {
				return err
			} else if info.IsDir() {
				tasks, err = p.walk(tasks, root, path, output)
				return err
			}
			d = fs.FileInfoToDirEntry(info)
		}

		if d.Type().IsRegular() && p.filter.isScript(path) {
			task, err := NewTask(root, path, output)
			if err != nil {
				return err
			}
			tasks = append(tasks, task)
		}
		return nil
	})
	return tasks, err
}

// bundleTasks merges all tasks into one that concatenates their sources, so that functions defined in one file
// and called in another are seen together.
func bundleTasks(tasks []Task, output string) []Task {
	if len(tasks) < 2 {
		return tasks
	}
	bundle := Task{tasks[0].root, nil, output}
	for _, task := range tasks {
		bundle.srcs = append(bundle.srcs, task.srcs...)
	}
	return []Task{bundle}
}

// longestRoot returns the root that is the closest parent of file.
func longestRoot(roots []string, file string) string {
	root := ""
	for _, path := range roots {
		pathRel, err1 := filepath.Rel(path, file)
		rootRel, err2 := filepath.Rel(root, file)
		if err2 != nil || err1 == nil && len(pathRel) < len(rootRel) {
			root = path
		}
	}
	return root
}
