package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/tdewolff/argp"
	"golang.org/x/sync/errgroup"

	min "github.com/jsmin/minify"
	"github.com/jsmin/minify/js"
	defaults "github.com/jsmin/minify/minify"
)

// Version is the current jsmin version.
var Version = "built from source"

// Loggers.
var (
	Error   *log.Logger
	Warning *log.Logger
	Info    *log.Logger
)

// settings are the command line options.
type settings struct {
	inputs     []string
	output     string
	configPath string
	matches    []string
	filters    []filterRule
	recursive  bool
	hidden     bool
	quiet      bool
	verbose    int
	watch      bool
	bundle     bool
	preserve   []string
	version    bool
}

func main() {
	// os.Exit doesn't execute pending defer calls, this is fixed by encapsulating run()
	os.Exit(run())
}

func run() int {
	s := settings{}
	jsMinifier := js.Minifier{}

	f := argp.New("jsmin")
	f.AddRest(&s.inputs, "inputs", "Input files or directories, leave blank to use stdin")
	f.AddOpt(&s.output, "o", "output", "Output file or directory, leave blank to use stdout")
	f.AddOpt(argp.Append{I: &s.matches}, "", "match", "Filename matching pattern, only matching filenames are processed")
	f.AddOpt(filterFlag{true, &s.filters}, "", "include", "Path inclusion pattern, includes paths previously excluded")
	f.AddOpt(filterFlag{false, &s.filters}, "", "exclude", "Path exclusion pattern, excludes paths from being processed")
	f.AddOpt(&s.recursive, "r", "recursive", "Recursively minify directories")
	f.AddOpt(&s.hidden, "a", "all", "Minify all files, including hidden files and files in hidden directories")
	f.AddOpt(&s.quiet, "q", "quiet", "Quiet mode to suppress all output")
	f.AddOpt(argp.Count{I: &s.verbose}, "v", "verbose", "Verbose mode, set twice for more verbosity")
	f.AddOpt(&s.watch, "w", "watch", "Watch files and minify upon changes")
	f.AddOpt(&s.bundle, "b", "bundle", "Bundle files by concatenation into a single file, so that calls across files are seen")
	f.AddOpt(&s.preserve, "p", "preserve", "Preserve options (mode, ownership, timestamps, all)")
	f.AddOpt(&s.configPath, "", "config", "Configuration file, by default .jsmin.yml in the working directory")
	f.AddOpt(&s.version, "", "version", "Version")
	f.AddOpt(&jsMinifier.KeepTopLevel, "", "keep-top-level", "Preserve the parameters of top-level functions, for scripts that share a global scope")
	f.AddOpt(&jsMinifier.MaxStringLen, "", "max-string-len", fmt.Sprintf("Longest string value to inline, 0 is %d", js.DefaultMaxStringLen))
	f.Parse()

	if s.version {
		if !s.quiet {
			fmt.Printf("jsmin %s\n", Version)
		}
		return 0
	}
	setLoggers(s.quiet, s.verbose)

	config, err := LoadConfig(s.configPath)
	if err != nil {
		Error.Println(err)
		return 1
	}
	applyConfig(f, config, &s, &jsMinifier)
	jsMinifier.Report = func(stats js.Stats) {
		Info.Printf("inlined %d parameters of %d/%d functions, removed %d arguments (%d escaped, %d disqualified)", stats.Params, stats.Rewritten, stats.Functions, stats.Args, stats.Escaped, stats.Disqualified)
	}

	if len(s.inputs) == 1 && s.inputs[0] == "-" {
		s.inputs = s.inputs[:0] // stdin
	}
	if s.output == "-" {
		s.output = "" // stdout
	}
	if err := s.check(jsMinifier, f.IsSet("preserve")); err != nil {
		Error.Println(err)
		return 1
	}
	preserve, err := parsePreserve(s.preserve)
	if err != nil {
		Error.Println(err)
		return 1
	}
	if preserve.ownership && !supportsGetOwnership {
		Warning.Println("preserve ownership not supported on platform")
	}
	filter, err := newPathFilter(s.matches, s.filters)
	if err != nil {
		Error.Println(err)
		return 1
	}

	inputs := cleanInputs(s.inputs)
	output, dirDst, err := resolveOutput(s.output, inputs, s.bundle)
	if err != nil {
		Error.Println(err)
		return 1
	}

	tasks := []Task{{srcs: []string{""}, dst: output}}
	var roots []string
	if 0 < len(inputs) {
		p := planner{NewFS(), filter, s.recursive, s.hidden}
		if tasks, roots, err = p.tasks(inputs, output); err != nil {
			Error.Println(err)
			return 1
		}
	}
	if s.bundle {
		tasks = bundleTasks(tasks, output)
	}
	if dirDst {
		if err := os.MkdirAll(output, 0777); err != nil {
			Error.Println(err)
			return 1
		}
	}

	r := &runner{m: newRegistry(&jsMinifier), preserve: preserve}
	if !s.quiet {
		r.stats = os.Stderr
	}

	var fails atomic.Int32
	start := time.Now()
	if !s.watch && (len(tasks) == 1 || 0 < s.verbose) {
		for _, task := range tasks {
			if !r.run(task) {
				fails.Add(1)
			}
		}
	} else {
		numWorkers := runtime.NumCPU()
		if 0 < s.verbose {
			numWorkers = 1
		} else if numWorkers < 4 {
			numWorkers = 4
		}

		var g errgroup.Group
		g.SetLimit(numWorkers)
		schedule := func(task Task) {
			g.Go(func() error {
				if !r.run(task) {
					fails.Add(1)
				}
				return nil
			})
		}
		for _, task := range tasks {
			schedule(task)
		}
		if s.watch {
			if err := watchTasks(tasks, inputs, roots, output, filter, s, schedule); err != nil {
				Error.Println(err)
				fails.Add(1)
			}
		}
		g.Wait()
	}

	if !s.watch {
		Info.Println("finished in", time.Since(start))
	}
	if 0 < fails.Load() {
		return 1
	}
	return 0
}

func setLoggers(quiet bool, verbose int) {
	Error = log.New(io.Discard, "", 0)
	Warning = log.New(io.Discard, "", 0)
	Info = log.New(io.Discard, "", 0)
	if !quiet {
		Error = log.New(os.Stderr, "ERROR: ", 0)
		if 0 < verbose {
			Warning = log.New(os.Stderr, "WARNING: ", 0)
		}
		if 1 < verbose {
			Info = log.New(os.Stderr, "INFO: ", 0)
		}
	}
}

func newRegistry(jsMinifier *js.Minifier) *min.M {
	m := min.New()
	m.AddRegexp(defaults.JSMimetype, jsMinifier)
	return m
}

// applyConfig sets the options of the configuration file that were not given as flags.
func applyConfig(f *argp.Argp, config *Config, s *settings, jsMinifier *js.Minifier) {
	if !f.IsSet("output") && config.Output != "" {
		s.output = config.Output
	}
	if !f.IsSet("recursive") {
		s.recursive = config.Recursive
	}
	if !f.IsSet("all") {
		s.hidden = config.All
	}
	if !f.IsSet("match") {
		s.matches = append(s.matches, config.Match...)
	}
	if !f.IsSet("include") && !f.IsSet("exclude") {
		for _, pattern := range config.Exclude {
			s.filters = append(s.filters, filterRule{false, pattern})
		}
		for _, pattern := range config.Include {
			s.filters = append(s.filters, filterRule{true, pattern})
		}
	}
	if !f.IsSet("preserve") {
		s.preserve = config.Preserve
	}
	if !f.IsSet("keep-top-level") {
		jsMinifier.KeepTopLevel = config.KeepTopLevel
	}
	if !f.IsSet("max-string-len") {
		jsMinifier.MaxStringLen = config.MaxStringLen
	}
}

// check reports combinations of options that cannot work together. Preserve options from the configuration file
// are dropped for stdin, stdout and bundles, only an explicit --preserve is an error.
func (s *settings) check(jsMinifier js.Minifier, preserveSet bool) error {
	useStdin := len(s.inputs) == 0
	if jsMinifier.MaxStringLen < 0 {
		return errors.New("--max-string-len must be positive")
	}
	for _, input := range s.inputs {
		if input == "-" {
			return errors.New("cannot mix files and stdin as input")
		}
	}
	if s.watch && (useStdin || s.output == "") {
		return errors.New("--watch doesn't work with stdin and stdout, specify input and output")
	} else if useStdin && s.bundle {
		return errors.New("--bundle doesn't work with stdin, specify input")
	} else if useStdin && s.recursive {
		return errors.New("--recursive doesn't work with stdin, specify input")
	} else if s.output == "" && s.recursive && !s.bundle {
		return errors.New("--recursive doesn't work with stdout, specify output or use --bundle")
	} else if preserveSet && s.bundle {
		return errors.New("--preserve cannot be used together with --bundle")
	} else if preserveSet && (useStdin || s.output == "") {
		return errors.New("--preserve cannot be used together with stdin or stdout")
	}
	if useStdin || s.output == "" || s.bundle {
		s.preserve = nil
	}
	return nil
}

// cleanInputs cleans the input paths but keeps a trailing separator, which places the files of a directory
// directly in the output directory.
func cleanInputs(inputs []string) []string {
	cleaned := make([]string, len(inputs))
	for i, input := range inputs {
		cleaned[i] = filepath.Clean(input)
		if strings.HasSuffix(input, string(os.PathSeparator)) && cleaned[i] != string(os.PathSeparator) {
			cleaned[i] += string(os.PathSeparator)
		}
	}
	return cleaned
}

// resolveOutput returns the cleaned output path and whether it is a directory, which then ends in a separator.
// An empty output is stdout.
func resolveOutput(output string, inputs []string, bundle bool) (string, bool, error) {
	if output == "" {
		if 1 < len(inputs) && !bundle {
			return "", false, errors.New("must specify --bundle for multiple input files with stdout destination")
		}
		Info.Println("minify to stdout")
		return "", false, nil
	}

	dirDst := IsDir(output)
	if !dirDst && !bundle {
		if 1 < len(inputs) {
			return "", false, fmt.Errorf("stat %v: no such file or directory", output)
		} else if len(inputs) == 1 {
			if info, err := os.Lstat(inputs[0]); err == nil && info.Mode().IsDir() && info.Mode()&os.ModeSymlink == 0 {
				dirDst = true
			}
		}
	}
	if dirDst && bundle {
		return "", false, errors.New("--bundle requires destination to be stdout or a file")
	}

	output = filepath.Clean(output)
	if dirDst {
		if output != string(os.PathSeparator) {
			output += string(os.PathSeparator)
		}
		Info.Println("minify to output directory", output)
	} else {
		Info.Println("minify to output file", output)
	}
	return output, dirDst, nil
}

// watchTasks schedules a task for every change of a watched script until interrupted. A bundle is rebuilt as a
// whole.
func watchTasks(tasks []Task, inputs, roots []string, output string, filter *pathFilter, s settings, schedule func(Task)) error {
	watcher, err := NewWatcher(s.recursive)
	if err != nil {
		return err
	}
	defer watcher.Close()
	changes := watcher.Run()

	for _, input := range inputs {
		if err := watcher.AddPath(input); err != nil {
			return err
		}
	}
	for _, task := range tasks {
		watcher.IgnoreNext(task.dst)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	defer signal.Stop(c)
	for changes != nil {
		select {
		case <-c:
			watcher.Close()
		case file, ok := <-changes:
			if !ok {
				changes = nil
				break
			}
			file = filepath.Clean(file)
			if !filter.isScript(file) && !isInput(inputs, file) {
				continue
			}

			var task Task
			if s.bundle && 0 < len(tasks) {
				task = tasks[0]
			} else if task, err = NewTask(longestRoot(roots, file), file, output); err != nil {
				return err
			}
			watcher.IgnoreNext(task.dst) // skip change on output
			schedule(task)
		}
	}
	return nil
}

func isInput(inputs []string, file string) bool {
	for _, input := range inputs {
		if filepath.Clean(input) == file {
			return true
		}
	}
	return false
}
