package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ErrNotDirectory is returned when the scan root exists but is not a directory.
var ErrNotDirectory = errors.New("root path is not a directory")

// defaultSkipDirs are subtrees never descended into. They are heavy,
// generated, or irrelevant to structural checks.
var defaultSkipDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	"dist":         true,
	"build":        true,
	"__pycache__":  true,
	".venv":        true,
	"venv":         true,
	"target":       true,
	"vendor":       true,
	".next":        true,
	".nuxt":        true,
}

// skipSuffixes are file suffixes omitted from the snapshot.
var skipSuffixes = []string{".pyc", ".class", ".o", ".so"}

// typeMarkers maps project type tags to their marker files. A marker
// starting with "*" matches any file with that suffix.
var typeMarkers = map[string][]string{
	"node":   {"package.json", "package-lock.json"},
	"python": {"requirements.txt", "setup.py", "pyproject.toml"},
	"java":   {"pom.xml", "build.gradle", "build.gradle.kts", "gradlew"},
	"rust":   {"Cargo.toml", "Cargo.lock"},
	"go":     {"go.mod", "go.sum"},
	"ruby":   {"Gemfile", "Gemfile.lock"},
	"php":    {"composer.json", "composer.lock"},
	"csharp": {"*.csproj", "*.sln"},
}

// frameworkMarkers maps framework tags to substrings searched for in
// dependency manifests.
var frameworkMarkers = map[string][]string{
	"react":   {"\"react\"", "@types/react"},
	"vue":     {"\"vue\"", "@vue/"},
	"angular": {"@angular/"},
	"express": {"\"express\""},
	"django":  {"django", "Django"},
	"flask":   {"flask", "Flask"},
	"spring":  {"spring-boot", "org.springframework"},
	"laravel": {"laravel/framework"},
}

// manifestFiles are the files whose contents are scanned for framework
// markers. Only manifests already present in the snapshot are read.
var manifestFiles = []string{"package.json", "requirements.txt", "pyproject.toml"}

// ciDirs and ciFiles are the fixed locations that indicate CI configuration.
var ciDirs = []string{".github/workflows"}
var ciFiles = []string{".gitlab-ci.yml", ".circleci/config.yml", "azure-pipelines.yml", "Jenkinsfile"}

// testDirNames are directory base names that indicate a test suite.
var testDirNames = map[string]bool{
	"test":      true,
	"tests":     true,
	"spec":      true,
	"__tests__": true,
}

// Options tunes a scan. The zero value is usable.
type Options struct {
	// SkipDirs adds directory names to the built-in deny list.
	SkipDirs []string

	// Concurrency bounds the number of top-level subtrees walked in
	// parallel. Values below 1 select the default of 4.
	Concurrency int
}

// Scan walks the project tree rooted at root and returns an immutable
// Snapshot. A missing or non-directory root is fatal; per-entry read
// errors are recorded as Skips and the walk continues. The context
// cancels the walk: a cancelled scan returns an error, never a partial
// snapshot.
func Scan(ctx context.Context, root string, opts Options) (*Snapshot, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root %q: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("scanning %q: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scanning %q: %w", root, ErrNotDirectory)
	}

	skip := make(map[string]bool, len(defaultSkipDirs)+len(opts.SkipDirs))
	for name := range defaultSkipDirs {
		skip[name] = true
	}
	for _, name := range opts.SkipDirs {
		skip[name] = true
	}

	snap := &Snapshot{
		Name:  filepath.Base(abs),
		Root:  abs,
		Files: make(map[string]bool),
		Dirs:  make(map[string]bool),
		Flags: make(map[string]bool),
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("reading root %q: %w", root, err)
	}

	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 4
	}

	// Top-level subtrees are walked in parallel; each goroutine collects
	// into local slices and the merge is a plain set union under one lock.
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			if skip[name] {
				continue
			}
			snap.Dirs[name] = true
			sub := filepath.Join(abs, name)
			g.Go(func() error {
				files, dirs, skips, err := walkSubtree(gctx, abs, sub, skip)
				if err != nil {
					return err
				}
				mu.Lock()
				for _, f := range files {
					snap.Files[f] = true
				}
				for _, d := range dirs {
					snap.Dirs[d] = true
				}
				snap.Skips = append(snap.Skips, skips...)
				mu.Unlock()
				return nil
			})
			continue
		}
		if keepFile(name) {
			snap.Files[name] = true
		}
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scanning %q: %w", root, err)
	}

	// Deterministic skip order regardless of walk interleaving.
	sort.Slice(snap.Skips, func(i, j int) bool { return snap.Skips[i].Path < snap.Skips[j].Path })

	snap.ProjectTypes = detectTypes(snap)
	snap.Frameworks = detectFrameworks(abs, snap)
	snap.Flags[FlagHasGit] = hasGitDir(abs)
	snap.Flags[FlagHasCI] = hasCI(snap)
	snap.Flags[FlagHasTests] = hasTests(snap)

	return snap, nil
}

// walkSubtree walks one top-level directory, returning relative file and
// directory paths plus per-entry skips. Only context errors abort the walk.
func walkSubtree(ctx context.Context, root, sub string, skip map[string]bool) (files, dirs []string, skips []Skip, err error) {
	err = filepath.WalkDir(sub, func(path string, d fs.DirEntry, walkErr error) error {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)
		if walkErr != nil {
			skips = append(skips, Skip{Path: rel, Reason: walkErr.Error()})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != sub && skip[d.Name()] {
				return filepath.SkipDir
			}
			if path != sub {
				dirs = append(dirs, rel)
			}
			return nil
		}
		if d.Type().IsRegular() && keepFile(d.Name()) {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return files, dirs, skips, nil
}

func keepFile(name string) bool {
	for _, suf := range skipSuffixes {
		if strings.HasSuffix(name, suf) {
			return false
		}
	}
	return true
}

// detectTypes tests each ecosystem's marker set against the snapshot.
// A marker matches on exact root-level presence or as a path suffix, so
// markers also fire inside monorepo subdirectories.
func detectTypes(snap *Snapshot) []string {
	var tags []string
	for tag, markers := range typeMarkers {
		if anyMarker(snap, markers) {
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	return tags
}

func anyMarker(snap *Snapshot, markers []string) bool {
	for _, m := range markers {
		if strings.HasPrefix(m, "*") {
			suffix := m[1:]
			for f := range snap.Files {
				if strings.HasSuffix(f, suffix) {
					return true
				}
			}
			continue
		}
		if snap.Files[m] {
			return true
		}
		for f := range snap.Files {
			if strings.HasSuffix(f, "/"+m) {
				return true
			}
		}
	}
	return false
}

// detectFrameworks reads the dependency manifests that exist in the
// snapshot and searches their contents for framework substrings. A
// manifest that fails to read contributes no tags.
func detectFrameworks(root string, snap *Snapshot) []string {
	found := make(map[string]bool)
	for _, manifest := range manifestFiles {
		if !snap.Files[manifest] {
			continue
		}
		data, err := os.ReadFile(filepath.Join(root, manifest))
		if err != nil {
			continue
		}
		content := string(data)
		for tag, needles := range frameworkMarkers {
			if found[tag] {
				continue
			}
			for _, needle := range needles {
				if strings.Contains(content, needle) {
					found[tag] = true
					break
				}
			}
		}
	}
	tags := make([]string, 0, len(found))
	for tag := range found {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// hasGitDir checks the root directly; .git is on the deny list so it is
// never recorded in the snapshot itself.
func hasGitDir(root string) bool {
	info, err := os.Stat(filepath.Join(root, ".git"))
	return err == nil && info.IsDir()
}

func hasCI(snap *Snapshot) bool {
	for _, d := range ciDirs {
		if snap.Dirs[d] {
			return true
		}
	}
	for _, f := range ciFiles {
		if snap.Files[f] {
			return true
		}
	}
	return false
}

// hasTests requires a test directory that is present and non-empty.
func hasTests(snap *Snapshot) bool {
	for dir := range snap.Dirs {
		base := dir
		if i := strings.LastIndex(dir, "/"); i >= 0 {
			base = dir[i+1:]
		}
		if !testDirNames[strings.ToLower(base)] {
			continue
		}
		prefix := dir + "/"
		for f := range snap.Files {
			if strings.HasPrefix(f, prefix) {
				return true
			}
		}
	}
	return false
}
