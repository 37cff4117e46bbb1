// Package snapshot scans a project tree into an immutable structure snapshot.
package snapshot

// Flag names computed once during a scan.
const (
	FlagHasGit   = "hasGit"
	FlagHasCI    = "hasCI"
	FlagHasTests = "hasTests"
)

// Skip records a directory entry that could not be read during the walk.
type Skip struct {
	// Path is the relative path of the skipped entry.
	Path string `json:"path"`

	// Reason is the error message that caused the skip.
	Reason string `json:"reason"`
}

// Snapshot is the immutable result of scanning one project root.
// All fields are populated during Scan and must not be mutated afterwards;
// rule evaluation relies on this for lock-free concurrent reads.
type Snapshot struct {
	// Name is the directory name of the project root.
	Name string `json:"name"`

	// Root is the absolute path that was scanned.
	Root string `json:"root"`

	// Files maps relative paths of regular files to membership.
	Files map[string]bool `json:"files"`

	// Dirs maps relative directory paths to membership.
	Dirs map[string]bool `json:"directories"`

	// ProjectTypes lists ecosystem tags detected from marker files
	// (node, python, go, ...). Multiple types co-occur in monorepos.
	ProjectTypes []string `json:"project_types"`

	// Frameworks lists framework tags detected from manifest contents.
	Frameworks []string `json:"frameworks"`

	// Flags holds the named setup booleans (hasGit, hasCI, hasTests).
	Flags map[string]bool `json:"flags"`

	// Skips lists entries that failed to read and were omitted.
	Skips []Skip `json:"skips,omitempty"`
}

// HasFile reports whether the relative path exists as a regular file.
func (s *Snapshot) HasFile(rel string) bool {
	return s.Files[rel]
}

// HasDir reports whether the relative path exists as a directory.
func (s *Snapshot) HasDir(rel string) bool {
	return s.Dirs[rel]
}

// HasType reports whether the given project type tag was detected.
func (s *Snapshot) HasType(tag string) bool {
	for _, t := range s.ProjectTypes {
		if t == tag {
			return true
		}
	}
	return false
}

// HasFramework reports whether the given framework tag was detected.
func (s *Snapshot) HasFramework(tag string) bool {
	for _, f := range s.Frameworks {
		if f == tag {
			return true
		}
	}
	return false
}

// Flag returns the named setup flag, false when unknown.
func (s *Snapshot) Flag(name string) bool {
	return s.Flags[name]
}

// FileCount returns the number of regular files recorded.
func (s *Snapshot) FileCount() int { return len(s.Files) }

// DirCount returns the number of directories recorded.
func (s *Snapshot) DirCount() int { return len(s.Dirs) }
