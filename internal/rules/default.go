package rules

import (
	"bytes"
	_ "embed"
)

//go:embed assets/patterns.yaml
var defaultPatterns []byte

// Default returns the embedded pattern catalog. The embedded document is
// validated at load like any other source; warnings from it indicate a
// packaging bug and are surfaced to the caller unchanged.
func Default() ([]Rule, []LoadWarning, error) {
	return Load(bytes.NewReader(defaultPatterns), "builtin")
}
