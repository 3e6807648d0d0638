package util

import (
	"path/filepath"
	"strings"
)

// ResolveUnder joins name onto root and reports whether the result stays
// inside root. Leading slashes in name are ignored, backslashes are treated
// as separators, and ".." segments that would climb out of root are rejected.
func ResolveUnder(root, name string) (string, bool) {
	name = strings.ReplaceAll(name, `\`, "/")
	name = strings.TrimLeft(name, "/")
	if name == "" {
		return "", false
	}

	cleanRoot := filepath.Clean(root)
	full := filepath.Join(cleanRoot, filepath.FromSlash(name))

	rel, err := filepath.Rel(cleanRoot, full)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return full, true
}
