package catalog

import "strings"

// AttachmentDir is the directory name that marks nested catalog attachments
const AttachmentDir = "files"

// IsWhitelisted reports whether a changed path is relevant to the catalog.
//
// Top-level paths are table definitions and must end in ".json". Nested paths are
// attachments and qualify only when exactly one of their directory components is
// AttachmentDir; their extension is irrelevant.
func IsWhitelisted(path string) bool {
	segments := strings.Split(path, "/")
	if len(segments) == 1 {
		return strings.HasSuffix(path, ".json")
	}

	matches := 0
	for _, dir := range segments[:len(segments)-1] {
		if dir == AttachmentDir {
			matches++
		}
	}
	return matches == 1
}

// FilterWhitelisted returns the whitelisted paths, preserving their order
func FilterWhitelisted(paths []string) []string {
	filtered := make([]string, 0, len(paths))
	for _, p := range paths {
		if IsWhitelisted(p) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}
