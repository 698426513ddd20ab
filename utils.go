package apillon

import (
	"path"
	"strings"
	"unicode"
	"unicode/utf8"
)

// IsValidVirtualPath validates a virtual directory path inside a bucket.
// It checks that the path:
//   - is relative (does not start with "/") and does not end with "/"
//   - does not contain ".." or "." segments
//   - does not contain "//" (empty segments) or backslashes
//   - is valid UTF-8 without control characters
//
// The empty string is valid and denotes the bucket root.
func IsValidVirtualPath(p string) bool {
	if p == "" {
		return true
	}

	if p[0] == '/' || strings.HasSuffix(p, "/") {
		return false
	}

	if strings.Contains(p, "//") || strings.Contains(p, `\`) {
		return false
	}

	if !utf8.ValidString(p) {
		return false
	}

	for _, seg := range strings.Split(p, "/") {
		if seg == "." || seg == ".." {
			return false
		}
	}

	for _, r := range p {
		if r < 0x20 || r == 0x7f || (unicode.IsSpace(r) && r != ' ') {
			return false
		}
	}

	return true
}

// JoinVirtualPath joins a virtual directory and a file name with "/".
// An empty directory yields the bare file name.
func JoinVirtualPath(dir, name string) string {
	dir = strings.Trim(dir, "/")
	if dir == "" {
		return name
	}
	return path.Join(dir, name)
}
