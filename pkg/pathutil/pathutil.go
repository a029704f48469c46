// Package pathutil canonicalizes href and file-path strings so that the
// navigation map and the spine, which routinely disagree on path
// conventions, become comparable.
package pathutil

import "strings"

// Normalize canonicalizes an EPUB-internal href or file path: backslashes
// become forward slashes, leading "./" and "../" runs are stripped, a
// leading OEBPS/ or OPS/ segment is dropped (case-insensitive), and the
// result is lowercased. Empty input yields an empty string.
func Normalize(href string) string {
	if href == "" {
		return ""
	}

	p := strings.ReplaceAll(href, "\\", "/")
	p = strings.TrimPrefix(p, "./")
	for strings.HasPrefix(p, "../") {
		p = p[len("../"):]
	}

	lower := strings.ToLower(p)
	for _, prefix := range []string{"oebps/", "ops/"} {
		if strings.HasPrefix(lower, prefix) {
			p = p[len(prefix):]
			break
		}
	}

	return strings.ToLower(p)
}

// Filename returns the last path segment of the normalized form of href.
func Filename(href string) string {
	p := Normalize(href)
	if idx := strings.LastIndexByte(p, '/'); idx >= 0 {
		return p[idx+1:]
	}
	return p
}

// SplitFragment splits an href into its file part and fragment identifier.
// The fragment is empty when no "#" is present.
func SplitFragment(href string) (file, fragment string) {
	if idx := strings.IndexByte(href, '#'); idx >= 0 {
		return href[:idx], href[idx+1:]
	}
	return href, ""
}
