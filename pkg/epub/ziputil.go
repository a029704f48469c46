package epub

import (
	"archive/zip"
	"fmt"
	"io"
	"net/url"
	"path"
	"regexp"
	"strings"
)

// maxDecompressSize bounds the decompressed size of a single zip entry,
// guarding against zip bombs.
const maxDecompressSize int64 = 256 * 1024 * 1024

// readZipFile reads a zip entry fully, enforcing maxDecompressSize and
// rejecting entries whose path escapes the archive root.
func readZipFile(f *zip.File) ([]byte, error) {
	if !isSafePath(f.Name) {
		return nil, fmt.Errorf("epub: unsafe zip entry path: %s", f.Name)
	}
	if f.UncompressedSize64 > uint64(maxDecompressSize) {
		return nil, fmt.Errorf("epub: zip entry %s too large: %d bytes", f.Name, f.UncompressedSize64)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("epub: open zip entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	// The declared size can be forged; read one byte past the limit to
	// detect overruns.
	data, err := io.ReadAll(io.LimitReader(rc, maxDecompressSize+1))
	if err != nil {
		return nil, fmt.Errorf("epub: read zip entry %s: %w", f.Name, err)
	}
	if int64(len(data)) > maxDecompressSize {
		return nil, fmt.Errorf("epub: zip entry %s exceeds decompression limit", f.Name)
	}
	return data, nil
}

// resolveRelativePath resolves href relative to the directory of basePath.
// Both are forward-slash zip-internal paths. A fragment suffix on href is
// preserved. Absolute paths and paths escaping the archive root resolve
// to an empty string.
func resolveRelativePath(basePath, href string) string {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "/") {
		return ""
	}

	var fragment string
	if idx := strings.IndexByte(href, '#'); idx >= 0 {
		fragment = href[idx:]
		href = href[:idx]
	}
	if decoded, err := url.PathUnescape(href); err == nil {
		href = decoded
	}
	if href == "" {
		return ""
	}

	cleaned := path.Clean(path.Join(path.Dir(basePath), href))
	if !isSafePath(cleaned) {
		return ""
	}
	return cleaned + fragment
}

func isSafePath(p string) bool {
	cleaned := path.Clean(p)
	if strings.HasPrefix(cleaned, "/") {
		return false
	}
	return cleaned != ".." && !strings.HasPrefix(cleaned, "../")
}

// stripBOM removes a leading UTF-8 BOM, which some authoring tools emit
// and encoding/xml rejects.
func stripBOM(data []byte) []byte {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return data[3:]
	}
	return data
}

// entityNameToNumeric maps HTML named entities that commonly appear in
// OPF/NCX files to numeric references encoding/xml can digest.
var entityNameToNumeric = map[string]string{
	"nbsp": "&#160;", "mdash": "&#8212;", "ndash": "&#8211;", "hellip": "&#8230;",
	"lsquo": "&#8216;", "rsquo": "&#8217;", "ldquo": "&#8220;", "rdquo": "&#8221;",
	"copy": "&#169;", "reg": "&#174;", "trade": "&#8482;",
	"eacute": "&#233;", "aacute": "&#225;", "iacute": "&#237;",
	"oacute": "&#243;", "uacute": "&#250;", "ntilde": "&#241;",
	"uuml": "&#252;", "iexcl": "&#161;", "iquest": "&#191;",
}

var htmlEntityPattern = regexp.MustCompile(
	`(?i)&(nbsp|mdash|ndash|hellip|lsquo|rsquo|ldquo|rdquo|copy|reg|trade|` +
		`eacute|aacute|iacute|oacute|uacute|ntilde|uuml|iexcl|iquest);`)

func preprocessHTMLEntities(data []byte) []byte {
	return htmlEntityPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		name := strings.ToLower(string(match[1 : len(match)-1]))
		if replacement, ok := entityNameToNumeric[name]; ok {
			return []byte(replacement)
		}
		return match
	})
}
