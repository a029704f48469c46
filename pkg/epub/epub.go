// Package epub opens zip-based OCF containers and exposes the two views
// the extraction engine consumes: the spine's content documents in
// reading order, and the flattened navigation map.
package epub

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/lectorlab/bookpipe/models"
)

// Sentinel errors returned by the epub package.
var (
	// ErrInvalidEPUB indicates the input is not a readable EPUB container
	// (not a zip, or no OPF package could be located).
	ErrInvalidEPUB = errors.New("epub: invalid EPUB container")

	// ErrFileNotFound indicates a referenced file is missing from the archive.
	ErrFileNotFound = errors.New("epub: file not found in archive")
)

// Book is a read-only handle over one EPUB archive. Content documents are
// loaded lazily; a Book is not safe for concurrent use.
type Book struct {
	zip      *zip.Reader
	zipExact map[string]*zip.File
	zipLower map[string]*zip.File

	opfPath string
	opfDir  string
	pkg     *opfPackage

	docs    []ContentDocument
	entries []models.NavEntry
}

// ContentDocument is one spine item. HTML content is fetched on demand
// from the underlying archive.
type ContentDocument struct {
	ID   string
	Href string // archive-root-relative path

	book *Book
}

// HTML reads and returns the document's markup from the archive.
func (d ContentDocument) HTML() (string, error) {
	data, err := d.book.readFile(d.Href)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// NewReader opens an EPUB from an in-memory byte buffer. A container that
// cannot be opened at all (corrupt zip, no OPF) is a fatal error; missing
// or broken individual content files surface later, per document.
func NewReader(data []byte) (*Book, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEPUB, err)
	}

	b := &Book{zip: zr}
	b.buildZipIndex()

	opfPath, err := locateOPF(zr)
	if err != nil {
		return nil, err
	}
	b.opfPath = opfPath
	b.opfDir = path.Dir(opfPath)

	opfData, err := b.readFile(opfPath)
	if err != nil {
		return nil, fmt.Errorf("epub: read OPF %s: %w", opfPath, err)
	}
	pkg, err := parseOPF(opfData)
	if err != nil {
		return nil, err
	}
	b.pkg = pkg

	b.buildDocuments()
	b.parseNavigation()

	return b, nil
}

// Documents returns the content documents in spine order. Only manifest
// items with an (X)HTML media type participate.
func (b *Book) Documents() []ContentDocument {
	return b.docs
}

// NavEntries returns the book's logical table of contents, flattened in
// original document order. The slice is empty when the book carries no
// usable navigation map.
func (b *Book) NavEntries() []models.NavEntry {
	return b.entries
}

// Metadata returns the Dublin Core metadata extracted from the OPF.
func (b *Book) Metadata() Metadata {
	return extractMetadata(b.pkg)
}

func (b *Book) buildZipIndex() {
	b.zipExact = make(map[string]*zip.File, len(b.zip.File))
	b.zipLower = make(map[string]*zip.File, len(b.zip.File))
	for _, f := range b.zip.File {
		if _, ok := b.zipExact[f.Name]; !ok {
			b.zipExact[f.Name] = f
		}
		lower := strings.ToLower(f.Name)
		if _, ok := b.zipLower[lower]; !ok {
			b.zipLower[lower] = f
		}
	}
}

func (b *Book) findFile(name string) *zip.File {
	if f, ok := b.zipExact[name]; ok {
		return f
	}
	if f, ok := b.zipLower[strings.ToLower(name)]; ok {
		return f
	}
	return nil
}

func (b *Book) readFile(name string) ([]byte, error) {
	f := b.findFile(name)
	if f == nil {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, name)
	}
	return readZipFile(f)
}

// resolveOPFPath resolves a manifest href relative to the OPF directory.
func (b *Book) resolveOPFPath(href string) string {
	if href == "" {
		return ""
	}
	if b.opfDir == "." {
		return href
	}
	return path.Join(b.opfDir, href)
}

func isContentMediaType(mt string) bool {
	switch strings.ToLower(strings.TrimSpace(mt)) {
	case "application/xhtml+xml", "text/html", "application/html+xml", "text/x-oeb1-document":
		return true
	}
	return false
}

// buildDocuments materializes the spine as ContentDocuments, skipping
// itemrefs with no manifest backing and non-document media types.
func (b *Book) buildDocuments() {
	byID := make(map[string]opfManifestItem, len(b.pkg.Manifest.Items))
	for _, it := range b.pkg.Manifest.Items {
		byID[it.ID] = it
	}

	docs := make([]ContentDocument, 0, len(b.pkg.Spine.ItemRefs))
	for _, ref := range b.pkg.Spine.ItemRefs {
		item, ok := byID[ref.IDRef]
		if !ok || !isContentMediaType(item.MediaType) {
			continue
		}
		docs = append(docs, ContentDocument{
			ID:   item.ID,
			Href: b.resolveOPFPath(item.Href),
			book: b,
		})
	}
	b.docs = docs
}
