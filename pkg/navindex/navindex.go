// Package navindex builds the lookup tables the chapter resolver
// consults: titles by nav-entry id, by (file, anchor), and by whole
// file. Hrefs are recorded under both their normalized path and bare
// filename, because the navigation map and the spine routinely disagree
// on directory prefixes.
package navindex

import (
	"strings"

	"github.com/lectorlab/bookpipe/models"
	"github.com/lectorlab/bookpipe/pkg/pathutil"
)

// Entry is one validated navigation entry, retained in original order
// for the whole-book text-matching fallback.
type Entry struct {
	ID     string
	Title  string
	File   string // normalized file part of the href, may be empty
	Anchor string // fragment identifier, may be empty
	Order  int
}

// Index holds the navigation lookup tables for one book.
type Index struct {
	byID           map[string]string
	byFileAnchor   map[string]map[string]string
	byFileNoAnchor map[string]string

	entries []Entry
}

// Build indexes the navigation entries in document order. Entries with
// an empty title are dropped; everything else is best-effort.
func Build(navEntries []models.NavEntry) *Index {
	ix := &Index{
		byID:           make(map[string]string),
		byFileAnchor:   make(map[string]map[string]string),
		byFileNoAnchor: make(map[string]string),
	}

	for _, ne := range navEntries {
		title := strings.TrimSpace(ne.Title)
		if title == "" {
			continue
		}

		entry := Entry{ID: ne.ID, Title: title, Order: len(ix.entries)}

		if ne.ID != "" {
			if _, exists := ix.byID[ne.ID]; !exists {
				ix.byID[ne.ID] = title
			}
		}

		if ne.Href != "" {
			file, anchor := pathutil.SplitFragment(ne.Href)
			normalized := pathutil.Normalize(file)
			filename := pathutil.Filename(file)
			entry.File = normalized
			entry.Anchor = anchor

			if anchor != "" {
				ix.putAnchor(normalized, anchor, title)
				ix.putAnchor(filename, anchor, title)
			} else {
				ix.putFile(normalized, title)
				ix.putFile(filename, title)
			}
		}

		ix.entries = append(ix.entries, entry)
	}

	return ix
}

func (ix *Index) putAnchor(file, anchor, title string) {
	if file == "" {
		return
	}
	m, ok := ix.byFileAnchor[file]
	if !ok {
		m = make(map[string]string)
		ix.byFileAnchor[file] = m
	}
	if _, exists := m[anchor]; !exists {
		m[anchor] = title
	}
}

func (ix *Index) putFile(file, title string) {
	if file == "" {
		return
	}
	if _, exists := ix.byFileNoAnchor[file]; !exists {
		ix.byFileNoAnchor[file] = title
	}
}

// TitleForAnchor looks up a title for (document href, anchor), trying
// the normalized path first, then the bare filename.
func (ix *Index) TitleForAnchor(docHref, anchor string) (string, bool) {
	if m, ok := ix.byFileAnchor[pathutil.Normalize(docHref)]; ok {
		if title, ok := m[anchor]; ok {
			return title, true
		}
	}
	if m, ok := ix.byFileAnchor[pathutil.Filename(docHref)]; ok {
		if title, ok := m[anchor]; ok {
			return title, true
		}
	}
	return "", false
}

// TitleForFile looks up a whole-file chapter title for a document href.
func (ix *Index) TitleForFile(docHref string) (string, bool) {
	if title, ok := ix.byFileNoAnchor[pathutil.Normalize(docHref)]; ok {
		return title, true
	}
	if title, ok := ix.byFileNoAnchor[pathutil.Filename(docHref)]; ok {
		return title, true
	}
	return "", false
}

// TitleForID looks up a title by navigation entry id.
func (ix *Index) TitleForID(id string) (string, bool) {
	if id == "" {
		return "", false
	}
	title, ok := ix.byID[id]
	return title, ok
}

// Entries returns the validated entries in original order.
func (ix *Index) Entries() []Entry {
	return ix.entries
}

// Len is the number of validated navigation entries.
func (ix *Index) Len() int {
	return len(ix.entries)
}
