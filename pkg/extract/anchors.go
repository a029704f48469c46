package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// collectAnchors gathers the fragment identifiers attributable to one
// text block. Chapter anchors appear in several authoring idioms, so
// four patterns are checked in order: the element's own id, descendant
// id/name attributes, the immediate parent's id (anchor wraps the
// paragraph), and id/name on whitespace-only preceding siblings (empty
// anchor tag placed just before the paragraph).
//
// seenIDs is shared across one document; the first block to claim an id
// keeps it, so no anchor is ever attributed twice.
func collectAnchors(s *goquery.Selection, seenIDs map[string]bool) []string {
	var anchors []string

	add := func(id string) {
		id = strings.TrimSpace(id)
		if id == "" || seenIDs[id] {
			return
		}
		seenIDs[id] = true
		anchors = append(anchors, id)
	}

	if id, ok := s.Attr("id"); ok {
		add(id)
	}

	s.Find("[id], [name]").Each(func(_ int, d *goquery.Selection) {
		if id, ok := d.Attr("id"); ok {
			add(id)
		}
		if name, ok := d.Attr("name"); ok {
			add(name)
		}
	})

	if id, ok := s.Parent().Attr("id"); ok {
		add(id)
	}

	// Walk backward over empty siblings; stop at the first one carrying
	// visible text.
	for prev := s.Prev(); prev.Length() > 0; prev = prev.Prev() {
		if strings.TrimSpace(prev.Text()) != "" {
			break
		}
		if id, ok := prev.Attr("id"); ok {
			add(id)
		}
		if name, ok := prev.Attr("name"); ok {
			add(name)
		}
	}

	return anchors
}
