package epub

import (
	"bytes"
	"encoding/xml"
	"strings"

	"golang.org/x/net/html"

	"github.com/lectorlab/bookpipe/models"
)

// parseNavigation fills b.entries from the EPUB 3 nav document when one
// is declared, falling back to the EPUB 2 NCX. Nested entries are
// flattened in document order; a book without a usable navigation map
// simply gets an empty entry list, never an error.
func (b *Book) parseNavigation() {
	if entries, ok := b.parseNavDoc(); ok {
		b.entries = entries
		return
	}
	if entries, ok := b.parseNCX(); ok {
		b.entries = entries
		return
	}
	b.entries = []models.NavEntry{}
}

// --- EPUB 2 NCX ---

type ncxDocument struct {
	XMLName xml.Name  `xml:"ncx"`
	NavMap  ncxNavMap `xml:"navMap"`
}

type ncxNavMap struct {
	NavPoints []ncxNavPoint `xml:"navPoint"`
}

type ncxNavPoint struct {
	ID       string        `xml:"id,attr"`
	Label    ncxNavLabel   `xml:"navLabel"`
	Content  ncxContent    `xml:"content"`
	Children []ncxNavPoint `xml:"navPoint"`
}

type ncxNavLabel struct {
	Text string `xml:"text"`
}

type ncxContent struct {
	Src string `xml:"src,attr"`
}

// findNCXItem locates the NCX manifest item: the spine's toc attribute
// first, then the NCX media type.
func (b *Book) findNCXItem() *opfManifestItem {
	if tocID := b.pkg.Spine.Toc; tocID != "" {
		for i, it := range b.pkg.Manifest.Items {
			if it.ID == tocID {
				return &b.pkg.Manifest.Items[i]
			}
		}
	}
	for i, it := range b.pkg.Manifest.Items {
		if strings.EqualFold(strings.TrimSpace(it.MediaType), "application/x-dtbncx+xml") {
			return &b.pkg.Manifest.Items[i]
		}
	}
	return nil
}

func (b *Book) parseNCX() ([]models.NavEntry, bool) {
	item := b.findNCXItem()
	if item == nil {
		return nil, false
	}
	ncxPath := b.resolveOPFPath(item.Href)
	data, err := b.readFile(ncxPath)
	if err != nil {
		return nil, false
	}

	var doc ncxDocument
	if err := xml.Unmarshal(preprocessHTMLEntities(stripBOM(data)), &doc); err != nil {
		return nil, false
	}

	var entries []models.NavEntry
	flattenNavPoints(&entries, doc.NavMap.NavPoints, ncxPath)
	return entries, true
}

func flattenNavPoints(out *[]models.NavEntry, points []ncxNavPoint, ncxPath string) {
	for _, np := range points {
		entry := models.NavEntry{
			ID:    strings.TrimSpace(np.ID),
			Title: strings.TrimSpace(np.Label.Text),
		}
		if src := strings.TrimSpace(np.Content.Src); src != "" {
			entry.Href = resolveRelativePath(ncxPath, src)
		}
		*out = append(*out, entry)
		flattenNavPoints(out, np.Children, ncxPath)
	}
}

// --- EPUB 3 nav document ---

func (b *Book) findNavDocItem() *opfManifestItem {
	for i, it := range b.pkg.Manifest.Items {
		for _, prop := range strings.Fields(it.Properties) {
			if prop == "nav" {
				return &b.pkg.Manifest.Items[i]
			}
		}
	}
	return nil
}

func (b *Book) parseNavDoc() ([]models.NavEntry, bool) {
	item := b.findNavDocItem()
	if item == nil {
		return nil, false
	}
	navPath := b.resolveOPFPath(item.Href)
	data, err := b.readFile(navPath)
	if err != nil {
		return nil, false
	}

	root, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, false
	}

	nav := findTocNav(root)
	if nav == nil {
		return nil, false
	}

	var entries []models.NavEntry
	collectNavAnchors(&entries, nav, navPath)
	if len(entries) == 0 {
		return nil, false
	}
	return entries, true
}

// findTocNav returns the first <nav> whose epub:type tokens include "toc".
func findTocNav(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "nav" {
		val := getAttr(n, "epub:type")
		if val == "" {
			val = getAttr(n, "type")
		}
		for _, t := range strings.Fields(val) {
			if t == "toc" {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findTocNav(c); found != nil {
			return found
		}
	}
	return nil
}

// collectNavAnchors walks the nav subtree in document order and records
// every <a href> as one flattened entry.
func collectNavAnchors(out *[]models.NavEntry, n *html.Node, navPath string) {
	if n.Type == html.ElementNode && n.Data == "a" {
		entry := models.NavEntry{
			ID:    strings.TrimSpace(getAttr(n, "id")),
			Title: strings.TrimSpace(collapseSpace(textContent(n))),
		}
		if href := strings.TrimSpace(getAttr(n, "href")); href != "" {
			entry.Href = resolveRelativePath(navPath, href)
		}
		*out = append(*out, entry)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectNavAnchors(out, c, navPath)
	}
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
