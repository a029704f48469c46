package stream

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/lectorlab/bookpipe/models"
)

type bookDoc struct {
	id   string
	href string
	body string // document body markup; empty means leave the file out of the zip
}

// buildBook assembles a minimal EPUB 2 container in memory. navPoints is
// raw NCX navMap markup; empty means the book ships no NCX.
func buildBook(t *testing.T, docs []bookDoc, navPoints string) []byte {
	t.Helper()

	var manifest, spine strings.Builder
	for _, d := range docs {
		fmt.Fprintf(&manifest, `<item id=%q href=%q media-type="application/xhtml+xml"/>`, d.id, d.href)
		fmt.Fprintf(&spine, `<itemref idref=%q/>`, d.id)
	}
	ncxManifest := ""
	if navPoints != "" {
		ncxManifest = `<item id="ncx" href="toc.ncx" media-type="application/x-dtbncx+xml"/>`
	}
	opf := fmt.Sprintf(`<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:title>Test</dc:title></metadata>
  <manifest>%s%s</manifest>
  <spine toc="ncx">%s</spine>
</package>`, manifest.String(), ncxManifest, spine.String())

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	write := func(name, body string) {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}

	write("META-INF/container.xml", `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles><rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/></rootfiles>
</container>`)
	write("OEBPS/content.opf", opf)
	if navPoints != "" {
		write("OEBPS/toc.ncx", fmt.Sprintf(`<?xml version="1.0"?>
<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" version="2005-1"><navMap>%s</navMap></ncx>`, navPoints))
	}
	for _, d := range docs {
		if d.body != "" {
			write("OEBPS/"+d.href, "<html><body>"+d.body+"</body></html>")
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func navPoint(id, title, src string) string {
	return fmt.Sprintf(`<navPoint id=%q><navLabel><text>%s</text></navLabel><content src=%q/></navPoint>`, id, title, src)
}

func extractAll(t *testing.T, data []byte, opts models.ExtractOptions) *models.ExtractResult {
	t.Helper()
	var e Extractor
	res, err := e.Extract(context.Background(), data, opts)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	return res
}

func TestStreamExtract_AnchoredChapters(t *testing.T) {
	data := buildBook(t, []bookDoc{
		{id: "body", href: "body.xhtml", body: `
			<p id="c1">Chapter One</p>
			<p>First body paragraph.</p>
			<p id="c2">Chapter Two</p>
			<p>Second body paragraph.</p>`},
	}, navPoint("nav1", "Chapter One", "body.xhtml#c1")+
		navPoint("nav2", "Chapter Two", "body.xhtml#c2"))

	res := extractAll(t, data, models.ExtractOptions{})

	if len(res.Paragraphs) != 4 {
		t.Fatalf("got %d paragraphs, want 4", len(res.Paragraphs))
	}
	want := []models.Chapter{
		{Index: 0, Title: "Chapter One", StartParagraphID: 1},
		{Index: 1, Title: "Chapter Two", StartParagraphID: 3},
	}
	if !reflect.DeepEqual(res.Chapters, want) {
		t.Errorf("chapters = %+v, want %+v", res.Chapters, want)
	}
}

func TestStreamExtract_WholeFileChapters(t *testing.T) {
	data := buildBook(t, []bookDoc{
		{id: "ch1", href: "ch1.xhtml", body: "<p>One body.</p>"},
		{id: "ch2", href: "ch2.xhtml", body: "<p>Two body.</p>"},
	}, navPoint("nav1", "Part One", "ch1.xhtml")+
		navPoint("nav2", "Part Two", "ch2.xhtml"))

	res := extractAll(t, data, models.ExtractOptions{})
	want := []models.Chapter{
		{Index: 0, Title: "Part One", StartParagraphID: 1},
		{Index: 1, Title: "Part Two", StartParagraphID: 2},
	}
	if !reflect.DeepEqual(res.Chapters, want) {
		t.Errorf("chapters = %+v, want %+v", res.Chapters, want)
	}
}

func TestStreamExtract_TextRebuild(t *testing.T) {
	// Ten nav entries pointing at anchors that do not exist; the heading
	// text itself appears in the flow, so the whole-book rebuild recovers
	// every chapter.
	var nav, body strings.Builder
	for i := 1; i <= 10; i++ {
		nav.WriteString(navPoint(
			fmt.Sprintf("nav%d", i),
			fmt.Sprintf("%d. Part %d", i, i),
			fmt.Sprintf("body.xhtml#missing%d", i)))
		fmt.Fprintf(&body, "<p>%d. Part %d</p><p>Body text of part %d.</p>", i, i, i)
	}
	data := buildBook(t, []bookDoc{{id: "body", href: "body.xhtml", body: body.String()}}, nav.String())

	res := extractAll(t, data, models.ExtractOptions{})

	if len(res.Chapters) != 10 {
		t.Fatalf("got %d chapters, want 10 from text rebuild", len(res.Chapters))
	}
	for i, ch := range res.Chapters {
		wantStart := 2*i + 1
		if ch.StartParagraphID != wantStart {
			t.Errorf("chapter %d starts at %d, want %d", i, ch.StartParagraphID, wantStart)
		}
	}
}

func TestStreamExtract_DefaultChapter(t *testing.T) {
	docs := make([]bookDoc, 3)
	for d := range docs {
		var body strings.Builder
		for i := 0; i < 17; i++ {
			fmt.Fprintf(&body, "<p>Paragraph %d of document %d.</p>", i, d)
		}
		docs[d] = bookDoc{id: fmt.Sprintf("d%d", d), href: fmt.Sprintf("d%d.xhtml", d), body: body.String()}
	}
	data := buildBook(t, docs, "")

	res := extractAll(t, data, models.ExtractOptions{})

	if len(res.Paragraphs) != 51 {
		t.Fatalf("got %d paragraphs, want 51", len(res.Paragraphs))
	}
	want := []models.Chapter{{Index: 0, Title: "Full book", StartParagraphID: 1}}
	if !reflect.DeepEqual(res.Chapters, want) {
		t.Errorf("chapters = %+v, want %+v", res.Chapters, want)
	}
}

func TestStreamExtract_DenseOrderedIDs(t *testing.T) {
	data := buildBook(t, []bookDoc{
		{id: "ch1", href: "ch1.xhtml", body: "<p>Alpha.</p><p>Beta.</p>"},
		{id: "ch2", href: "ch2.xhtml", body: "<p>Gamma.</p>"},
	}, "")

	var e Extractor
	var got []models.Paragraph
	res, err := e.StreamExtract(context.Background(), data, func(p models.Paragraph) error {
		got = append(got, p)
		return nil
	}, models.ExtractOptions{})
	if err != nil {
		t.Fatalf("StreamExtract() error = %v", err)
	}

	want := []models.Paragraph{
		{ID: 1, Text: "Alpha."},
		{ID: 2, Text: "Beta."},
		{ID: 3, Text: "Gamma."},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("sink paragraphs = %+v, want %+v", got, want)
	}
	if res.ParagraphCount != 3 {
		t.Errorf("ParagraphCount = %d, want 3", res.ParagraphCount)
	}
}

func TestStreamExtract_MaxParagraphsCap(t *testing.T) {
	var body strings.Builder
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&body, "<p>Paragraph number %d.</p>", i)
	}
	data := buildBook(t, []bookDoc{{id: "body", href: "body.xhtml", body: body.String()}}, "")

	res := extractAll(t, data, models.ExtractOptions{MaxParagraphs: 7})

	if len(res.Paragraphs) != 7 {
		t.Fatalf("got %d paragraphs, want exactly 7", len(res.Paragraphs))
	}
	last := res.Paragraphs[len(res.Paragraphs)-1]
	if last.ID != 7 {
		t.Errorf("last paragraph id = %d, want 7", last.ID)
	}
	// Truncated books still get the synthetic chapter.
	if len(res.Chapters) != 1 || res.Chapters[0].Title != "Full book" {
		t.Errorf("chapters = %+v, want single Full book", res.Chapters)
	}
}

func TestStreamExtract_SkipsBrokenDocument(t *testing.T) {
	data := buildBook(t, []bookDoc{
		{id: "ch1", href: "ch1.xhtml", body: "<p>Before the gap.</p>"},
		{id: "gone", href: "gone.xhtml"}, // in the spine, absent from the zip
		{id: "ch2", href: "ch2.xhtml", body: "<p>After the gap.</p>"},
	}, "")

	res := extractAll(t, data, models.ExtractOptions{})

	want := []models.Paragraph{
		{ID: 1, Text: "Before the gap."},
		{ID: 2, Text: "After the gap."},
	}
	if !reflect.DeepEqual(res.Paragraphs, want) {
		t.Errorf("paragraphs = %+v, want %+v", res.Paragraphs, want)
	}
}

func TestStreamExtract_SinkErrorAborts(t *testing.T) {
	data := buildBook(t, []bookDoc{
		{id: "ch1", href: "ch1.xhtml", body: "<p>First.</p><p>Second.</p>"},
	}, "")

	sinkErr := errors.New("disk full")
	var e Extractor
	calls := 0
	_, err := e.StreamExtract(context.Background(), data, func(models.Paragraph) error {
		calls++
		return sinkErr
	}, models.ExtractOptions{})

	if !errors.Is(err, sinkErr) {
		t.Errorf("StreamExtract() error = %v, want wrapped sink error", err)
	}
	if calls != 1 {
		t.Errorf("sink called %d times after error, want 1", calls)
	}
}

func TestStreamExtract_ContextCancelled(t *testing.T) {
	data := buildBook(t, []bookDoc{
		{id: "ch1", href: "ch1.xhtml", body: "<p>Text.</p>"},
	}, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var e Extractor
	_, err := e.StreamExtract(ctx, data, nil, models.ExtractOptions{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("StreamExtract() error = %v, want context.Canceled", err)
	}
}

func TestStreamExtract_InvalidContainer(t *testing.T) {
	var e Extractor
	_, err := e.StreamExtract(context.Background(), []byte("not an epub"), nil, models.ExtractOptions{})
	if err == nil {
		t.Fatal("StreamExtract() succeeded on garbage input")
	}
}

func TestStreamExtract_Deterministic(t *testing.T) {
	data := buildBook(t, []bookDoc{
		{id: "ch1", href: "ch1.xhtml", body: `<p id="c1">Chapter One</p><p>Body one.</p>`},
		{id: "ch2", href: "ch2.xhtml", body: "<p>Body two.</p>"},
	}, navPoint("nav1", "Chapter One", "ch1.xhtml#c1")+
		navPoint("nav2", "Chapter Two", "ch2.xhtml"))

	first := extractAll(t, data, models.ExtractOptions{})
	for i := 0; i < 3; i++ {
		again := extractAll(t, data, models.ExtractOptions{})
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs:\n%+v\nvs\n%+v", i+2, again, first)
		}
	}
}
