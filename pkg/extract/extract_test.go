package extract

import (
	"reflect"
	"testing"
)

func mustParse(t *testing.T, html string) *Document {
	t.Helper()
	doc, err := Parse(html)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return doc
}

func paragraphTexts(doc *Document) []string {
	texts := make([]string, len(doc.Paragraphs))
	for i, p := range doc.Paragraphs {
		texts[i] = p.Text
	}
	return texts
}

func TestParse_BasicParagraphs(t *testing.T) {
	doc := mustParse(t, `<html><body>
		<p>First paragraph.</p>
		<p>Second   paragraph
		with broken  whitespace.</p>
	</body></html>`)

	want := []string{"First paragraph.", "Second paragraph with broken whitespace."}
	if got := paragraphTexts(doc); !reflect.DeepEqual(got, want) {
		t.Errorf("paragraphs = %v, want %v", got, want)
	}
}

func TestParse_SkipsShortBlocks(t *testing.T) {
	doc := mustParse(t, `<html><body><p>a</p><p>ok</p><p> </p></body></html>`)
	want := []string{"ok"}
	if got := paragraphTexts(doc); !reflect.DeepEqual(got, want) {
		t.Errorf("paragraphs = %v, want %v", got, want)
	}
}

func TestParse_WrapperDivNotDoubleCounted(t *testing.T) {
	doc := mustParse(t, `<html><body>
		<div class="chapter">
			<p>Inner one.</p>
			<p>Inner two.</p>
		</div>
		<div>Leaf div text.</div>
	</body></html>`)

	want := []string{"Inner one.", "Inner two.", "Leaf div text."}
	if got := paragraphTexts(doc); !reflect.DeepEqual(got, want) {
		t.Errorf("paragraphs = %v, want %v", got, want)
	}
}

func TestParse_WholeDocumentFallback(t *testing.T) {
	doc := mustParse(t, `<html><body><span>Only span content here.</span></body></html>`)
	want := []string{"Only span content here."}
	if got := paragraphTexts(doc); !reflect.DeepEqual(got, want) {
		t.Errorf("fallback paragraphs = %v, want %v", got, want)
	}
}

func TestParse_EmptyDocument(t *testing.T) {
	doc := mustParse(t, `<html><body></body></html>`)
	if len(doc.Paragraphs) != 0 {
		t.Errorf("paragraphs = %v, want none", paragraphTexts(doc))
	}
}

func TestParse_AnchorOwnID(t *testing.T) {
	doc := mustParse(t, `<html><body><p id="ch1">Chapter One</p></body></html>`)
	if len(doc.Paragraphs) != 1 {
		t.Fatalf("got %d paragraphs, want 1", len(doc.Paragraphs))
	}
	if got := doc.Paragraphs[0].Anchors; !reflect.DeepEqual(got, []string{"ch1"}) {
		t.Errorf("anchors = %v, want [ch1]", got)
	}
}

func TestParse_AnchorDescendantIDAndName(t *testing.T) {
	doc := mustParse(t, `<html><body>
		<p><a id="ch2"></a><a name="legacy"></a>Chapter Two text.</p>
	</body></html>`)
	want := []string{"ch2", "legacy"}
	if got := doc.Paragraphs[0].Anchors; !reflect.DeepEqual(got, want) {
		t.Errorf("anchors = %v, want %v", got, want)
	}
}

func TestParse_AnchorWrappingParent(t *testing.T) {
	doc := mustParse(t, `<html><body>
		<div id="wrap"><p>Wrapped chapter start.</p></div>
	</body></html>`)
	// The wrapper div is skipped as a block, but its id reaches the
	// paragraph through the parent rule.
	if got := doc.Paragraphs[0].Anchors; !reflect.DeepEqual(got, []string{"wrap"}) {
		t.Errorf("anchors = %v, want [wrap]", got)
	}
}

func TestParse_AnchorPrecedingEmptySibling(t *testing.T) {
	doc := mustParse(t, `<html><body>
		<p>Earlier text.</p>
		<a id="ch3"></a>
		<p>Chapter Three starts here.</p>
	</body></html>`)

	if len(doc.Paragraphs) != 2 {
		t.Fatalf("got %d paragraphs, want 2", len(doc.Paragraphs))
	}
	if got := doc.Paragraphs[1].Anchors; !reflect.DeepEqual(got, []string{"ch3"}) {
		t.Errorf("anchors = %v, want [ch3]", got)
	}
	// The backward walk must stop at the first sibling with text.
	if len(doc.Paragraphs[0].Anchors) != 0 {
		t.Errorf("first paragraph anchors = %v, want none", doc.Paragraphs[0].Anchors)
	}
}

func TestParse_AnchorClaimedOnce(t *testing.T) {
	doc := mustParse(t, `<html><body>
		<div id="shared">
			<p>First child paragraph.</p>
			<p>Second child paragraph.</p>
		</div>
	</body></html>`)

	if len(doc.Paragraphs) != 2 {
		t.Fatalf("got %d paragraphs, want 2", len(doc.Paragraphs))
	}
	if got := doc.Paragraphs[0].Anchors; !reflect.DeepEqual(got, []string{"shared"}) {
		t.Errorf("first paragraph anchors = %v, want [shared]", got)
	}
	if len(doc.Paragraphs[1].Anchors) != 0 {
		t.Errorf("second paragraph anchors = %v, want none (already claimed)", doc.Paragraphs[1].Anchors)
	}
}

func TestParse_Heading(t *testing.T) {
	doc := mustParse(t, `<html><body><h1>The Long Road</h1><p>Opening text.</p></body></html>`)
	if doc.Heading != "The Long Road" {
		t.Errorf("heading = %q, want %q", doc.Heading, "The Long Road")
	}
}

func TestParse_HeadingIgnoresBoilerplate(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"toc heading skipped", `<h1>Table of Contents</h1><h2>Chapter One</h2>`, "Chapter One"},
		{"spanish indice skipped", `<h1>Índice</h1><h2>Capítulo Uno</h2>`, "Capítulo Uno"},
		{"only boilerplate", `<h1>Copyright</h1>`, ""},
		{"class hook", `<div class="chapter-title">A Fresh Start</div>`, "A Fresh Start"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustParse(t, "<html><body>"+tt.html+"</body></html>")
			if doc.Heading != tt.want {
				t.Errorf("heading = %q, want %q", doc.Heading, tt.want)
			}
		})
	}
}
