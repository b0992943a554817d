package epub

import (
	"archive/zip"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type testChapter struct {
	href string
	body string
	nav  bool
}

func writeTestEpub(t *testing.T, path, title, author string, chapters []testChapter) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	w := zip.NewWriter(f)

	add := func(name, content string) {
		entry, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := entry.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}

	add("mimetype", "application/epub+zip")
	add("META-INF/container.xml", `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`)

	var manifest, spine strings.Builder
	for i, ch := range chapters {
		props := ""
		if ch.nav {
			props = ` properties="nav"`
		}
		fmt.Fprintf(&manifest, `<item id="c%d" href="%s" media-type="application/xhtml+xml"%s/>`, i+1, ch.href, props)
		fmt.Fprintf(&spine, `<itemref idref="c%d"/>`, i+1)
	}

	add("OEBPS/content.opf", fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0" unique-identifier="uid">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:identifier id="uid">test-book</dc:identifier>
    <dc:title>%s</dc:title>
    <dc:creator>%s</dc:creator>
  </metadata>
  <manifest>%s</manifest>
  <spine>%s</spine>
</package>`, title, author, manifest.String(), spine.String()))

	for _, ch := range chapters {
		add("OEBPS/"+ch.href, ch.body)
	}

	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestExtract(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "epub-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tempDir)

	path := filepath.Join(tempDir, "sample.epub")
	writeTestEpub(t, path, "Sample Book", "Jane Doe", []testChapter{
		{href: "nav.xhtml", nav: true, body: `<html><body><nav><a href="ch1.xhtml">One</a></nav></body></html>`},
		{href: "ch1.xhtml", body: `<html><head><title>meta</title><style>p{}</style></head>
<body><h1>Chapter  One</h1><p>the cat
   sat</p></body></html>`},
		{href: "ch2.xhtml", body: `<html><body><p>the dog</p><p>ran the cat</p></body></html>`},
	})

	book, err := Extract(path)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if book.Title != "Sample Book" {
		t.Errorf("Title = %q, want %q", book.Title, "Sample Book")
	}
	if book.Author != "Jane Doe" {
		t.Errorf("Author = %q, want %q", book.Author, "Jane Doe")
	}
	if book.SourcePath != path {
		t.Errorf("SourcePath = %q, want %q", book.SourcePath, path)
	}

	if len(book.Chapters) != 2 {
		t.Fatalf("got %d chapters, want 2 (nav must be skipped)", len(book.Chapters))
	}

	first := book.Chapters[0]
	if first.Seq != 1 {
		t.Errorf("Chapters[0].Seq = %d, want 1", first.Seq)
	}
	if first.Title != "Chapter One" {
		t.Errorf("Chapters[0].Title = %q, want %q", first.Title, "Chapter One")
	}
	if first.Text != "Chapter One the cat sat" {
		t.Errorf("Chapters[0].Text = %q, want %q", first.Text, "Chapter One the cat sat")
	}

	second := book.Chapters[1]
	if second.Seq != 2 {
		t.Errorf("Chapters[1].Seq = %d, want 2", second.Seq)
	}
	if second.Text != "the dog ran the cat" {
		t.Errorf("Chapters[1].Text = %q, want %q", second.Text, "the dog ran the cat")
	}
}

func TestExtract_SpineOrder(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "epub-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tempDir)

	// Spine order is authoritative even when hrefs sort differently.
	path := filepath.Join(tempDir, "ordered.epub")
	writeTestEpub(t, path, "Ordered", "", []testChapter{
		{href: "z-first.xhtml", body: `<html><body>first chapter</body></html>`},
		{href: "a-second.xhtml", body: `<html><body>second chapter</body></html>`},
	})

	book, err := Extract(path)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if len(book.Chapters) != 2 {
		t.Fatalf("got %d chapters, want 2", len(book.Chapters))
	}
	if book.Chapters[0].Text != "first chapter" || book.Chapters[1].Text != "second chapter" {
		t.Errorf("chapters out of spine order: %q, %q", book.Chapters[0].Text, book.Chapters[1].Text)
	}
}

func TestExtract_SkipsEmptyDocuments(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "epub-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tempDir)

	path := filepath.Join(tempDir, "gaps.epub")
	writeTestEpub(t, path, "Gaps", "", []testChapter{
		{href: "cover.xhtml", body: `<html><body><img src="cover.jpg"/></body></html>`},
		{href: "ch1.xhtml", body: `<html><body>real text</body></html>`},
	})

	book, err := Extract(path)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if len(book.Chapters) != 1 {
		t.Fatalf("got %d chapters, want 1 (imageless cover must be skipped)", len(book.Chapters))
	}
	if book.Chapters[0].Seq != 1 {
		t.Errorf("surviving chapter Seq = %d, want 1", book.Chapters[0].Seq)
	}
}

func TestExtract_TitleFallback(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "epub-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tempDir)

	path := filepath.Join(tempDir, "untitled-book.epub")
	writeTestEpub(t, path, "", "", []testChapter{
		{href: "ch1.xhtml", body: `<html><body>text</body></html>`},
	})

	book, err := Extract(path)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if book.Title != "untitled-book" {
		t.Errorf("Title = %q, want filename fallback %q", book.Title, "untitled-book")
	}
}

func TestExtract_Errors(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "epub-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tempDir)

	t.Run("missing file", func(t *testing.T) {
		_, err := Extract(filepath.Join(tempDir, "nope.epub"))
		if err == nil {
			t.Fatal("Extract() error = nil, want error")
		}
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("Extract() error = %v, want fs.ErrNotExist in chain", err)
		}
	})

	t.Run("not a zip", func(t *testing.T) {
		path := filepath.Join(tempDir, "plain.epub")
		if err := os.WriteFile(path, []byte("just text"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := Extract(path); err == nil {
			t.Error("Extract() error = nil, want error for non-zip input")
		}
	})

	t.Run("zip without container", func(t *testing.T) {
		path := filepath.Join(tempDir, "bare.epub")
		f, err := os.Create(path)
		if err != nil {
			t.Fatal(err)
		}
		w := zip.NewWriter(f)
		entry, err := w.Create("mimetype")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := entry.Write([]byte("application/epub+zip")); err != nil {
			t.Fatal(err)
		}
		if err := w.Close(); err != nil {
			t.Fatal(err)
		}
		f.Close()

		if _, err := Extract(path); err == nil {
			t.Error("Extract() error = nil, want error for missing container.xml")
		}
	})

	t.Run("empty spine", func(t *testing.T) {
		path := filepath.Join(tempDir, "nospine.epub")
		writeTestEpub(t, path, "Empty", "", nil)
		if _, err := Extract(path); err == nil {
			t.Error("Extract() error = nil, want error for empty spine")
		}
	})
}
