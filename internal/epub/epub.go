package epub

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"net/url"
	"path"
	"strings"

	"golang.org/x/net/html"

	"github.com/jasperwreed/bookstats/internal/models"
)

// An EPUB is a zip container: META-INF/container.xml names the OPF package
// document, and the OPF manifest plus spine give the reading-order content
// files. Each spine document becomes one chapter.

const containerPath = "META-INF/container.xml"

type containerDoc struct {
	Rootfiles []rootfile `xml:"rootfiles>rootfile"`
}

type rootfile struct {
	FullPath  string `xml:"full-path,attr"`
	MediaType string `xml:"media-type,attr"`
}

type packageDoc struct {
	Metadata packageMetadata `xml:"metadata"`
	Manifest []manifestItem  `xml:"manifest>item"`
	Spine    packageSpine    `xml:"spine"`
}

type packageMetadata struct {
	Title   string `xml:"title"`
	Creator string `xml:"creator"`
}

type manifestItem struct {
	ID         string `xml:"id,attr"`
	Href       string `xml:"href,attr"`
	MediaType  string `xml:"media-type,attr"`
	Properties string `xml:"properties,attr"`
}

type packageSpine struct {
	ItemRefs []spineItemRef `xml:"itemref"`
}

type spineItemRef struct {
	IDRef string `xml:"idref,attr"`
}

// Extract opens the EPUB at path and returns the book with its chapters in
// spine order. Navigation documents and spine entries with no prose are
// skipped. Chapter text is plain text with whitespace collapsed to single
// spaces.
func Extract(sourcePath string) (*models.Book, error) {
	reader, err := zip.OpenReader(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open book %s: %w", sourcePath, err)
	}
	defer reader.Close()

	entries := make(map[string]*zip.File, len(reader.File))
	for _, f := range reader.File {
		entries[path.Clean(f.Name)] = f
	}

	opfPath, err := locateOPF(entries)
	if err != nil {
		return nil, err
	}

	var pkg packageDoc
	if err := decodeXML(entries, opfPath, &pkg); err != nil {
		return nil, err
	}
	if len(pkg.Spine.ItemRefs) == 0 {
		return nil, fmt.Errorf("failed to read book %s: package spine is empty", sourcePath)
	}

	manifest := make(map[string]manifestItem, len(pkg.Manifest))
	for _, item := range pkg.Manifest {
		manifest[item.ID] = item
	}

	opfDir := path.Dir(opfPath)
	var chapters []models.Chapter

	for _, ref := range pkg.Spine.ItemRefs {
		item, ok := manifest[ref.IDRef]
		if !ok {
			return nil, fmt.Errorf("failed to read book %s: spine references unknown item %q", sourcePath, ref.IDRef)
		}
		if !isContentDocument(item) {
			continue
		}

		entry, ok := entries[resolveHref(opfDir, item.Href)]
		if !ok {
			return nil, fmt.Errorf("failed to read book %s: missing content file %s", sourcePath, item.Href)
		}

		title, text, err := extractDocumentText(entry)
		if err != nil {
			return nil, fmt.Errorf("failed to read book %s: %w", sourcePath, err)
		}
		if text == "" {
			continue
		}

		chapters = append(chapters, models.Chapter{
			Seq:   len(chapters) + 1,
			Title: title,
			Text:  text,
		})
	}

	bookTitle := strings.TrimSpace(pkg.Metadata.Title)
	if bookTitle == "" {
		base := path.Base(strings.ReplaceAll(sourcePath, "\\", "/"))
		bookTitle = strings.TrimSuffix(base, path.Ext(base))
	}

	return &models.Book{
		Title:      bookTitle,
		Author:     strings.TrimSpace(pkg.Metadata.Creator),
		SourcePath: sourcePath,
		Chapters:   chapters,
	}, nil
}

func locateOPF(entries map[string]*zip.File) (string, error) {
	var doc containerDoc
	if err := decodeXML(entries, containerPath, &doc); err != nil {
		return "", err
	}

	for _, rf := range doc.Rootfiles {
		if rf.FullPath != "" {
			return path.Clean(rf.FullPath), nil
		}
	}

	return "", fmt.Errorf("container.xml names no package document")
}

func decodeXML(entries map[string]*zip.File, name string, v interface{}) error {
	entry, ok := entries[name]
	if !ok {
		return fmt.Errorf("missing %s", name)
	}

	rc, err := entry.Open()
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer rc.Close()

	if err := xml.NewDecoder(rc).Decode(v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}

	return nil
}

func isContentDocument(item manifestItem) bool {
	if strings.Contains(item.Properties, "nav") {
		return false
	}
	switch item.MediaType {
	case "application/xhtml+xml", "text/html":
		return true
	}
	return false
}

// resolveHref joins a manifest href onto the OPF directory. Hrefs may be
// URL-encoded and may carry fragments.
func resolveHref(opfDir, href string) string {
	if i := strings.IndexByte(href, '#'); i >= 0 {
		href = href[:i]
	}
	if unescaped, err := url.PathUnescape(href); err == nil {
		href = unescaped
	}
	if opfDir == "." {
		return path.Clean(href)
	}
	return path.Clean(path.Join(opfDir, href))
}

// extractDocumentText parses one XHTML document and returns its first
// heading and its visible text, whitespace collapsed.
func extractDocumentText(entry *zip.File) (title, text string, err error) {
	rc, err := entry.Open()
	if err != nil {
		return "", "", fmt.Errorf("failed to open %s: %w", entry.Name, err)
	}
	defer rc.Close()

	doc, err := html.Parse(rc)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse %s: %w", entry.Name, err)
	}

	var sb strings.Builder
	var heading string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "head", "script", "style":
				return
			case "h1", "h2", "h3":
				if heading == "" {
					heading = collapseWhitespace(nodeText(n))
				}
			}
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return heading, collapseWhitespace(sb.String()), nil
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
