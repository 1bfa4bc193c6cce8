package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// extractDocx converts the main document part of a .docx container to
// markdown. Heading paragraph styles become markdown headers and table rows
// become pipe-separated lines.
func extractDocx(content []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open docx container: %w", err)
	}

	var docPart *zip.File
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			docPart = f
			break
		}
	}
	if docPart == nil {
		return "", errors.New("docx has no word/document.xml part")
	}

	rc, err := docPart.Open()
	if err != nil {
		return "", fmt.Errorf("open document part: %w", err)
	}
	defer rc.Close()

	return walkDocumentXML(rc)
}

// walkDocumentXML streams through WordprocessingML, emitting one markdown
// line per paragraph and one pipe row per table row.
func walkDocumentXML(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var (
		out       strings.Builder
		paragraph strings.Builder
		cells     []string
		heading   int
		inTable   bool
	)

	flushParagraph := func() {
		text := strings.TrimSpace(paragraph.String())
		paragraph.Reset()
		if inTable {
			cells = append(cells, text)
			return
		}
		if text == "" {
			heading = 0
			return
		}
		if heading > 0 {
			out.WriteString(strings.Repeat("#", heading) + " ")
			heading = 0
		}
		out.WriteString(text + "\n\n")
	}

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse document xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				inTable = true
			case "pStyle":
				heading = headingLevel(attrValue(t, "val"))
			case "t":
				var text string
				if err := decoder.DecodeElement(&text, &t); err != nil {
					return "", fmt.Errorf("parse text run: %w", err)
				}
				paragraph.WriteString(text)
			case "tab":
				paragraph.WriteString("\t")
			case "br":
				paragraph.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				flushParagraph()
			case "tr":
				out.WriteString(strings.Join(cells, " | ") + "\n")
				cells = nil
			case "tbl":
				inTable = false
				out.WriteString("\n")
			}
		}
	}

	return strings.TrimSpace(out.String()), nil
}

// headingLevel maps Word paragraph styles like "Heading2" to header depth.
func headingLevel(style string) int {
	const prefix = "Heading"
	if !strings.HasPrefix(style, prefix) {
		return 0
	}
	switch style[len(prefix):] {
	case "1":
		return 1
	case "2":
		return 2
	case "3":
		return 3
	case "4":
		return 4
	}
	return 0
}

func attrValue(el xml.StartElement, name string) string {
	for _, attr := range el.Attr {
		if attr.Name.Local == name {
			return attr.Value
		}
	}
	return ""
}
