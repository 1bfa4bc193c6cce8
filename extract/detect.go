package extract

import (
	"bytes"
	"path"
	"strings"
)

// FileType is the detected document format.
type FileType string

const (
	TypeMarkdown FileType = "markdown"
	TypeHTML     FileType = "html"
	TypeText     FileType = "text"
	TypePDF      FileType = "pdf"
	TypeDocx     FileType = "docx"
	TypeExcel    FileType = "excel"
	TypeArchive  FileType = "archive"
	TypeUnknown  FileType = "unknown"
)

var zipMagic = []byte("PK\x03\x04")

// DetectFileType classifies a file by extension, falling back to content
// sniffing for extensionless or text-like files.
func DetectFileType(filename string, content []byte) FileType {
	switch strings.ToLower(path.Ext(filename)) {
	case ".md", ".markdown", ".rst", ".adoc", ".asciidoc":
		return TypeMarkdown
	case ".html", ".htm":
		return TypeHTML
	case ".pdf":
		return TypePDF
	case ".docx":
		return TypeDocx
	case ".xlsx", ".xls":
		return TypeExcel
	case ".zip":
		return TypeArchive
	case ".txt":
		return sniff(content, TypeText)
	case "":
		return sniff(content, TypeUnknown)
	}
	return TypeUnknown
}

// sniff inspects the content head when the extension is uninformative.
func sniff(content []byte, fallback FileType) FileType {
	head := bytes.TrimSpace(content)
	if len(head) > 512 {
		head = head[:512]
	}
	lower := bytes.ToLower(head)
	switch {
	case bytes.HasPrefix(head, zipMagic):
		return TypeArchive
	case bytes.HasPrefix(lower, []byte("<!doctype")), bytes.HasPrefix(lower, []byte("<html")):
		return TypeHTML
	case bytes.HasPrefix(head, []byte("---")), bytes.HasPrefix(head, []byte("# ")):
		return TypeMarkdown
	}
	return fallback
}

// IsArchive reports whether the upload is a zip archive rather than a
// single document. Office formats are zip containers too, so the extension
// check comes first.
func IsArchive(filename string, content []byte) bool {
	return DetectFileType(filename, content) == TypeArchive
}
