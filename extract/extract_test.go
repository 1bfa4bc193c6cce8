package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_MarkdownPassesThrough(t *testing.T) {
	e := NewExtractor()
	text, err := e.Extract(context.Background(), "guide.md", []byte("# Title\r\n\r\nbody"))
	require.NoError(t, err)
	assert.Equal(t, "# Title\n\nbody", text)
}

func TestExtract_TextSanitizesInvalidUTF8(t *testing.T) {
	e := NewExtractor()
	text, err := e.Extract(context.Background(), "notes.txt", []byte{'o', 'k', 0xff, '!'})
	require.NoError(t, err)
	assert.Equal(t, "ok�!", text)
}

func TestExtract_HTMLStripsChromeAndConverts(t *testing.T) {
	e := NewExtractor()
	html := `<html><head><style>body{color:red}</style></head><body>
		<nav>site menu</nav>
		<h1>Install Guide</h1>
		<p>Run the <code>install</code> command.</p>
		<script>trackPageView()</script>
		<footer>copyright</footer>
	</body></html>`

	text, err := e.Extract(context.Background(), "page.html", []byte(html))
	require.NoError(t, err)

	assert.Contains(t, text, "Install Guide")
	assert.Contains(t, text, "install")
	assert.NotContains(t, text, "site menu")
	assert.NotContains(t, text, "trackPageView")
	assert.NotContains(t, text, "color:red")
}

func TestExtract_ArchiveRejected(t *testing.T) {
	e := NewExtractor()
	_, err := e.Extract(context.Background(), "bundle.zip", []byte("PK\x03\x04"))
	assert.Error(t, err)
}

func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestExtractDocx(t *testing.T) {
	document := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p>
      <w:pPr><w:pStyle w:val="Heading1"/></w:pPr>
      <w:r><w:t>Overview</w:t></w:r>
    </w:p>
    <w:p><w:r><w:t>First paragraph </w:t></w:r><w:r><w:t>joined runs.</w:t></w:r></w:p>
    <w:tbl>
      <w:tr>
        <w:tc><w:p><w:r><w:t>name</w:t></w:r></w:p></w:tc>
        <w:tc><w:p><w:r><w:t>value</w:t></w:r></w:p></w:tc>
      </w:tr>
    </w:tbl>
  </w:body>
</w:document>`
	content := buildZip(t, map[string]string{"word/document.xml": document})

	text, err := extractDocx(content)
	require.NoError(t, err)

	assert.Contains(t, text, "# Overview")
	assert.Contains(t, text, "First paragraph joined runs.")
	assert.Contains(t, text, "name | value")
}

func TestExtractDocx_MissingDocumentPart(t *testing.T) {
	content := buildZip(t, map[string]string{"other.xml": "<x/>"})
	_, err := extractDocx(content)
	assert.Error(t, err)
}

func TestExtractExcel(t *testing.T) {
	workbook := `<?xml version="1.0"?>
<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
  <sheets><sheet name="Inventory" sheetId="1"/></sheets>
</workbook>`
	sharedStrings := `<?xml version="1.0"?>
<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
  <si><t>widget</t></si>
  <si><t>count</t></si>
</sst>`
	sheet := `<?xml version="1.0"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
  <sheetData>
    <row><c t="s"><v>0</v></c><c t="s"><v>1</v></c></row>
    <row><c><v>7</v></c><c><v>42</v></c></row>
  </sheetData>
</worksheet>`
	content := buildZip(t, map[string]string{
		"xl/workbook.xml":          workbook,
		"xl/sharedStrings.xml":     sharedStrings,
		"xl/worksheets/sheet1.xml": sheet,
	})

	text, err := extractExcel(content)
	require.NoError(t, err)

	assert.Contains(t, text, "## Inventory")
	assert.Contains(t, text, "widget | count")
	assert.Contains(t, text, "7 | 42")
}

func TestExtractExcel_LegacyBinaryRejected(t *testing.T) {
	_, err := extractExcel([]byte{0xd0, 0xcf, 0x11, 0xe0})
	assert.Error(t, err)
}
