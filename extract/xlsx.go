package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"
)

// extractExcel converts a spreadsheet container to markdown: one "## Sheet"
// section per worksheet with pipe-separated rows. Only the OOXML container
// format is supported; legacy binary .xls files are rejected.
func extractExcel(content []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open spreadsheet container (legacy .xls is not supported): %w", err)
	}

	shared, err := readSharedStrings(archive)
	if err != nil {
		return "", err
	}
	names, err := readSheetNames(archive)
	if err != nil {
		return "", err
	}

	var sheetFiles []*zip.File
	for _, f := range archive.File {
		if strings.HasPrefix(f.Name, "xl/worksheets/sheet") && strings.HasSuffix(f.Name, ".xml") {
			sheetFiles = append(sheetFiles, f)
		}
	}
	sort.Slice(sheetFiles, func(a, b int) bool { return sheetFiles[a].Name < sheetFiles[b].Name })

	var out strings.Builder
	for i, f := range sheetFiles {
		name := fmt.Sprintf("Sheet%d", i+1)
		if i < len(names) {
			name = names[i]
		}
		rows, err := readSheetRows(f, shared)
		if err != nil {
			return "", err
		}
		if len(rows) == 0 {
			continue
		}
		out.WriteString("## " + name + "\n\n")
		for _, row := range rows {
			out.WriteString(row + "\n")
		}
		out.WriteString("\n")
	}
	return strings.TrimSpace(out.String()), nil
}

func openPart(archive *zip.Reader, name string) (io.ReadCloser, bool, error) {
	for _, f := range archive.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, false, fmt.Errorf("open %s: %w", name, err)
			}
			return rc, true, nil
		}
	}
	return nil, false, nil
}

func readSharedStrings(archive *zip.Reader) ([]string, error) {
	rc, ok, err := openPart(archive, "xl/sharedStrings.xml")
	if err != nil || !ok {
		return nil, err
	}
	defer rc.Close()

	var table struct {
		Items []struct {
			Text string `xml:"t"`
			Runs []struct {
				Text string `xml:"t"`
			} `xml:"r"`
		} `xml:"si"`
	}
	if err := xml.NewDecoder(rc).Decode(&table); err != nil {
		return nil, fmt.Errorf("parse shared strings: %w", err)
	}

	strs := make([]string, len(table.Items))
	for i, item := range table.Items {
		if item.Text != "" {
			strs[i] = item.Text
			continue
		}
		var b strings.Builder
		for _, run := range item.Runs {
			b.WriteString(run.Text)
		}
		strs[i] = b.String()
	}
	return strs, nil
}

func readSheetNames(archive *zip.Reader) ([]string, error) {
	rc, ok, err := openPart(archive, "xl/workbook.xml")
	if err != nil || !ok {
		return nil, err
	}
	defer rc.Close()

	var workbook struct {
		Sheets []struct {
			Name string `xml:"name,attr"`
		} `xml:"sheets>sheet"`
	}
	if err := xml.NewDecoder(rc).Decode(&workbook); err != nil {
		return nil, fmt.Errorf("parse workbook: %w", err)
	}

	names := make([]string, len(workbook.Sheets))
	for i, s := range workbook.Sheets {
		names[i] = s.Name
	}
	return names, nil
}

func readSheetRows(f *zip.File, shared []string) ([]string, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	var sheet struct {
		Rows []struct {
			Cells []struct {
				Type   string `xml:"t,attr"`
				Value  string `xml:"v"`
				Inline string `xml:"is>t"`
			} `xml:"c"`
		} `xml:"sheetData>row"`
	}
	if err := xml.NewDecoder(rc).Decode(&sheet); err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.Name, err)
	}

	var rows []string
	for _, row := range sheet.Rows {
		values := make([]string, 0, len(row.Cells))
		empty := true
		for _, cell := range row.Cells {
			value := cell.Value
			switch cell.Type {
			case "s":
				if idx, ok := sharedIndex(value, len(shared)); ok {
					value = shared[idx]
				}
			case "inlineStr":
				value = cell.Inline
			}
			if strings.TrimSpace(value) != "" {
				empty = false
			}
			values = append(values, value)
		}
		if !empty {
			rows = append(rows, strings.Join(values, " | "))
		}
	}
	return rows, nil
}

func sharedIndex(value string, max int) (int, bool) {
	idx := 0
	for _, r := range value {
		if r < '0' || r > '9' {
			return 0, false
		}
		idx = idx*10 + int(r-'0')
	}
	if idx >= max {
		return 0, false
	}
	return idx, true
}
