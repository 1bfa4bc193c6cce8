// Package extract converts uploaded files into plain markdown text ready
// for chunking. Markdown and plain text pass through unchanged; HTML is
// stripped of chrome and converted; PDF, DOCX, and spreadsheet files have
// their text pulled out of the container format. Format detection uses the
// file extension first and falls back to content sniffing.
package extract
