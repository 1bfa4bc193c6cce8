package chunking

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/corpus/core"
)

// Chunking defaults, tunable via options.
const (
	// DefaultChunkSize is the soft target size of a chunk in characters.
	DefaultChunkSize = 800
	// DefaultChunkOverlap is the character tail carried into the next chunk.
	DefaultChunkOverlap = 80
	// DefaultMaxChunkChars is the hard ceiling enforced by the safety pass.
	DefaultMaxChunkChars = 4000

	truncationMarker  = "\n[truncated]"
	truncationReserve = 20
)

var (
	codeBlockRe  = regexp.MustCompile("(?s)```.*?```")
	headerRe     = regexp.MustCompile(`\n#{1,4}[ \t]+[^\n]+`)
	headerLineRe = regexp.MustCompile(`(?m)^#{1,4}[ \t]+(.+?)[ \t]*$`)
)

// Splitter splits text into semantic chunks.
type Splitter struct {
	chunkSize int
	overlap   int
	maxChars  int
}

// SplitterOption configures a Splitter.
type SplitterOption func(*Splitter)

// WithChunkSize sets the soft target chunk size in characters.
func WithChunkSize(size int) SplitterOption {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap tail length in characters.
func WithOverlap(overlap int) SplitterOption {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// WithMaxChunkChars sets the hard character ceiling.
func WithMaxChunkChars(max int) SplitterOption {
	return func(s *Splitter) {
		if max > 0 {
			s.maxChars = max
		}
	}
}

// NewSplitter creates a splitter with the given options.
func NewSplitter(opts ...SplitterOption) *Splitter {
	s := &Splitter{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
		maxChars:  DefaultMaxChunkChars,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.overlap >= s.chunkSize {
		s.overlap = s.chunkSize / 4
	}
	return s
}

// Split chunks text along code fences, headers, and paragraphs, then runs a
// final safety pass that truncates anything still over the hard ceiling.
// Empty input yields zero chunks. Every returned chunk is trimmed and
// carries a gap-free, zero-based index in document order.
func (s *Splitter) Split(text string) ([]core.Chunk, []core.TruncationWarning) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	var raw []string
	cur := ""
	flush := func() {
		if t := strings.TrimSpace(cur); t != "" {
			raw = append(raw, t)
		}
		cur = ""
	}

	for _, part := range splitCodeBlocks(text) {
		if part.code {
			switch {
			case len(part.text) > s.maxChars:
				// Oversized code block: line-boundary splits only.
				flush()
				raw = append(raw, splitLongCodeBlock(part.text, s.maxChars)...)
			case cur != "" && len(cur)+len(part.text) > s.chunkSize:
				flush()
				cur = part.text
			default:
				cur += "\n" + part.text
			}
			continue
		}

		for _, section := range splitHeaders(part.text) {
			if strings.TrimSpace(section) == "" {
				continue
			}
			isHeader := strings.HasPrefix(strings.TrimSpace(section), "#")

			switch {
			case isHeader && strings.TrimSpace(cur) != "":
				// A header always starts a new chunk once there is content.
				flush()
				cur = section
			case len(cur)+len(section) > s.chunkSize:
				for _, para := range strings.Split(section, "\n\n") {
					if cur != "" && len(cur)+len(para) > s.chunkSize {
						tail := overlapTail(cur, s.overlap)
						flush()
						cur = tail + "\n\n" + para
					} else {
						cur += "\n\n" + para
					}
				}
			default:
				cur += section
			}
		}
	}
	flush()

	chunks := make([]core.Chunk, 0, len(raw))
	var warnings []core.TruncationWarning
	lastTitle := ""
	for i, chunkText := range raw {
		// Continuation chunks (overlap tails, paragraph spills) carry no
		// header of their own; they inherit the nearest preceding one.
		title := sectionTitle(chunkText)
		if title == "" {
			title = lastTitle
		} else {
			lastTitle = title
		}
		if len(chunkText) > s.maxChars {
			cut := runeSafeCut(chunkText, s.maxChars-truncationReserve)
			warnings = append(warnings, core.TruncationWarning{
				ChunkIndex:    i,
				OriginalSize:  len(chunkText),
				TruncatedSize: cut,
				Kind:          core.TruncationCharacter,
				SectionTitle:  title,
			})
			chunkText = chunkText[:cut] + truncationMarker
		}
		chunks = append(chunks, core.Chunk{Index: i, Text: chunkText, SectionTitle: title})
	}
	return chunks, warnings
}

// textPart is a run of text that is either a fenced code block or prose.
type textPart struct {
	text string
	code bool
}

func splitCodeBlocks(text string) []textPart {
	var parts []textPart
	prev := 0
	for _, loc := range codeBlockRe.FindAllStringIndex(text, -1) {
		if loc[0] > prev {
			parts = append(parts, textPart{text: text[prev:loc[0]]})
		}
		parts = append(parts, textPart{text: text[loc[0]:loc[1]], code: true})
		prev = loc[1]
	}
	if prev < len(text) {
		parts = append(parts, textPart{text: text[prev:]})
	}
	return parts
}

// splitHeaders splits prose on markdown header lines (levels 1-4), keeping
// each header as its own section so callers can detect chunk boundaries.
func splitHeaders(text string) []string {
	var sections []string
	prev := 0
	for _, loc := range headerRe.FindAllStringIndex(text, -1) {
		if loc[0] > prev {
			sections = append(sections, text[prev:loc[0]])
		}
		sections = append(sections, text[loc[0]:loc[1]])
		prev = loc[1]
	}
	if prev < len(text) {
		sections = append(sections, text[prev:])
	}
	return sections
}

func splitLongCodeBlock(block string, maxChars int) []string {
	var out []string
	cur := ""
	for _, line := range strings.Split(block, "\n") {
		if cur != "" && len(cur)+len(line) > maxChars {
			out = append(out, strings.TrimSpace(cur))
			cur = line + "\n"
		} else {
			cur += line + "\n"
		}
	}
	if t := strings.TrimSpace(cur); t != "" {
		out = append(out, t)
	}
	return out
}

// overlapTail returns the trailing window of the previous chunk that seeds
// the next one. The exact window is a context-continuity heuristic, not a
// correctness contract.
func overlapTail(text string, overlap int) string {
	if len(text) <= overlap {
		return text
	}
	start := len(text) - overlap
	for start < len(text) && !utf8.RuneStart(text[start]) {
		start++
	}
	return text[start:]
}

func runeSafeCut(text string, cut int) int {
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return cut
}

// sectionTitle returns the first header line within the chunk, if any.
func sectionTitle(chunk string) string {
	if m := headerLineRe.FindStringSubmatch(chunk); m != nil {
		return m[1]
	}
	return ""
}
