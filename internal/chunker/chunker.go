// Package chunker splits raw document text into bounded, overlapping
// fragments suitable for embedding. Splitting prefers paragraph breaks, then
// line breaks, then sentence boundaries, then whitespace, and falls back to
// hard character cuts only when no separator exists within the size budget.
// Adjacent small pieces are re-joined up to the budget, and each chunk after
// the first carries a leading overlap from its predecessor so boundary
// context is preserved across chunks.
package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Defaults match the recipe ingestion profile: recipes are mostly
// self-contained, so fairly large chunks with a modest overlap work well.
const (
	// DefaultChunkSize is the maximum chunk length in bytes.
	DefaultChunkSize = 500

	// DefaultOverlap is the number of bytes shared between consecutive chunks.
	DefaultOverlap = 50
)

// separators is the split priority order: paragraph break, line break,
// sentence terminator, word boundary.
var separators = []string{"\n\n", "\n", ". ", " "}

// Chunk is one bounded fragment of a source document.
type Chunk struct {
	// Text is the fragment content, including the leading overlap carried
	// from the previous chunk (empty overlap for the first chunk).
	Text string

	// Ordinal is the zero-based position of this chunk within its document.
	Ordinal int

	// Start and End are the byte offsets of the chunk's core (non-overlap)
	// region in the original document. Concatenating all cores in order
	// reconstructs the document exactly.
	Start int
	End   int
}

// Splitter produces chunks of at most maxSize bytes with the configured
// overlap. It is stateless and safe for concurrent use.
type Splitter struct {
	// maxSize is the maximum chunk length, overlap included.
	maxSize int

	// overlap is the number of bytes each chunk shares with its predecessor.
	overlap int
}

// NewSplitter constructs a Splitter. maxSize <= 0 resolves to
// DefaultChunkSize and overlap < 0 to DefaultOverlap. overlap >= maxSize is a
// configuration error: such a splitter could never make progress.
func NewSplitter(maxSize, overlap int) (*Splitter, error) {
	if maxSize <= 0 {
		maxSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = DefaultOverlap
	}
	if overlap >= maxSize {
		return nil, fmt.Errorf("chunker: overlap %d must be smaller than max chunk size %d", overlap, maxSize)
	}
	return &Splitter{maxSize: maxSize, overlap: overlap}, nil
}

// budget is the maximum core length: the overlap prefix added to every chunk
// after the first must still fit within maxSize.
func (s *Splitter) budget() int {
	return s.maxSize - s.overlap
}

// Split divides text into chunks. A document no longer than maxSize yields
// exactly one chunk; an empty document yields none. The result is
// deterministic for fixed inputs.
func (s *Splitter) Split(text string) []Chunk {
	if text == "" {
		return nil
	}
	if len(text) <= s.maxSize {
		return []Chunk{{Text: text, Ordinal: 0, Start: 0, End: len(text)}}
	}

	pieces := s.split(text, separators)
	cores := s.merge(pieces)

	chunks := make([]Chunk, 0, len(cores))
	pos := 0
	for i, core := range cores {
		start := pos
		end := pos + len(core)
		pos = end

		textStart := start
		if i > 0 {
			textStart = start - s.overlap
			if textStart < 0 {
				textStart = 0
			}
			// Offsets are bytes; nudge forward so the overlap prefix never
			// begins mid-rune.
			for textStart < start && !utf8.RuneStart(text[textStart]) {
				textStart++
			}
		}

		chunks = append(chunks, Chunk{
			Text:    text[textStart:end],
			Ordinal: i,
			Start:   start,
			End:     end,
		})
	}

	return chunks
}

// split recursively divides text into pieces no longer than the core budget,
// trying each separator in priority order. The concatenation of the returned
// pieces always equals the input.
func (s *Splitter) split(text string, seps []string) []string {
	if len(text) <= s.budget() {
		return []string{text}
	}
	if len(seps) == 0 {
		return s.hardCut(text)
	}

	parts := strings.SplitAfter(text, seps[0])
	if len(parts) == 1 {
		// Separator absent — fall through to the next one.
		return s.split(text, seps[1:])
	}

	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		if len(part) > s.budget() {
			out = append(out, s.split(part, seps[1:])...)
		} else {
			out = append(out, part)
		}
	}
	return out
}

// hardCut slices text into budget-sized pieces at rune boundaries. Last
// resort when no separator exists within the budget.
func (s *Splitter) hardCut(text string) []string {
	budget := s.budget()
	var out []string
	for len(text) > budget {
		cut := budget
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		if cut == 0 {
			cut = budget
		}
		out = append(out, text[:cut])
		text = text[cut:]
	}
	if text != "" {
		out = append(out, text)
	}
	return out
}

// merge re-joins adjacent small pieces while the combined length stays
// within the core budget, so separator-dense text does not degenerate into
// many tiny chunks.
func (s *Splitter) merge(pieces []string) []string {
	budget := s.budget()
	var merged []string
	var cur strings.Builder

	for _, p := range pieces {
		if cur.Len() > 0 && cur.Len()+len(p) > budget {
			merged = append(merged, cur.String())
			cur.Reset()
		}
		cur.WriteString(p)
	}
	if cur.Len() > 0 {
		merged = append(merged, cur.String())
	}
	return merged
}
