// Package chunker splits document text into overlapping passages for
// retrieval indexing.
package chunker

import "strings"

// defaultSeparators is the priority list used to split text: paragraphs
// first, then lines, sentences, words, and finally single characters.
var defaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// RecursiveChunker splits text recursively on a priority list of
// separators. A piece that still exceeds the chunk size is re-split with
// the next, finer separator. Adjacent chunks overlap by a configured
// number of characters. Content is never dropped: a single atomic unit
// (e.g. one very long word) may exceed the chunk size when nothing finer than
// a character split could divide it.
type RecursiveChunker struct {
	chunkSize    int
	chunkOverlap int
	separators   []string
}

func NewRecursiveChunker(chunkSize, chunkOverlap int) *RecursiveChunker {
	if chunkSize <= 0 {
		chunkSize = 300
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 6
	}
	return &RecursiveChunker{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		separators:   defaultSeparators,
	}
}

// Split returns the ordered chunks of text, each at most chunkSize
// characters (best effort, see type doc).
func (c *RecursiveChunker) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return c.split(text, c.separators)
}

func (c *RecursiveChunker) split(text string, separators []string) []string {
	sep := separators[len(separators)-1]
	rest := separators
	for i, s := range separators {
		if s == "" || strings.Contains(text, s) {
			sep = s
			rest = separators[i+1:]
			break
		}
	}

	pieces := splitOn(text, sep)

	var chunks []string
	var good []string
	for _, piece := range pieces {
		if len(piece) <= c.chunkSize {
			good = append(good, piece)
			continue
		}
		// Flush accumulated short pieces, then re-split the long one
		// with the next finer separator.
		chunks = append(chunks, c.merge(good, sep)...)
		good = nil
		if len(rest) == 0 {
			chunks = append(chunks, piece)
		} else {
			chunks = append(chunks, c.split(piece, rest)...)
		}
	}
	chunks = append(chunks, c.merge(good, sep)...)
	return chunks
}

// merge joins consecutive pieces back together with their separator until
// the chunk size is reached, carrying chunkOverlap characters of trailing
// pieces into the next chunk.
func (c *RecursiveChunker) merge(pieces []string, sep string) []string {
	var chunks []string
	var window []string
	total := 0

	flush := func() {
		joined := strings.TrimSpace(strings.Join(window, sep))
		if joined != "" {
			chunks = append(chunks, joined)
		}
	}

	for _, piece := range pieces {
		pieceLen := len(piece)
		if total+pieceLen+len(sep)*len(window) > c.chunkSize && len(window) > 0 {
			flush()
			// Drop from the front until the overlap window fits.
			for total > c.chunkOverlap ||
				(total+pieceLen+len(sep)*len(window) > c.chunkSize && total > 0) {
				total -= len(window[0])
				window = window[1:]
			}
		}
		window = append(window, piece)
		total += pieceLen
	}
	flush()
	return chunks
}

// splitOn splits text by sep, keeping every character when sep is empty.
func splitOn(text, sep string) []string {
	if sep == "" {
		runes := []rune(text)
		out := make([]string, len(runes))
		for i, r := range runes {
			out[i] = string(r)
		}
		return out
	}
	var out []string
	for _, p := range strings.Split(text, sep) {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
