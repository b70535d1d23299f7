package docsift

import (
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

// Chunk size bounds, in bytes of UTF-8 text.
const (
	MinChunkSize = 250
	MaxChunkSize = 4000
	ChunkOverlap = 500
)

// IntroductionSection is the section path given to text that precedes the
// first heading of a document.
const IntroductionSection = "Introduction"

// paragraphSeparator joins paragraph units inside a chunk.
const paragraphSeparator = "\n\n"

// Chunk is a bounded span of text attributed to one page and one section
// path. It is the unit of embedding and retrieval.
type Chunk struct {
	Text        string `json:"text"`
	SourceURL   string `json:"sourceUrl"`
	SectionPath string `json:"sectionPath"`
	Index       int    `json:"index"`
}

// ChunkDocument splits markdown into chunks that follow its heading tree.
// Each heading's own text becomes one or more chunks carrying the heading
// breadcrumb as their section path. The result is deterministic; empty input
// yields no chunks.
func ChunkDocument(sourceURL, markdown string) []Chunk {
	if strings.TrimSpace(markdown) == "" {
		return nil
	}

	tree := parseSectionTree(markdown)

	var chunks []Chunk
	tree.walk(func(idx int) {
		body := tree.bodyText(idx)
		if body == "" {
			return
		}

		var text, path string
		if idx == 0 {
			text = body
			path = IntroductionSection
		} else {
			node := tree.nodes[idx]
			text = strings.Repeat("#", node.level) + " " + node.title + paragraphSeparator + body
			path = tree.breadcrumb(idx)
		}

		for _, piece := range splitSection(text) {
			chunks = append(chunks, Chunk{
				Text:        piece,
				SourceURL:   sourceURL,
				SectionPath: path,
				Index:       len(chunks),
			})
		}
	})

	return chunks
}

var blankLineRe = regexp.MustCompile(`\n[ \t]*\n`)

// splitSection returns text unchanged when it fits in one chunk and
// otherwise packs its paragraphs into overlapping chunks.
func splitSection(text string) []string {
	if len(text) <= MaxChunkSize {
		return []string{text}
	}
	return packUnits(paragraphUnits(text))
}

// paragraphUnits splits text on blank lines. Paragraphs longer than
// MaxChunkSize are cut further so every unit fits in a chunk.
func paragraphUnits(text string) []string {
	var units []string
	for _, p := range blankLineRe.Split(text, -1) {
		p = strings.TrimSpace(p)
		for p != "" {
			var head string
			head, p = cutAt(p, MaxChunkSize)
			units = append(units, head)
		}
	}
	return units
}

// cutAt splits s into a head of at most limit bytes and the remaining tail.
// It prefers a line break, then whitespace, and finally any rune boundary.
func cutAt(s string, limit int) (head, tail string) {
	if len(s) <= limit {
		return s, ""
	}

	window := s[:limit]
	floor := limit / 2
	for _, seps := range []string{"\n", " \t"} {
		if i := strings.LastIndexAny(window, seps); i >= floor {
			head = strings.TrimSpace(s[:i])
			if head != "" {
				return head, strings.TrimSpace(s[i+1:])
			}
		}
	}

	i := limit
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return s[:i], s[i:]
}

// overlapUnits is the most paragraphs a chunk may share with the one
// before it.
var overlapUnits = max(1, (ChunkOverlap+99)/100)

// packUnits greedily accumulates units into chunks of at most MaxChunkSize.
// After each emitted chunk, the next one restarts a few units back so
// neighbouring chunks share context.
func packUnits(units []string) []string {
	var chunks []string

	start := 0
	for start < len(units) {
		buf := units[start]
		end := start + 1

		for end < len(units) {
			next := units[end]
			if len(buf)+len(paragraphSeparator)+len(next) <= MaxChunkSize {
				buf += paragraphSeparator + next
				end++
				continue
			}
			if len(buf) >= MinChunkSize {
				break
			}

			// Too short to stand alone: top up with the head of next.
			head, tail := cutAt(next, MaxChunkSize-len(buf)-len(paragraphSeparator))
			units[end] = head
			if tail != "" {
				units = slices.Insert(units, end+1, tail)
			}
			buf += paragraphSeparator + head
			end++
			break
		}

		chunks = append(chunks, buf)
		if end >= len(units) {
			break
		}

		start = end - min((end-start)/2, overlapUnits)
		for start < end && joinedLen(units[start:end+1]) > MaxChunkSize {
			start++
		}
	}

	return chunks
}

// joinedLen is the length of units joined by paragraphSeparator.
func joinedLen(units []string) int {
	n := len(paragraphSeparator) * max(0, len(units)-1)
	for _, u := range units {
		n += len(u)
	}
	return n
}
