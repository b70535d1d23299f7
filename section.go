package docsift

import (
	"regexp"
	"strings"
)

// Section represents a heading in a markdown document.
type Section struct {
	Level int    `json:"level"`
	Title string `json:"title"`
	// Path is the breadcrumb of titles from the top-level heading down to
	// this one, joined by " > ".
	Path string `json:"path"`
}

// ExtractSections parses markdown and returns all headings (H1-H6) in
// document order with their breadcrumb paths. Lines inside fenced code
// blocks are never headings.
func ExtractSections(markdown string) []Section {
	if markdown == "" {
		return nil
	}

	tree := parseSectionTree(markdown)
	if len(tree.nodes) == 1 {
		return nil
	}

	// Node indices follow document order; index 0 is the root.
	sections := make([]Section, 0, len(tree.nodes)-1)
	for idx := 1; idx < len(tree.nodes); idx++ {
		sections = append(sections, Section{
			Level: tree.nodes[idx].level,
			Title: tree.nodes[idx].title,
			Path:  tree.breadcrumb(idx),
		})
	}
	return sections
}

var (
	headingRe        = regexp.MustCompile(`^(#{1,6})[ \t]+(.*\S)[ \t]*$`)
	closingHashesRe  = regexp.MustCompile(`[ \t]+#+$`)
	fenceDelimiterRe = regexp.MustCompile("^ {0,3}(`{3,}|~{3,})(.*)$")
)

// fence tracks the code block a document is in. A block closes only on a
// run of its own marker character at least as long as the opening run, with
// nothing after it.
type fence struct {
	marker byte
	length int
}

// feed updates the fence state with line and reports whether the line is a
// fence delimiter or lies inside a code block.
func (f *fence) feed(line string) bool {
	m := fenceDelimiterRe.FindStringSubmatch(line)
	if f.length == 0 {
		if m == nil {
			return false
		}
		f.marker, f.length = m[1][0], len(m[1])
		return true
	}
	if m != nil && m[1][0] == f.marker && len(m[1]) >= f.length && strings.TrimSpace(m[2]) == "" {
		f.length = 0
	}
	return true
}

// sectionNode is one heading and the body lines that follow it up to the
// next heading. The root node (level 0, index 0) holds text that precedes
// the first heading.
type sectionNode struct {
	level    int
	title    string
	parent   int
	body     []string
	children []int
}

// sectionTree is an arena of heading nodes linked by parent indices.
type sectionTree struct {
	nodes []sectionNode
}

// parseSectionTree builds the heading hierarchy of a markdown document.
// Each heading attaches under the nearest previously opened heading with a
// strictly lower level, or under the root.
func parseSectionTree(markdown string) *sectionTree {
	t := &sectionTree{
		nodes: []sectionNode{{level: 0, parent: -1}},
	}

	// open holds the chain of currently open nodes; levels strictly increase.
	open := []int{0}
	current := 0
	var code fence

	for _, line := range strings.Split(markdown, "\n") {
		line = strings.TrimRight(line, "\r")

		if !code.feed(line) {
			if level, title, ok := parseHeading(line); ok {
				for t.nodes[open[len(open)-1]].level >= level {
					open = open[:len(open)-1]
				}
				parent := open[len(open)-1]

				idx := len(t.nodes)
				t.nodes = append(t.nodes, sectionNode{
					level:  level,
					title:  title,
					parent: parent,
				})
				t.nodes[parent].children = append(t.nodes[parent].children, idx)
				open = append(open, idx)
				current = idx
				continue
			}
		}

		t.nodes[current].body = append(t.nodes[current].body, line)
	}

	return t
}

// parseHeading reports whether line is an ATX heading and returns its level
// and title. Markers without a following space, more than six hashes, or an
// empty title are plain text.
func parseHeading(line string) (level int, title string, ok bool) {
	m := headingRe.FindStringSubmatch(line)
	if m == nil {
		return 0, "", false
	}
	title = strings.TrimSpace(closingHashesRe.ReplaceAllString(m[2], ""))
	if title == "" || strings.Trim(title, "#") == "" {
		return 0, "", false
	}
	return len(m[1]), title, true
}

// walk visits nodes depth-first in document order using an explicit stack.
func (t *sectionTree) walk(fn func(idx int)) {
	stack := []int{0}
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		fn(idx)

		children := t.nodes[idx].children
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
}

// breadcrumb joins the titles from the top-level heading down to idx.
func (t *sectionTree) breadcrumb(idx int) string {
	var titles []string
	for i := idx; i > 0; i = t.nodes[i].parent {
		titles = append(titles, t.nodes[i].title)
	}
	for l, r := 0, len(titles)-1; l < r; l, r = l+1, r-1 {
		titles[l], titles[r] = titles[r], titles[l]
	}
	return strings.Join(titles, " > ")
}

// bodyText returns the trimmed body of a node.
func (t *sectionTree) bodyText(idx int) string {
	return strings.TrimSpace(strings.Join(t.nodes[idx].body, "\n"))
}
