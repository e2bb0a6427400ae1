package analyze

import (
	"go/ast"
	"regexp"
	"strings"
)

// DefaultDirective is the marker naming the source type of a mapping.
const DefaultDirective = "mapgen:from"

// markerRe matches the body of a `//ns:name args...` comment line. Like
// //go: directives there must be no space after the slashes.
var markerRe = regexp.MustCompile(`^([a-z][a-z0-9_]*:[A-Za-z][A-Za-z0-9_.-]*)(?:\s+(.*))?$`)

// ParseMarker parses a single raw comment (including the leading //).
func ParseMarker(raw string) (Marker, bool) {
	body, ok := strings.CutPrefix(raw, "//")
	if !ok {
		return Marker{}, false
	}

	m := markerRe.FindStringSubmatch(strings.TrimRight(body, " \t\r"))
	if m == nil {
		return Marker{}, false
	}

	var args []string
	if m[2] != "" {
		args = strings.Fields(m[2])
	}

	return Marker{Name: m[1], Args: args}, true
}

// markerComments returns the marker lines of a doc comment in source order
// along with the comments they came from.
func markerComments(doc *ast.CommentGroup) ([]Marker, []*ast.Comment) {
	if doc == nil {
		return nil, nil
	}

	var (
		markers  []Marker
		comments []*ast.Comment
	)

	for _, c := range doc.List {
		m, ok := ParseMarker(c.Text)
		if !ok {
			continue
		}

		markers = append(markers, m)
		comments = append(comments, c)
	}

	return markers, comments
}

// MarkersNamed returns the markers called name, in order.
func (d Declaration) MarkersNamed(name string) []Marker {
	var out []Marker

	for _, m := range d.Markers {
		if m.Name == name {
			out = append(out, m)
		}
	}

	return out
}
