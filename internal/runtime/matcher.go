package runtime

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/Catneko-0422/tuerulebase/pkg/domain"
	"github.com/Catneko-0422/tuerulebase/pkg/ports"
	"golang.org/x/text/cases"
)

// Match is the part of a code one node consumed.
type Match struct {
	Value     string
	Meaning   string
	Remaining string
}

// unitKeywords map node-name fragments to the unit appended to a formatted
// value. The first entry whose keyword appears in the name wins.
var unitKeywords = []struct {
	keywords []string
	unit     string
}{
	{[]string{"capacit", "電容"}, "F"},
	{[]string{"resist", "電阻"}, "Ω"},
	{[]string{"induct", "電感"}, "H"},
}

// MatchNode matches one node against the front of remaining.
// ok is false when the node does not match; that is a normal outcome,
// not an error.
func MatchNode(tree ports.TreeReader, node domain.Node, remaining string) (Match, bool) {
	switch node.Type {
	case domain.NodeTypeStatic:
		return matchStatic(tree, node, remaining)
	case domain.NodeTypeFixed:
		if node.Code == "" || !strings.HasPrefix(remaining, node.Code) {
			return Match{}, false
		}
		return Match{
			Value:     node.Code,
			Meaning:   node.Name,
			Remaining: remaining[len(node.Code):],
		}, true
	case domain.NodeTypeInput, domain.NodeTypeSerial:
		value, rest, ok := splitRunes(remaining, node.SegmentLength)
		if !ok {
			return Match{}, false
		}
		return Match{
			Value:     value,
			Meaning:   RenderMeaning(node, value),
			Remaining: rest,
		}, true
	}
	return Match{}, false
}

// matchStatic tries the OPTION children longest code first, so "10" wins
// over "1" on "105...". Options of equal length keep their sort order.
func matchStatic(tree ports.TreeReader, node domain.Node, remaining string) (Match, bool) {
	options := append([]domain.Node(nil), tree.Options(node.ID)...)
	sort.SliceStable(options, func(i, j int) bool {
		return utf8.RuneCountInString(options[i].Code) > utf8.RuneCountInString(options[j].Code)
	})
	for _, opt := range options {
		if opt.Code != "" && strings.HasPrefix(remaining, opt.Code) {
			return Match{
				Value:     opt.Code,
				Meaning:   opt.Name,
				Remaining: remaining[len(opt.Code):],
			}, true
		}
	}
	return Match{}, false
}

// RenderMeaning formats an INPUT or SERIAL value. Component shorthand gets
// a unit chosen from the node name; everything else is shown raw.
func RenderMeaning(node domain.Node, value string) string {
	formatted := FormatValue(value)
	if formatted == value {
		return value
	}
	// Casers are not safe for concurrent use.
	name := cases.Fold().String(node.Name)
	for _, u := range unitKeywords {
		for _, kw := range u.keywords {
			if strings.Contains(name, kw) {
				return formatted + u.unit
			}
		}
	}
	return formatted
}

// splitRunes cuts the first n characters off s. It never reads past the
// end: ok is false when s is shorter than n.
func splitRunes(s string, n int) (head, tail string, ok bool) {
	if n < 0 || utf8.RuneCountInString(s) < n {
		return "", s, false
	}
	i := 0
	for k := 0; k < n; k++ {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return s[:i], s[i:], true
}
