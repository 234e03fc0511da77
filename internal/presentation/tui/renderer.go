package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/Catneko-0422/tuerulebase/pkg/domain"
	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// NewRenderer returns a function that renders markdown using glamour.
// When stdout is not a terminal the markdown is returned unchanged.
func NewRenderer() func(string) (string, error) {
	if !IsTerminal(os.Stdout) {
		return func(markdown string) (string, error) {
			return markdown, nil
		}
	}

	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return func(markdown string) (string, error) {
			return markdown, nil
		}
	}
	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// SegmentsMarkdown formats segments as a markdown table under a heading.
func SegmentsMarkdown(title, code string, segments []domain.Segment) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s `%s`\n\n", title, code)
	sb.WriteString("| # | Segment | Type | Value | Meaning |\n")
	sb.WriteString("|---|---|---|---|---|\n")
	for i, s := range segments {
		fmt.Fprintf(&sb, "| %d | %s | %s | `%s` | %s |\n", i+1, cell(s.NodeName), s.Type, s.Value, cell(s.Meaning))
	}
	return sb.String()
}

// NodesMarkdown formats one rule's nodes as an indented outline.
func NodesMarkdown(rule domain.Rule, nodes []domain.Node) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s\n\nRule %d, total length %d\n\n", rule.Name, rule.ID, rule.TotalLength)

	depth := make(map[int64]int, len(nodes))
	for _, n := range nodes {
		if n.RuleID != rule.ID {
			continue
		}
		d := 0
		if !n.IsRoot() {
			d = depth[n.Parent()] + 1
		}
		depth[n.ID] = d

		line := fmt.Sprintf("**%s** _%s_", n.Name, n.Type)
		switch {
		case n.Code != "":
			line += fmt.Sprintf(" `%s`", n.Code)
		case n.Type.Consumes():
			line += fmt.Sprintf(" (%d chars)", n.SegmentLength)
		}
		fmt.Fprintf(&sb, "%s- %s [#%d]\n", strings.Repeat("  ", d), line, n.ID)
	}
	return sb.String()
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
