package graph

import (
	"fmt"
	"strings"

	"github.com/Catneko-0422/tuerulebase/pkg/domain"
)

// GenerateMermaid produces a Mermaid flowchart of one rule's tree.
// Nodes of other rules are skipped. Shapes follow the node type:
// - STATIC: {Rhombus}
// - OPTION: ([Stadium]), linked with a dotted edge
// - FIXED: [Rectangle] with its code
// - INPUT/SERIAL: [/Parallelogram/] with the segment length
func GenerateMermaid(rule domain.Rule, nodes []domain.Node) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	fmt.Fprintf(&sb, "    %%%% rule %d: %s (total length %d)\n", rule.ID, label(rule.Name), rule.TotalLength)

	var owned []domain.Node
	for _, n := range nodes {
		if n.RuleID == rule.ID {
			owned = append(owned, n)
		}
	}

	for _, n := range owned {
		opener, closer := "[", "]"
		text := label(n.Name)

		switch n.Type {
		case domain.NodeTypeStatic:
			opener, closer = "{", "}"
		case domain.NodeTypeOption:
			opener, closer = "([", "])"
			text = label(n.Code) + ": " + text
		case domain.NodeTypeFixed:
			text += ": " + label(n.Code)
		case domain.NodeTypeInput, domain.NodeTypeSerial:
			opener, closer = "[/", "/]"
			text = fmt.Sprintf("%s (%d)", text, n.SegmentLength)
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", mermaidID(n.ID), opener, text, closer)
	}

	for _, n := range owned {
		if n.IsRoot() {
			continue
		}
		arrow := "-->"
		if n.Type == domain.NodeTypeOption {
			arrow = "-.->"
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", mermaidID(n.Parent()), arrow, mermaidID(n.ID))
	}

	return sb.String()
}

func mermaidID(id int64) string {
	return fmt.Sprintf("n%d", id)
}

// label escapes characters Mermaid treats as syntax inside quoted labels.
func label(s string) string {
	s = strings.ReplaceAll(s, "\"", "#quot;")
	return strings.ReplaceAll(s, "\n", " ")
}
