package runtime

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Catneko-0422/tuerulebase/pkg/domain"
	"github.com/Catneko-0422/tuerulebase/pkg/ports"
	"github.com/dlclark/regexp2"
)

// regexTimeout bounds a single value_regex evaluation.
const regexTimeout = 100 * time.Millisecond

// Compose assembles a code from picks along one root-to-node path. It is
// the inverse of decoding: the first pick is a root and every later pick is
// a non-OPTION child of the one before it. Composition.LengthOK is left for
// the caller, who knows the rule's total length.
func Compose(tree ports.TreeReader, picks []domain.Pick) (domain.Composition, error) {
	if len(picks) == 0 {
		return domain.Composition{}, fmt.Errorf("%w: no picks", domain.ErrInvalidPick)
	}

	var (
		code     strings.Builder
		segments = make([]domain.Segment, 0, len(picks))
		prev     domain.Node
	)
	for i, p := range picks {
		node, ok := tree.Node(p.NodeID)
		if !ok {
			return domain.Composition{}, pickErr(i, "node %d not found", p.NodeID)
		}
		if i == 0 && !node.IsRoot() {
			return domain.Composition{}, pickErr(i, "node %q is not a root", node.Name)
		}
		if i > 0 && !isChild(tree, prev.ID, node.ID) {
			return domain.Composition{}, pickErr(i, "node %q is not a child of %q", node.Name, prev.Name)
		}

		seg, err := composeSegment(tree, node, p)
		if err != nil {
			return domain.Composition{}, pickErr(i, "%v", err)
		}
		code.WriteString(seg.Value)
		segments = append(segments, seg)
		prev = node
	}

	root, _ := tree.Node(picks[0].NodeID)
	return domain.Composition{
		Code:     code.String(),
		RuleID:   root.RuleID,
		Segments: segments,
		Complete: len(tree.Children(prev.ID, true)) == 0,
	}, nil
}

func composeSegment(tree ports.TreeReader, node domain.Node, p domain.Pick) (domain.Segment, error) {
	seg := domain.Segment{NodeName: node.Name, Type: node.Type}
	switch node.Type {
	case domain.NodeTypeStatic:
		for _, opt := range tree.Options(node.ID) {
			if opt.ID == p.OptionID {
				seg.Value, seg.Meaning = opt.Code, opt.Name
				return seg, nil
			}
		}
		return seg, fmt.Errorf("option %d is not an option of %q", p.OptionID, node.Name)
	case domain.NodeTypeFixed:
		if p.Value != "" && p.Value != node.Code {
			return seg, fmt.Errorf("fixed node %q only accepts %q", node.Name, node.Code)
		}
		seg.Value, seg.Meaning = node.Code, node.Name
		return seg, nil
	case domain.NodeTypeInput, domain.NodeTypeSerial:
		if n := utf8.RuneCountInString(p.Value); n != node.SegmentLength {
			return seg, fmt.Errorf("value %q has %d characters, %q needs %d", p.Value, n, node.Name, node.SegmentLength)
		}
		if err := MatchValueRegex(node.ValueRegex, p.Value); err != nil {
			return seg, err
		}
		seg.Value, seg.Meaning = p.Value, RenderMeaning(node, p.Value)
		return seg, nil
	}
	return seg, fmt.Errorf("node %q of type %s cannot be picked", node.Name, node.Type)
}

// MatchValueRegex checks value against a node's value_regex. An empty
// pattern accepts everything.
func MatchValueRegex(pattern, value string) error {
	if pattern == "" {
		return nil
	}
	re, err := CompileValueRegex(pattern)
	if err != nil {
		return err
	}
	ok, err := re.MatchString(value)
	if err != nil {
		return fmt.Errorf("value_regex %q: %w", pattern, err)
	}
	if !ok {
		return fmt.Errorf("value %q does not match %q", value, pattern)
	}
	return nil
}

// CompileValueRegex compiles a value_regex with the evaluation timeout applied.
func CompileValueRegex(pattern string) (*regexp2.Regexp, error) {
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("value_regex %q: %w", pattern, err)
	}
	re.MatchTimeout = regexTimeout
	return re, nil
}

func isChild(tree ports.TreeReader, parentID, childID int64) bool {
	for _, c := range tree.Children(parentID, true) {
		if c.ID == childID {
			return true
		}
	}
	return false
}

func pickErr(i int, format string, args ...any) error {
	return fmt.Errorf("%w: pick %d: %s", domain.ErrInvalidPick, i, fmt.Sprintf(format, args...))
}
